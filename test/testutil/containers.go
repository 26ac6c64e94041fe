package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/storage"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	MinioRootUser     = "minioadmin"
	MinioRootPassword = "minioadmin"

	mariadbRootPassword = "root"
	mariadbDatabase     = "opustools"

	readyTimeout = 2 * time.Second
)

type MariaDBContainerInfo struct {
	DSN     string
	Cleanup func()
}

type MinIOContainerInfo struct {
	Endpoint string
	Cleanup  func()
}

type RedisContainerInfo struct {
	Addr    string
	Cleanup func()
}

// container describes a throwaway service: what to run, which port it
// exposes and how to tell it accepts connections.
type container struct {
	name  string
	opts  dockertest.RunOptions
	port  docker.Port
	ready func(hostPort string) error
}

// start runs c and blocks until ready succeeds, returning the mapped
// "localhost:port" address and a purge func.
func (c container) start() (string, func(), error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return "", nil, fmt.Errorf("could not connect to docker: %w", err)
	}

	opts := c.opts
	opts.ExposedPorts = []string{string(c.port)}
	res, err := pool.RunWithOptions(&opts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return "", nil, fmt.Errorf("could not start %s container: %w", c.name, err)
	}

	addr := "localhost:" + res.GetPort(string(c.port))
	if err := pool.Retry(func() error { return c.ready(addr) }); err != nil {
		_ = pool.Purge(res)
		return "", nil, fmt.Errorf("%s did not become ready: %w", c.name, err)
	}

	purge := func() {
		if err := pool.Purge(res); err != nil {
			logger.Warnf(context.Background(), "could not purge %s container: %s", c.name, err)
		}
	}
	return addr, purge, nil
}

func mariadbDSN(addr string) string {
	return fmt.Sprintf("root:%s@(%s)/%s?parseTime=true", mariadbRootPassword, addr, mariadbDatabase)
}

func StartMariaDBContainer() (*MariaDBContainerInfo, error) {
	addr, purge, err := container{
		name: "mariadb",
		opts: dockertest.RunOptions{
			Repository: "mariadb",
			Tag:        "10.11",
			Env: []string{
				"MARIADB_ROOT_PASSWORD=" + mariadbRootPassword,
				"MARIADB_DATABASE=" + mariadbDatabase,
			},
		},
		port: "3306/tcp",
		ready: func(addr string) error {
			db, err := sql.Open("mysql", mariadbDSN(addr))
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
			defer cancel()
			return db.PingContext(ctx)
		},
	}.start()
	if err != nil {
		return nil, err
	}
	return &MariaDBContainerInfo{DSN: mariadbDSN(addr), Cleanup: purge}, nil
}

func StartMinIOContainer() (*MinIOContainerInfo, error) {
	addr, purge, err := container{
		name: "minio",
		opts: dockertest.RunOptions{
			Repository: "minio/minio",
			Tag:        "latest",
			Env: []string{
				"MINIO_ROOT_USER=" + MinioRootUser,
				"MINIO_ROOT_PASSWORD=" + MinioRootPassword,
			},
			Cmd: []string{"server", "/data"},
		},
		port: "9000/tcp",
		ready: func(addr string) error {
			client, err := minio.New(addr, &minio.Options{
				Creds: credentials.NewStaticV4(MinioRootUser, MinioRootPassword, ""),
			})
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
			defer cancel()
			_, err = client.ListBuckets(ctx)
			return err
		},
	}.start()
	if err != nil {
		return nil, err
	}
	return &MinIOContainerInfo{Endpoint: addr, Cleanup: purge}, nil
}

func StartRedisContainer() (*RedisContainerInfo, error) {
	addr, purge, err := container{
		name: "redis",
		opts: dockertest.RunOptions{Repository: "redis", Tag: "7"},
		port: "6379/tcp",
		ready: func(addr string) error {
			rdb := redis.NewClient(&redis.Options{Addr: addr})
			defer func() { _ = rdb.Close() }()
			ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
			defer cancel()
			return rdb.Ping(ctx).Err()
		},
	}.start()
	if err != nil {
		return nil, err
	}
	return &RedisContainerInfo{Addr: addr, Cleanup: purge}, nil
}

// NewTestStorage returns storage on a fresh bucket of the MinIO server at endpoint.
func NewTestStorage(ctx context.Context, endpoint string) (*storage.MinioStorage, error) {
	bucket := fmt.Sprintf("opustools-%d", time.Now().UnixNano())
	strg, err := storage.NewStorage(endpoint, MinioRootUser, MinioRootPassword, false, bucket)
	if err != nil {
		return nil, fmt.Errorf("could not create minio client: %w", err)
	}
	if err := strg.InitBucket(ctx); err != nil {
		return nil, fmt.Errorf("could not create bucket %q: %w", bucket, err)
	}
	return strg, nil
}
