package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

// compile-time checks: *Cache backs every Redis-based port
var (
	_ port.Cache             = (*Cache)(nil)
	_ port.ConversionCounter = (*Cache)(nil)
	_ port.TokenDenyList     = (*Cache)(nil)
)

func NewCache(addr, password string) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	return &Cache{client: rdb}
}

func (c *Cache) GetJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID) ([]byte, error) {
	logger.Debugf(ctx, "getting cached status for %s job #%s...", kind, id)

	val, err := c.client.Get(ctx, getCacheKey(kind, id, false)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

func (c *Cache) GetEtagJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID) (string, error) {
	val, err := c.client.Get(ctx, getCacheKey(kind, id, true)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

// SetJobStatus is best effort: a failed write only costs a cache miss.
func (c *Cache) SetJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID, data []byte, ttl time.Duration) {
	logger.Debugf(ctx, "caching status for %s job #%s for %s...", kind, id, ttl)

	if err := c.client.Set(ctx, getCacheKey(kind, id, false), data, ttl).Err(); err != nil {
		logger.Warnf(ctx, "redis set failed for %s job #%s: %v", kind, id, err)
	}
}

func (c *Cache) SetEtagJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID, etag string, ttl time.Duration) {
	if err := c.client.Set(ctx, getCacheKey(kind, id, true), etag, ttl).Err(); err != nil {
		logger.Warnf(ctx, "redis set etag failed for %s job #%s: %v", kind, id, err)
	}
}

func (c *Cache) DeleteJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID) error {
	logger.Debugf(ctx, "deleting cached status for %s job #%s...", kind, id)

	if err := c.client.Del(ctx, getCacheKey(kind, id, false)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (c *Cache) DeleteEtagJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID) error {
	if err := c.client.Del(ctx, getCacheKey(kind, id, true)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func getCacheKey(kind port.JobKind, id uuid.UUID, etag bool) string {
	key := "job:" + string(kind) + ":" + id.String()
	if etag {
		return "etag:" + key
	}
	return key
}
