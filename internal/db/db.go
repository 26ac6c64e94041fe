package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config describes a MariaDB connection pool.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// MultiStatements allows several statements per query, as migrations need.
	MultiStatements bool
}

// Database holds the SQL connection pool.
type Database struct {
	*sql.DB
}

const pingTimeout = 5 * time.Second

// New creates, configures, and verifies a MariaDB connection pool.
// It returns an error if opening or pinging the database fails.
func New(ctx context.Context, cfg Config) (*Database, error) {
	dsn, err := normaliseDSN(cfg.DSN, cfg.MultiStatements)
	if err != nil {
		return nil, fmt.Errorf("parse mariadb dsn: %w", err)
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mariadb: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		// the pool is unusable, release it before reporting the ping error
		if cErr := db.Close(); cErr != nil {
			return nil, cErr
		}
		return nil, fmt.Errorf("ping mariadb: %w", err)
	}
	return &Database{db}, nil
}

// normaliseDSN makes the driver scan DATETIME columns into time.Time.
func normaliseDSN(dsn string, multiStatements bool) (string, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	mc.ParseTime = true
	mc.MultiStatements = multiStatements
	return mc.FormatDSN(), nil
}
