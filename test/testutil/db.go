package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/opustools/opustools-go/internal/db"
	"github.com/opustools/opustools-go/internal/migration"
)

type TestDB struct {
	DB      *sql.DB
	Cleanup func() error
}

// SetupTestDB creates a fresh database on the TEST_DB_DSN server and migrates it.
func SetupTestDB() (*TestDB, error) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		return nil, fmt.Errorf("TEST_DB_DSN env-var not set")
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN %q: %w", dsn, err)
	}

	origName := cfg.DBName
	cfg.DBName = ""
	rootDB, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open root DB: %w", err)
	}

	dbName := fmt.Sprintf("%s_%d", origName, time.Now().UnixNano())
	if _, err := rootDB.Exec("CREATE DATABASE " + dbName); err != nil {
		_ = rootDB.Close()
		return nil, err
	}
	dropAll := func() {
		_, _ = rootDB.Exec("DROP DATABASE " + dbName)
		_ = rootDB.Close()
	}

	cfg.DBName = dbName
	database, err := db.New(context.Background(), db.Config{
		DSN:             cfg.FormatDSN(),
		MaxOpenConns:    5,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Minute,
		MultiStatements: true,
	})
	if err != nil {
		dropAll()
		return nil, fmt.Errorf("open test DB %q: %w", dbName, err)
	}

	if err := migration.MigrateUp(database.DB); err != nil {
		_ = database.Close()
		dropAll()
		return nil, fmt.Errorf("migrate test DB %q: %w", dbName, err)
	}

	cleanup := func() error {
		if err := database.Close(); err != nil {
			return err
		}
		if _, err := rootDB.Exec("DROP DATABASE " + dbName); err != nil {
			_ = rootDB.Close()
			return fmt.Errorf("drop database %q: %w", dbName, err)
		}
		return rootDB.Close()
	}

	return &TestDB{DB: database.DB, Cleanup: cleanup}, nil
}
