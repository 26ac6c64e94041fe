package main

import (
	"context"
	"flag"
	"os"

	"github.com/opustools/opustools-go/internal/config"
	"github.com/opustools/opustools-go/internal/db"
	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/migration"
)

func main() {
	ctx := context.Background()
	down := flag.Bool("down", false, "revert every applied migration")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init(logger.ComponentMigrate)

	database, err := db.New(ctx, db.Config{
		DSN:             cfg.MariaDBDSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		MultiStatements: true,
	})
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Warnf(ctx, "DB close error: %v", err)
		}
	}()

	if *down {
		if err := migration.MigrateDown(database.DB); err != nil {
			logger.Errorf(ctx, "❌  Migration down failed: %v", err)
			os.Exit(1)
		}
		logger.Info(ctx, "✅  Migrations reverted successfully")
		return
	}

	if err := migration.MigrateUp(database.DB); err != nil {
		logger.Errorf(ctx, "❌  Migration up failed: %v", err)
		os.Exit(1)
	}

	logger.Info(ctx, "✅  Migrations applied successfully")
}
