package main

import (
	"context"
	"os"

	"github.com/opustools/opustools-go/internal/config"
	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/storage"
	"github.com/opustools/opustools-go/internal/usecase/maintenance"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init(logger.ComponentCleanup)

	strg, err := storage.NewStorage(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.MinioBucket)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	n, err := maintenance.NewMediaCleaner(strg, cfg.CleanupMaxAge).CleanupOldMedia(ctx)
	if err != nil {
		logger.Errorf(ctx, "❌  Media cleanup failed: %v", err)
		os.Exit(1)
	}
	logger.Infof(ctx, "✅  Media cleanup completed, %d objects removed", n)
}
