package worker

import (
	"context"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/port"
)

// CleanupMediaHandler handles the scheduled media:cleanup task.
func CleanupMediaHandler(ctx context.Context, svc port.MediaCleaner) error {
	n, err := svc.CleanupOldMedia(ctx)
	if err != nil {
		logger.Errorf(ctx, "❌  Media cleanup failed: %v", err)
		return err
	}

	logger.Infof(ctx, "✅  Media cleanup removed %d objects", n)
	return nil
}
