package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/port"
)

type mediaCleanerSrv struct {
	strg   port.Storage
	maxAge time.Duration
	now    func() time.Time
}

// compile-time check: *mediaCleanerSrv must satisfy port.MediaCleaner
var _ port.MediaCleaner = (*mediaCleanerSrv)(nil)

// NewMediaCleaner removes objects last modified more than maxAge ago.
func NewMediaCleaner(strg port.Storage, maxAge time.Duration) port.MediaCleaner {
	return &mediaCleanerSrv{strg, maxAge, time.Now}
}

// CleanupOldMedia deletes uploads and outputs past the retention window and
// returns how many were removed. Objects that fail to delete are skipped.
func (s *mediaCleanerSrv) CleanupOldMedia(ctx context.Context) (int, error) {
	objects, err := s.strg.ListFiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list media: %w", err)
	}

	cutoff := s.now().Add(-s.maxAge)
	deleted := 0
	for _, obj := range objects {
		if !obj.LastModified.Before(cutoff) {
			continue
		}
		if err := s.strg.RemoveFile(ctx, obj.Key); err != nil {
			logger.Warnf(ctx, "failed to delete %q: %v", obj.Key, err)
			continue
		}
		logger.Debugf(ctx, "deleted old file %q", obj.Key)
		deleted++
	}

	logger.Infof(ctx, "%d old files deleted.", deleted)
	return deleted, nil
}
