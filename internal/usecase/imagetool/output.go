package imagetool

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

// toOutput renders job; completed jobs get a presigned link to their output.
func toOutput(ctx context.Context, strg port.Storage, ttl time.Duration, job *model.ImageJob) port.ImageJobOutput {
	out := port.ImageJobOutput{
		ID:           job.ID,
		ToolType:     job.ToolType,
		Quality:      job.Quality,
		Width:        job.Width,
		Height:       job.Height,
		TargetFormat: job.TargetFormat,
		Status:       job.Status,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		UploadedFile: job.UploadedFile,
	}
	if job.Status == model.JobStatusCompleted && job.OutputKey != nil {
		url, err := strg.GeneratePresignedDownloadURL(ctx, *job.OutputKey, ttl)
		if err != nil {
			logger.Warnf(ctx, "could not presign output of image job #%s: %v", job.ID, err)
		} else {
			out.OutputURL = &url
		}
	}
	return out
}

// invalidate drops the cached status body and ETag of job id.
func invalidate(ctx context.Context, cache port.Cache, id uuid.UUID) {
	if err := cache.DeleteJobStatus(ctx, port.ImageJobKind, id); err != nil {
		logger.Warnf(ctx, "failed to invalidate status cache of image job #%s: %v", id, err)
	}
	if err := cache.DeleteEtagJobStatus(ctx, port.ImageJobKind, id); err != nil {
		logger.Warnf(ctx, "failed to invalidate etag cache of image job #%s: %v", id, err)
	}
}

// safeFilename keeps only the last path element of a client supplied name.
func safeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload"
	}
	return base
}
