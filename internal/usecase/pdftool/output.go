package pdftool

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

func toOutput(ctx context.Context, strg port.Storage, ttl time.Duration, job *model.PdfJob) port.PdfJobOutput {
	files := job.UploadedFiles
	if files == nil {
		files = []model.UploadedFile{}
	}
	out := port.PdfJobOutput{
		ID:               job.ID,
		User:             job.UserID,
		ToolType:         job.ToolType,
		CompressionLevel: job.CompressionLevel,
		PageRanges:       job.PageRanges,
		MergeOrder:       job.MergeOrder,
		Status:           job.Status,
		ErrorMessage:     job.ErrorMessage,
		CreatedAt:        job.CreatedAt,
		UploadedFiles:    files,
	}
	if job.Status == model.JobStatusCompleted && job.OutputKey != nil {
		url, err := strg.GeneratePresignedDownloadURL(ctx, *job.OutputKey, ttl)
		if err != nil {
			logger.Warnf(ctx, "could not presign output of pdf job #%s: %v", job.ID, err)
		} else {
			out.OutputURL = &url
		}
	}
	return out
}

func invalidate(ctx context.Context, cache port.Cache, id uuid.UUID) {
	if err := cache.DeleteJobStatus(ctx, port.PdfJobKind, id); err != nil {
		logger.Warnf(ctx, "failed to invalidate status cache of pdf job #%s: %v", id, err)
	}
	if err := cache.DeleteEtagJobStatus(ctx, port.PdfJobKind, id); err != nil {
		logger.Warnf(ctx, "failed to invalidate etag cache of pdf job #%s: %v", id, err)
	}
}

func safeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload.pdf"
	}
	return base
}

// baseName strips the extension from the original name of f.
func baseName(f model.UploadedFile) string {
	name := f.OriginalFilename
	if name == "" {
		name = path.Base(f.ObjectKey)
	}
	return strings.TrimSuffix(name, path.Ext(name))
}

// uniqueNames hands out archive entry names, prefixing repeats with a counter.
type uniqueNames map[string]struct{}

func (u uniqueNames) next(name string) string {
	candidate := name
	for i := 1; ; i++ {
		if _, taken := u[candidate]; !taken {
			u[candidate] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%d_%s", i, name)
	}
}
