package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/task"
	"github.com/opustools/opustools-go/internal/usecase/imagetool"
	"github.com/opustools/opustools-go/internal/usecase/pdftool"
	"github.com/opustools/opustools-go/internal/uuid"
)

// ProcessImageJobHandler handles an image:process task. Tasks for an unknown
// or unparsable job are dropped without retry.
func ProcessImageJobHandler(ctx context.Context, p task.JobPayload, svc port.ImageJobProcessor) error {
	id, err := parseJobID(ctx, p)
	if err != nil {
		return err
	}

	if err := svc.ProcessImageJob(ctx, id); err != nil {
		if errors.Is(err, imagetool.ErrJobNotFound) {
			logger.Warnf(ctx, "❌  Image job #%s not found, dropping task", id)
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		logger.Errorf(ctx, "❌  Failed to process image job #%s: %v", id, err)
		return err
	}

	logger.Infof(ctx, "✅  Successfully processed image job #%s", id)
	return nil
}

// ProcessPdfJobHandler handles a pdf:process task.
func ProcessPdfJobHandler(ctx context.Context, p task.JobPayload, svc port.PdfJobProcessor) error {
	id, err := parseJobID(ctx, p)
	if err != nil {
		return err
	}

	if err := svc.ProcessPdfJob(ctx, id); err != nil {
		if errors.Is(err, pdftool.ErrJobNotFound) {
			logger.Warnf(ctx, "❌  PDF job #%s not found, dropping task", id)
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		logger.Errorf(ctx, "❌  Failed to process pdf job #%s: %v", id, err)
		return err
	}

	logger.Infof(ctx, "✅  Successfully processed pdf job #%s", id)
	return nil
}

func parseJobID(ctx context.Context, p task.JobPayload) (uuid.UUID, error) {
	id, err := uuid.Parse(p.JobID)
	if err != nil {
		logger.Errorf(ctx, "❌  Invalid job ID %q: %v", p.JobID, err)
		return uuid.Nil, fmt.Errorf("invalid job id %q: %w", p.JobID, asynq.SkipRetry)
	}
	return id, nil
}
