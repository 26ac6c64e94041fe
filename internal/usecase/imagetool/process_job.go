package imagetool

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

type jobProcessorSrv struct {
	jobs  port.ImageJobRepository
	strg  port.Storage
	proc  port.ImageProcessor
	cache port.Cache
}

func NewJobProcessor(jobs port.ImageJobRepository, strg port.Storage, proc port.ImageProcessor, cache port.Cache) port.ImageJobProcessor {
	return &jobProcessorSrv{jobs, strg, proc, cache}
}

// ProcessImageJob runs job id to completion. Operational failures end up on
// the job as FAILED and are not returned; only a missing job or a failed
// status write is reported to the caller.
func (s *jobProcessorSrv) ProcessImageJob(ctx context.Context, id uuid.UUID) error {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrJobNotFound
		}
		return err
	}
	if job.Status.IsFinal() {
		logger.Warnf(ctx, "image job #%s already %s, skipping", job.ID, job.Status)
		return nil
	}

	if err := s.setStatus(ctx, job, model.JobStatusProcessing, nil, nil); err != nil {
		return err
	}

	// GetFile is lazy, stat first so a missing upload is reported as such
	if _, err := s.strg.StatFile(ctx, job.UploadedFile.ObjectKey); err != nil {
		return s.fail(ctx, job, sourceMissing(err))
	}
	src, err := s.strg.GetFile(ctx, job.UploadedFile.ObjectKey)
	if err != nil {
		return s.fail(ctx, job, sourceMissing(err))
	}
	defer func(src io.ReadCloser) {
		_ = src.Close()
	}(src)

	out, format, err := s.proc.Process(src, port.ImageOptions{
		Quality:      job.Quality,
		Width:        job.Width,
		Height:       job.Height,
		TargetFormat: job.TargetFormat,
	})
	if err != nil {
		return s.fail(ctx, job, internalError(err))
	}

	key := outputKey(job, format)
	if err := s.strg.SaveFile(ctx, key, bytes.NewReader(out), int64(len(out)), map[string]string{
		"Content-Type": format.MimeType(),
	}); err != nil {
		return s.fail(ctx, job, internalError(err))
	}

	if err := s.setStatus(ctx, job, model.JobStatusCompleted, &key, nil); err != nil {
		return err
	}
	logger.Infof(ctx, "image job #%s completed: %s", job.ID, key)
	return nil
}

func (s *jobProcessorSrv) fail(ctx context.Context, job *model.ImageJob, msg string) error {
	logger.Errorf(ctx, "image job #%s failed: %s", job.ID, msg)
	return s.setStatus(ctx, job, model.JobStatusFailed, nil, &msg)
}

func (s *jobProcessorSrv) setStatus(ctx context.Context, job *model.ImageJob, status model.JobStatus, key, msg *string) error {
	job.Status = status
	job.OutputKey = key
	job.ErrorMessage = msg
	if err := s.jobs.UpdateStatus(ctx, job); err != nil {
		return fmt.Errorf("failed to set image job #%s to %s: %w", job.ID, status, err)
	}
	invalidate(ctx, s.cache, job.ID)
	return nil
}

func sourceMissing(err error) string {
	return fmt.Sprintf("Processing failed: Source file not found or accessible. Error: %v", err)
}

func internalError(err error) string {
	return fmt.Sprintf("Processing failed due to an internal error: %v", err)
}

// outputKey is image_tool_processed/<job_id>/processed_<base>.<ext>.
func outputKey(job *model.ImageJob, format model.ImageFormat) string {
	name := path.Base(job.UploadedFile.ObjectKey)
	if job.UploadedFile.OriginalFilename != "" {
		name = job.UploadedFile.OriginalFilename
	}
	base := strings.TrimSuffix(name, path.Ext(name))
	return fmt.Sprintf("%s/%s/processed_%s.%s", processedPrefix, job.ID, base, format.Extension())
}
