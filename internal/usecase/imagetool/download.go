package imagetool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"

	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

type downloaderSrv struct {
	jobs port.ImageJobRepository
	strg port.Storage
}

func NewDownloader(jobs port.ImageJobRepository, strg port.Storage) port.ImageJobDownloader {
	return &downloaderSrv{jobs, strg}
}

// DownloadImageJob opens the output of a completed job. The caller closes Content.
func (s *downloaderSrv) DownloadImageJob(ctx context.Context, id uuid.UUID) (port.DownloadOutput, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return port.DownloadOutput{}, ErrJobNotFound
		}
		return port.DownloadOutput{}, err
	}
	if job.Status != model.JobStatusCompleted || job.OutputKey == nil || *job.OutputKey == "" {
		return port.DownloadOutput{}, ErrFileNotReady
	}

	key := *job.OutputKey
	info, err := s.strg.StatFile(ctx, key)
	if err != nil {
		if errors.Is(err, port.ErrObjectNotFound) {
			return port.DownloadOutput{}, ErrOutputMissing
		}
		return port.DownloadOutput{}, fmt.Errorf("stats for file %q failed: %w", key, err)
	}

	content, err := s.strg.GetFile(ctx, key)
	if err != nil {
		if errors.Is(err, port.ErrObjectNotFound) {
			return port.DownloadOutput{}, ErrOutputMissing
		}
		return port.DownloadOutput{}, fmt.Errorf("failed to open %q: %w", key, err)
	}

	return port.DownloadOutput{
		Filename:  path.Base(key),
		SizeBytes: info.SizeBytes,
		Content:   content,
	}, nil
}
