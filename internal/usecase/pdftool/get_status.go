package pdftool

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

type statusGetterSrv struct {
	jobs port.PdfJobRepository
	strg port.Storage
	ttl  time.Duration
}

func NewStatusGetter(jobs port.PdfJobRepository, strg port.Storage, downloadURLTTL time.Duration) port.PdfJobStatusGetter {
	return &statusGetterSrv{jobs, strg, downloadURLTTL}
}

func (s *statusGetterSrv) GetPdfJobStatus(ctx context.Context, id uuid.UUID) (port.PdfJobOutput, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return port.PdfJobOutput{}, ErrJobNotFound
		}
		return port.PdfJobOutput{}, err
	}
	return toOutput(ctx, s.strg, s.ttl, job), nil
}
