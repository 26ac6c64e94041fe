package imagetool

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

type statusGetterSrv struct {
	jobs port.ImageJobRepository
	strg port.Storage
	ttl  time.Duration
}

func NewStatusGetter(jobs port.ImageJobRepository, strg port.Storage, downloadURLTTL time.Duration) port.ImageJobStatusGetter {
	return &statusGetterSrv{jobs, strg, downloadURLTTL}
}

func (s *statusGetterSrv) GetImageJobStatus(ctx context.Context, id uuid.UUID) (port.ImageJobOutput, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return port.ImageJobOutput{}, ErrJobNotFound
		}
		return port.ImageJobOutput{}, err
	}
	return toOutput(ctx, s.strg, s.ttl, job), nil
}
