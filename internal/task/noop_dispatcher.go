package task

import (
	"context"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

// NoopDispatcher drops every task; jobs created while it is active stay PENDING.
type NoopDispatcher struct{}

var _ port.TaskDispatcher = (*NoopDispatcher)(nil)

func NewNoopDispatcher() *NoopDispatcher { return &NoopDispatcher{} }

func (d *NoopDispatcher) EnqueueProcessImage(ctx context.Context, jobID uuid.UUID) error {
	logger.Warnf(ctx, "task queue disabled, image job #%s will not be processed", jobID)
	return nil
}

func (d *NoopDispatcher) EnqueueProcessPdf(ctx context.Context, jobID uuid.UUID) error {
	logger.Warnf(ctx, "task queue disabled, pdf job #%s will not be processed", jobID)
	return nil
}

func (d *NoopDispatcher) EnqueuePasswordResetEmail(ctx context.Context, userID uuid.UUID, uid, token string) error {
	logger.Warnf(ctx, "task queue disabled, no reset e-mail for user #%s", userID)
	return nil
}
