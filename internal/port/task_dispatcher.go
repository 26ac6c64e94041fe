package port

import (
	"context"

	"github.com/opustools/opustools-go/internal/uuid"
)

// TaskDispatcher enqueues asynchronous tasks for the worker.
type TaskDispatcher interface {
	EnqueueProcessImage(ctx context.Context, jobID uuid.UUID) error
	EnqueueProcessPdf(ctx context.Context, jobID uuid.UUID) error
	EnqueuePasswordResetEmail(ctx context.Context, userID uuid.UUID, uid, token string) error
}
