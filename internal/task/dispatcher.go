package task

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

// enqueuer is the part of *asynq.Client the dispatcher needs.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type Dispatcher struct {
	client enqueuer
}

// compile-time check
var _ port.TaskDispatcher = (*Dispatcher)(nil)

func NewDispatcher(addr, password string) *Dispatcher {
	c := asynq.NewClient(asynq.RedisClientOpt{Addr: addr, Password: password})
	return &Dispatcher{client: c}
}

func (d *Dispatcher) EnqueueProcessImage(ctx context.Context, jobID uuid.UUID) error {
	t, err := NewProcessImageTask(jobID.String())
	if err != nil {
		return err
	}
	return d.enqueue(ctx, t)
}

func (d *Dispatcher) EnqueueProcessPdf(ctx context.Context, jobID uuid.UUID) error {
	t, err := NewProcessPdfTask(jobID.String())
	if err != nil {
		return err
	}
	return d.enqueue(ctx, t)
}

func (d *Dispatcher) EnqueuePasswordResetEmail(ctx context.Context, userID uuid.UUID, uid, token string) error {
	t, err := NewPasswordResetEmailTask(userID.String(), uid, token)
	if err != nil {
		return err
	}
	// the link stays valid for a while, a few retries are enough
	return d.enqueue(ctx, t, asynq.MaxRetry(3))
}

func (d *Dispatcher) enqueue(ctx context.Context, t *asynq.Task, opts ...asynq.Option) error {
	if _, err := d.client.EnqueueContext(ctx, t, opts...); err != nil {
		return err
	}
	return nil
}

// Close releases the Redis connection of the underlying client.
func (d *Dispatcher) Close() error {
	return d.client.Close()
}
