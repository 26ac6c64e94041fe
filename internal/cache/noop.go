package cache

import (
	"context"
	"time"

	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

// NoopCache is used when Redis is not configured: every read misses, every
// client stays under its allowance and no token is ever revoked.
type NoopCache struct{}

var (
	_ port.Cache             = (*NoopCache)(nil)
	_ port.ConversionCounter = (*NoopCache)(nil)
	_ port.TokenDenyList     = (*NoopCache)(nil)
)

func NewNoop() *NoopCache {
	return &NoopCache{}
}

func (n *NoopCache) GetJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID) ([]byte, error) {
	return nil, nil // always cache miss
}

func (n *NoopCache) GetEtagJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID) (string, error) {
	return "", nil
}

func (n *NoopCache) SetJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID, data []byte, ttl time.Duration) {
}

func (n *NoopCache) SetEtagJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID, etag string, ttl time.Duration) {
}

func (n *NoopCache) DeleteJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID) error {
	return nil
}

func (n *NoopCache) DeleteEtagJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID) error {
	return nil
}

func (n *NoopCache) IncrementConversions(ctx context.Context, kind port.JobKind, client string, at time.Time) (int64, error) {
	return 0, nil
}

func (n *NoopCache) DenyToken(ctx context.Context, jti string, until time.Time) error { return nil }

func (n *NoopCache) IsTokenDenied(ctx context.Context, jti string) (bool, error) {
	return false, nil
}
