package port

import (
	"context"
	"time"

	"github.com/opustools/opustools-go/internal/uuid"
)

// JobKind namespaces cached job statuses per tool.
type JobKind string

const (
	ImageJobKind JobKind = "image"
	PdfJobKind   JobKind = "pdf"
)

// Cache keeps rendered job statuses and their ETags.
type Cache interface {
	GetJobStatus(ctx context.Context, kind JobKind, id uuid.UUID) ([]byte, error)
	GetEtagJobStatus(ctx context.Context, kind JobKind, id uuid.UUID) (string, error)
	SetJobStatus(ctx context.Context, kind JobKind, id uuid.UUID, data []byte, ttl time.Duration)
	SetEtagJobStatus(ctx context.Context, kind JobKind, id uuid.UUID, etag string, ttl time.Duration)
	DeleteJobStatus(ctx context.Context, kind JobKind, id uuid.UUID) error
	DeleteEtagJobStatus(ctx context.Context, kind JobKind, id uuid.UUID) error
}

// ConversionCounter counts job-creating requests of anonymous clients per
// tool and day.
type ConversionCounter interface {
	// IncrementConversions bumps the kind counter of client for the UTC day
	// of at and returns the new value. When the count is known but keeping
	// its expiry failed, both the count and the error are returned.
	IncrementConversions(ctx context.Context, kind JobKind, client string, at time.Time) (int64, error)
}

// TokenDenyList remembers revoked token IDs until they expire.
type TokenDenyList interface {
	DenyToken(ctx context.Context, jti string, until time.Time) error
	IsTokenDenied(ctx context.Context, jti string) (bool, error)
}
