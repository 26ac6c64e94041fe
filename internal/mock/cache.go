package mock

import (
	"context"
	"time"

	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

// Cache implements port.Cache for tests.
type Cache struct {
	// stored values
	StatusOut []byte

	// etag values
	EtagOut string

	// captured inputs
	Kind port.JobKind
	TTL  time.Duration

	// errors
	GetStatusErr error
	GetEtagErr   error
	DelStatusErr error
	DelEtagErr   error

	// call flags
	GetStatusCalled bool
	GetEtagCalled   bool
	SetStatusCalled bool
	SetEtagCalled   bool
	DelStatusCalled bool
	DelEtagCalled   bool
}

func (c *Cache) GetJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID) ([]byte, error) {
	c.GetStatusCalled = true
	c.Kind = kind
	if c.GetStatusErr != nil {
		return nil, c.GetStatusErr
	}
	return c.StatusOut, nil
}

func (c *Cache) GetEtagJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID) (string, error) {
	c.GetEtagCalled = true
	if c.GetEtagErr != nil {
		return "", c.GetEtagErr
	}
	return c.EtagOut, nil
}

func (c *Cache) SetJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID, data []byte, ttl time.Duration) {
	c.SetStatusCalled = true
	c.Kind = kind
	c.TTL = ttl
	c.StatusOut = data
}

func (c *Cache) SetEtagJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID, etag string, ttl time.Duration) {
	c.SetEtagCalled = true
	c.EtagOut = etag
}

func (c *Cache) DeleteJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID) error {
	c.DelStatusCalled = true
	c.Kind = kind
	return c.DelStatusErr
}

func (c *Cache) DeleteEtagJobStatus(ctx context.Context, kind port.JobKind, id uuid.UUID) error {
	c.DelEtagCalled = true
	return c.DelEtagErr
}

// ConversionCounter implements port.ConversionCounter for tests.
// Count is incremented on every call and returned.
// When CountWithErr is set the count is still returned alongside Err.
type ConversionCounter struct {
	Count        int64
	Err          error
	CountWithErr bool
	Client       string
	Kind         port.JobKind
	Called       bool
}

func (c *ConversionCounter) IncrementConversions(ctx context.Context, kind port.JobKind, client string, at time.Time) (int64, error) {
	c.Called = true
	c.Client = client
	c.Kind = kind
	if c.Err != nil && !c.CountWithErr {
		return 0, c.Err
	}
	c.Count++
	return c.Count, c.Err
}

// TokenDenyList implements port.TokenDenyList for tests.
type TokenDenyList struct {
	Denied map[string]bool

	DeniedUntil time.Time

	DenyErr  error
	CheckErr error

	DenyCalled  bool
	CheckCalled bool
}

func (d *TokenDenyList) DenyToken(ctx context.Context, jti string, until time.Time) error {
	d.DenyCalled = true
	if d.DenyErr != nil {
		return d.DenyErr
	}
	if d.Denied == nil {
		d.Denied = map[string]bool{}
	}
	d.Denied[jti] = true
	d.DeniedUntil = until
	return nil
}

func (d *TokenDenyList) IsTokenDenied(ctx context.Context, jti string) (bool, error) {
	d.CheckCalled = true
	if d.CheckErr != nil {
		return false, d.CheckErr
	}
	return d.Denied[jti], nil
}
