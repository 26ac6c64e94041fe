package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

type httpRenderer struct {
	cache port.Cache
	ttl   time.Duration
}

// compile-time check: *httpRenderer must satisfy port.HTTPRenderer
var _ port.HTTPRenderer = (*httpRenderer)(nil)

// NewHTTPRenderer creates a renderer that keeps job statuses cached for ttl.
func NewHTTPRenderer(cache port.Cache, ttl time.Duration) port.HTTPRenderer {
	return &httpRenderer{cache: cache, ttl: ttl}
}

// RenderImageJobStatus returns the cached JSON status of an image job and its
// ETag if available, or executes the use case otherwise. Only COMPLETED and
// FAILED outputs are written back to the cache.
func (r *httpRenderer) RenderImageJobStatus(ctx context.Context, getter port.ImageJobStatusGetter, id uuid.UUID) ([]byte, string, error) {
	return r.render(ctx, port.ImageJobKind, id, func() (any, model.JobStatus, error) {
		out, err := getter.GetImageJobStatus(ctx, id)
		return out, out.Status, err
	})
}

// RenderPdfJobStatus is RenderImageJobStatus for PDF jobs.
func (r *httpRenderer) RenderPdfJobStatus(ctx context.Context, getter port.PdfJobStatusGetter, id uuid.UUID) ([]byte, string, error) {
	return r.render(ctx, port.PdfJobKind, id, func() (any, model.JobStatus, error) {
		out, err := getter.GetPdfJobStatus(ctx, id)
		return out, out.Status, err
	})
}

func (r *httpRenderer) render(ctx context.Context, kind port.JobKind, id uuid.UUID, load func() (any, model.JobStatus, error)) ([]byte, string, error) {
	raw, err := r.cache.GetJobStatus(ctx, kind, id)
	etag, errEtag := r.cache.GetEtagJobStatus(ctx, kind, id)
	if err == nil && errEtag == nil && raw != nil && etag != "" {
		return raw, etag, nil
	}

	out, status, err := load()
	if err != nil {
		return nil, "", err
	}

	raw, err = json.Marshal(out)
	if err != nil {
		return nil, "", fmt.Errorf("json marshal: %w", err)
	}

	etag = ETag(raw)

	// A job still in flight can be finished by the worker between our load
	// and the write below, which would pin a stale body for the whole ttl.
	// Final statuses never change again, so only those are cached.
	if !status.IsFinal() {
		return raw, etag, nil
	}
	r.cache.SetJobStatus(ctx, kind, id, raw, r.ttl)
	r.cache.SetEtagJobStatus(ctx, kind, id, etag, r.ttl)

	return raw, etag, nil
}

// ETag returns the quoted CRC32 of body.
func ETag(body []byte) string {
	return fmt.Sprintf("\"%08x\"", crc32.ChecksumIEEE(body))
}
