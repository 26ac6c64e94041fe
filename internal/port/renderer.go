package port

import (
	"context"

	"github.com/opustools/opustools-go/internal/uuid"
)

// HTTPRenderer mediates between HTTP handlers and the job status use cases.
// It provides caching capabilities and returns both the JSON representation of
// the result as well as an ETag value derived from it.
type HTTPRenderer interface {
	RenderImageJobStatus(ctx context.Context, getter ImageJobStatusGetter, id uuid.UUID) ([]byte, string, error)
	RenderPdfJobStatus(ctx context.Context, getter PdfJobStatusGetter, id uuid.UUID) ([]byte, string, error)
}
