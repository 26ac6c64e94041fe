package mock

import (
	"context"

	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

// HTTPRenderer implements port.HTTPRenderer for tests.
type HTTPRenderer struct {
	// stored values
	Out  []byte
	Etag string

	// captured inputs
	GotID   uuid.UUID
	GotKind port.JobKind

	// errors
	Err error

	// call flags
	Called bool
}

func (m *HTTPRenderer) RenderImageJobStatus(ctx context.Context, getter port.ImageJobStatusGetter, id uuid.UUID) ([]byte, string, error) {
	m.Called = true
	m.GotID = id
	m.GotKind = port.ImageJobKind
	return m.Out, m.Etag, m.Err
}

func (m *HTTPRenderer) RenderPdfJobStatus(ctx context.Context, getter port.PdfJobStatusGetter, id uuid.UUID) ([]byte, string, error) {
	m.Called = true
	m.GotID = id
	m.GotKind = port.PdfJobKind
	return m.Out, m.Etag, m.Err
}
