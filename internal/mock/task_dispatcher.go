package mock

import (
	"context"

	"github.com/opustools/opustools-go/internal/uuid"
)

// Dispatcher implements task dispatching for tests.
type Dispatcher struct {
	ImageCalled bool
	ImageIDs    []uuid.UUID
	ImageErr    error

	PdfCalled bool
	PdfIDs    []uuid.UUID
	PdfErr    error

	ResetCalled bool
	ResetUserID uuid.UUID
	ResetUID    string
	ResetToken  string
	ResetErr    error
}

func (d *Dispatcher) EnqueueProcessImage(ctx context.Context, jobID uuid.UUID) error {
	d.ImageCalled = true
	d.ImageIDs = append(d.ImageIDs, jobID)
	return d.ImageErr
}

func (d *Dispatcher) EnqueueProcessPdf(ctx context.Context, jobID uuid.UUID) error {
	d.PdfCalled = true
	d.PdfIDs = append(d.PdfIDs, jobID)
	return d.PdfErr
}

func (d *Dispatcher) EnqueuePasswordResetEmail(ctx context.Context, userID uuid.UUID, uid, token string) error {
	d.ResetCalled = true
	d.ResetUserID = userID
	d.ResetUID = uid
	d.ResetToken = token
	return d.ResetErr
}
