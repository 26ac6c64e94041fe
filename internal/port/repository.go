package port

import (
	"context"
	"errors"

	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/uuid"
)

// ErrDuplicate is returned when a unique column already holds the value.
var ErrDuplicate = errors.New("repository: duplicate entry")

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// UploadedFileRepository records original uploads.
type UploadedFileRepository interface {
	Create(ctx context.Context, file *model.UploadedFile) error
}

// ImageJobRepository defines persistence operations for image jobs.
type ImageJobRepository interface {
	Create(ctx context.Context, job *model.ImageJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ImageJob, error)
	UpdateStatus(ctx context.Context, job *model.ImageJob) error
}

// PdfJobRepository defines persistence operations for PDF jobs and their ordered files.
type PdfJobRepository interface {
	Create(ctx context.Context, job *model.PdfJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.PdfJob, error)
	UpdateStatus(ctx context.Context, job *model.PdfJob) error
}

// PasswordResetRepository stores at most one pending reset token per user.
type PasswordResetRepository interface {
	Save(ctx context.Context, token *model.PasswordResetToken) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.PasswordResetToken, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}
