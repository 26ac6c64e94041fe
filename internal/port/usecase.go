package port

import (
	"context"
	"io"
	"time"

	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/uuid"
)

type UUIDGen func() uuid.UUID

// Upload is one file received from a multipart form, with its sniffed MIME type.
type Upload struct {
	Filename string
	MimeType string
	Size     int64
	Content  io.Reader
}

// DownloadOutput streams a finished job output.
type DownloadOutput struct {
	Filename  string
	SizeBytes int64
	Content   io.ReadSeekCloser
}

// ---- image tool ----

// ImageJobCreator validates an image request, stores the upload and queues the job.
type ImageJobCreator interface {
	CreateImageJob(ctx context.Context, in CreateImageJobInput) (ImageJobOutput, error)
}

// CreateImageJobInput holds the raw form values; numeric fields are parsed by the use case.
type CreateImageJobInput struct {
	UserID       *uuid.UUID
	File         *Upload
	ToolType     string
	Quality      string
	Width        string
	Height       string
	TargetFormat string
}

type ImageJobOutput struct {
	ID           uuid.UUID           `json:"id"`
	ToolType     model.ImageToolType `json:"tool_type"`
	Quality      *int                `json:"quality"`
	Width        *int                `json:"width"`
	Height       *int                `json:"height"`
	TargetFormat *model.ImageFormat  `json:"target_format"`
	Status       model.JobStatus     `json:"status"`
	OutputURL    *string             `json:"output_url"`
	ErrorMessage *string             `json:"error_message"`
	CreatedAt    time.Time           `json:"created_at"`
	UploadedFile model.UploadedFile  `json:"uploaded_file"`
}

// ImageJobStatusGetter returns the current state of an image job.
type ImageJobStatusGetter interface {
	GetImageJobStatus(ctx context.Context, id uuid.UUID) (ImageJobOutput, error)
}

// ImageJobDownloader opens the output of a completed image job.
type ImageJobDownloader interface {
	DownloadImageJob(ctx context.Context, id uuid.UUID) (DownloadOutput, error)
}

// ImageJobProcessor runs a queued image job.
type ImageJobProcessor interface {
	ProcessImageJob(ctx context.Context, id uuid.UUID) error
}

// ---- pdf tool ----

// PdfJobCreator validates a PDF request, stores the uploads and queues the job.
type PdfJobCreator interface {
	CreatePdfJob(ctx context.Context, in CreatePdfJobInput) (PdfJobOutput, error)
}

type CreatePdfJobInput struct {
	UserID           *uuid.UUID
	ToolType         string
	Files            []*Upload
	CompressionLevel string
	PageRanges       string
	MergeOrder       string
}

type PdfJobOutput struct {
	ID               uuid.UUID               `json:"id"`
	User             *uuid.UUID              `json:"user"`
	ToolType         model.PdfToolType       `json:"tool_type"`
	CompressionLevel *model.CompressionLevel `json:"compression_level"`
	PageRanges       *string                 `json:"page_ranges"`
	MergeOrder       model.MergeOrder        `json:"merge_order"`
	Status           model.JobStatus         `json:"status"`
	OutputURL        *string                 `json:"output_url"`
	ErrorMessage     *string                 `json:"error_message"`
	CreatedAt        time.Time               `json:"created_at"`
	UploadedFiles    []model.UploadedFile    `json:"uploaded_files"`
}

type PdfJobStatusGetter interface {
	GetPdfJobStatus(ctx context.Context, id uuid.UUID) (PdfJobOutput, error)
}

type PdfJobDownloader interface {
	DownloadPdfJob(ctx context.Context, id uuid.UUID) (DownloadOutput, error)
}

type PdfJobProcessor interface {
	ProcessPdfJob(ctx context.Context, id uuid.UUID) error
}

// ---- accounts ----

type AuthOutput struct {
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
	Message string      `json:"message"`
}

// Registerer creates an account and logs it in.
type Registerer interface {
	Register(ctx context.Context, in RegisterInput) (AuthOutput, error)
}
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Password2 string
	FirstName string
	LastName  string
}

// Authenticator checks credentials and issues a token.
type Authenticator interface {
	Login(ctx context.Context, in LoginInput) (AuthOutput, error)
}
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// SessionCloser revokes the token of the current request.
type SessionCloser interface {
	Logout(ctx context.Context, in LogoutInput) error
}
type LogoutInput struct {
	TokenID   string
	ExpiresAt time.Time
}

type UserGetter interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// UserUpdater changes the mutable profile fields; nil fields are left untouched.
type UserUpdater interface {
	UpdateUser(ctx context.Context, in UpdateUserInput) (*model.User, error)
}
type UpdateUserInput struct {
	ID        uuid.UUID
	Email     *string
	FirstName *string
	LastName  *string
}

type PasswordResetRequester interface {
	RequestPasswordReset(ctx context.Context, email string) error
}

type PasswordResetConfirmer interface {
	ConfirmPasswordReset(ctx context.Context, in ConfirmPasswordResetInput) error
}
type ConfirmPasswordResetInput struct {
	UID         string
	Token       string
	NewPassword string
}

// PasswordResetMailer delivers the reset link queued by RequestPasswordReset.
type PasswordResetMailer interface {
	SendPasswordResetEmail(ctx context.Context, in SendPasswordResetEmailInput) error
}
type SendPasswordResetEmailInput struct {
	UserID uuid.UUID
	UID    string
	Token  string
}

// ---- maintenance ----

// MediaCleaner removes stored media past the retention window.
type MediaCleaner interface {
	CleanupOldMedia(ctx context.Context) (int, error)
}
