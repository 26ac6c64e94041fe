package mock

import (
	"context"

	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

// ImageJobCreator implements port.ImageJobCreator for tests.
type ImageJobCreator struct {
	Out    port.ImageJobOutput
	Err    error
	In     port.CreateImageJobInput
	Called bool
}

func (m *ImageJobCreator) CreateImageJob(ctx context.Context, in port.CreateImageJobInput) (port.ImageJobOutput, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// ImageJobStatusGetter implements port.ImageJobStatusGetter for tests.
type ImageJobStatusGetter struct {
	Out    port.ImageJobOutput
	Err    error
	ID     uuid.UUID
	Called bool
}

func (m *ImageJobStatusGetter) GetImageJobStatus(ctx context.Context, id uuid.UUID) (port.ImageJobOutput, error) {
	m.Called = true
	m.ID = id
	return m.Out, m.Err
}

// ImageJobDownloader implements port.ImageJobDownloader for tests.
type ImageJobDownloader struct {
	Out    port.DownloadOutput
	Err    error
	ID     uuid.UUID
	Called bool
}

func (m *ImageJobDownloader) DownloadImageJob(ctx context.Context, id uuid.UUID) (port.DownloadOutput, error) {
	m.Called = true
	m.ID = id
	return m.Out, m.Err
}

// ImageJobProcessor implements port.ImageJobProcessor for tests.
type ImageJobProcessor struct {
	Err    error
	ID     uuid.UUID
	Called bool
}

func (m *ImageJobProcessor) ProcessImageJob(ctx context.Context, id uuid.UUID) error {
	m.Called = true
	m.ID = id
	return m.Err
}

// PdfJobCreator implements port.PdfJobCreator for tests.
type PdfJobCreator struct {
	Out    port.PdfJobOutput
	Err    error
	In     port.CreatePdfJobInput
	Called bool
}

func (m *PdfJobCreator) CreatePdfJob(ctx context.Context, in port.CreatePdfJobInput) (port.PdfJobOutput, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// PdfJobStatusGetter implements port.PdfJobStatusGetter for tests.
type PdfJobStatusGetter struct {
	Out    port.PdfJobOutput
	Err    error
	ID     uuid.UUID
	Called bool
}

func (m *PdfJobStatusGetter) GetPdfJobStatus(ctx context.Context, id uuid.UUID) (port.PdfJobOutput, error) {
	m.Called = true
	m.ID = id
	return m.Out, m.Err
}

// PdfJobDownloader implements port.PdfJobDownloader for tests.
type PdfJobDownloader struct {
	Out    port.DownloadOutput
	Err    error
	ID     uuid.UUID
	Called bool
}

func (m *PdfJobDownloader) DownloadPdfJob(ctx context.Context, id uuid.UUID) (port.DownloadOutput, error) {
	m.Called = true
	m.ID = id
	return m.Out, m.Err
}

// PdfJobProcessor implements port.PdfJobProcessor for tests.
type PdfJobProcessor struct {
	Err    error
	ID     uuid.UUID
	Called bool
}

func (m *PdfJobProcessor) ProcessPdfJob(ctx context.Context, id uuid.UUID) error {
	m.Called = true
	m.ID = id
	return m.Err
}

// Registerer implements port.Registerer for tests.
type Registerer struct {
	Out    port.AuthOutput
	Err    error
	In     port.RegisterInput
	Called bool
}

func (m *Registerer) Register(ctx context.Context, in port.RegisterInput) (port.AuthOutput, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// Authenticator implements port.Authenticator for tests.
type Authenticator struct {
	Out    port.AuthOutput
	Err    error
	In     port.LoginInput
	Called bool
}

func (m *Authenticator) Login(ctx context.Context, in port.LoginInput) (port.AuthOutput, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// SessionCloser implements port.SessionCloser for tests.
type SessionCloser struct {
	Err    error
	In     port.LogoutInput
	Called bool
}

func (m *SessionCloser) Logout(ctx context.Context, in port.LogoutInput) error {
	m.Called = true
	m.In = in
	return m.Err
}

// UserGetter implements port.UserGetter for tests.
type UserGetter struct {
	Out    *model.User
	Err    error
	ID     uuid.UUID
	Called bool
}

func (m *UserGetter) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	m.Called = true
	m.ID = id
	return m.Out, m.Err
}

// UserUpdater implements port.UserUpdater for tests.
type UserUpdater struct {
	Out    *model.User
	Err    error
	In     port.UpdateUserInput
	Called bool
}

func (m *UserUpdater) UpdateUser(ctx context.Context, in port.UpdateUserInput) (*model.User, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// PasswordResetRequester implements port.PasswordResetRequester for tests.
type PasswordResetRequester struct {
	Err    error
	Email  string
	Called bool
}

func (m *PasswordResetRequester) RequestPasswordReset(ctx context.Context, email string) error {
	m.Called = true
	m.Email = email
	return m.Err
}

// PasswordResetConfirmer implements port.PasswordResetConfirmer for tests.
type PasswordResetConfirmer struct {
	Err    error
	In     port.ConfirmPasswordResetInput
	Called bool
}

func (m *PasswordResetConfirmer) ConfirmPasswordReset(ctx context.Context, in port.ConfirmPasswordResetInput) error {
	m.Called = true
	m.In = in
	return m.Err
}

// PasswordResetMailer implements port.PasswordResetMailer for tests.
type PasswordResetMailer struct {
	Err    error
	In     port.SendPasswordResetEmailInput
	Called bool
}

func (m *PasswordResetMailer) SendPasswordResetEmail(ctx context.Context, in port.SendPasswordResetEmailInput) error {
	m.Called = true
	m.In = in
	return m.Err
}

// MediaCleaner implements port.MediaCleaner for tests.
type MediaCleaner struct {
	Deleted int
	Err     error
	Called  bool
}

func (m *MediaCleaner) CleanupOldMedia(ctx context.Context) (int, error) {
	m.Called = true
	return m.Deleted, m.Err
}
