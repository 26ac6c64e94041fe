package mock

import (
	"context"
	"database/sql"

	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/uuid"
)

// UserRepo is an in-memory port.UserRepository.
type UserRepo struct {
	Users []*model.User

	CreateErr error
	UpdateErr error
	GetErr    error

	CreateCalled bool
	UpdateCalled bool
	Updated      *model.User
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	r.CreateCalled = true
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.Users = append(r.Users, user)
	return nil
}

func (r *UserRepo) Update(ctx context.Context, user *model.User) error {
	r.UpdateCalled = true
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	cp := *user
	r.Updated = &cp
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *UserRepo) find(match func(*model.User) bool) (*model.User, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	for _, u := range r.Users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

// UploadedFileRepo implements port.UploadedFileRepository for tests.
type UploadedFileRepo struct {
	Created []*model.UploadedFile
	Err     error
}

func (r *UploadedFileRepo) Create(ctx context.Context, file *model.UploadedFile) error {
	if r.Err != nil {
		return r.Err
	}
	r.Created = append(r.Created, file)
	return nil
}

// ImageJobRepo implements port.ImageJobRepository for tests.
// Statuses records every status passed to UpdateStatus, in order.
type ImageJobRepo struct {
	Job *model.ImageJob

	CreateErr error
	GetErr    error
	UpdateErr error

	Created  *model.ImageJob
	Updated  *model.ImageJob
	Statuses []model.JobStatus
}

func (r *ImageJobRepo) Create(ctx context.Context, job *model.ImageJob) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.Created = job
	return nil
}

func (r *ImageJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.ImageJob, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	if r.Job == nil {
		return nil, sql.ErrNoRows
	}
	cp := *r.Job
	return &cp, nil
}

func (r *ImageJobRepo) UpdateStatus(ctx context.Context, job *model.ImageJob) error {
	r.Statuses = append(r.Statuses, job.Status)
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	cp := *job
	r.Updated = &cp
	return nil
}

// PdfJobRepo implements port.PdfJobRepository for tests.
type PdfJobRepo struct {
	Job *model.PdfJob

	CreateErr error
	GetErr    error
	UpdateErr error

	Created  *model.PdfJob
	Updated  *model.PdfJob
	Statuses []model.JobStatus
}

func (r *PdfJobRepo) Create(ctx context.Context, job *model.PdfJob) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.Created = job
	return nil
}

func (r *PdfJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.PdfJob, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	if r.Job == nil {
		return nil, sql.ErrNoRows
	}
	cp := *r.Job
	return &cp, nil
}

func (r *PdfJobRepo) UpdateStatus(ctx context.Context, job *model.PdfJob) error {
	r.Statuses = append(r.Statuses, job.Status)
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	cp := *job
	r.Updated = &cp
	return nil
}

// PasswordResetRepo implements port.PasswordResetRepository for tests.
type PasswordResetRepo struct {
	Token *model.PasswordResetToken

	SaveErr   error
	GetErr    error
	DeleteErr error

	Saved        *model.PasswordResetToken
	DeleteCalled bool
}

func (r *PasswordResetRepo) Save(ctx context.Context, token *model.PasswordResetToken) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.Saved = token
	return nil
}

func (r *PasswordResetRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.PasswordResetToken, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	if r.Token == nil || r.Token.UserID != userID {
		return nil, sql.ErrNoRows
	}
	cp := *r.Token
	return &cp, nil
}

func (r *PasswordResetRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	r.DeleteCalled = true
	return r.DeleteErr
}
