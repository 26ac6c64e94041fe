package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
	"github.com/opustools/opustools-go/internal/validation"
)

type userGetterSrv struct {
	users port.UserRepository
}

func NewUserGetter(users port.UserRepository) port.UserGetter {
	return &userGetterSrv{users}
}

func (s *userGetterSrv) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return getUser(ctx, s.users, id)
}

func getUser(ctx context.Context, users port.UserRepository, id uuid.UUID) (*model.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

type updateForm struct {
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
}

type userUpdaterSrv struct {
	users port.UserRepository
}

func NewUserUpdater(users port.UserRepository) port.UserUpdater {
	return &userUpdaterSrv{users}
}

func (s *userUpdaterSrv) UpdateUser(ctx context.Context, in port.UpdateUserInput) (*model.User, error) {
	form := updateForm{Email: trimmed(in.Email), FirstName: trimmed(in.FirstName), LastName: trimmed(in.LastName)}
	if form.Email != nil && *form.Email == "" {
		return nil, validation.NewError("email", "This field may not be blank.")
	}
	if err := validation.ValidateStruct(form); err != nil {
		return nil, validation.FromValidator(err)
	}

	user, err := getUser(ctx, s.users, in.ID)
	if err != nil {
		return nil, err
	}

	if form.Email != nil && *form.Email != user.Email {
		other, err := s.users.GetByEmail(ctx, *form.Email)
		switch {
		case err == nil && other.ID != user.ID:
			return nil, ErrEmailTaken
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return nil, err
		}
		user.Email = *form.Email
	}
	if form.FirstName != nil {
		user.FirstName = *form.FirstName
	}
	if form.LastName != nil {
		user.LastName = *form.LastName
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, port.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user #%s: %w", user.ID, err)
	}
	return user, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
