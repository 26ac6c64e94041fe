package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/validation"
)

type registerForm struct {
	Username  string `json:"username" validate:"required,max=150,username"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Password2 string `json:"password2" validate:"required"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type registererSrv struct {
	users   port.UserRepository
	tokens  port.TokenManager
	uuidGen port.UUIDGen
}

func NewRegisterer(users port.UserRepository, tokens port.TokenManager, uuidGen port.UUIDGen) port.Registerer {
	return &registererSrv{users, tokens, uuidGen}
}

func (s *registererSrv) Register(ctx context.Context, in port.RegisterInput) (port.AuthOutput, error) {
	form := registerForm{
		Username:  strings.TrimSpace(in.Username),
		Email:     strings.TrimSpace(in.Email),
		Password:  in.Password,
		Password2: in.Password2,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	if err := validation.ValidateStruct(form); err != nil {
		return port.AuthOutput{}, validation.FromValidator(err)
	}
	if form.Password != form.Password2 {
		return port.AuthOutput{}, ErrPasswordMismatch
	}

	if err := s.ensureFree(ctx, form.Username, form.Email); err != nil {
		return port.AuthOutput{}, err
	}

	hash, err := hashPassword(form.Password)
	if err != nil {
		return port.AuthOutput{}, err
	}
	now := time.Now().UTC()
	user := &model.User{
		ID:           s.uuidGen(),
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, port.ErrDuplicate) {
			return port.AuthOutput{}, ErrUsernameTaken
		}
		return port.AuthOutput{}, fmt.Errorf("failed to create user: %w", err)
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return port.AuthOutput{}, err
	}
	logger.Infof(ctx, "user #%s registered", user.ID)
	return port.AuthOutput{User: user, Token: tok, Message: "User registered successfully."}, nil
}

func (s *registererSrv) ensureFree(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return nil
}
