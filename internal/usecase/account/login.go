package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
)

type authenticatorSrv struct {
	users  port.UserRepository
	tokens port.TokenManager
}

func NewAuthenticator(users port.UserRepository, tokens port.TokenManager) port.Authenticator {
	return &authenticatorSrv{users, tokens}
}

// Login accepts either a username or an email; the username wins when both are set.
func (s *authenticatorSrv) Login(ctx context.Context, in port.LoginInput) (port.AuthOutput, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" && email == "" {
		return port.AuthOutput{}, ErrMissingIdentifier
	}

	var (
		user *model.User
		err  error
	)
	if username != "" {
		user, err = s.users.GetByUsername(ctx, username)
	} else {
		user, err = s.users.GetByEmail(ctx, email)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			checkPassword(string(dummyHash), in.Password)
			return port.AuthOutput{}, ErrInvalidCredentials
		}
		return port.AuthOutput{}, err
	}
	if !checkPassword(user.PasswordHash, in.Password) {
		return port.AuthOutput{}, ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return port.AuthOutput{}, err
	}
	logger.Debugf(ctx, "user #%s logged in", user.ID)
	return port.AuthOutput{User: user, Token: tok, Message: "Logged in successfully."}, nil
}
