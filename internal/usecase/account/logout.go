package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/opustools/opustools-go/internal/port"
)

type sessionCloserSrv struct {
	denyList port.TokenDenyList
}

func NewSessionCloser(denyList port.TokenDenyList) port.SessionCloser {
	return &sessionCloserSrv{denyList}
}

// Logout revokes the token until it would have expired anyway.
func (s *sessionCloserSrv) Logout(ctx context.Context, in port.LogoutInput) error {
	if in.TokenID == "" {
		return errors.New("logout: token has no id")
	}
	if err := s.denyList.DenyToken(ctx, in.TokenID, in.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke token %q: %w", in.TokenID, err)
	}
	return nil
}
