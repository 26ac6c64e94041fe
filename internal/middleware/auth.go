package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/opustools/opustools-go/internal/api_context"
	"github.com/opustools/opustools-go/internal/handler/api"
	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/token"
)

var errMissingBearer = errors.New("missing bearer token")

// WithAuth requires a valid, unrevoked Bearer token and stores its claims on the request context.
func WithAuth(tokens port.TokenManager, denyList port.TokenDenyList) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r, tokens, denyList)
			if err != nil {
				api.WriteError(w, http.StatusUnauthorized, authMessage(err), nil)
				return
			}
			ctx := api_context.WithAuth(r.Context(), claims.UserID, claims.TokenID, claims.ExpiresAt)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithOptionalAuth identifies the caller when a valid token is sent and lets
// anonymous or badly authenticated requests through untouched.
func WithOptionalAuth(tokens port.TokenManager, denyList port.TokenDenyList) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r, tokens, denyList)
			if err != nil {
				if !errors.Is(err, errMissingBearer) {
					logger.Debugf(r.Context(), "ignoring bearer token: %v", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			ctx := api_context.WithAuth(r.Context(), claims.UserID, claims.TokenID, claims.ExpiresAt)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, tokens port.TokenManager, denyList port.TokenDenyList) (port.TokenClaims, error) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return port.TokenClaims{}, errMissingBearer
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	if raw == "" {
		return port.TokenClaims{}, errMissingBearer
	}

	claims, err := tokens.Parse(raw)
	if err != nil {
		return port.TokenClaims{}, err
	}

	denied, err := denyList.IsTokenDenied(r.Context(), claims.TokenID)
	if err != nil {
		logger.Errorf(r.Context(), "❌  deny-list lookup failed: %v", err)
		return port.TokenClaims{}, token.ErrInvalidToken
	}
	if denied {
		return port.TokenClaims{}, errRevoked
	}
	return claims, nil
}

var errRevoked = errors.New("token revoked")

func authMessage(err error) string {
	switch {
	case errors.Is(err, errMissingBearer):
		return "missing bearer token"
	case errors.Is(err, token.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, token.ErrBadIssuer):
		return "bad issuer"
	case errors.Is(err, token.ErrBadAudience):
		return "bad audience"
	case errors.Is(err, token.ErrMissingSub):
		return "missing sub"
	case errors.Is(err, errRevoked):
		return "token revoked"
	default:
		return "unauthorized"
	}
}
