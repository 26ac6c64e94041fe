package api_context

import (
	"context"
	"time"

	"github.com/opustools/opustools-go/internal/uuid"
)

type ctxKey string

const (
	IDKey              ctxKey = "id"
	AuthUserIDKey      ctxKey = "authUserID"
	AuthTokenIDKey     ctxKey = "authTokenID"
	AuthTokenExpiryKey ctxKey = "authTokenExpiry"
)

func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(IDKey).(uuid.UUID)
	return id, ok
}

func AuthUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(AuthUserIDKey).(uuid.UUID)
	return id, ok
}

// AuthTokenFromContext returns the jti and expiry of the bearer token that authenticated the request.
func AuthTokenFromContext(ctx context.Context) (string, time.Time, bool) {
	jti, ok := ctx.Value(AuthTokenIDKey).(string)
	if !ok {
		return "", time.Time{}, false
	}
	exp, _ := ctx.Value(AuthTokenExpiryKey).(time.Time)
	return jti, exp, true
}

// WithAuth stores the authenticated user and token on ctx.
func WithAuth(ctx context.Context, userID uuid.UUID, jti string, exp time.Time) context.Context {
	ctx = context.WithValue(ctx, AuthUserIDKey, userID)
	ctx = context.WithValue(ctx, AuthTokenIDKey, jti)
	return context.WithValue(ctx, AuthTokenExpiryKey, exp)
}

// WithJobID stores the job addressed by the request path on ctx.
func WithJobID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, IDKey, id)
}
