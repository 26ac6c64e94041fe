package port

import (
	"context"
	"time"

	"github.com/opustools/opustools-go/internal/uuid"
)

// TokenClaims is the verified content of an access token.
type TokenClaims struct {
	UserID    uuid.UUID
	TokenID   string
	ExpiresAt time.Time
}

// TokenManager issues and verifies access tokens.
type TokenManager interface {
	Issue(userID uuid.UUID) (string, error)
	Parse(raw string) (TokenClaims, error)
}

// Mailer sends plain-text e-mails.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
