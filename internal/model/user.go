package model

import (
	"time"

	"github.com/opustools/opustools-go/internal/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// PasswordResetToken stores the SHA-256 of a reset token, never the token itself.
type PasswordResetToken struct {
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
}
