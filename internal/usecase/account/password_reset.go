package account

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
	"github.com/opustools/opustools-go/internal/validation"
)

const resetTokenBytes = 32

// EncodeUID turns a user id into the opaque uid used in reset links.
func EncodeUID(id uuid.UUID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id.String()))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return uuid.Nil, fmt.Errorf("decode uid: %w", err)
	}
	return uuid.Parse(string(raw))
}

func hashToken(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type resetRequesterSrv struct {
	users  port.UserRepository
	resets port.PasswordResetRepository
	tasks  port.TaskDispatcher
	ttl    time.Duration
}

func NewPasswordResetRequester(users port.UserRepository, resets port.PasswordResetRepository, tasks port.TaskDispatcher, ttl time.Duration) port.PasswordResetRequester {
	return &resetRequesterSrv{users, resets, tasks, ttl}
}

type resetRequestForm struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestPasswordReset queues a reset email when email belongs to a user.
// Unknown addresses succeed silently.
func (s *resetRequesterSrv) RequestPasswordReset(ctx context.Context, email string) error {
	form := resetRequestForm{Email: strings.TrimSpace(email)}
	if err := validation.ValidateStruct(form); err != nil {
		return validation.FromValidator(err)
	}

	user, err := s.users.GetByEmail(ctx, form.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Debugf(ctx, "password reset requested for unknown address")
			return nil
		}
		return err
	}

	tok, err := newResetToken()
	if err != nil {
		return err
	}
	if err := s.resets.Save(ctx, &model.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashToken(tok),
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}); err != nil {
		return fmt.Errorf("failed to store reset token for user #%s: %w", user.ID, err)
	}

	if err := s.tasks.EnqueuePasswordResetEmail(ctx, user.ID, EncodeUID(user.ID), tok); err != nil {
		return fmt.Errorf("failed to queue reset email for user #%s: %w", user.ID, err)
	}
	logger.Infof(ctx, "password reset queued for user #%s", user.ID)
	return nil
}

type resetConfirmerSrv struct {
	users  port.UserRepository
	resets port.PasswordResetRepository
	now    func() time.Time
}

func NewPasswordResetConfirmer(users port.UserRepository, resets port.PasswordResetRepository) port.PasswordResetConfirmer {
	return &resetConfirmerSrv{users, resets, time.Now}
}

type resetConfirmForm struct {
	UID         string `json:"uid" validate:"required"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

func (s *resetConfirmerSrv) ConfirmPasswordReset(ctx context.Context, in port.ConfirmPasswordResetInput) error {
	form := resetConfirmForm{UID: strings.TrimSpace(in.UID), Token: strings.TrimSpace(in.Token), NewPassword: in.NewPassword}
	if err := validation.ValidateStruct(form); err != nil {
		return validation.FromValidator(err)
	}

	userID, err := DecodeUID(form.UID)
	if err != nil {
		return ErrInvalidResetToken
	}
	stored, err := s.resets.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidResetToken
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored.TokenHash), []byte(hashToken(form.Token))) != 1 {
		return ErrInvalidResetToken
	}
	if !s.now().Before(stored.ExpiresAt) {
		if err := s.resets.Delete(ctx, userID); err != nil {
			logger.Warnf(ctx, "failed to drop expired reset token of user #%s: %v", userID, err)
		}
		return ErrInvalidResetToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidResetToken
		}
		return err
	}
	hash, err := hashPassword(form.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password of user #%s: %w", user.ID, err)
	}

	if err := s.resets.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to consume reset token of user #%s: %w", userID, err)
	}
	logger.Infof(ctx, "password reset for user #%s", userID)
	return nil
}
