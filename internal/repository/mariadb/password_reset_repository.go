package mariadb

import (
	"context"
	"database/sql"

	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

type PasswordResetRepository struct {
	db *sql.DB
}

var _ port.PasswordResetRepository = (*PasswordResetRepository)(nil)

func NewPasswordResetRepository(db *sql.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

// Save stores t, replacing any pending token of the same user.
func (r *PasswordResetRepository) Save(ctx context.Context, t *model.PasswordResetToken) error {
	const query = `
      INSERT INTO password_reset_tokens (user_id, token_hash, expires_at)
      VALUES (?, ?, ?)
      ON DUPLICATE KEY UPDATE token_hash = VALUES(token_hash), expires_at = VALUES(expires_at)
    `
	_, err := r.db.ExecContext(ctx, query, t.UserID, t.TokenHash, t.ExpiresAt)
	return err
}

func (r *PasswordResetRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.PasswordResetToken, error) {
	const query = `SELECT user_id, token_hash, expires_at FROM password_reset_tokens WHERE user_id = ?`
	var t model.PasswordResetToken
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&t.UserID, &t.TokenHash, &t.ExpiresAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PasswordResetRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE user_id = ?`, userID)
	return err
}
