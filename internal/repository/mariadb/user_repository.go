package mariadb

import (
	"context"
	"database/sql"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

type UserRepository struct {
	db *sql.DB
}

// compile-time check: *UserRepository must satisfy port.UserRepository
var _ port.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	logger.Debugf(ctx, "creating database record for user %q...", u.Username)

	const query = `
      INSERT INTO users
        (id, username, email, password_hash, first_name, last_name)
      VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
	)
	return mapErr(err)
}

// Update writes the mutable profile columns and the password hash. The
// username never changes after registration.
func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	logger.Debugf(ctx, "updating database record for user #%s...", u.ID)

	const query = `
      UPDATE users
      SET
        email         = ?,
        password_hash = ?,
        first_name    = ?,
        last_name     = ?
      WHERE id = ?
    `
	_, err := r.db.ExecContext(ctx, query,
		u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.ID, // WHERE clause
	)
	return mapErr(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
