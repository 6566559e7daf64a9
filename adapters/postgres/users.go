package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/ports"
)

// UserRepository persists users in PostgreSQL.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a repository on the given handle.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *core.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role,
	).Scan(&user.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*core.User, error) {
	query := `
		SELECT id, email, password_hash, name, role, created_at
		FROM users WHERE id = $1`

	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	query := `
		SELECT id, email, password_hash, name, role, created_at
		FROM users WHERE email = $1`

	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanUser(row *sql.Row) (*core.User, error) {
	user := &core.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
