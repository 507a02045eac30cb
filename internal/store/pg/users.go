package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
)

const userColumns = `id, email, name, password_hash, role, email_verified, token_version, phone, created_at, updated_at`

func scanUser(row pgx.Row) (*repository.User, error) {
	var (
		u    repository.User
		role string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role,
		&u.EmailVerified, &u.TokenVersion, &u.Phone, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Role = repository.Role(role)
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*repository.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*repository.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Store) BumpTokenVersion(ctx context.Context, id string) (int, error) {
	var v int
	err := s.pool.QueryRow(ctx, `
		UPDATE users SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING token_version`, id).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, repository.ErrNotFound
	}
	return v, err
}

func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) (int, error) {
	var v int
	err := s.pool.QueryRow(ctx, `
		UPDATE users
		SET password_hash = $2, token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING token_version`, id, passwordHash).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, repository.ErrNotFound
	}
	return v, err
}

func (s *Store) UpdateRole(ctx context.Context, email string, role repository.Role) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE email = $1`, email, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
