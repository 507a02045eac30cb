package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
)

const pendingColumns = `id, email, name, password_hash, role, phone,
	otp_code_hash, otp_expires_at, otp_request_count, otp_window_started_at, otp_last_sent_at, created_at`

func (s *Store) CreatePending(ctx context.Context, p *repository.PendingUser) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockEmail(ctx, tx, p.Email); err != nil {
			return err
		}

		var taken bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, p.Email).Scan(&taken); err != nil {
			return err
		}
		if taken {
			return repository.ErrEmailTaken
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO pending_users (`+pendingColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())`,
			p.ID, p.Email, p.Name, p.PasswordHash, string(p.Role), p.Phone,
			p.OTP.CodeHash, p.OTP.ExpiresAt, p.OTP.RequestCount, p.OTP.WindowStarted, p.OTP.LastSentAt,
		)
		if isUniqueViolation(err) {
			return repository.ErrPendingExists
		}
		return err
	})
}

func (s *Store) GetPendingByEmail(ctx context.Context, email string) (*repository.PendingUser, error) {
	var (
		p    repository.PendingUser
		role string
	)
	err := s.pool.QueryRow(ctx, `SELECT `+pendingColumns+` FROM pending_users WHERE email = $1`, email).Scan(
		&p.ID, &p.Email, &p.Name, &p.PasswordHash, &role, &p.Phone,
		&p.OTP.CodeHash, &p.OTP.ExpiresAt, &p.OTP.RequestCount, &p.OTP.WindowStarted, &p.OTP.LastSentAt,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	p.Role = repository.Role(role)
	return &p, nil
}

func (s *Store) UpdatePendingOTP(ctx context.Context, id string, expectedLastSent *time.Time, st repository.OTPState) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE pending_users
		SET otp_code_hash = $3, otp_expires_at = $4, otp_request_count = $5,
		    otp_window_started_at = $6, otp_last_sent_at = $7
		WHERE id = $1 AND otp_last_sent_at IS NOT DISTINCT FROM $2`,
		id, expectedLastSent, st.CodeHash, st.ExpiresAt, st.RequestCount, st.WindowStarted, st.LastSentAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pending_users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

func (s *Store) PromotePending(ctx context.Context, pendingID string, u *repository.User) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockEmail(ctx, tx, u.Email); err != nil {
			return err
		}

		// The row lock taken by DELETE makes a concurrent promotion wait and
		// then see zero rows.
		var deleted string
		err := tx.QueryRow(ctx,
			`DELETE FROM pending_users WHERE id = $1 RETURNING id`, pendingID).Scan(&deleted)
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO users (id, email, name, password_hash, role, email_verified, token_version, phone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`,
			u.ID, u.Email, u.Name, u.PasswordHash, string(u.Role), u.EmailVerified, u.TokenVersion, u.Phone,
		)
		if isUniqueViolation(err) {
			return repository.ErrEmailTaken
		}
		return err
	})
}
