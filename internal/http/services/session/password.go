package session

import (
	"context"

	"github.com/dropDatabas3/lmsauth/internal/audit"
	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/auth"
	"github.com/dropDatabas3/lmsauth/internal/metrics"
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
)

// ChangePassword replaces the password of userID and revokes every token
// minted before the change. The caller's session continues on the returned
// pair.
func (m *Manager) ChangePassword(ctx context.Context, userID string, in dto.ChangePasswordRequest) (res *dto.SessionResult, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("session.password"),
		logger.Op("ChangePassword"),
		logger.UserID(userID),
	)
	defer func() { metrics.Outcome("change_password", outcome(err)) }()

	if in.CurrentPassword == "" || in.NewPassword == "" || in.ConfirmPassword == "" {
		return nil, ErrMissingFields
	}
	if in.NewPassword != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if err := m.policy.Check(in.NewPassword); err != nil {
		return nil, err
	}

	u, err := m.store.GetUserByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		log.Error("user lookup failed", logger.Err(err))
		return nil, err
	}
	if !m.hasher.Verify(in.CurrentPassword, u.PasswordHash) {
		log.Debug("current password rejected")
		return nil, ErrWrongPassword
	}

	hash, err := m.hasher.Hash(in.NewPassword)
	if err != nil {
		log.Error("password hash failed", logger.Err(err))
		return nil, err
	}
	v, err := m.store.UpdatePassword(ctx, u.ID, hash)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		log.Error("password update failed", logger.Err(err))
		return nil, err
	}
	u.PasswordHash = hash
	u.TokenVersion = v

	m.notifier.SendPasswordChanged(ctx, u.Email, u.Name)

	res, err = m.issue(u)
	if err != nil {
		log.Error("token issue failed", logger.Err(err))
		return nil, err
	}
	audit.Log(ctx, audit.PasswordChanged, logger.UserID(u.ID), logger.TokenVersion(v))
	return res, nil
}
