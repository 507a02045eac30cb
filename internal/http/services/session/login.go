package session

import (
	"context"
	"strings"

	"github.com/dropDatabas3/lmsauth/internal/audit"
	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/auth"
	"github.com/dropDatabas3/lmsauth/internal/metrics"
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
)

// Login authenticates with email and password. Unknown email and wrong
// password are indistinguishable to the caller.
func (m *Manager) Login(ctx context.Context, in dto.LoginRequest) (res *dto.SessionResult, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("session.login"),
		logger.Op("Login"),
	)
	defer func() { metrics.Outcome("login", outcome(err)) }()

	emailAddr := strings.TrimSpace(in.Email)
	if emailAddr == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	u, err := m.store.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if repository.IsNotFound(err) {
			if m.dummyHash != "" {
				_ = m.hasher.Verify(in.Password, m.dummyHash)
			}
			log.Debug("user not found")
			audit.Log(ctx, audit.LoginFailed, logger.Email(emailAddr), logger.String("reason", "unknown_email"))
			return nil, ErrInvalidCredentials
		}
		log.Error("user lookup failed", logger.Err(err))
		return nil, err
	}

	if !m.hasher.Verify(in.Password, u.PasswordHash) {
		log.Debug("invalid password", logger.UserID(u.ID))
		audit.Log(ctx, audit.LoginFailed, logger.UserID(u.ID), logger.String("reason", "bad_password"))
		return nil, ErrInvalidCredentials
	}

	res, err = m.issue(u)
	if err != nil {
		log.Error("token issue failed", logger.Err(err))
		return nil, err
	}
	audit.Log(ctx, audit.LoginSucceeded, logger.UserID(u.ID), logger.Role(string(u.Role)))
	return res, nil
}
