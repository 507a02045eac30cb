package session

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/lmsauth/internal/audit"
	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
	dto "github.com/dropDatabas3/lmsauth/internal/http/dto/auth"
	"github.com/dropDatabas3/lmsauth/internal/metrics"
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
)

// VerifyOTP checks the code and, on success, atomically turns the pending
// registration into a verified user and signs them in. When two requests
// race with the same valid code exactly one wins; the other gets
// ErrPendingNotFound.
func (m *Manager) VerifyOTP(ctx context.Context, in dto.VerifyOTPRequest) (res *dto.SessionResult, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("session.verify"),
		logger.Op("VerifyOTP"),
	)
	defer func() { metrics.Outcome("verify_otp", outcome(err)) }()

	emailAddr := strings.TrimSpace(in.Email)
	code := strings.TrimSpace(in.Code)
	if emailAddr == "" || code == "" {
		return nil, ErrMissingFields
	}

	p, err := m.otp.Verify(ctx, emailAddr, code)
	if err != nil {
		log.Debug("code rejected", logger.Err(err))
		return nil, err
	}

	now := m.now()
	u := &repository.User{
		ID:            m.newID(),
		Email:         p.Email,
		Name:          p.Name,
		PasswordHash:  p.PasswordHash,
		Role:          p.Role,
		EmailVerified: true,
		Phone:         p.Phone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := m.store.PromotePending(ctx, p.ID, u); err != nil {
		switch {
		case repository.IsNotFound(err):
			log.Debug("pending already consumed")
			return nil, ErrPendingNotFound
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, ErrEmailExists
		}
		log.Error("promote pending failed", logger.Err(err))
		return nil, err
	}

	res, err = m.issue(u)
	if err != nil {
		log.Error("token issue failed", logger.Err(err))
		return nil, err
	}
	audit.Log(ctx, audit.EmailVerified, logger.UserID(u.ID), logger.Email(u.Email), logger.Role(string(u.Role)))
	return res, nil
}
