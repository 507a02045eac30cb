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

// Refresh exchanges a refresh token for a new pair. Each refresh token is
// single use: presenting one that was already exchanged revokes the whole
// session family by bumping the token version.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (res *dto.SessionResult, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("session.refresh"),
		logger.Op("Refresh"),
	)
	defer func() { metrics.Outcome("refresh", outcome(err)) }()

	raw := strings.TrimSpace(refreshToken)
	if raw == "" {
		return nil, ErrInvalidToken
	}

	cl, err := m.codec.VerifyRefresh(raw)
	if err != nil {
		log.Debug("refresh token rejected", logger.Err(err))
		return nil, ErrInvalidToken
	}

	u, err := m.store.GetUserByID(ctx, cl.Subject)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Debug("refresh for unknown user", logger.UserID(cl.Subject))
			return nil, ErrInvalidToken
		}
		log.Error("user lookup failed", logger.Err(err))
		return nil, err
	}
	if cl.TokenVersion != u.TokenVersion {
		log.Debug("refresh token revoked",
			logger.UserID(u.ID),
			logger.TokenVersion(cl.TokenVersion),
		)
		return nil, ErrInvalidToken
	}

	ttl := cl.ExpiresAt.Time.Sub(m.now())
	first, err := m.ledger.Consume(ctx, cl.ID, ttl)
	if err != nil {
		log.Error("rotation ledger failed", logger.Err(err))
		return nil, err
	}
	if !first {
		if racing, graceErr := m.ledger.InGrace(ctx, cl.ID); graceErr != nil {
			log.Warn("grace lookup failed", logger.Err(graceErr))
		} else if racing {
			// the other request already rotated; refuse this one and keep the session
			log.Debug("refresh raced within grace window", logger.UserID(u.ID))
			return nil, ErrInvalidToken
		}
		metrics.RefreshReplays.Inc()
		v, bumpErr := m.store.BumpTokenVersion(ctx, u.ID)
		if bumpErr != nil {
			log.Error("revoke after replay failed", logger.UserID(u.ID), logger.Err(bumpErr))
		} else {
			audit.Log(ctx, audit.RefreshReplayed, logger.UserID(u.ID), logger.TokenVersion(v))
		}
		return nil, ErrInvalidToken
	}

	res, err = m.issue(u)
	if err != nil {
		log.Error("token issue failed", logger.Err(err))
		return nil, err
	}
	log.Info("session refreshed", logger.UserID(u.ID))
	return res, nil
}
