package session

import (
	"context"
	"strings"

	"github.com/dropDatabas3/lmsauth/internal/audit"
	"github.com/dropDatabas3/lmsauth/internal/metrics"
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
)

// Logout revokes every outstanding token of the user identified by the
// refresh token, or the access token when the refresh one is unusable.
// Expired tokens are accepted as long as the signature holds; a token whose
// version is already stale revokes nothing. Errors are logged, never
// returned.
func (m *Manager) Logout(ctx context.Context, refreshToken, accessToken string) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("session.logout"),
		logger.Op("Logout"),
	)

	for _, raw := range []string{refreshToken, accessToken} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		cl, err := m.codec.Decode(raw)
		if err != nil {
			log.Debug("logout token ignored", logger.Err(err))
			continue
		}

		u, err := m.store.GetUserByID(ctx, cl.Subject)
		if err != nil {
			log.Debug("logout user lookup failed", logger.UserID(cl.Subject), logger.Err(err))
			metrics.Outcome("logout", "error")
			return
		}
		if cl.TokenVersion != u.TokenVersion {
			metrics.Outcome("logout", "stale")
			return
		}
		v, err := m.store.BumpTokenVersion(ctx, u.ID)
		if err != nil {
			log.Warn("token version bump failed (soft)", logger.UserID(u.ID), logger.Err(err))
			metrics.Outcome("logout", "error")
			return
		}
		audit.Log(ctx, audit.SessionsRevoked, logger.UserID(u.ID), logger.TokenVersion(v), logger.String("reason", "logout"))
		metrics.Outcome("logout", "ok")
		return
	}
	metrics.Outcome("logout", "anonymous")
}
