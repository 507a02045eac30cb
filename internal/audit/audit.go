// Package audit records security-relevant session events on a dedicated
// "audit" logger so they can be routed apart from request logs.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
)

// Event names a security-relevant outcome.
type Event string

const (
	EmailVerified   Event = "email_verified"
	LoginSucceeded  Event = "login_succeeded"
	LoginFailed     Event = "login_failed"
	RefreshReplayed Event = "refresh_replayed"
	SessionsRevoked Event = "sessions_revoked"
	PasswordChanged Event = "password_changed"
)

// Log writes ev with the request-scoped fields already on ctx's logger.
func Log(ctx context.Context, ev Event, fields ...zap.Field) {
	l := logger.From(ctx).Named("audit")
	l.Info(string(ev), append(fields, zap.String("event", string(ev)), zap.Bool("audit", true))...)
}
