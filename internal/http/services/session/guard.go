package session

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/lmsauth/internal/domain/repository"
	"github.com/dropDatabas3/lmsauth/internal/observability/logger"
)

// userLookupTimeout bounds the shared store read, which is detached from
// every caller's cancellation.
const userLookupTimeout = 5 * time.Second

// Authenticate verifies an access token and checks it against the live
// user record, so a bumped token version takes effect immediately.
// Concurrent lookups for the same user share one store read.
func (m *Manager) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	raw := strings.TrimSpace(accessToken)
	if raw == "" {
		return nil, ErrInvalidToken
	}
	cl, err := m.codec.VerifyAccess(raw)
	if err != nil {
		logger.From(ctx).Debug("access token rejected", logger.Component("session.guard"), logger.Err(err))
		return nil, ErrInvalidToken
	}

	v, err := m.lookupUser(ctx, cl.Subject)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	u := v.(*repository.User)
	if u.TokenVersion != cl.TokenVersion {
		return nil, ErrInvalidToken
	}
	return &Identity{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}, nil
}

// lookupUser coalesces concurrent reads of one user. Each caller waits on
// its own ctx; the shared read runs detached so one cancelled request
// cannot fail the others.
func (m *Manager) lookupUser(ctx context.Context, id string) (any, error) {
	ch := m.users.DoChan(id, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), userLookupTimeout)
		defer cancel()
		return m.store.GetUserByID(lctx, id)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}
