package session

import (
	"context"
	"time"

	"github.com/dropDatabas3/lmsauth/internal/cache"
)

// RotationLedger remembers refresh token IDs that were already exchanged.
type RotationLedger interface {
	// Consume marks jti as used for ttl. It reports false if jti was already
	// consumed.
	Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	// InGrace reports whether jti was consumed recently enough that a second
	// presentation is treated as a concurrent request rather than a replay.
	InGrace(ctx context.Context, jti string) (bool, error)
}

type cacheLedger struct {
	c     cache.Client
	grace time.Duration
}

// LedgerOption customizes the cache-backed ledger.
type LedgerOption func(*cacheLedger)

// WithGrace sets the window after a rotation during which the same token is
// refused without revoking the session. Zero disables it.
func WithGrace(d time.Duration) LedgerOption {
	return func(l *cacheLedger) { l.grace = d }
}

// NewCacheLedger keeps the ledger in c (Redis in production, so every
// instance sees the same set).
func NewCacheLedger(c cache.Client, opts ...LedgerOption) RotationLedger {
	l := &cacheLedger{c: c}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *cacheLedger) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Second
	}
	first, err := l.c.SetNX(ctx, "refresh:used:"+jti, "1", ttl)
	if err != nil || !first || l.grace <= 0 {
		return first, err
	}
	// best effort: without the marker a racing duplicate counts as a replay
	_, _ = l.c.SetNX(ctx, "refresh:grace:"+jti, "1", l.grace)
	return true, nil
}

func (l *cacheLedger) InGrace(ctx context.Context, jti string) (bool, error) {
	if l.grace <= 0 {
		return false, nil
	}
	return l.c.Exists(ctx, "refresh:grace:"+jti)
}

// nopLedger disables single-use refresh tokens.
type nopLedger struct{}

func (nopLedger) Consume(context.Context, string, time.Duration) (bool, error) { return true, nil }

func (nopLedger) InGrace(context.Context, string) (bool, error) { return false, nil }
