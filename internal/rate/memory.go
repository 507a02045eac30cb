package rate

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter is the single-instance counterpart of RedisLimiter.
type MemoryLimiter struct {
	c      *gocache.Cache
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, window),
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	winStart := now.Truncate(l.window)
	k := fmt.Sprintf("%s:%d", key, winStart.Unix())
	ttl := winStart.Add(l.window).Sub(now)

	// Add seeds the counter; when it already exists we increment it.
	if err := l.c.Add(k, int64(1), ttl); err == nil {
		return evaluate(1, l.max, ttl, l.window), nil
	}
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		// entry expired between Add and Increment
		l.c.Set(k, int64(1), ttl)
		hits = 1
	}
	return evaluate(hits, l.max, ttl, l.window), nil
}
