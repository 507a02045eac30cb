package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryClient stores entries in a go-cache instance; expired entries are
// swept every minute.
type memoryClient struct {
	prefix string
	c      *gocache.Cache
}

func NewMemory(prefix string) Client {
	return &memoryClient{
		prefix: prefix,
		c:      gocache.New(gocache.NoExpiration, time.Minute),
	}
}

func (m *memoryClient) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	// Add fails when a live entry exists, which gives us set-if-absent atomically.
	if err := m.c.Add(prefixed(m.prefix, key), value, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *memoryClient) Exists(_ context.Context, key string) (bool, error) {
	_, found := m.c.Get(prefixed(m.prefix, key))
	return found, nil
}

func (m *memoryClient) Ping(context.Context) error { return nil }

func (m *memoryClient) Close() error {
	m.c.Flush()
	return nil
}
