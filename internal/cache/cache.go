// Package cache is the small key/value surface shared by every instance of
// the service. Production runs on Redis; "memory" is a go-cache backed
// driver for single-instance deployments and tests.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the subset of cache operations the service relies on.
type Client interface {
	// SetNX stores value under key only if the key is absent. It reports
	// whether this call created the key. ttl must be positive.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Exists reports whether a live entry is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}

// Config selects and configures the driver.
type Config struct {
	Driver string // "memory" | "redis"
	Prefix string
	// Redis is required when Driver is "redis".
	Redis *redis.Client
}

// New builds a Client for cfg.Driver.
func New(cfg Config) (Client, error) {
	switch cfg.Driver {
	case "memory", "":
		return NewMemory(cfg.Prefix), nil
	case "redis":
		if cfg.Redis == nil {
			return nil, fmt.Errorf("cache: redis driver selected without a client")
		}
		return NewRedis(cfg.Redis, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("cache: unknown driver %q", cfg.Driver)
	}
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + ":" + k
}
