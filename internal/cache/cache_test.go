package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/lmsauth/internal/cache"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func TestSetNX(t *testing.T) {
	_, rdb := newRedis(t)
	clients := map[string]cache.Client{
		"memory": cache.NewMemory("t"),
		"redis":  cache.NewRedis(rdb, "t"),
	}
	ctx := context.Background()

	for name, c := range clients {
		t.Run(name, func(t *testing.T) {
			first, err := c.SetNX(ctx, "jti-1", "1", time.Minute)
			if err != nil || !first {
				t.Fatalf("first SetNX: created=%v err=%v", first, err)
			}
			again, err := c.SetNX(ctx, "jti-1", "1", time.Minute)
			if err != nil || again {
				t.Fatalf("second SetNX must not create: created=%v err=%v", again, err)
			}
			other, _ := c.SetNX(ctx, "jti-2", "1", time.Minute)
			if !other {
				t.Fatal("distinct key must be created")
			}
			if found, err := c.Exists(ctx, "jti-1"); err != nil || !found {
				t.Fatalf("Exists(jti-1): found=%v err=%v", found, err)
			}
			if found, _ := c.Exists(ctx, "jti-3"); found {
				t.Fatal("unknown key must not exist")
			}
		})
	}
}

func TestRedisSetNXExpires(t *testing.T) {
	mr, rdb := newRedis(t)
	c := cache.NewRedis(rdb, "")
	ctx := context.Background()

	if ok, _ := c.SetNX(ctx, "k", "v", time.Second); !ok {
		t.Fatal("expected create")
	}
	mr.FastForward(2 * time.Second)
	if ok, _ := c.SetNX(ctx, "k", "v", time.Second); !ok {
		t.Fatal("expected create after expiry")
	}
}

func TestNewUnknownDriver(t *testing.T) {
	if _, err := cache.New(cache.Config{Driver: "memcached"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if _, err := cache.New(cache.Config{Driver: "redis"}); err == nil {
		t.Fatal("expected error for redis without client")
	}
}
