package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// redisCache connects to the server named by PARTREE_REDIS_ADDR or skips.
func redisCache(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("PARTREE_REDIS_ADDR")
	if addr == "" {
		t.Skip("PARTREE_REDIS_ADDR not set")
	}
	c, err := NewRedisCache(context.Background(), RedisConfig{
		Addr:   addr,
		Prefix: "partree-test:" + uuid.NewString() + ":",
	})
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Clear(context.Background())
		c.Close()
	})
	return c
}

func TestRedisCache(t *testing.T) {
	c := redisCache(t)
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, hit %v, err %v", data, hit, err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("key survived Clear")
	}
}

func TestNewRedisCacheRequiresAddr(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisConfig{}); err == nil {
		t.Error("NewRedisCache without address should fail")
	}
}
