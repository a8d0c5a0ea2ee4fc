package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis connects to a local Redis and skips the test when none is
// reachable, so the suite stays runnable without infrastructure.
func setupTestRedis(t *testing.T) *RedisCache {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := NewRedisClient(addr, os.Getenv("REDIS_PASSWORD"), 15)
	cache := NewRedisCache(client)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := cache.Health(ctx); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return cache
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	cache := setupTestRedis(t)
	ctx := context.Background()

	got, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got, "absent keys return nil, nil")

	require.NoError(t, cache.Set(ctx, "session:abc", []byte(`{"id":"abc"}`), time.Minute))
	got, err = cache.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"abc"}`), got)

	require.NoError(t, cache.Delete(ctx, "session:abc"))
	got, err = cache.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCache_TTL(t *testing.T) {
	cache := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("v"), 50*time.Millisecond))
	time.Sleep(100 * time.Millisecond)

	got, err := cache.Get(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, got, "expired keys read as absent")
}

func TestRedisCache_EmptyKey(t *testing.T) {
	cache := setupTestRedis(t)
	ctx := context.Background()

	_, err := cache.Get(ctx, "")
	assert.Error(t, err)
	assert.Error(t, cache.Set(ctx, "", []byte("v"), 0))
	assert.NoError(t, cache.Delete(ctx, ""))
}
