package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCache connects to REDIS_TEST_ADDR; the tests skip without it.
func newTestCache(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	c := NewRedisCache(addr, "", 15, "cn-test:"+t.Name()+":")
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() {
		_ = c.DeletePattern(context.Background(), "*")
		_ = c.Close()
	})
	return c
}

func TestRedisCache_GetSet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	var miss map[string]int
	found, err := c.Get(ctx, "nope", &miss)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "genre", map[string]int{"id": 3}, time.Minute))

	var got map[string]int
	found, err = c.Get(ctx, "genre", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, got["id"])
}

func TestRedisCache_DeletePattern(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	for _, k := range []string{"crud:genres:list:a", "crud:genres:item:1", "crud:movies:item:1"} {
		require.NoError(t, c.Set(ctx, k, 1, time.Minute))
	}

	require.NoError(t, c.DeletePattern(ctx, "crud:genres:*"))

	ok, err := c.Exists(ctx, "crud:genres:item:1")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = c.Exists(ctx, "crud:movies:item:1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCache_Counters(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	n, err := c.Increment(ctx, "login:fail:a@b.c")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, c.Expire(ctx, "login:fail:a@b.c", time.Minute))

	ttl, err := c.TTL(ctx, "login:fail:a@b.c")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
