package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCache(NewRedisClient("redis://" + mr.Addr() + "/0"))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCacheGetSetDelete(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetEx(ctx, "s1_index", time.Hour, []byte{0x00, 0xFF, 0x10}))
	got, ok, err := c.Get(ctx, "s1_index")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{0x00, 0xFF, 0x10}, got)
	assert.Equal(t, time.Hour, mr.TTL("s1_index"))

	n, err := c.Exists(ctx, "s1_index", "s1_metadata")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.Delete(ctx, "s1_index", "s1_metadata")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.Delete(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisCacheExpiry(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.SetEx(ctx, "k", time.Minute, []byte("v")))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheLock(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	outcome, err := c.TryAcquire(ctx, "s1_lock", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, Acquired, outcome)

	outcome, err = c.TryAcquire(ctx, "s1_lock", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, AlreadyHeld, outcome)

	mr.FastForward(11 * time.Second)
	outcome, err = c.TryAcquire(ctx, "s1_lock", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, Acquired, outcome)

	require.NoError(t, c.Release(ctx, "s1_lock"))
	assert.False(t, mr.Exists("s1_lock"))
}

func TestRedisCacheUnavailable(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()
	mr.Close()

	_, _, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, c.SetEx(ctx, "k", time.Minute, []byte("v")))
	_, err = c.TryAcquire(ctx, "lock", time.Second)
	assert.Error(t, err)
}

func TestNewRedisClientAcceptsBareAddress(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(NewRedisClient(mr.Addr()))
	defer c.Close()

	assert.NoError(t, c.Ping(context.Background()))
}
