package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheGetSetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetEx(ctx, "k1", time.Hour, []byte("v1")))
	require.NoError(t, c.SetEx(ctx, "k2", 0, []byte("v2")))

	v, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), v)

	n, err := c.Exists(ctx, "k1", "k2", "k3")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = c.Delete(ctx, "k1", "k3")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.Exists(ctx, "k1", "k2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, c.SetEx(ctx, "k", time.Hour, value))
	value[0] = 'z'

	got, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'z'
	again, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	require.NoError(t, c.SetEx(ctx, "k", 30*time.Millisecond, []byte("v")))
	time.Sleep(60 * time.Millisecond)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheLock(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	outcome, err := c.TryAcquire(ctx, "lock", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, Acquired, outcome)

	outcome, err = c.TryAcquire(ctx, "lock", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, AlreadyHeld, outcome)

	require.NoError(t, c.Release(ctx, "lock"))

	outcome, err = c.TryAcquire(ctx, "lock", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, Acquired, outcome)
}

func TestMemoryCacheLockLeaseExpires(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	_, err := c.TryAcquire(ctx, "lock", 30*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)

	outcome, err := c.TryAcquire(ctx, "lock", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, Acquired, outcome)
}

func TestLockOutcomeString(t *testing.T) {
	assert.Equal(t, "acquired", Acquired.String())
	assert.Equal(t, "already_held", AlreadyHeld.String())
	assert.Equal(t, "unknown", LockOutcome(9).String())
}
