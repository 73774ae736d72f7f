package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps values in process memory. It is meant for single-instance development
// setups and tests; entries do not survive a restart.
type MemoryCache struct {
	c *gocache.Cache
}

var _ Store = (*MemoryCache)(nil)

// NewMemoryCache creates a cache whose expired entries are purged every cleanupInterval.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		c: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, found := m.c.Get(key)
	if !found {
		return nil, false, nil
	}
	b := v.([]byte)
	out := make([]byte, len(b))
	copy(out, b)
	return out, true, nil
}

func (m *MemoryCache) SetEx(_ context.Context, key string, ttl time.Duration, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	m.c.Set(key, stored, expiration(ttl))
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, found := m.c.Get(k); found {
			n++
		}
		m.c.Delete(k)
	}
	return n, nil
}

func (m *MemoryCache) Exists(_ context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, found := m.c.Get(k); found {
			n++
		}
	}
	return n, nil
}

func (m *MemoryCache) TryAcquire(_ context.Context, key string, lease time.Duration) (LockOutcome, error) {
	// Add fails when a live entry exists
	if err := m.c.Add(key, []byte{1}, expiration(lease)); err != nil {
		return AlreadyHeld, nil
	}
	return Acquired, nil
}

func (m *MemoryCache) Release(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

func expiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}
