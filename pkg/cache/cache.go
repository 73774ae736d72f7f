// Package cache provides the key-value stores that hold serialized vector stores per session.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-key time-to-live.
type Cache interface {
	// Get returns the value and true, or nil and false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// SetEx stores value under key for ttl. A zero ttl stores the key without expiry.
	SetEx(ctx context.Context, key string, ttl time.Duration, value []byte) error
	// Delete removes keys and reports how many existed.
	Delete(ctx context.Context, keys ...string) (int64, error)
	// Exists reports how many of the keys are present.
	Exists(ctx context.Context, keys ...string) (int64, error)
}

// LockOutcome is the result of a TryAcquire call.
type LockOutcome int

const (
	// Acquired means the caller now holds the lock until Release or lease expiry.
	Acquired LockOutcome = iota
	// AlreadyHeld means another caller holds the lock.
	AlreadyHeld
)

func (o LockOutcome) String() string {
	switch o {
	case Acquired:
		return "acquired"
	case AlreadyHeld:
		return "already_held"
	default:
		return "unknown"
	}
}

// Locker is a short-lived advisory lock keyed by name. Leases expire on their own so a crashed
// holder cannot block others forever.
type Locker interface {
	TryAcquire(ctx context.Context, key string, lease time.Duration) (LockOutcome, error)
	Release(ctx context.Context, key string) error
}

// Store is a Cache that can also hand out advisory locks.
type Store interface {
	Cache
	Locker
}
