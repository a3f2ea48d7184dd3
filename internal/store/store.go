package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("store: not found")

// Blobs is the storage a driver provides: opaque values under string keys,
// optionally expiring. Drivers (memory, sqlite, redis) implement this; the
// values they hold are already sealed.
type Blobs interface {
	Pinger

	// Get returns ErrNotFound for a missing or expired key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put inserts or replaces the value. A ttl of zero never expires.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying resources.
	Close() error
}

// Pinger verifies the backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sweeper is implemented by drivers whose expired entries linger until
// purged. Redis expires keys itself and does not need it.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}
