// Package memory keeps blobs in process memory. Nothing survives a restart;
// it is the default when no durable store is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/tabsession/internal/store"
	"github.com/aussiebroadwan/tabsession/pkg/clockx"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

type Store struct {
	mu      sync.RWMutex
	clock   clockx.Clock
	entries map[string]entry
}

var (
	_ store.Blobs   = (*Store)(nil)
	_ store.Sweeper = (*Store)(nil)
)

// NewStore returns an empty store. A nil clock uses the system clock.
func NewStore(clock clockx.Clock) *Store {
	if clock == nil {
		clock = clockx.System
	}
	return &Store{clock: clock, entries: make(map[string]entry)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || (!e.expiresAt.IsZero() && !s.clock.Now().Before(e.expiresAt)) {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (s *Store) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.clock.Now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// DeleteExpired drops entries past their expiry.
func (s *Store) DeleteExpired(context.Context) (int64, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for key, e := range s.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(s.entries, key)
			n++
		}
	}
	return n, nil
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }
