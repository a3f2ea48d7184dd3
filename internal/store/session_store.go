package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/cryptox"
	"github.com/aussiebroadwan/tabsession/pkg/session"
)

// DefaultSessionKey is the slot the single client session is kept under.
const DefaultSessionKey = "session:current"

// SessionStore persists the session record sealed with AES-GCM on top of
// any Blobs driver. It implements session.Persister.
type SessionStore struct {
	blobs  Blobs
	sealer *cryptox.Sealer
	key    string
}

var _ session.Persister = (*SessionStore)(nil)

func NewSessionStore(blobs Blobs, sealer *cryptox.Sealer, key string) *SessionStore {
	if key == "" {
		key = DefaultSessionKey
	}
	return &SessionStore{blobs: blobs, sealer: sealer, key: key}
}

func (s *SessionStore) Load(ctx context.Context) (*session.Record, error) {
	sealed, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil, session.ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	plain, err := s.sealer.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal session: %w", err)
	}

	var rec session.Record
	if err := json.Unmarshal(plain, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &rec, nil
}

// Save seals and writes rec. The entry expires with the last token that
// could still be used.
func (s *SessionStore) Save(ctx context.Context, rec *session.Record) error {
	plain, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	sealed, err := s.sealer.Seal(plain)
	if err != nil {
		return fmt.Errorf("failed to seal session: %w", err)
	}

	if err := s.blobs.Put(ctx, s.key, sealed, recordTTL(rec)); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context) error {
	if err := s.blobs.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// recordTTL is zero (no expiry) when a refresh token of unknown lifetime is
// present.
func recordTTL(rec *session.Record) time.Duration {
	pair := rec.Pair
	until := pair.AccessExpiry
	if pair.RefreshToken != "" {
		if pair.RefreshExpiry.IsZero() {
			return 0
		}
		if pair.RefreshExpiry.After(until) {
			until = pair.RefreshExpiry
		}
	}

	ttl := until.Sub(rec.SavedAt)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}
