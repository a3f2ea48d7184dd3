package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tabsession/internal/store"
	"github.com/aussiebroadwan/tabsession/internal/store/drivers/memory"
	"github.com/aussiebroadwan/tabsession/pkg/clockx"
	"github.com/aussiebroadwan/tabsession/pkg/cryptox"
	"github.com/aussiebroadwan/tabsession/pkg/idx"
	"github.com/aussiebroadwan/tabsession/pkg/session"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newSealer(t *testing.T, key string) *cryptox.Sealer {
	t.Helper()
	s, err := cryptox.NewSealer([]byte(key), "session")
	require.NoError(t, err)
	return s
}

func record() *session.Record {
	return &session.Record{
		SessionID: idx.NewAt(now),
		Pair: session.TokenPair{
			AccessToken:   "access",
			RefreshToken:  "refresh",
			IDToken:       "id",
			AccessExpiry:  now.Add(5 * time.Minute),
			RefreshExpiry: now.Add(30 * time.Minute),
		},
		SavedAt: now,
	}
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing saved", func(t *testing.T) {
		s := store.NewSessionStore(memory.NewStore(nil), newSealer(t, "master"), "")
		_, err := s.Load(ctx)
		require.ErrorIs(t, err, session.ErrNoRecord)
	})

	t.Run("save then load", func(t *testing.T) {
		s := store.NewSessionStore(memory.NewStore(nil), newSealer(t, "master"), "")
		rec := record()
		require.NoError(t, s.Save(ctx, rec))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, rec.SessionID, got.SessionID)
		require.Equal(t, rec.Pair.AccessToken, got.Pair.AccessToken)
		require.True(t, rec.Pair.AccessExpiry.Equal(got.Pair.AccessExpiry))
		require.True(t, rec.Pair.RefreshExpiry.Equal(got.Pair.RefreshExpiry))
	})

	t.Run("stored value is sealed", func(t *testing.T) {
		blobs := memory.NewStore(nil)
		s := store.NewSessionStore(blobs, newSealer(t, "master"), "slot")
		require.NoError(t, s.Save(ctx, record()))

		raw, err := blobs.Get(ctx, "slot")
		require.NoError(t, err)
		require.NotContains(t, string(raw), "refresh")
	})

	t.Run("wrong key cannot unseal", func(t *testing.T) {
		blobs := memory.NewStore(nil)
		require.NoError(t, store.NewSessionStore(blobs, newSealer(t, "one"), "").Save(ctx, record()))

		_, err := store.NewSessionStore(blobs, newSealer(t, "two"), "").Load(ctx)
		require.Error(t, err)
		require.NotErrorIs(t, err, session.ErrNoRecord)
	})

	t.Run("delete", func(t *testing.T) {
		s := store.NewSessionStore(memory.NewStore(nil), newSealer(t, "master"), "")
		require.NoError(t, s.Save(ctx, record()))
		require.NoError(t, s.Delete(ctx))
		require.NoError(t, s.Delete(ctx))

		_, err := s.Load(ctx)
		require.ErrorIs(t, err, session.ErrNoRecord)
	})

	t.Run("expires with the refresh token", func(t *testing.T) {
		clock := clockx.NewFake(now)
		s := store.NewSessionStore(memory.NewStore(clock), newSealer(t, "master"), "")
		require.NoError(t, s.Save(ctx, record()))

		clock.Advance(29 * time.Minute)
		_, err := s.Load(ctx)
		require.NoError(t, err)

		clock.Advance(time.Minute)
		_, err = s.Load(ctx)
		require.ErrorIs(t, err, session.ErrNoRecord)
	})

	t.Run("without refresh token expires with the access token", func(t *testing.T) {
		clock := clockx.NewFake(now)
		s := store.NewSessionStore(memory.NewStore(clock), newSealer(t, "master"), "")
		rec := record()
		rec.Pair.RefreshToken, rec.Pair.RefreshExpiry = "", time.Time{}
		require.NoError(t, s.Save(ctx, rec))

		clock.Advance(5 * time.Minute)
		_, err := s.Load(ctx)
		require.ErrorIs(t, err, session.ErrNoRecord)
	})
}

func TestHousekeeper(t *testing.T) {
	clock := clockx.NewFake(now)
	blobs := memory.NewStore(clock)
	ctx := context.Background()

	require.NoError(t, blobs.Put(ctx, "old", []byte("x"), time.Minute))
	require.NoError(t, blobs.Put(ctx, "forever", []byte("y"), 0))
	clock.Advance(time.Hour)

	t.Run("sweep reports what it deleted", func(t *testing.T) {
		var reported []int64
		hk := store.NewHousekeeper(blobs, discardLogger(), time.Hour)
		hk.OnSweep(func(n int64) { reported = append(reported, n) })

		n, err := hk.Sweep(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
		require.Equal(t, []int64{1}, reported)

		_, err = blobs.Get(ctx, "forever")
		require.NoError(t, err)
	})

	t.Run("start sweeps immediately", func(t *testing.T) {
		require.NoError(t, blobs.Put(ctx, "stale", []byte("z"), time.Minute))
		clock.Advance(time.Hour)

		swept := make(chan int64, 1)
		hk := store.NewHousekeeper(blobs, discardLogger(), time.Hour)
		hk.OnSweep(func(n int64) { swept <- n })
		hk.Start(ctx)
		defer hk.Stop()

		select {
		case n := <-swept:
			require.EqualValues(t, 1, n)
		case <-time.After(2 * time.Second):
			t.Fatal("no sweep on start")
		}
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		hk := store.NewHousekeeper(blobs, discardLogger(), time.Hour)
		hk.Stop()
		hk.Start(ctx)
		hk.Stop()
		hk.Stop()
	})
}
