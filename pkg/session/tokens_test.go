package session

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tabsession/pkg/authsdk"
	"github.com/aussiebroadwan/tabsession/pkg/clockx"
	"github.com/aussiebroadwan/tabsession/pkg/idx"
	"golang.org/x/sync/singleflight"
)

// refreshStub answers RefreshGrant from a script of errors, then succeeds.
type refreshStub struct {
	Authority
	errs  []error
	calls atomic.Int32
}

func (r *refreshStub) RefreshGrant(context.Context, string) (*authsdk.TokenResponse, error) {
	n := int(r.calls.Add(1))
	if n <= len(r.errs) {
		return nil, r.errs[n-1]
	}
	return &authsdk.TokenResponse{AccessToken: "at", ExpiresIn: 300}, nil
}

func TestTokenControllerStore(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	newController := func() (*tokenController, *clockx.Fake) {
		clock := clockx.NewFake(now)
		return &tokenController{clock: clock, margin: 30 * time.Second}, clock
	}

	t.Run("arms refresh at expiry minus margin", func(t *testing.T) {
		tc, clock := newController()
		var refreshed bool
		next := tc.store(&TokenPair{AccessToken: "a", RefreshToken: "r", AccessExpiry: now.Add(5 * time.Minute)},
			false, func() { refreshed = true }, nil)

		require.Equal(t, scheduleRefresh, next)
		require.Equal(t, now.Add(270*time.Second), tc.refreshAt)
		clock.Advance(269 * time.Second)
		require.False(t, refreshed)
		clock.Advance(time.Second)
		require.True(t, refreshed)
	})

	t.Run("inside margin refreshes now", func(t *testing.T) {
		tc, clock := newController()
		next := tc.store(&TokenPair{AccessToken: "a", RefreshToken: "r", AccessExpiry: now.Add(20 * time.Second)},
			false, nil, nil)
		require.Equal(t, scheduleRefreshNow, next)
		require.Zero(t, clock.Pending())
	})

	t.Run("renewed short-lived pair refreshes at half-life", func(t *testing.T) {
		tc, _ := newController()
		next := tc.store(&TokenPair{AccessToken: "a", RefreshToken: "r", AccessExpiry: now.Add(20 * time.Second)},
			true, func() {}, nil)
		require.Equal(t, scheduleRefresh, next)
		require.Equal(t, now.Add(10*time.Second), tc.refreshAt)
	})

	t.Run("without refresh token expires at access expiry", func(t *testing.T) {
		tc, clock := newController()
		var expired bool
		next := tc.store(&TokenPair{AccessToken: "a", AccessExpiry: now.Add(time.Minute)},
			false, nil, func() { expired = true })

		require.Equal(t, scheduleExpiry, next)
		clock.Advance(time.Minute)
		require.True(t, expired)
	})

	t.Run("expired refresh token counts as absent", func(t *testing.T) {
		tc, _ := newController()
		next := tc.store(&TokenPair{
			AccessToken:   "a",
			RefreshToken:  "r",
			AccessExpiry:  now.Add(time.Minute),
			RefreshExpiry: now.Add(-time.Second),
		}, false, nil, func() {})
		require.Equal(t, scheduleExpiry, next)
	})

	t.Run("clear stops the timer", func(t *testing.T) {
		tc, clock := newController()
		tc.store(&TokenPair{AccessToken: "a", RefreshToken: "r", AccessExpiry: now.Add(time.Hour)},
			false, func() { t.Fatal("timer fired after clear") }, nil)
		tc.clear()
		require.Nil(t, tc.pair)
		clock.Advance(2 * time.Hour)
	})
}

func TestTokenControllerExchange(t *testing.T) {
	unavailable := &authsdk.OAuth2Error{StatusCode: http.StatusServiceUnavailable, Code: authsdk.ErrorCodeTemporarilyUnavailable}
	invalid := &authsdk.OAuth2Error{StatusCode: http.StatusBadRequest, Code: authsdk.ErrorCodeInvalidGrant}

	t.Run("retries transient failures", func(t *testing.T) {
		tc := &tokenController{clock: clockx.System, retries: 2}
		stub := &refreshStub{errs: []error{unavailable, unavailable}}

		var retried []int
		resp, attempts, err := tc.exchange(context.Background(), stub, "r", func(attempt int, _ time.Duration, _ error) {
			retried = append(retried, attempt)
		})
		require.NoError(t, err)
		require.Equal(t, "at", resp.AccessToken)
		require.Equal(t, 3, attempts)
		require.Equal(t, []int{1, 2}, retried)
	})

	t.Run("does not retry a rejected grant", func(t *testing.T) {
		tc := &tokenController{clock: clockx.System, retries: 2}
		stub := &refreshStub{errs: []error{invalid}}

		_, attempts, err := tc.exchange(context.Background(), stub, "r", func(int, time.Duration, error) {
			t.Fatal("unexpected retry")
		})
		require.ErrorIs(t, err, authsdk.ErrInvalidGrant)
		require.Equal(t, 1, attempts)
	})

	t.Run("backoff doubles", func(t *testing.T) {
		tc := &tokenController{clock: clockx.System, retries: 2, backoff: time.Millisecond}
		stub := &refreshStub{errs: []error{unavailable, unavailable, unavailable}}

		var waits []time.Duration
		_, attempts, err := tc.exchange(context.Background(), stub, "r", func(_ int, wait time.Duration, _ error) {
			waits = append(waits, wait)
		})
		require.ErrorIs(t, err, unavailable)
		require.Equal(t, 3, attempts)
		require.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, waits)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		tc := &tokenController{clock: clockx.System, retries: 5, backoff: time.Hour}
		stub := &refreshStub{errs: []error{unavailable}}

		ctx, cancel := context.WithCancel(context.Background())
		_, _, err := tc.exchange(ctx, stub, "r", func(int, time.Duration, error) { cancel() })
		require.True(t, errors.Is(err, context.Canceled))
	})
}

func TestTokenControllerRefreshIsShared(t *testing.T) {
	tc := &tokenController{clock: clockx.System}
	id := idx.New()

	release := make(chan struct{})
	var runs atomic.Int32
	run := func() refreshOutcome {
		runs.Add(1)
		<-release
		return refreshOutcome{token: "fresh"}
	}

	first := tc.refresh(id, run)
	second := tc.refresh(id, run)
	close(release)

	for _, ch := range []<-chan singleflight.Result{first, second} {
		res := <-ch
		require.NoError(t, res.Err)
		require.Equal(t, "fresh", res.Val)
	}
	require.Equal(t, int32(1), runs.Load())
}
