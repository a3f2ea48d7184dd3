package session

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/authsdk"
	"github.com/aussiebroadwan/tabsession/pkg/clockx"
	"github.com/aussiebroadwan/tabsession/pkg/idx"
	"golang.org/x/sync/singleflight"
)

// tokenController owns the current pair and its renewal schedule. Every
// method except the refresh body runs on the manager goroutine.
type tokenController struct {
	clock   clockx.Clock
	margin  time.Duration
	retries int
	backoff time.Duration

	pair      *TokenPair
	refreshAt time.Time
	timer     clockx.Timer

	// Keyed by session id so a refresh is never shared across sessions.
	flight singleflight.Group
}

// schedule is what store decided to do next.
type schedule int

const (
	scheduleRefresh schedule = iota // timer armed for refreshAt
	scheduleRefreshNow
	scheduleExpiry // no usable refresh token; timer armed for AccessExpiry
)

// store replaces the pair and re-arms the schedule. renewed is true for a
// pair obtained by refresh: if its whole lifetime fits inside the margin
// the next refresh is placed at half-life instead of immediately, so a
// short-lived authority cannot cause a refresh loop.
func (tc *tokenController) store(pair *TokenPair, renewed bool, onRefresh, onExpiry func()) schedule {
	tc.cancelTimer()
	tc.pair = pair

	now := tc.clock.Now()
	if !pair.canRefresh(now) {
		tc.refreshAt = pair.AccessExpiry
		tc.timer = tc.clock.AfterFunc(pair.AccessExpiry.Sub(now), onExpiry)
		return scheduleExpiry
	}

	margin := tc.margin
	if lifetime := pair.AccessExpiry.Sub(now); renewed && lifetime <= margin {
		margin = lifetime / 2
	}
	tc.refreshAt = pair.AccessExpiry.Add(-margin)
	if !tc.refreshAt.After(now) {
		return scheduleRefreshNow
	}
	tc.timer = tc.clock.AfterFunc(tc.refreshAt.Sub(now), onRefresh)
	return scheduleRefresh
}

// clear discards the pair and stops any timer.
func (tc *tokenController) clear() {
	tc.cancelTimer()
	tc.pair = nil
	tc.refreshAt = time.Time{}
}

func (tc *tokenController) cancelTimer() {
	if tc.timer != nil {
		tc.timer.Stop()
		tc.timer = nil
	}
}

// refreshOutcome is what a finished refresh reports to its waiters.
type refreshOutcome struct {
	token string
	err   error
}

// refresh starts, or joins, the single in-flight refresh for id. run is the
// function executed by the flight's goroutine.
func (tc *tokenController) refresh(id idx.ID, run func() refreshOutcome) <-chan singleflight.Result {
	return tc.flight.DoChan(id.String(), func() (any, error) {
		out := run()
		return out.token, out.err
	})
}

// exchange calls RefreshGrant with bounded retries for transient failures.
// It returns the last response or error and the number of attempts made.
func (tc *tokenController) exchange(ctx context.Context, a Authority, refreshToken string, onRetry func(attempt int, wait time.Duration, err error)) (*authsdk.TokenResponse, int, error) {
	wait := tc.backoff
	for attempt := 1; ; attempt++ {
		resp, err := a.RefreshGrant(ctx, refreshToken)
		if err == nil {
			return resp, attempt, nil
		}
		if !authsdk.IsTransient(err) || attempt > tc.retries {
			return nil, attempt, err
		}
		onRetry(attempt, wait, err)
		if serr := clockx.Sleep(ctx, tc.clock, wait); serr != nil {
			return nil, attempt, serr
		}
		wait *= 2
	}
}
