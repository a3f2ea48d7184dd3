package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tabsession/pkg/session"
)

func TestMetricsObserveLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	m.OnTransition(session.Transition{From: session.Unauthenticated, To: session.Authenticating, Reason: session.ReasonLoginStarted, At: start})
	m.OnTransition(session.Transition{From: session.Authenticating, To: session.Authenticated, Reason: session.ReasonLoggedIn, At: start})
	require.Equal(t, 1.0, testutil.ToFloat64(m.Authenticated))

	m.OnTransition(session.Transition{From: session.Authenticated, To: session.Authenticated, Reason: session.ReasonRefreshed, At: start.Add(time.Minute)})
	require.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("authenticated", "authenticated", "refreshed")))

	failure := &session.RefreshFailure{Attempts: 3, Err: errors.New("boom")}
	m.OnTransition(session.Transition{From: session.Authenticated, To: session.Expiring, Reason: session.ReasonRefreshFailed, Err: failure, At: start.Add(10 * time.Minute)})
	m.OnTransition(session.Transition{From: session.Expiring, To: session.LoggedOut, Reason: session.ReasonRefreshFailed, Err: failure, At: start.Add(10 * time.Minute)})

	require.Equal(t, 0.0, testutil.ToFloat64(m.Authenticated))
	require.Equal(t, 1, testutil.CollectAndCount(m.SessionDuration, "tabsession_session_duration_seconds"))
	require.Equal(t, 1, testutil.CollectAndCount(m.RefreshAttempts, "tabsession_failed_refresh_attempts"))
	require.Equal(t, 5, testutil.CollectAndCount(m.Transitions, "tabsession_transitions_total"))
}

func TestRecordSweep(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordSweep(0)
	m.RecordSweep(3)
	require.Equal(t, 3.0, testutil.ToFloat64(m.SweptRecords))
}
