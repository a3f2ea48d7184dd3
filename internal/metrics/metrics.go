package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aussiebroadwan/tabsession/pkg/session"
)

// Metrics records session lifecycle events. It is a session.Observer.
type Metrics struct {
	Transitions     *prometheus.CounterVec
	Authenticated   prometheus.Gauge
	SessionDuration *prometheus.HistogramVec
	RefreshAttempts prometheus.Histogram
	SweptRecords    prometheus.Counter

	mu      sync.Mutex
	startAt time.Time
}

var _ session.Observer = (*Metrics)(nil)

// New registers the session metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tabsession_transitions_total",
			Help: "Session state transitions by source state, target state and reason",
		}, []string{"from", "to", "reason"}),
		Authenticated: f.NewGauge(prometheus.GaugeOpts{
			Name: "tabsession_authenticated",
			Help: "1 while a session is authenticated",
		}),
		SessionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tabsession_session_duration_seconds",
			Help:    "Lifetime of ended sessions by end reason",
			Buckets: []float64{60, 300, 900, 1800, 3600, 4 * 3600, 12 * 3600, 24 * 3600},
		}, []string{"reason"}),
		RefreshAttempts: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tabsession_failed_refresh_attempts",
			Help:    "Attempts made by refreshes that ended the session",
			Buckets: []float64{1, 2, 3, 5, 8},
		}),
		SweptRecords: f.NewCounter(prometheus.CounterOpts{
			Name: "tabsession_store_swept_records_total",
			Help: "Expired persisted session records purged by housekeeping",
		}),
	}
}

// RecordSweep counts records purged by one housekeeping pass.
func (m *Metrics) RecordSweep(deleted int64) {
	m.SweptRecords.Add(float64(deleted))
}

func (m *Metrics) OnTransition(t session.Transition) {
	m.Transitions.WithLabelValues(t.From.String(), t.To.String(), string(t.Reason)).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case t.To == session.Authenticated && t.From != session.Authenticated:
		m.Authenticated.Set(1)
		m.startAt = t.At
	case t.From == session.Authenticated && t.To == session.Expiring:
		m.Authenticated.Set(0)
		if !m.startAt.IsZero() {
			m.SessionDuration.WithLabelValues(string(t.Reason)).Observe(t.At.Sub(m.startAt).Seconds())
			m.startAt = time.Time{}
		}
		var rf *session.RefreshFailure
		if errors.As(t.Err, &rf) {
			m.RefreshAttempts.Observe(float64(rf.Attempts))
		}
	}
}
