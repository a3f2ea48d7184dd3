package session

import (
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/clockx"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
)

// Defaults for the timing options.
const (
	DefaultRefreshMargin     = 30 * time.Second
	DefaultClockSkew         = 5 * time.Second
	DefaultInactivityTimeout = 5 * time.Minute
	DefaultRefreshRetries    = 2
	DefaultRefreshBackoff    = 500 * time.Millisecond
)

type Option func(m *Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithClock(c clockx.Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// WithDecoder sets how access and ID tokens are decoded. The default reads
// payloads without verifying signatures.
func WithDecoder(d jwtx.Decoder) Option {
	return func(m *Manager) {
		m.decoder = d
	}
}

func WithPersister(p Persister) Option {
	return func(m *Manager) {
		m.persister = p
	}
}

func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observers = append(m.observers, o)
	}
}

// WithRefreshMargin sets how long before access expiry the refresh fires.
func WithRefreshMargin(d time.Duration) Option {
	return func(m *Manager) {
		m.refreshMargin = d
	}
}

// WithClockSkew sets how long before its literal expiry an access token
// stops being handed out.
func WithClockSkew(d time.Duration) Option {
	return func(m *Manager) {
		m.clockSkew = d
	}
}

func WithInactivityTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.inactivityTimeout = d
	}
}

// WithRefreshRetries bounds the retries of a transiently failing refresh;
// backoff doubles from base after each attempt.
func WithRefreshRetries(n int, base time.Duration) Option {
	return func(m *Manager) {
		m.refreshRetries = n
		m.refreshBackoff = base
	}
}

// WithPostLogoutRedirect is the URL the authority returns to after
// end-session.
func WithPostLogoutRedirect(u string) Option {
	return func(m *Manager) {
		m.postLogoutRedirect = u
	}
}
