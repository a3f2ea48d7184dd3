package session

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRequired means there is no currently valid access token. The
	// caller should redirect to login or wait for a refresh.
	ErrAuthRequired = errors.New("session: authentication required")

	ErrNotStarted = errors.New("session: manager not started")
	ErrStopped    = errors.New("session: manager stopped")

	// ErrNoRecord is returned by a Persister with nothing saved.
	ErrNoRecord = errors.New("session: no persisted session")
)

// AuthorizationFailure is returned when a login attempt fails: the user
// denied consent, the state did not match, or the code exchange failed.
// The session is back in Unauthenticated.
type AuthorizationFailure struct {
	Reason string
	Err    error
}

func (e *AuthorizationFailure) Error() string {
	if e.Err == nil {
		return "session: authorization failed: " + e.Reason
	}
	return fmt.Sprintf("session: authorization failed: %s: %v", e.Reason, e.Err)
}

func (e *AuthorizationFailure) Unwrap() error { return e.Err }

// RefreshFailure ends a session whose tokens could not be renewed.
type RefreshFailure struct {
	Attempts int
	Err      error
}

func (e *RefreshFailure) Error() string {
	return fmt.Sprintf("session: refresh failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *RefreshFailure) Unwrap() error { return e.Err }

// Reason labels a transition.
type Reason string

const (
	ReasonLoginStarted  Reason = "login_started"
	ReasonLoginFailed   Reason = "login_failed"
	ReasonLoggedIn      Reason = "logged_in"
	ReasonRestored      Reason = "restored"
	ReasonRefreshed     Reason = "refreshed"
	ReasonRefreshFailed Reason = "refresh_failed"
	ReasonInactivity    Reason = "inactivity"
	ReasonTokenExpired  Reason = "token_expired"
	ReasonLogout        Reason = "logout"
	ReasonReset         Reason = "reset"
)

// Notice is the user-visible message for a session that ended for this
// reason, or "" when nothing needs to be said.
func (r Reason) Notice() string {
	switch r {
	case ReasonInactivity:
		return "You were logged out after a period of inactivity."
	case ReasonRefreshFailed, ReasonTokenExpired:
		return "Your session has expired. Please log in again."
	case ReasonLogout:
		return "You have been logged out."
	case ReasonLoginFailed:
		return "Login did not complete. Please try again."
	default:
		return ""
	}
}
