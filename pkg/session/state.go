package session

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/idx"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
)

// State is the lifecycle position of the session.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
	// Expiring is held while an ended session is torn down. No token pair
	// exists in this state.
	Expiring
	LoggedOut
)

var stateNames = [...]string{
	Unauthenticated: "unauthenticated",
	Authenticating:  "authenticating",
	Authenticated:   "authenticated",
	Expiring:        "expiring",
	LoggedOut:       "logged_out",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText renders the state by name in JSON and logs.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TokenPair is the credential set issued by the authority. Expiries are
// computed from expires_in at receipt. RefreshToken, IDToken and
// RefreshExpiry are optional.
type TokenPair struct {
	AccessToken   string    `json:"access_token"`
	RefreshToken  string    `json:"refresh_token,omitempty"`
	IDToken       string    `json:"id_token,omitempty"`
	AccessExpiry  time.Time `json:"access_expiry"`
	RefreshExpiry time.Time `json:"refresh_expiry,omitzero"`
}

// canRefresh reports whether the refresh token is present and not known to
// have expired at now.
func (p *TokenPair) canRefresh(now time.Time) bool {
	if p.RefreshToken == "" {
		return false
	}
	return p.RefreshExpiry.IsZero() || now.Before(p.RefreshExpiry)
}

// Snapshot is a read-only view of the session. It never carries tokens.
type Snapshot struct {
	SessionID idx.ID       `json:"session_id,omitempty"`
	State     State        `json:"state"`
	Profile   jwtx.Profile `json:"profile"`
	Roles     jwtx.RoleSet `json:"roles"`

	AccessExpiry     time.Time `json:"access_expiry,omitzero"`
	ActivityDeadline time.Time `json:"activity_deadline,omitzero"`

	// Reason is why the session last changed state; Notice is the message
	// to show the user for it, if any.
	Reason Reason `json:"reason,omitempty"`
	Notice string `json:"notice,omitempty"`
}

// Authenticated reports whether the snapshot is of a usable session.
func (s Snapshot) Authenticated() bool { return s.State == Authenticated }

// view is the atomically published state: the snapshot plus the pair that
// backs it.
type view struct {
	snap      Snapshot
	pair      *TokenPair
	refreshAt time.Time
}
