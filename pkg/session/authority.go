package session

//go:generate mockgen -source=authority.go -destination=mocks/mocks.go -package=mocks Authority,Persister

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/authsdk"
	"github.com/aussiebroadwan/tabsession/pkg/idx"
)

// Authority is the identity provider as seen by the manager.
// *authsdk.Client implements it.
type Authority interface {
	ClientID() string
	BuildAuthorizeURL(state string, pkce *authsdk.PKCEChallenge) string
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*authsdk.TokenResponse, error)
	RefreshGrant(ctx context.Context, refreshToken string) (*authsdk.TokenResponse, error)
	RevokeToken(ctx context.Context, token, hint string) error
	BuildEndSessionURL(idTokenHint, postLogoutRedirect string) string
}

// Record is a persisted session.
type Record struct {
	SessionID idx.ID    `json:"session_id"`
	Pair      TokenPair `json:"pair"`
	SavedAt   time.Time `json:"saved_at"`
}

// Persister keeps the current session across restarts. Load returns
// ErrNoRecord when nothing is saved.
type Persister interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context) error
}

var _ Authority = (*authsdk.Client)(nil)
