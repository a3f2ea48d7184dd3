package authsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeAuthority is a minimal token/revocation/discovery endpoint.
type fakeAuthority struct {
	*httptest.Server

	tokenStatus  int
	tokenBody    map[string]any
	lastForm     atomic.Value // url.Values
	revokeStatus int
	revoked      atomic.Int32
}

func newFakeAuthority(t *testing.T) *fakeAuthority {
	t.Helper()

	fa := &fakeAuthority{
		tokenStatus: http.StatusOK,
		tokenBody: map[string]any{
			"access_token":       "at-1",
			"refresh_token":      "rt-1",
			"id_token":           "id-1",
			"token_type":         "Bearer",
			"expires_in":         300,
			"refresh_expires_in": 1800,
			"scope":              "openid profile",
		},
		revokeStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		fa.lastForm.Store(r.PostForm)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(fa.tokenStatus)
		_ = json.NewEncoder(w).Encode(fa.tokenBody)
	})
	mux.HandleFunc("POST /revoke", func(w http.ResponseWriter, r *http.Request) {
		fa.revoked.Add(1)
		w.WriteHeader(fa.revokeStatus)
	})
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"issuer":                 fa.URL,
			"authorization_endpoint": fa.URL + "/auth",
			"token_endpoint":         fa.URL + "/token",
			"end_session_endpoint":   fa.URL + "/logout",
			"revocation_endpoint":    fa.URL + "/revoke",
			"jwks_uri":               fa.URL + "/certs",
		})
	})

	fa.Server = httptest.NewServer(mux)
	t.Cleanup(fa.Close)
	return fa
}

func (fa *fakeAuthority) client() *Client {
	return NewClient(Config{
		Endpoints: Endpoints{
			Issuer:        fa.URL,
			AuthURL:       fa.URL + "/auth",
			TokenURL:      fa.URL + "/token",
			RevocationURL: fa.URL + "/revoke",
		},
		ClientID:    "tab-web",
		RedirectURL: "http://localhost:5173/callback",
		HTTPClient:  fa.Client(),
	})
}

func (fa *fakeAuthority) form(key string) string {
	v, _ := fa.lastForm.Load().(url.Values)
	return v.Get(key)
}

func TestExchangeCode(t *testing.T) {
	t.Parallel()
	fa := newFakeAuthority(t)

	resp, err := fa.client().ExchangeCode(context.Background(), "code-1", "verifier-1")
	require.NoError(t, err)
	require.Equal(t, "at-1", resp.AccessToken)
	require.Equal(t, "rt-1", resp.RefreshToken)
	require.Equal(t, "id-1", resp.IDToken)
	require.Equal(t, 300, resp.ExpiresIn)
	require.Equal(t, 1800, resp.RefreshExpiresIn)

	require.Equal(t, "authorization_code", fa.form("grant_type"))
	require.Equal(t, "code-1", fa.form("code"))
	require.Equal(t, "verifier-1", fa.form("code_verifier"))
	require.Equal(t, "tab-web", fa.form("client_id"))
	require.Equal(t, "http://localhost:5173/callback", fa.form("redirect_uri"))
}

func TestExchangeCodeInvalidGrant(t *testing.T) {
	t.Parallel()
	fa := newFakeAuthority(t)
	fa.tokenStatus = http.StatusBadRequest
	fa.tokenBody = map[string]any{"error": "invalid_grant", "error_description": "Code not valid"}

	_, err := fa.client().ExchangeCode(context.Background(), "bad", "v")
	require.ErrorIs(t, err, ErrInvalidGrant)
	require.False(t, IsTransient(err))
	require.Contains(t, err.Error(), "Code not valid")
}

func TestExchangeCodeMissingExpiresIn(t *testing.T) {
	t.Parallel()
	fa := newFakeAuthority(t)
	fa.tokenBody = map[string]any{"access_token": "at", "token_type": "Bearer"}

	_, err := fa.client().ExchangeCode(context.Background(), "code", "v")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRefreshGrant(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		fa := newFakeAuthority(t)
		fa.tokenBody["access_token"] = "at-2"

		resp, err := fa.client().RefreshGrant(context.Background(), "rt-1")
		require.NoError(t, err)
		require.Equal(t, "at-2", resp.AccessToken)
		require.Equal(t, "refresh_token", fa.form("grant_type"))
		require.Equal(t, "rt-1", fa.form("refresh_token"))
		require.Equal(t, "tab-web", fa.form("client_id"))
	})

	t.Run("server error is transient", func(t *testing.T) {
		fa := newFakeAuthority(t)
		fa.tokenStatus = http.StatusServiceUnavailable
		fa.tokenBody = map[string]any{}

		_, err := fa.client().RefreshGrant(context.Background(), "rt-1")
		require.Error(t, err)
		require.True(t, IsTransient(err))
	})

	t.Run("empty refresh token", func(t *testing.T) {
		fa := newFakeAuthority(t)
		_, err := fa.client().RefreshGrant(context.Background(), "")
		require.ErrorIs(t, err, ErrInvalidGrant)
	})

	t.Run("unreachable authority is transient", func(t *testing.T) {
		fa := newFakeAuthority(t)
		c := fa.client()
		fa.Close()

		_, err := c.RefreshGrant(context.Background(), "rt-1")
		require.Error(t, err)
		require.True(t, IsTransient(err))
	})
}

func TestRevokeToken(t *testing.T) {
	t.Parallel()

	fa := newFakeAuthority(t)
	require.NoError(t, fa.client().RevokeToken(context.Background(), "rt-1", "refresh_token"))
	require.EqualValues(t, 1, fa.revoked.Load())

	fa.revokeStatus = http.StatusBadRequest
	err := fa.client().RevokeToken(context.Background(), "rt-1", "refresh_token")
	require.Error(t, err)

	bare := NewClient(Config{Endpoints: Endpoints{TokenURL: fa.URL + "/token"}})
	require.ErrorIs(t, bare.RevokeToken(context.Background(), "rt", ""), ErrRevocationUnsupported)
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	fa := newFakeAuthority(t)
	ep, err := Discover(context.Background(), fa.Client(), fa.URL+"/")
	require.NoError(t, err)
	require.Equal(t, fa.URL+"/token", ep.TokenURL)
	require.Equal(t, fa.URL+"/logout", ep.EndSessionURL)
	require.Equal(t, fa.URL+"/certs", ep.JWKSURL)

	_, err = Discover(context.Background(), fa.Client(), fa.URL+"/other")
	require.Error(t, err)
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	require.False(t, IsTransient(nil))
	require.False(t, IsTransient(context.Canceled))
	require.True(t, IsTransient(&OAuth2Error{StatusCode: http.StatusTooManyRequests, Code: "slow_down"}))
	require.True(t, IsTransient(&OAuth2Error{StatusCode: http.StatusBadGateway, Code: ErrorCodeServerError}))
	require.False(t, IsTransient(&OAuth2Error{StatusCode: http.StatusBadRequest, Code: ErrorCodeInvalidGrant}))
}
