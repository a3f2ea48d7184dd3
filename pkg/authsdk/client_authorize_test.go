package authsdk

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePKCEChallenge(t *testing.T) {
	t.Parallel()

	pkce, err := GeneratePKCEChallenge()
	require.NoError(t, err)
	require.NotNil(t, pkce)
	require.NotEmpty(t, pkce.Verifier)
	require.Equal(t, "S256", pkce.Method)

	hash := sha256.Sum256([]byte(pkce.Verifier))
	require.Equal(t, base64.RawURLEncoding.EncodeToString(hash[:]), pkce.Challenge)

	other, err := GeneratePKCEChallenge()
	require.NoError(t, err)
	require.NotEqual(t, pkce.Verifier, other.Verifier)
}

func TestGenerateState(t *testing.T) {
	t.Parallel()

	a, err := GenerateState()
	require.NoError(t, err)
	b, err := GenerateState()
	require.NoError(t, err)
	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
}

func TestBuildAuthorizeURL(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{
		Endpoints:   KeycloakEndpoints("https://sso.example.com", "tab"),
		ClientID:    "tab-web",
		RedirectURL: "http://localhost:5173/callback",
		Scopes:      []string{"openid", "profile"},
	})

	t.Run("without PKCE", func(t *testing.T) {
		raw := client.BuildAuthorizeURL("state-1", nil)
		u, err := url.Parse(raw)
		require.NoError(t, err)
		require.Equal(t, "/realms/tab/protocol/openid-connect/auth", u.Path)

		q := u.Query()
		require.Equal(t, "code", q.Get("response_type"))
		require.Equal(t, "tab-web", q.Get("client_id"))
		require.Equal(t, "http://localhost:5173/callback", q.Get("redirect_uri"))
		require.Equal(t, "openid profile", q.Get("scope"))
		require.Equal(t, "state-1", q.Get("state"))
		require.Empty(t, q.Get("code_challenge"))
	})

	t.Run("with PKCE", func(t *testing.T) {
		pkce, err := GeneratePKCEChallenge()
		require.NoError(t, err)

		u, err := url.Parse(client.BuildAuthorizeURL("state-2", pkce))
		require.NoError(t, err)
		require.Equal(t, pkce.Challenge, u.Query().Get("code_challenge"))
		require.Equal(t, "S256", u.Query().Get("code_challenge_method"))
	})

	t.Run("defaults to openid scope", func(t *testing.T) {
		c := NewClient(Config{Endpoints: KeycloakEndpoints("https://sso.example.com", "tab"), ClientID: "x"})
		u, err := url.Parse(c.BuildAuthorizeURL("s", nil))
		require.NoError(t, err)
		require.Equal(t, "openid", u.Query().Get("scope"))
	})
}

func TestParseAuthorizationCallback(t *testing.T) {
	t.Parallel()

	t.Run("success with code and state", func(t *testing.T) {
		cb, err := ParseAuthorizationCallback("http://localhost:5173/callback?code=auth-code-123&state=random-state")
		require.NoError(t, err)
		require.Equal(t, "auth-code-123", cb.Code)
		require.Equal(t, "random-state", cb.State)
	})

	t.Run("error response keeps state", func(t *testing.T) {
		cb, err := ParseAuthorizationCallback("http://localhost:5173/callback?error=access_denied&error_description=User+denied+access&state=s1")
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrAccessDenied))
		require.Contains(t, err.Error(), "User denied access")
		require.Equal(t, "s1", cb.State)
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := ParseAuthorizationCallback("http://localhost:5173/callback?state=random-state")
		require.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("invalid URL", func(t *testing.T) {
		_, err := ParseAuthorizationCallback("://invalid-url")
		require.Error(t, err)
		require.Contains(t, strings.ToLower(err.Error()), "parse")
	})
}

func TestBuildEndSessionURL(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{
		Endpoints: KeycloakEndpoints("https://sso.example.com/", "tab"),
		ClientID:  "tab-web",
	})

	u, err := url.Parse(client.BuildEndSessionURL("id-tok", "http://localhost:5173/"))
	require.NoError(t, err)
	require.Equal(t, "sso.example.com", u.Host)
	require.Equal(t, "/realms/tab/protocol/openid-connect/logout", u.Path)
	require.Equal(t, "tab-web", u.Query().Get("client_id"))
	require.Equal(t, "id-tok", u.Query().Get("id_token_hint"))
	require.Equal(t, "http://localhost:5173/", u.Query().Get("post_logout_redirect_uri"))

	u, err = url.Parse(client.BuildEndSessionURL("", ""))
	require.NoError(t, err)
	require.False(t, u.Query().Has("id_token_hint"))

	bare := NewClient(Config{Endpoints: Endpoints{AuthURL: "a", TokenURL: "b"}})
	require.Empty(t, bare.BuildEndSessionURL("x", "y"))
}
