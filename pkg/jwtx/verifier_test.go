package jwtx_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://id.example.com/realms/tab"

func signRS256(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	raw, err := tok.SignedString(key)
	require.NoError(t, err)
	return raw
}

func baseClaims(now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":                testIssuer,
		"sub":                "u1",
		"aud":                "account",
		"iat":                now.Unix(),
		"exp":                now.Add(5 * time.Minute).Unix(),
		"preferred_username": "alice",
		"realm_access":       map[string]any{"roles": []string{"USER"}},
	}
}

func TestUnverifiedDecoder(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	raw := signRS256(t, key, "k1", baseClaims(time.Now()))

	t.Run("decodes payload without key", func(t *testing.T) {
		p, err := jwtx.UnverifiedDecoder{}.Decode(raw)
		require.NoError(t, err)

		profile, roles, err := jwtx.Extract(p, clientID)
		require.NoError(t, err)
		require.Equal(t, "alice", profile.PreferredUsername)
		require.True(t, roles.Has("USER"))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := jwtx.UnverifiedDecoder{}.Decode("not-a-jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestKeyfuncDecoder(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks := keyfunc.NewGiven(map[string]keyfunc.GivenKey{
		"k1": keyfunc.NewGivenCustom(&key.PublicKey, keyfunc.GivenKeyOptions{Algorithm: "RS256"}),
	})
	dec := jwtx.NewKeyfuncDecoder(jwks.Keyfunc, jwtx.VerifyOptions{
		Issuer:   testIssuer,
		Audience: "account",
		Leeway:   5 * time.Second,
	})

	now := time.Now()

	t.Run("valid token", func(t *testing.T) {
		p, err := dec.Decode(signRS256(t, key, "k1", baseClaims(now)))
		require.NoError(t, err)
		require.Equal(t, "u1", p["sub"])
	})

	t.Run("expired token", func(t *testing.T) {
		claims := baseClaims(now.Add(-time.Hour))
		_, err := dec.Decode(signRS256(t, key, "k1", claims))
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := baseClaims(now)
		claims["iss"] = "https://evil.example.com"
		_, err := dec.Decode(signRS256(t, key, "k1", claims))
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims := baseClaims(now)
		claims["aud"] = "someone-else"
		_, err := dec.Decode(signRS256(t, key, "k1", claims))
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})

	t.Run("signed by unknown key", func(t *testing.T) {
		_, err := dec.Decode(signRS256(t, otherKey, "k1", baseClaims(now)))
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := dec.Decode("a.b")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("close without background refresh", func(t *testing.T) {
		require.NotPanics(t, dec.Close)
	})
}
