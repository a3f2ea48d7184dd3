package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	helloapi "github.com/aussiebroadwan/tabsession/internal/helloapi/http"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

const (
	issuer = "http://localhost:8180/realms/tabsession"
	origin = "http://localhost:5173"
)

var secret = []byte("hello-secret")

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	dec := jwtx.NewKeyfuncDecoder(func(*jwt.Token) (any, error) { return secret, nil }, jwtx.VerifyOptions{
		Issuer:     issuer,
		Algorithms: []string{"HS256"},
	})
	r := helloapi.NewRouter(dec, "tabsession-web", "ADMIN", []string{origin}, slogx.Discard())
	r.ApplyRoutes()
	return r
}

func token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	base := jwt.MapClaims{
		"iss": issuer,
		"exp": time.Now().Add(time.Minute).Unix(),
		"iat": time.Now().Unix(),
	}
	for k, v := range claims {
		base[k] = v
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, base).SignedString(secret)
	require.NoError(t, err)
	return s
}

func get(h http.Handler, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHello(t *testing.T) {
	h := newRouter(t)

	t.Run("greets by preferred username", func(t *testing.T) {
		rec := get(h, "/api/hello", token(t, jwt.MapClaims{"sub": "u-1", "preferred_username": "alice"}))
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"data":"Hello alice"}`, rec.Body.String())
	})

	t.Run("falls back to subject", func(t *testing.T) {
		rec := get(h, "/api/hello", token(t, jwt.MapClaims{"sub": "u-1"}))
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"data":"Hello u-1"}`, rec.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		rec := get(h, "/api/hello", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "missing bearer token")
	})

	t.Run("expired token", func(t *testing.T) {
		rec := get(h, "/api/hello", token(t, jwt.MapClaims{
			"sub": "u-1",
			"exp": time.Now().Add(-time.Minute).Unix(),
		}))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "token expired")
	})

	t.Run("foreign issuer", func(t *testing.T) {
		rec := get(h, "/api/hello", token(t, jwt.MapClaims{"sub": "u-1", "iss": "https://evil.example"}))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminHello(t *testing.T) {
	h := newRouter(t)

	t.Run("realm role admits", func(t *testing.T) {
		rec := get(h, "/api/admin/hello", token(t, jwt.MapClaims{
			"sub":          "u-1",
			"realm_access": map[string]any{"roles": []string{"ADMIN"}},
		}))
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"data":"Hello admin u-1"}`, rec.Body.String())
	})

	t.Run("other roles are forbidden", func(t *testing.T) {
		rec := get(h, "/api/admin/hello", token(t, jwt.MapClaims{
			"sub":          "u-1",
			"realm_access": map[string]any{"roles": []string{"USER"}},
		}))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	h := newRouter(t)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/hello", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("other origins get no grant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/hello", nil)
		req.Header.Set("Origin", "https://evil.example")
		req.Header.Set("Authorization", "Bearer "+token(t, jwt.MapClaims{"sub": "u-1"}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
