package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

// AuthnMiddleware requires an `Authorization: Bearer` token that dec accepts,
// and injects the caller profile and roles (for clientID) into the context.
func AuthnMiddleware(dec jwtx.Decoder, clientID string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			payload, err := dec.Decode(raw)
			if err != nil {
				desc := "token verification failed"
				if errors.Is(err, jwtx.ErrExpired) {
					desc = "token expired"
				}
				log.Warn("bearer token rejected", "error", err)
				writeBearerError(w, desc)
				return
			}

			profile, roles, err := jwtx.Extract(payload, clientID)
			if err != nil {
				log.Warn("bearer token claims rejected", "error", err)
				writeBearerError(w, "token claims invalid")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(r.Context(), profile, roles)))
		})
	}
}

// BearerToken extracts the credential from an Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
