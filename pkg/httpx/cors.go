package httpx

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// CORS allows credentialed cross-origin requests from the listed origins.
// Preflight requests from allowed origins are answered directly.
func CORS(origins ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !slices.Contains(origins, origin) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, ", "))
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SameOrigin refuses state-changing requests a browser sent on behalf of
// another site. The Origin header must be one of origins, or match the
// request host when origins is empty. Requests without Origin pass unless
// Sec-Fetch-Site marks them cross-site, so non-browser clients still work.
func SameOrigin(origins ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sameOrigin(r, origins) {
				WriteError(w, http.StatusForbidden, "cross_origin_request", "request did not come from this site")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sameOrigin(r *http.Request, origins []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return r.Header.Get("Sec-Fetch-Site") != "cross-site"
	}
	if len(origins) > 0 {
		return slices.Contains(origins, origin)
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}
