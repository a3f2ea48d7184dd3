package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/tabsession/pkg/httpx"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

// Router serves the protected hello API.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	decoder   jwtx.Decoder
	clientID  string
	adminRole string
	logger    *slog.Logger
}

// NewRouter verifies bearer tokens with dec and reads roles granted to
// clientID. Browsers on origins may call it with credentials.
func NewRouter(dec jwtx.Decoder, clientID, adminRole string, origins []string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		decoder:   dec,
		clientID:  clientID,
		adminRole: adminRole,
		logger:    logger,
	}

	// CORS runs before routing so preflight requests never reach the mux.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger, "/livez"),
		httpx.CORS(origins...),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	authn := httpx.AuthnMiddleware(r.decoder, r.clientID)

	r.Mux.Handle("GET /api/hello",
		httpx.Chain(http.HandlerFunc(HandleHello),
			authn,
			httpx.RateLimitBySubject(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /api/admin/hello",
		httpx.Chain(http.HandlerFunc(HandleAdminHello),
			authn,
			httpx.RequireAnyRole(r.adminRole),
			httpx.RateLimitBySubject(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /livez", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}
