package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aussiebroadwan/tabsession/internal/store"
	"github.com/aussiebroadwan/tabsession/pkg/httpx"
	"github.com/aussiebroadwan/tabsession/pkg/session"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"

	_ "github.com/aussiebroadwan/tabsession/api/webapp" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	sessions     *session.Manager
	guard        *session.Guard
	pinger       store.Pinger
	gatherer     prometheus.Gatherer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	// AdminRole opens /admin. Defaults to ADMIN.
	AdminRole string
	// Origins may post to /logout and /session/activity. Empty means the
	// request's own host.
	Origins []string
	// Resource is the protected API proxied under /api/. Nil disables it.
	Resource *ResourceClient
}

func NewRouter(
	sessions *session.Manager,
	pinger store.Pinger,
	gatherer prometheus.Gatherer,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		sessions:     sessions,
		guard:        session.NewGuard(sessions),
		pinger:       pinger,
		gatherer:     gatherer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		AdminRole:    "ADMIN",
	}

	// Probes and activity pings are frequent; keep them out of info logs.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger, "/livez", "/readyz", "/metrics", "/session/activity"),
		sessionLogger(sessions),
	}

	return r
}

// sessionLogger tags handler logs with the current session id.
func sessionLogger(sessions *session.Manager) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sessions.Snapshot().SessionID
			next.ServeHTTP(w, r.WithContext(slogx.WithSessionID(r.Context(), id.String())))
		})
	}
}

func (r *Router) ApplyRoutes() {
	r.registerLogin()
	r.registerPages()
	r.registerSession()
	r.registerResource()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			TabSession Web Client API
//	@version		0.1.0
//	@description	Local web client holding one OAuth2/OIDC session (authorization code with PKCE).
//	@description
//	@description	The browser never sees tokens: it is sent to the authority to log in, and
//	@description	calls the resource server through /api/ with the session's access token.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/tabsession
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:5173
//	@BasePath		/
//
//	@schemes		http
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerLogin() {
	h := &LoginHandler{Sessions: r.sessions}

	// Each login mints a PKCE verifier and state; keep the rate strict.
	r.Mux.Handle("GET /login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.SameOrigin(r.Origins...),
		),
	)
}

func (r *Router) registerPages() {
	h := &PageHandler{Sessions: r.sessions}

	r.Mux.Handle("GET /{$}", http.HandlerFunc(h.HandleHome))
	r.Mux.Handle("GET /admin",
		httpx.Chain(http.HandlerFunc(h.HandleAdmin),
			RequireView(r.guard, session.View{Path: "/admin", AnyRole: []string{r.AdminRole}}),
		),
	)
}

func (r *Router) registerSession() {
	h := &SessionHandler{Sessions: r.sessions}

	r.Mux.Handle("GET /session", http.HandlerFunc(h.HandleSnapshot))
	r.Mux.Handle("POST /session/activity",
		httpx.Chain(http.HandlerFunc(h.HandleActivity),
			httpx.SameOrigin(r.Origins...),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerResource() {
	if r.Resource == nil {
		return
	}
	h := &ResourceHandler{Sessions: r.sessions, Resource: r.Resource}

	r.Mux.Handle("GET /api/hello",
		httpx.Chain(http.HandlerFunc(h.HandleHello),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	p := &probe{
		startTime: r.startTime,
		version:   r.buildVersion,
		store:     r.pinger,
		sessions:  r.sessions,
	}
	r.Mux.Handle("GET /livez",
		httpx.Chain(http.HandlerFunc(p.handleLivez),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(http.HandlerFunc(p.handleReadyz),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
}
