package http

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/tabsession/pkg/httpx"
	"github.com/aussiebroadwan/tabsession/pkg/session"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type PageHandler struct {
	Sessions *session.Manager
}

type homePage struct {
	Session session.Snapshot
	Name    string
	Roles   []string
}

type forbiddenPage struct {
	Path    string
	Missing []string
}

// HandleHome shows the session state and any notice about how the last
// session ended. Viewing the notice acknowledges it.
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Sessions.Observe(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to observe session", "error", err)
		writeUnavailable(w, err)
		return
	}

	renderPage(w, http.StatusOK, "home", homePage{
		Session: snap,
		Name:    snap.Profile.Name(),
		Roles:   snap.Roles.Sorted(),
	})
}

// HandleAdmin is only reached through RequireView.
func (h *PageHandler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	snap := h.Sessions.Snapshot()
	renderPage(w, http.StatusOK, "admin", homePage{
		Session: snap,
		Name:    snap.Profile.Name(),
		Roles:   snap.Roles.Sorted(),
	})
}

func renderPage(w http.ResponseWriter, code int, name string, data any) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("failed to render page", "page", name, "error", err)
	}
}
