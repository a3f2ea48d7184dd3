package http

import (
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/tabsession/pkg/httpx"
	"github.com/aussiebroadwan/tabsession/pkg/session"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

// RequireView gates a page on the guard's decision for v. Anonymous users
// are sent to /login with the page as return path; users without one of
// the view's roles get the forbidden page.
func RequireView(g *session.Guard, v session.View) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.Authorize(v)
			switch d.Kind {
			case session.Allow:
				next.ServeHTTP(w, r)
			case session.RedirectToLogin:
				httpx.NoCache(w)
				http.Redirect(w, r, "/login?return_to="+url.QueryEscape(d.ReturnTo), http.StatusFound)
			default:
				slogx.FromContext(r.Context()).Info("view forbidden", "view", v.Path, "missing", d.Missing)
				renderPage(w, http.StatusForbidden, "forbidden", forbiddenPage{
					Path:    v.Path,
					Missing: d.Missing,
				})
			}
		})
	}
}
