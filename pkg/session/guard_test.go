package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
	"github.com/aussiebroadwan/tabsession/pkg/session"
)

type staticSource session.Snapshot

func (s staticSource) Snapshot() session.Snapshot { return session.Snapshot(s) }

func TestGuardAuthorize(t *testing.T) {
	admin := session.View{Path: "/admin", AnyRole: []string{"admin", "ops"}}

	t.Run("unauthenticated is sent to login", func(t *testing.T) {
		g := session.NewGuard(staticSource{State: session.Unauthenticated})
		d := g.Authorize(admin)
		require.Equal(t, session.RedirectToLogin, d.Kind)
		require.Equal(t, "/admin", d.ReturnTo)
	})

	t.Run("logged out is sent to login", func(t *testing.T) {
		g := session.NewGuard(staticSource{State: session.LoggedOut})
		require.Equal(t, session.RedirectToLogin, g.Authorize(admin).Kind)
	})

	t.Run("missing role is forbidden", func(t *testing.T) {
		g := session.NewGuard(staticSource{State: session.Authenticated, Roles: jwtx.NewRoleSet("viewer")})
		d := g.Authorize(admin)
		require.Equal(t, session.Forbidden, d.Kind)
		require.Equal(t, []string{"admin", "ops"}, d.Missing)
	})

	t.Run("any one role admits", func(t *testing.T) {
		g := session.NewGuard(staticSource{State: session.Authenticated, Roles: jwtx.NewRoleSet("ops")})
		require.Equal(t, session.Allow, g.Authorize(admin).Kind)
	})

	t.Run("no roles required", func(t *testing.T) {
		g := session.NewGuard(staticSource{State: session.Authenticated})
		require.Equal(t, session.Allow, g.Authorize(session.View{Path: "/"}).Kind)
	})

	t.Run("unsafe view path falls back to root", func(t *testing.T) {
		g := session.NewGuard(staticSource{State: session.Unauthenticated})
		require.Equal(t, "/", g.Authorize(session.View{Path: "//evil.example"}).ReturnTo)
	})
}

func TestSanitizeReturnTo(t *testing.T) {
	cases := map[string]string{
		"":                      "/",
		"/admin?tab=roles":      "/admin?tab=roles",
		"admin":                 "/",
		"https://evil.example/": "/",
		"//evil.example":        "/",
		`/\evil.example`:        "/",
		"/ok\r\nSet-Cookie: x":  "/",
		"/\t/evil.example":      "/",
		"/\x00/evil.example":    "/",
		"/%zz":                  "/",
		"/docs#top":             "/docs#top",
	}
	for in, want := range cases {
		require.Equal(t, want, session.SanitizeReturnTo(in), "input %q", in)
	}
}
