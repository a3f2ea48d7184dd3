package session

import (
	"net/url"
	"strings"
	"unicode"
)

// View is a protected destination and the roles that may open it. An empty
// AnyRole admits every authenticated user.
type View struct {
	Path    string
	AnyRole []string
}

// DecisionKind is the outcome of a guard check.
type DecisionKind int

const (
	Allow DecisionKind = iota
	RedirectToLogin
	Forbidden
)

func (k DecisionKind) String() string {
	switch k {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_to_login"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decision is what to do with a navigation. ReturnTo is set for
// RedirectToLogin, Missing for Forbidden.
type Decision struct {
	Kind     DecisionKind
	ReturnTo string
	Missing  []string
}

// SnapshotSource is satisfied by *Manager.
type SnapshotSource interface {
	Snapshot() Snapshot
}

// Guard gates navigation on the current session.
type Guard struct {
	src SnapshotSource
}

func NewGuard(src SnapshotSource) *Guard {
	return &Guard{src: src}
}

// Authorize decides whether the view may be shown now. Unauthenticated
// users are sent to login with the view path as the return destination.
// Authenticated users need at least one of the view's roles.
func (g *Guard) Authorize(v View) Decision {
	snap := g.src.Snapshot()
	if !snap.Authenticated() {
		return Decision{Kind: RedirectToLogin, ReturnTo: SanitizeReturnTo(v.Path)}
	}
	if len(v.AnyRole) == 0 || snap.Roles.HasAny(v.AnyRole...) {
		return Decision{Kind: Allow}
	}
	return Decision{Kind: Forbidden, Missing: append([]string(nil), v.AnyRole...)}
}

// SanitizeReturnTo keeps a post-login destination on this origin. Anything
// other than an absolute path becomes "/". Control characters are refused
// outright since browsers strip tabs and newlines before resolving.
func SanitizeReturnTo(raw string) string {
	if raw == "" ||
		!strings.HasPrefix(raw, "/") ||
		strings.HasPrefix(raw, "//") ||
		strings.HasPrefix(raw, `/\`) ||
		strings.ContainsFunc(raw, unicode.IsControl) {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return "/"
	}
	return raw
}
