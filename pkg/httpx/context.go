package httpx

import (
	"context"

	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyProfile ctxKey = "profile"
	CtxKeyRoles   ctxKey = "roles"
)

// ProfileFromContext returns the caller profile set by AuthnMiddleware.
func ProfileFromContext(ctx context.Context) (jwtx.Profile, bool) {
	p, ok := ctx.Value(CtxKeyProfile).(jwtx.Profile)
	return p, ok
}

// RolesFromContext returns the caller roles set by AuthnMiddleware.
func RolesFromContext(ctx context.Context) jwtx.RoleSet {
	if rs, ok := ctx.Value(CtxKeyRoles).(jwtx.RoleSet); ok {
		return rs
	}
	return jwtx.RoleSet{}
}

func contextWithAuth(ctx context.Context, p jwtx.Profile, rs jwtx.RoleSet) context.Context {
	ctx = context.WithValue(ctx, CtxKeyProfile, p)
	ctx = context.WithValue(ctx, CtxKeyRoles, rs)
	return ctx
}
