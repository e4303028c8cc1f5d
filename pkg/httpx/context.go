package httpx

import (
	"context"

	"github.com/aussiebroadwan/tabkeeper/pkg/scope"
)

// Principal is the caller behind a verified bearer token.
type Principal struct {
	Subject string
	TokenID string
	Scope   scope.Set
}

type ctxKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
