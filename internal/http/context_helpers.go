package httpx

import (
	"context"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
)

// principalKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type principalKey struct{}

// WithPrincipal returns a child context that carries the bound principal.
// If p is nil, the original ctx is returned unchanged.
func WithPrincipal(ctx context.Context, p *domainauth.Principal) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal bound by the auth middleware.
func PrincipalFromContext(ctx context.Context) (*domainauth.Principal, bool) {
	if p, ok := ctx.Value(principalKey{}).(*domainauth.Principal); ok && p != nil {
		return p, true
	}
	return nil, false
}

// IsAnonymous reports whether no identity is bound to the request.
func IsAnonymous(ctx context.Context) bool {
	_, ok := PrincipalFromContext(ctx)
	return !ok
}
