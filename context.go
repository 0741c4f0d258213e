package countersign

import "context"

type contextKey int

const ctxKeyPrincipal contextKey = iota

// WithPrincipal returns a context carrying the authenticated principal.
// The HTTP middleware sets this after validating the bearer token; workflow
// and evaluator calls still take the principal explicitly.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFromContext extracts the principal set by WithPrincipal.
// Returns nil when no principal is present.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, ok := ctx.Value(ctxKeyPrincipal).(*Principal)
	if !ok {
		return nil
	}
	return p
}
