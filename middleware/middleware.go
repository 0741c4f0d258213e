// Package middleware provides HTTP authentication and authorization
// middleware for the countersign API.
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/countersign"
	"github.com/xraph/countersign/permission"
	"github.com/xraph/countersign/token"
)

// Authenticate validates the bearer token on every request and threads the
// principal it carries into the request context. Handlers downstream read it
// back with countersign.PrincipalFromContext.
func Authenticate(signer *token.Signer) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			raw, err := token.ExtractBearer(ctx.Request().Header.Get("Authorization"))
			if err != nil {
				return denyResponse(ctx, http.StatusUnauthorized, "missing or malformed bearer token")
			}
			p, err := signer.Parse(raw)
			if err != nil {
				return denyResponse(ctx, http.StatusUnauthorized, "invalid bearer token")
			}
			ctx.SetRequest(ctx.Request().WithContext(
				countersign.WithPrincipal(ctx.Context(), p),
			))
			return next(ctx)
		}
	}
}

// RequireAny allows the request if the authenticated principal holds ANY of
// the given permissions. The universal override always passes.
func RequireAny(eng *countersign.Engine, required ...permission.Name) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			p := countersign.PrincipalFromContext(ctx.Context())
			if p == nil {
				return denyResponse(ctx, http.StatusUnauthorized, "authentication required")
			}
			if err := eng.Enforce(ctx.Context(), p, required...); err != nil {
				return denyResponse(ctx, http.StatusForbidden, "access denied")
			}
			return next(ctx)
		}
	}
}

func denyResponse(ctx forge.Context, status int, message string) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(status)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": message})
}
