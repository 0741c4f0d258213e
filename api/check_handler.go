package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/countersign"
	"github.com/xraph/countersign/permission"
)

func (a *API) registerCheckRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("authorization"))

	return g.POST("/check", a.check,
		forge.WithSummary("Authorization check"),
		forge.WithDescription("Evaluates whether a packed permission string satisfies any of the required permissions."),
		forge.WithOperationID("authzCheck"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", Envelope{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) check(ctx forge.Context, req *CheckRequest) (*Envelope, error) {
	if len(req.Required) == 0 {
		return nil, forge.BadRequest("required permissions cannot be empty")
	}

	packed := req.Permissions
	if packed == nil {
		if p := countersign.PrincipalFromContext(ctx.Context()); p != nil {
			packed = &p.Permissions
		}
	}
	// A missing packed set is the null sentinel, not an empty permission set.
	if _, err := permission.UnpackClaim(packed); err != nil {
		return nil, mapError(err)
	}

	required := make([]permission.Name, len(req.Required))
	for i, name := range req.Required {
		required[i] = permission.Name(name)
	}

	resp := ok(http.StatusOK, CheckResponse{
		Authorized: a.eng.Authorize(ctx.Context(), *packed, required...),
	})
	return resp, ctx.JSON(http.StatusOK, resp)
}
