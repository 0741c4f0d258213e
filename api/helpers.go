package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/countersign"
	"github.com/xraph/countersign/audit"
	"github.com/xraph/countersign/permission"
	"github.com/xraph/countersign/staging"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, staging.ErrNotFound) || errors.Is(err, audit.ErrNotFound) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, countersign.ErrCommentRequired) || errors.Is(err, staging.ErrNotPending) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, countersign.ErrInvalidKind) || errors.Is(err, countersign.ErrInvalidPayload) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, countersign.ErrNoMutator) || errors.Is(err, countersign.ErrMutationFailed) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, permission.ErrNoPackedPermissions) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, countersign.ErrPermissionDenied) {
		return forge.Forbidden(err.Error())
	}
	return err
}

// pageWindow translates 1-based page parameters into a limit/offset pair.
// The clamp comes from the engine configuration.
func (a *API) pageWindow(pageSize, pageNumber int) (limit, offset, page int) {
	limit = a.eng.Config().PageSize(pageSize)
	page = pageNumber
	if page < 1 {
		page = 1
	}
	offset = (page - 1) * limit
	return limit, offset, page
}
