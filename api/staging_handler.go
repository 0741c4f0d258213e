package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/xraph/forge"

	"github.com/xraph/countersign"
	"github.com/xraph/countersign/permission"
	"github.com/xraph/countersign/staging"
)

func (a *API) registerStagingRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("staging"))

	if err := g.GET("/staging-records", a.listStagingRecords,
		forge.WithSummary("List staged changes"),
		forge.WithDescription("Returns staged changes with paging metadata and optional filters."),
		forge.WithOperationID("listStagingRecords"),
		forge.WithRequestSchema(ListStagingRecordsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Paged staged changes", Envelope{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/staging/:changeId", a.getStagingRecord,
		forge.WithSummary("Get a staged change"),
		forge.WithOperationID("getStagingRecord"),
		forge.WithResponseSchema(http.StatusOK, "Staged change", Envelope{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/staging/upsert", a.upsertStagingRecord,
		forge.WithSummary("Create or update a staged change"),
		forge.WithDescription("ID zero proposes a new pending change; a nonzero ID updates a pending one."),
		forge.WithOperationID("upsertStagingRecord"),
		forge.WithRequestSchema(UpsertStagingRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Staged change", Envelope{}),
		forge.WithCreatedResponse("Staged change created", Envelope{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/staging/:changeId/approve", a.approveStagingRecord,
		forge.WithSummary("Approve a staged change"),
		forge.WithDescription("Applies the staged mutation and marks the change completed. The approver must differ from the proposer unless holding the universal override."),
		forge.WithOperationID("approveStagingRecord"),
		forge.WithRequestSchema(ResolveChangeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Approved change", Envelope{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/staging/:changeId/decline", a.declineStagingRecord,
		forge.WithSummary("Decline a staged change"),
		forge.WithDescription("Discards the proposed payload and marks the change declined."),
		forge.WithOperationID("declineStagingRecord"),
		forge.WithRequestSchema(ResolveChangeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Declined change", Envelope{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/staging/:changeId/can-approve", a.canApproveStagingRecord,
		forge.WithSummary("Check approval eligibility"),
		forge.WithDescription("Reports whether the authenticated caller may currently resolve the change. Advisory only."),
		forge.WithOperationID("canApproveStagingRecord"),
		forge.WithResponseSchema(http.StatusOK, "Eligibility result", Envelope{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listStagingRecords(ctx forge.Context, req *ListStagingRecordsRequest) (*Envelope, error) {
	limit, offset, page := a.pageWindow(req.PageSize, req.PageNumber)
	filter := &staging.ListFilter{
		Status:  staging.Status(req.Status),
		Kind:    staging.Kind(req.Kind),
		Creator: req.Creator,
		Search:  req.SearchTerm,
		OrderBy: req.OrderBy,
		Limit:   limit,
		Offset:  offset,
	}

	changes, err := a.eng.Store().ListChanges(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.eng.Store().CountChanges(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := ok(http.StatusOK, Page[*staging.Change]{
		PagingMetaData: newPagingMetaData(page, limit, total),
		Data:           changes,
	})
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) getStagingRecord(ctx forge.Context, _ *GetChangeRequest) (*Envelope, error) {
	changeID, err := parseChangeID(ctx)
	if err != nil {
		return nil, err
	}

	change, err := a.eng.Store().GetChange(ctx.Context(), changeID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := ok(http.StatusOK, change)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) upsertStagingRecord(ctx forge.Context, req *UpsertStagingRequest) (*Envelope, error) {
	if req.ID == 0 {
		return a.proposeStagingRecord(ctx, req)
	}

	change, err := a.eng.Store().GetChange(ctx.Context(), req.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if req.Entity != "" {
		change.Entity = req.Entity
	}
	if req.DataBefore != nil {
		change.DataBefore = req.DataBefore
	}
	if req.DataAfter != nil {
		change.DataAfter = req.DataAfter
	}
	if req.Comments != "" {
		change.Comments = req.Comments
	}
	if err := a.eng.Store().UpdateChange(ctx.Context(), change); err != nil {
		return nil, mapError(err)
	}

	resp := ok(http.StatusOK, change)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) proposeStagingRecord(ctx forge.Context, req *UpsertStagingRequest) (*Envelope, error) {
	creator := req.Creator
	if p := countersign.PrincipalFromContext(ctx.Context()); p != nil {
		creator = p.Identity
	}
	if creator == "" {
		return nil, forge.BadRequest("creator is required")
	}

	proposal := &countersign.Proposal{
		Entity:     req.Entity,
		Kind:       staging.Kind(req.Kind),
		Capability: permission.Name(req.Capability),
		Creator:    creator,
		Comments:   req.Comments,
	}
	if req.DataBefore != nil {
		proposal.Before = req.DataBefore
	}
	if req.DataAfter != nil {
		proposal.After = req.DataAfter
	}

	change, err := a.eng.Propose(ctx.Context(), proposal)
	if err != nil {
		return nil, mapError(err)
	}

	resp := ok(http.StatusCreated, change)
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) approveStagingRecord(ctx forge.Context, req *ResolveChangeRequest) (*Envelope, error) {
	changeID, err := parseChangeID(ctx)
	if err != nil {
		return nil, err
	}
	p := countersign.PrincipalFromContext(ctx.Context())

	change, err := a.eng.Store().GetChange(ctx.Context(), changeID)
	if err != nil {
		return nil, mapError(err)
	}

	result := a.eng.ResolveApproval(ctx.Context(), p, change.Capability, change)
	if !result.Eligible {
		return nil, forge.Forbidden(result.Reason)
	}

	updated, err := a.eng.Approve(ctx.Context(), change, p.Identity, req.Comment)
	if err != nil {
		return nil, mapError(err)
	}

	resp := ok(http.StatusOK, updated)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) declineStagingRecord(ctx forge.Context, req *ResolveChangeRequest) (*Envelope, error) {
	changeID, err := parseChangeID(ctx)
	if err != nil {
		return nil, err
	}
	p := countersign.PrincipalFromContext(ctx.Context())

	change, err := a.eng.Store().GetChange(ctx.Context(), changeID)
	if err != nil {
		return nil, mapError(err)
	}

	result := a.eng.ResolveApproval(ctx.Context(), p, change.Capability, change)
	if !result.Eligible {
		return nil, forge.Forbidden(result.Reason)
	}

	updated, err := a.eng.Decline(ctx.Context(), change, p.Identity, req.Comment)
	if err != nil {
		return nil, mapError(err)
	}

	resp := ok(http.StatusOK, updated)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) canApproveStagingRecord(ctx forge.Context, _ *CanApproveRequest) (*Envelope, error) {
	changeID, err := parseChangeID(ctx)
	if err != nil {
		return nil, err
	}
	p := countersign.PrincipalFromContext(ctx.Context())

	change, err := a.eng.Store().GetChange(ctx.Context(), changeID)
	if err != nil {
		return nil, mapError(err)
	}

	result := a.eng.ResolveApproval(ctx.Context(), p, change.Capability, change)
	resp := ok(http.StatusOK, result)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func parseChangeID(ctx forge.Context) (int64, error) {
	changeID, err := strconv.ParseInt(ctx.Param("changeId"), 10, 64)
	if err != nil {
		return 0, forge.BadRequest(fmt.Sprintf("invalid change ID: %v", err))
	}
	return changeID, nil
}
