package api

import (
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/countersign/audit"
)

func (a *API) registerAuditRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("audit"))

	if err := g.POST("/audit/create", a.createAuditRecord,
		forge.WithSummary("Record an audit entry"),
		forge.WithDescription("Appends one immutable audit record. Records are never updated or deleted."),
		forge.WithOperationID("createAuditRecord"),
		forge.WithRequestSchema(CreateAuditRequest{}),
		forge.WithCreatedResponse("Audit record", Envelope{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/audit-trails", a.listAuditTrails,
		forge.WithSummary("Query the audit trail"),
		forge.WithDescription("Returns audit records with paging metadata and optional filters, newest first."),
		forge.WithOperationID("listAuditTrails"),
		forge.WithRequestSchema(ListAuditTrailsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Paged audit records", Envelope{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createAuditRecord(ctx forge.Context, req *CreateAuditRequest) (*Envelope, error) {
	if req.Type == "" || req.CreatedBy == "" {
		return nil, forge.BadRequest("auditType and createdBy are required")
	}

	record := &audit.Record{
		Type:        req.Type,
		Module:      req.Module,
		Description: req.Description,
		Comment:     req.Comment,
		DataBefore:  req.DataBefore,
		DataAfter:   req.DataAfter,
		CreatedBy:   req.CreatedBy,
	}
	if err := a.eng.Store().Record(ctx.Context(), record); err != nil {
		return nil, mapError(err)
	}

	resp := ok(http.StatusCreated, record)
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) listAuditTrails(ctx forge.Context, req *ListAuditTrailsRequest) (*Envelope, error) {
	limit, offset, page := a.pageWindow(req.PageSize, req.PageNumber)
	filter := &audit.QueryFilter{
		Type:      req.Type,
		Module:    req.Module,
		CreatedBy: req.CreatedBy,
		Search:    req.SearchTerm,
		OrderBy:   req.OrderBy,
		Limit:     limit,
		Offset:    offset,
	}

	if req.PeriodFrom != "" {
		t, err := time.Parse(time.RFC3339, req.PeriodFrom)
		if err != nil {
			return nil, forge.BadRequest("invalid periodFrom timestamp")
		}
		filter.From = &t
	}
	if req.PeriodTo != "" {
		t, err := time.Parse(time.RFC3339, req.PeriodTo)
		if err != nil {
			return nil, forge.BadRequest("invalid periodTo timestamp")
		}
		filter.To = &t
	}

	records, err := a.eng.Store().ListRecords(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.eng.Store().CountRecords(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := ok(http.StatusOK, Page[*audit.Record]{
		PagingMetaData: newPagingMetaData(page, limit, total),
		Data:           records,
	})
	return resp, ctx.JSON(http.StatusOK, resp)
}
