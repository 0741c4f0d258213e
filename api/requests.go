package api

import "encoding/json"

// ──────────────────────────────────────────────────
// Staging requests
// ──────────────────────────────────────────────────

// ListStagingRecordsRequest holds query parameters for listing staged changes.
type ListStagingRecordsRequest struct {
	PageSize   int    `query:"pageSize" description:"Items per page (default: 50)"`
	PageNumber int    `query:"pageNumber" description:"1-based page number"`
	OrderBy    string `query:"orderBy" description:"Sort order (date_created for oldest first)"`
	SearchTerm string `query:"searchTerm" description:"Case-insensitive entity search"`
	Kind       string `query:"action" description:"Filter by change kind"`
	Status     string `query:"status" description:"Filter by lifecycle status"`
	Creator    string `query:"creator" description:"Filter by proposer identity"`
}

// UpsertStagingRequest is the body for creating or updating a staged change.
// ID zero creates a new pending change; a nonzero ID updates a pending one.
type UpsertStagingRequest struct {
	ID         int64           `json:"id" description:"Change ID (0 creates)"`
	Entity     string          `json:"entity" description:"Human-readable subject key"`
	Kind       string          `json:"kind" description:"Change kind"`
	Capability string          `json:"capability,omitempty" description:"Permission required to resolve (defaults per kind)"`
	DataBefore json.RawMessage `json:"dataBefore,omitempty" description:"Snapshot before the mutation"`
	DataAfter  json.RawMessage `json:"dataAfter,omitempty" description:"Snapshot after the mutation"`
	Creator    string          `json:"creator,omitempty" description:"Proposer identity (ignored when authenticated)"`
	Comments   string          `json:"comments,omitempty" description:"Free-text rationale"`
}

// GetChangeRequest is the path parameter for fetching a staged change.
type GetChangeRequest struct {
	ChangeID int64 `path:"changeId" description:"Staged change ID"`
}

// ResolveChangeRequest is the body for approving or declining a change.
type ResolveChangeRequest struct {
	Comment string `json:"comment" description:"Resolution rationale (required)"`
}

// CanApproveRequest asks whether the caller may resolve a staged change.
type CanApproveRequest struct {
	ChangeID int64 `path:"changeId" description:"Staged change ID"`
}

// ──────────────────────────────────────────────────
// Audit requests
// ──────────────────────────────────────────────────

// CreateAuditRequest is the body for recording an audit entry directly.
type CreateAuditRequest struct {
	Type        string          `json:"auditType" description:"Audit type tag (e.g. UserCreateApproved)"`
	Module      string          `json:"module" description:"Feature area"`
	Description string          `json:"description" description:"What happened"`
	Comment     string          `json:"comment,omitempty" description:"Reviewer rationale"`
	DataBefore  json.RawMessage `json:"dataBefore,omitempty" description:"Snapshot before"`
	DataAfter   json.RawMessage `json:"dataAfter,omitempty" description:"Snapshot after"`
	CreatedBy   string          `json:"createdBy" description:"Acting identity"`
}

// ListAuditTrailsRequest holds query parameters for the audit history.
type ListAuditTrailsRequest struct {
	PageSize   int    `query:"pageSize" description:"Items per page (default: 50)"`
	PageNumber int    `query:"pageNumber" description:"1-based page number"`
	OrderBy    string `query:"orderBy" description:"Sort order"`
	SearchTerm string `query:"searchTerm" description:"Case-insensitive description search"`
	Type       string `query:"auditType" description:"Filter by audit type tag"`
	Module     string `query:"module" description:"Filter by feature area"`
	CreatedBy  string `query:"createdBy" description:"Filter by acting identity"`
	PeriodFrom string `query:"periodFrom" description:"RFC3339 lower bound on created_at"`
	PeriodTo   string `query:"periodTo" description:"RFC3339 upper bound on created_at"`
}

// ──────────────────────────────────────────────────
// Check requests
// ──────────────────────────────────────────────────

// CheckRequest is the body for an authorization check. Permissions defaults
// to the authenticated principal's packed set when omitted.
type CheckRequest struct {
	Permissions *string  `json:"permissions,omitempty" description:"Packed permission string (defaults to the caller's)"`
	Required    []string `json:"required" description:"Permission names, satisfied by any one"`
}
