// Package audit defines the append-only audit Record entity and the recorder
// contract the staging workflow writes through on every transition.
package audit

import (
	"encoding/json"
	"time"

	"github.com/xraph/countersign/id"
	"github.com/xraph/countersign/staging"
)

// Stage distinguishes the transition a record describes.
type Stage string

const (
	StageInitiated Stage = "Initiated"
	StageApproved  Stage = "Approved"
	StageDeclined  Stage = "Declined"
)

// TypeFor builds the audit type tag for a change kind and stage, e.g.
// "UserCreateApproved". Tags are stable: they are persisted in historical
// records and must never be renamed.
func TypeFor(kind staging.Kind, stage Stage) string {
	var base string
	switch kind {
	case staging.KindUserCreate:
		base = "UserCreate"
	case staging.KindUserUpdate:
		base = "UserUpdate"
	case staging.KindUserToggle:
		base = "UserToggle"
	case staging.KindRoleCreate:
		base = "RoleCreate"
	case staging.KindRoleUpdate:
		base = "RoleUpdate"
	case staging.KindRolePermissions:
		base = "RolePermissions"
	default:
		base = "Change"
	}
	return base + string(stage)
}

// Record is a single immutable audit row. One record is written per
// transition of interest; records are never updated or deleted.
type Record struct {
	ID          id.AuditID      `json:"id" db:"id"`
	Type        string          `json:"audit_type" db:"audit_type"`
	Module      string          `json:"module" db:"module"`
	Description string          `json:"description" db:"description"`
	Comment     string          `json:"comment,omitempty" db:"comment"`
	DataBefore  json.RawMessage `json:"data_before,omitempty" db:"data_before"`
	DataAfter   json.RawMessage `json:"data_after,omitempty" db:"data_after"`
	CreatedBy   string          `json:"created_by" db:"created_by"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying audit records.
type QueryFilter struct {
	Type      string     `json:"audit_type,omitempty"`
	Module    string     `json:"module,omitempty"`
	CreatedBy string     `json:"created_by,omitempty"`
	Search    string     `json:"search,omitempty"`
	From      *time.Time `json:"period_from,omitempty"`
	To        *time.Time `json:"period_to,omitempty"`
	OrderBy   string     `json:"order_by,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}
