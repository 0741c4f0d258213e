package postgres

import (
	"encoding/json"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/countersign/audit"
	"github.com/xraph/countersign/id"
	"github.com/xraph/countersign/permission"
	"github.com/xraph/countersign/staging"
)

// ──────────────────────────────────────────────────
// Staged change model
// ──────────────────────────────────────────────────

type changeModel struct {
	grove.BaseModel `grove:"table:countersign_changes"`
	ID              int64           `grove:"id,pk,autoincrement"`
	Entity          string          `grove:"entity,notnull"`
	Kind            string          `grove:"kind,notnull"`
	Capability      string          `grove:"capability,notnull"`
	DataBefore      json.RawMessage `grove:"data_before,type:jsonb"`
	DataAfter       json.RawMessage `grove:"data_after,type:jsonb"`
	Status          string          `grove:"status,notnull"`
	Creator         string          `grove:"creator,notnull"`
	Approver        string          `grove:"approver"`
	Comments        string          `grove:"comments"`
	DateCreated     time.Time       `grove:"date_created,notnull"`
	DateApproved    *time.Time      `grove:"date_approved"`
	LastModifiedOn  *time.Time      `grove:"last_modified_on"`
}

func changeToModel(c *staging.Change) *changeModel {
	return &changeModel{
		ID:             c.ID,
		Entity:         c.Entity,
		Kind:           string(c.Kind),
		Capability:     string(c.Capability),
		DataBefore:     c.DataBefore,
		DataAfter:      c.DataAfter,
		Status:         string(c.Status),
		Creator:        c.Creator,
		Approver:       c.Approver,
		Comments:       c.Comments,
		DateCreated:    c.DateCreated,
		DateApproved:   c.DateApproved,
		LastModifiedOn: c.LastModifiedOn,
	}
}

func changeFromModel(m *changeModel) *staging.Change {
	return &staging.Change{
		ID:             m.ID,
		Entity:         m.Entity,
		Kind:           staging.Kind(m.Kind),
		Capability:     permission.Name(m.Capability),
		DataBefore:     m.DataBefore,
		DataAfter:      m.DataAfter,
		Status:         staging.Status(m.Status),
		Creator:        m.Creator,
		Approver:       m.Approver,
		Comments:       m.Comments,
		DateCreated:    m.DateCreated,
		DateApproved:   m.DateApproved,
		LastModifiedOn: m.LastModifiedOn,
	}
}

// ──────────────────────────────────────────────────
// Audit record model
// ──────────────────────────────────────────────────

type auditModel struct {
	grove.BaseModel `grove:"table:countersign_audit"`
	ID              string          `grove:"id,pk"`
	Type            string          `grove:"audit_type,notnull"`
	Module          string          `grove:"module,notnull"`
	Description     string          `grove:"description"`
	Comment         string          `grove:"comment"`
	DataBefore      json.RawMessage `grove:"data_before,type:jsonb"`
	DataAfter       json.RawMessage `grove:"data_after,type:jsonb"`
	CreatedBy       string          `grove:"created_by,notnull"`
	CreatedAt       time.Time       `grove:"created_at,notnull"`
}

func auditToModel(r *audit.Record) *auditModel {
	return &auditModel{
		ID:          r.ID.String(),
		Type:        r.Type,
		Module:      r.Module,
		Description: r.Description,
		Comment:     r.Comment,
		DataBefore:  r.DataBefore,
		DataAfter:   r.DataAfter,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
	}
}

func auditFromModel(m *auditModel) *audit.Record {
	rid, _ := id.ParseAuditID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &audit.Record{
		ID:          rid,
		Type:        m.Type,
		Module:      m.Module,
		Description: m.Description,
		Comment:     m.Comment,
		DataBefore:  m.DataBefore,
		DataAfter:   m.DataAfter,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}
