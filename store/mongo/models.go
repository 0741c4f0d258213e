package mongo

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
	ID              int64      `grove:"id,pk"            bson:"_id"`
	Entity          string     `grove:"entity"           bson:"entity"`
	Kind            string     `grove:"kind"             bson:"kind"`
	Capability      string     `grove:"capability"       bson:"capability"`
	DataBefore      []byte     `grove:"data_before"      bson:"data_before,omitempty"`
	DataAfter       []byte     `grove:"data_after"       bson:"data_after,omitempty"`
	Status          string     `grove:"status"           bson:"status"`
	Creator         string     `grove:"creator"          bson:"creator"`
	Approver        string     `grove:"approver"         bson:"approver"`
	Comments        string     `grove:"comments"         bson:"comments"`
	DateCreated     time.Time  `grove:"date_created"     bson:"date_created"`
	DateApproved    *time.Time `grove:"date_approved"    bson:"date_approved,omitempty"`
	LastModifiedOn  *time.Time `grove:"last_modified_on" bson:"last_modified_on,omitempty"`
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
		DataBefore:     json.RawMessage(m.DataBefore),
		DataAfter:      json.RawMessage(m.DataAfter),
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
	ID              string    `grove:"id,pk"        bson:"_id"`
	Type            string    `grove:"audit_type"   bson:"audit_type"`
	Module          string    `grove:"module"       bson:"module"`
	Description     string    `grove:"description"  bson:"description"`
	Comment         string    `grove:"comment"      bson:"comment"`
	DataBefore      []byte    `grove:"data_before"  bson:"data_before,omitempty"`
	DataAfter       []byte    `grove:"data_after"   bson:"data_after,omitempty"`
	CreatedBy       string    `grove:"created_by"   bson:"created_by"`
	CreatedAt       time.Time `grove:"created_at"   bson:"created_at"`
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
		DataBefore:  json.RawMessage(m.DataBefore),
		DataAfter:   json.RawMessage(m.DataAfter),
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// counterDoc backs the sequence used for change IDs. MongoDB has no
// autoincrement, so IDs come from an atomic $inc on a counters document.
type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}
