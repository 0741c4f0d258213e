// Package staging defines the StagedChange entity and its store interface.
package staging

import (
	"encoding/json"
	"time"

	"github.com/xraph/countersign/permission"
)

// Status is the lifecycle state of a staged change.
type Status string

const (
	// StatusPending means the change awaits review.
	StatusPending Status = "pending"

	// StatusCompleted means the change was approved and applied.
	StatusCompleted Status = "completed"

	// StatusDeclined means the change was declined and discarded.
	StatusDeclined Status = "declined"

	// StatusReview, StatusDeleted, and StatusFailed are reserved. They appear
	// in historical records but no transition in this module produces them.
	StatusReview  Status = "review"
	StatusDeleted Status = "deleted"
	StatusFailed  Status = "failed"
)

// Terminal reports whether a status is final. Terminal changes are immutable.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusDeclined
}

// Kind classifies a staged change by the mutation it proposes.
type Kind string

const (
	KindUserCreate      Kind = "user_create"
	KindUserUpdate      Kind = "user_update"
	KindUserToggle      Kind = "user_toggle"
	KindRoleCreate      Kind = "role_create"
	KindRoleUpdate      Kind = "role_update"
	KindRolePermissions Kind = "role_permissions"
)

// Module returns the feature area a kind belongs to, used for audit records.
func (k Kind) Module() string {
	switch k {
	case KindUserCreate, KindUserUpdate, KindUserToggle:
		return "users"
	case KindRoleCreate, KindRoleUpdate, KindRolePermissions:
		return "roles"
	default:
		return "staging"
	}
}

// Valid reports whether k is a known change kind.
func (k Kind) Valid() bool {
	switch k {
	case KindUserCreate, KindUserUpdate, KindUserToggle,
		KindRoleCreate, KindRoleUpdate, KindRolePermissions:
		return true
	default:
		return false
	}
}

// DefaultCapability returns the permission a reviewer must hold to resolve a
// change of the given kind. The mapping is a closed switch: an unknown kind
// resolves nothing rather than falling through to a string lookup.
func DefaultCapability(k Kind) (permission.Name, bool) {
	switch k {
	case KindUserCreate, KindUserUpdate, KindUserToggle:
		return permission.UsersApprove, true
	case KindRoleCreate, KindRoleUpdate, KindRolePermissions:
		return permission.RolesApprove, true
	default:
		return "", false
	}
}

// Change is one proposed mutation awaiting review.
type Change struct {
	// ID is assigned by the store; 0 means not yet persisted.
	ID int64 `json:"id" db:"id"`

	// Entity is the human-readable subject key (an email or role name).
	// Display and audit only, never a foreign key.
	Entity string `json:"entity" db:"entity"`

	// Kind classifies the mutation.
	Kind Kind `json:"kind" db:"kind"`

	// Capability is the permission required to resolve this change.
	Capability permission.Name `json:"capability" db:"capability"`

	// DataBefore and DataAfter are serialized snapshots of the subject's
	// state around the mutation. Opaque to the workflow.
	DataBefore json.RawMessage `json:"data_before,omitempty" db:"data_before"`
	DataAfter  json.RawMessage `json:"data_after,omitempty" db:"data_after"`

	Status Status `json:"status" db:"status"`

	// Creator proposed the change; Approver resolved it (set at resolution).
	Creator  string `json:"creator" db:"creator"`
	Approver string `json:"approver,omitempty" db:"approver"`

	// Comments is the free-text rationale. Optional at proposal, required
	// non-empty at resolution.
	Comments string `json:"comments,omitempty" db:"comments"`

	DateCreated    time.Time  `json:"date_created" db:"date_created"`
	DateApproved   *time.Time `json:"date_approved,omitempty" db:"date_approved"`
	LastModifiedOn *time.Time `json:"last_modified_on,omitempty" db:"last_modified_on"`
}

// ListFilter contains filters for listing staged changes.
type ListFilter struct {
	Status  Status `json:"status,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
	Creator string `json:"creator,omitempty"`
	Entity  string `json:"entity,omitempty"`
	Search  string `json:"search,omitempty"`
	OrderBy string `json:"order_by,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// Transition is a conditional status update. The store applies it only while
// the change still has the From status, which closes the window where two
// reviewers race to resolve the same change.
type Transition struct {
	ChangeID int64
	From     Status
	To       Status
	Approver string
	Comments string

	// ClearDataAfter discards the proposed payload (decline path).
	ClearDataAfter bool

	At time.Time
}
