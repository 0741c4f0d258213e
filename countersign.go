// Package countersign implements a maker-checker staging workflow for
// administrative consoles: one principal proposes a sensitive mutation, a
// different, sufficiently privileged principal approves or declines it, and
// every transition lands in an append-only audit trail.
//
// A principal's authorization set travels inside its bearer token as a packed
// permission string (one character per permission code, see the permission
// package), so checks need no server round trip.
//
//	eng, err := countersign.NewEngine(
//	    countersign.WithStore(memStore),
//	    countersign.WithMutator(staging.KindUserCreate, userMutator),
//	)
//	change, err := eng.Propose(ctx, &countersign.Proposal{
//	    Entity:  "alice@example.com",
//	    Kind:    staging.KindUserCreate,
//	    After:   newUser,
//	    Creator: "bob@example.com",
//	})
package countersign

import (
	"strings"

	"github.com/xraph/countersign/permission"
)

// Principal is an authenticated actor. Identity is the stable identifier
// (an email for console users); Permissions is the packed permission string
// lifted from the bearer token claim.
type Principal struct {
	Identity    string `json:"identity"`
	Permissions string `json:"permissions"`
}

// Holds reports whether the principal's packed set contains the permission.
func (p *Principal) Holds(name permission.Name) bool {
	if p == nil {
		return false
	}
	want := permission.Name(strings.TrimSpace(string(name)))
	for _, held := range permission.Unpack(p.Permissions) {
		if permission.Name(strings.TrimSpace(string(held))) == want {
			return true
		}
	}
	return false
}

// ApprovalDecision is the outcome code of an approval eligibility check.
type ApprovalDecision string

const (
	// ApprovalAllow means the reviewer holds the required capability and is
	// not the proposer.
	ApprovalAllow ApprovalDecision = "allow"

	// ApprovalAllowOverride means the reviewer holds the universal override;
	// the maker-checker separation does not apply.
	ApprovalAllowOverride ApprovalDecision = "allow_override"

	// ApprovalDenyNoPrincipal means no authenticated reviewer was supplied.
	ApprovalDenyNoPrincipal ApprovalDecision = "deny_no_principal"

	// ApprovalDenyNotPending means the change has already been resolved.
	ApprovalDenyNotPending ApprovalDecision = "deny_not_pending"

	// ApprovalDenyNoCapability means the reviewer lacks the required
	// capability.
	ApprovalDenyNoCapability ApprovalDecision = "deny_no_capability"

	// ApprovalDenySelf means the reviewer proposed the change themselves.
	ApprovalDenySelf ApprovalDecision = "deny_self_approval"
)

// ApprovalResult is the outcome of an approval eligibility check. It is
// advisory for the UI; the backing API re-validates independently.
type ApprovalResult struct {
	Eligible bool             `json:"eligible"`
	Decision ApprovalDecision `json:"decision"`
	Reason   string           `json:"reason,omitempty"`
}
