package countersign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/countersign/audit"
	"github.com/xraph/countersign/id"
	"github.com/xraph/countersign/permission"
	"github.com/xraph/countersign/plugin"
	"github.com/xraph/countersign/staging"
	"github.com/xraph/countersign/store"
)

// Mutator applies the domain mutation carried by an approved change. The
// engine never inspects the snapshots itself; it hands the whole change to
// the mutator registered for its kind.
type Mutator interface {
	Apply(ctx context.Context, change *staging.Change) error
}

// MutatorFunc adapts a function to the Mutator interface.
type MutatorFunc func(ctx context.Context, change *staging.Change) error

// Apply implements Mutator.
func (f MutatorFunc) Apply(ctx context.Context, change *staging.Change) error {
	return f(ctx, change)
}

// Proposal is the input to Propose. Before and After are serialized by the
// engine; Capability defaults to the kind's standard approval permission
// when unset.
type Proposal struct {
	Entity     string
	Kind       staging.Kind
	Capability permission.Name
	Before     any
	After      any
	Creator    string
	Comments   string
}

// Engine is the staging workflow engine. It owns the propose/approve/decline
// state machine, delegates domain mutations to registered mutators, and
// writes one audit record per transition.
type Engine struct {
	store     store.Store
	evaluator Evaluator
	plugins   *plugin.Registry
	logger    *slog.Logger
	config    Config
	mutators  map[staging.Kind]Mutator
}

// NewEngine creates a new countersign engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		evaluator: DefaultEvaluator(),
		logger:    slog.Default(),
		config:    DefaultConfig(),
		mutators:  make(map[staging.Kind]Mutator),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("countersign: store is required")
	}
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown, notifying plugins.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// Authorize reports whether the packed permission string satisfies any of
// the required permissions.
func (e *Engine) Authorize(ctx context.Context, packed string, required ...permission.Name) bool {
	return e.evaluator.IsAuthorized(ctx, packed, required)
}

// Enforce returns ErrPermissionDenied unless the principal satisfies any of
// the required permissions.
func (e *Engine) Enforce(ctx context.Context, p *Principal, required ...permission.Name) error {
	if p == nil {
		return fmt.Errorf("%w: no principal", ErrPermissionDenied)
	}
	if !e.evaluator.IsAuthorized(ctx, p.Permissions, required) {
		return fmt.Errorf("%w: %s lacks %v", ErrPermissionDenied, p.Identity, required)
	}
	return nil
}

// Propose creates a staged change in Pending status and writes the
// "*Initiated" audit record. The store assigns the change ID.
func (e *Engine) Propose(ctx context.Context, p *Proposal) (*staging.Change, error) {
	if !p.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, p.Kind)
	}

	capability := p.Capability
	if capability == "" {
		capability, _ = staging.DefaultCapability(p.Kind)
	}

	before, err := marshalSnapshot(p.Before)
	if err != nil {
		return nil, fmt.Errorf("%w: before: %v", ErrInvalidPayload, err)
	}
	after, err := marshalSnapshot(p.After)
	if err != nil {
		return nil, fmt.Errorf("%w: after: %v", ErrInvalidPayload, err)
	}

	change := &staging.Change{
		Entity:      p.Entity,
		Kind:        p.Kind,
		Capability:  capability,
		DataBefore:  before,
		DataAfter:   after,
		Status:      staging.StatusPending,
		Creator:     p.Creator,
		Comments:    p.Comments,
		DateCreated: time.Now().UTC(),
	}

	if err := e.store.CreateChange(ctx, change); err != nil {
		return nil, fmt.Errorf("countersign: create change: %w", err)
	}

	e.record(ctx, &audit.Record{
		Type:        audit.TypeFor(p.Kind, audit.StageInitiated),
		Module:      p.Kind.Module(),
		Description: fmt.Sprintf("%s proposed for %s", p.Kind, p.Entity),
		Comment:     p.Comments,
		DataBefore:  before,
		DataAfter:   after,
		CreatedBy:   p.Creator,
	})

	if e.plugins != nil {
		e.plugins.EmitChangeProposed(ctx, change)
	}

	return change, nil
}

// Approve resolves a pending change: it applies the delegated domain
// mutation, then conditionally advances the record to Completed, then writes
// the "*Approved" audit record.
//
// If the mutation fails, the change stays Pending and the approval can be
// retried. The status transition is guarded at the store: when two reviewers
// race, exactly one transition succeeds and the loser gets
// staging.ErrNotPending.
func (e *Engine) Approve(ctx context.Context, change *staging.Change, approver, comment string) (*staging.Change, error) {
	if err := requireComment(comment); err != nil {
		return nil, err
	}
	if change.Status != staging.StatusPending {
		return nil, fmt.Errorf("countersign: approve change %d: %w", change.ID, staging.ErrNotPending)
	}

	mutator, ok := e.mutators[change.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoMutator, change.Kind)
	}
	if err := mutator.Apply(ctx, change); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMutationFailed, err)
	}

	updated, err := e.store.Transition(ctx, &staging.Transition{
		ChangeID: change.ID,
		From:     staging.StatusPending,
		To:       staging.StatusCompleted,
		Approver: approver,
		Comments: comment,
		At:       time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("countersign: complete change %d: %w", change.ID, err)
	}

	e.record(ctx, &audit.Record{
		Type:        audit.TypeFor(change.Kind, audit.StageApproved),
		Module:      change.Kind.Module(),
		Description: fmt.Sprintf("%s approved for %s", change.Kind, change.Entity),
		Comment:     comment,
		DataBefore:  change.DataBefore,
		DataAfter:   change.DataAfter,
		CreatedBy:   approver,
	})

	if e.plugins != nil {
		e.plugins.EmitChangeApproved(ctx, updated)
	}

	return updated, nil
}

// Decline resolves a pending change without applying it. The proposed
// payload is discarded and the "*Declined" audit record written.
func (e *Engine) Decline(ctx context.Context, change *staging.Change, approver, comment string) (*staging.Change, error) {
	if err := requireComment(comment); err != nil {
		return nil, err
	}
	if change.Status != staging.StatusPending {
		return nil, fmt.Errorf("countersign: decline change %d: %w", change.ID, staging.ErrNotPending)
	}

	updated, err := e.store.Transition(ctx, &staging.Transition{
		ChangeID:       change.ID,
		From:           staging.StatusPending,
		To:             staging.StatusDeclined,
		Approver:       approver,
		Comments:       comment,
		ClearDataAfter: true,
		At:             time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("countersign: decline change %d: %w", change.ID, err)
	}

	e.record(ctx, &audit.Record{
		Type:        audit.TypeFor(change.Kind, audit.StageDeclined),
		Module:      change.Kind.Module(),
		Description: fmt.Sprintf("%s declined for %s", change.Kind, change.Entity),
		Comment:     comment,
		DataBefore:  change.DataBefore,
		CreatedBy:   approver,
	})

	if e.plugins != nil {
		e.plugins.EmitChangeDeclined(ctx, updated)
	}

	return updated, nil
}

// ResolveApproval decides whether a candidate reviewer may currently resolve
// a staged change. Advisory: the backing API re-validates on its side.
func (e *Engine) ResolveApproval(ctx context.Context, p *Principal, required permission.Name, change *staging.Change) *ApprovalResult {
	if p == nil {
		return &ApprovalResult{Decision: ApprovalDenyNoPrincipal, Reason: "no authenticated principal"}
	}
	if change.Status != staging.StatusPending {
		return &ApprovalResult{
			Decision: ApprovalDenyNotPending,
			Reason:   fmt.Sprintf("change is %s", change.Status),
		}
	}
	// The override bypasses the maker-checker separation entirely,
	// self-approval included.
	if p.Holds(permission.AccessAll) {
		return &ApprovalResult{Eligible: true, Decision: ApprovalAllowOverride}
	}
	if !e.evaluator.IsAuthorized(ctx, p.Permissions, []permission.Name{required}) {
		return &ApprovalResult{
			Decision: ApprovalDenyNoCapability,
			Reason:   fmt.Sprintf("%s is required", required),
		}
	}
	if p.Identity == change.Creator {
		return &ApprovalResult{
			Decision: ApprovalDenySelf,
			Reason:   "a proposer may not resolve their own change",
		}
	}
	return &ApprovalResult{Eligible: true, Decision: ApprovalAllow}
}

// CanApprove is a shorthand for ResolveApproval.
func (e *Engine) CanApprove(ctx context.Context, p *Principal, required permission.Name, change *staging.Change) bool {
	return e.ResolveApproval(ctx, p, required, change).Eligible
}

// record writes one audit row. A failed audit write never rolls back the
// transition it describes: the primary action already committed, so the
// failure is logged and reported to plugins instead.
func (e *Engine) record(ctx context.Context, r *audit.Record) {
	r.ID = id.NewAuditID()
	if err := e.store.Record(ctx, r); err != nil {
		e.logger.ErrorContext(ctx, "countersign: audit write failed",
			"audit_type", r.Type,
			"module", r.Module,
			"created_by", r.CreatedBy,
			"error", err,
		)
		if e.plugins != nil {
			e.plugins.EmitAuditFailed(ctx, r, err)
		}
		return
	}
	if e.plugins != nil {
		e.plugins.EmitAuditWritten(ctx, r)
	}
}

func requireComment(comment string) error {
	if isBlank(comment) {
		return ErrCommentRequired
	}
	return nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// marshalSnapshot serializes a proposal payload. A nil payload becomes an
// absent snapshot (creation proposals have no before state).
func marshalSnapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}
