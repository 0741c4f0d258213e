package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/countersign/audit"
	"github.com/xraph/countersign/staging"
)

// Named entry types pair a hook with the plugin name for logging.

type changeProposedEntry struct {
	name string
	hook ChangeProposed
}
type changeApprovedEntry struct {
	name string
	hook ChangeApproved
}
type changeDeclinedEntry struct {
	name string
	hook ChangeDeclined
}
type auditWrittenEntry struct {
	name string
	hook AuditWritten
}
type auditFailedEntry struct {
	name string
	hook AuditFailed
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	changeProposed []changeProposedEntry
	changeApproved []changeApprovedEntry
	changeDeclined []changeDeclinedEntry
	auditWritten   []auditWrittenEntry
	auditFailed    []auditFailedEntry
	shutdown       []shutdownEntry
}

// NewRegistry creates an empty plugin registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds a plugin and caches the hooks it implements.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)

	if h, ok := p.(ChangeProposed); ok {
		r.changeProposed = append(r.changeProposed, changeProposedEntry{p.Name(), h})
	}
	if h, ok := p.(ChangeApproved); ok {
		r.changeApproved = append(r.changeApproved, changeApprovedEntry{p.Name(), h})
	}
	if h, ok := p.(ChangeDeclined); ok {
		r.changeDeclined = append(r.changeDeclined, changeDeclinedEntry{p.Name(), h})
	}
	if h, ok := p.(AuditWritten); ok {
		r.auditWritten = append(r.auditWritten, auditWrittenEntry{p.Name(), h})
	}
	if h, ok := p.(AuditFailed); ok {
		r.auditFailed = append(r.auditFailed, auditFailedEntry{p.Name(), h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{p.Name(), h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// EmitChangeProposed notifies plugins that a change was proposed.
// Hook errors are logged, never propagated.
func (r *Registry) EmitChangeProposed(ctx context.Context, c *staging.Change) {
	for _, e := range r.changeProposed {
		if err := e.hook.OnChangeProposed(ctx, c); err != nil {
			r.logHookError(ctx, e.name, "change_proposed", err)
		}
	}
}

// EmitChangeApproved notifies plugins that a change was approved.
func (r *Registry) EmitChangeApproved(ctx context.Context, c *staging.Change) {
	for _, e := range r.changeApproved {
		if err := e.hook.OnChangeApproved(ctx, c); err != nil {
			r.logHookError(ctx, e.name, "change_approved", err)
		}
	}
}

// EmitChangeDeclined notifies plugins that a change was declined.
func (r *Registry) EmitChangeDeclined(ctx context.Context, c *staging.Change) {
	for _, e := range r.changeDeclined {
		if err := e.hook.OnChangeDeclined(ctx, c); err != nil {
			r.logHookError(ctx, e.name, "change_declined", err)
		}
	}
}

// EmitAuditWritten notifies plugins that an audit record was persisted.
func (r *Registry) EmitAuditWritten(ctx context.Context, rec *audit.Record) {
	for _, e := range r.auditWritten {
		if err := e.hook.OnAuditWritten(ctx, rec); err != nil {
			r.logHookError(ctx, e.name, "audit_written", err)
		}
	}
}

// EmitAuditFailed notifies plugins that an audit write failed after its
// transition committed.
func (r *Registry) EmitAuditFailed(ctx context.Context, rec *audit.Record, cause error) {
	for _, e := range r.auditFailed {
		if err := e.hook.OnAuditFailed(ctx, rec, cause); err != nil {
			r.logHookError(ctx, e.name, "audit_failed", err)
		}
	}
}

// EmitShutdown notifies plugins that the engine is stopping.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError(ctx, e.name, "shutdown", err)
		}
	}
}

func (r *Registry) logHookError(ctx context.Context, plugin, hook string, err error) {
	r.logger.WarnContext(ctx, "countersign: plugin hook failed",
		"plugin", plugin,
		"hook", hook,
		"error", err,
	)
}
