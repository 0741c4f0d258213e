// Package plugin defines the plugin system for countersign.
// Plugins are notified of lifecycle events (change proposed, approved,
// declined, audit record written) and can react with logging, metrics,
// notifications, and so on.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/countersign/audit"
	"github.com/xraph/countersign/staging"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ChangeProposed is called after a staged change is created.
type ChangeProposed interface {
	OnChangeProposed(ctx context.Context, c *staging.Change) error
}

// ChangeApproved is called after a staged change is approved and applied.
type ChangeApproved interface {
	OnChangeApproved(ctx context.Context, c *staging.Change) error
}

// ChangeDeclined is called after a staged change is declined.
type ChangeDeclined interface {
	OnChangeDeclined(ctx context.Context, c *staging.Change) error
}

// AuditWritten is called after an audit record is persisted.
type AuditWritten interface {
	OnAuditWritten(ctx context.Context, r *audit.Record) error
}

// AuditFailed is called when an audit write fails after its transition has
// already committed. The transition is not rolled back; this hook is the
// place to page someone.
type AuditFailed interface {
	OnAuditFailed(ctx context.Context, r *audit.Record, err error) error
}

// Shutdown is called when the engine stops.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
