package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/countersign/audit"
	"github.com/xraph/countersign/staging"
)

type recordingPlugin struct {
	name     string
	proposed int
	approved int
	declined int
	written  int
	failed   int
	shutdown int
	err      error
}

func (p *recordingPlugin) Name() string { return p.name }

func (p *recordingPlugin) OnChangeProposed(context.Context, *staging.Change) error {
	p.proposed++
	return p.err
}

func (p *recordingPlugin) OnChangeApproved(context.Context, *staging.Change) error {
	p.approved++
	return p.err
}

func (p *recordingPlugin) OnChangeDeclined(context.Context, *staging.Change) error {
	p.declined++
	return p.err
}

func (p *recordingPlugin) OnAuditWritten(context.Context, *audit.Record) error {
	p.written++
	return p.err
}

func (p *recordingPlugin) OnAuditFailed(context.Context, *audit.Record, error) error {
	p.failed++
	return p.err
}

func (p *recordingPlugin) OnShutdown(context.Context) error {
	p.shutdown++
	return p.err
}

// nameOnlyPlugin implements no hooks.
type nameOnlyPlugin struct{}

func (nameOnlyPlugin) Name() string { return "name-only" }

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(nil)

	p := &recordingPlugin{name: "recorder"}
	r.Register(p)
	r.Register(nameOnlyPlugin{})

	if len(r.Plugins()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(r.Plugins()))
	}

	change := &staging.Change{ID: 1}
	rec := &audit.Record{Type: "UserCreateInitiated"}

	r.EmitChangeProposed(ctx, change)
	r.EmitChangeApproved(ctx, change)
	r.EmitChangeDeclined(ctx, change)
	r.EmitAuditWritten(ctx, rec)
	r.EmitAuditFailed(ctx, rec, errors.New("disk full"))
	r.EmitShutdown(ctx)

	if p.proposed != 1 || p.approved != 1 || p.declined != 1 {
		t.Fatalf("change hooks not dispatched: %+v", p)
	}
	if p.written != 1 || p.failed != 1 || p.shutdown != 1 {
		t.Fatalf("audit/shutdown hooks not dispatched: %+v", p)
	}
}

func TestRegistryHookErrorsAreSwallowed(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(nil)

	p := &recordingPlugin{name: "flaky", err: errors.New("boom")}
	r.Register(p)

	// Must not panic or abort remaining dispatches.
	r.EmitChangeProposed(ctx, &staging.Change{})
	r.EmitShutdown(ctx)

	if p.proposed != 1 || p.shutdown != 1 {
		t.Fatalf("hooks should still run when they error: %+v", p)
	}
}
