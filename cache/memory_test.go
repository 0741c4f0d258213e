package cache

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/countersign/permission"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	packed := permission.PackNames(permission.UsersView, permission.UsersApprove)
	names := permission.Unpack(packed)

	if _, ok := m.Get(ctx, packed); ok {
		t.Fatal("expected miss on empty cache")
	}

	m.Set(ctx, packed, names)

	got, ok := m.Get(ctx, packed)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 names, got %d", len(got))
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(WithTTL(10 * time.Millisecond))

	m.Set(ctx, "abc", []permission.Name{permission.UsersView})
	time.Sleep(20 * time.Millisecond)

	if _, ok := m.Get(ctx, "abc"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestMemoryMaxSizeEviction(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(WithMaxSize(2))

	m.Set(ctx, "a", nil)
	m.Set(ctx, "b", nil)
	m.Set(ctx, "c", nil)

	m.mu.RLock()
	n := len(m.entries)
	m.mu.RUnlock()
	if n > 2 {
		t.Fatalf("expected at most 2 entries, got %d", n)
	}
}
