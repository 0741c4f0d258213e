package countersign

import (
	"context"
	"testing"

	"github.com/xraph/countersign/permission"
)

func TestAnyOfEvaluation(t *testing.T) {
	ev := DefaultEvaluator()
	ctx := context.Background()

	packed := permission.PackNames(permission.UsersView, permission.UsersApprove)

	if !ev.IsAuthorized(ctx, packed, []permission.Name{permission.UsersApprove, permission.RolesApprove}) {
		t.Fatal("expected authorized when one required name is held")
	}
	if ev.IsAuthorized(ctx, packed, []permission.Name{permission.RolesApprove, permission.RolesEdit}) {
		t.Fatal("expected denied when held and required sets are disjoint")
	}
}

func TestEmptyRequiredListDenies(t *testing.T) {
	ev := DefaultEvaluator()

	packed := permission.PackNames(permission.UsersView)
	if ev.IsAuthorized(context.Background(), packed, nil) {
		t.Fatal("expected denied for empty requirement list")
	}
}

func TestEmptyHeldSetDenies(t *testing.T) {
	ev := DefaultEvaluator()

	if ev.IsAuthorized(context.Background(), "", []permission.Name{permission.UsersView}) {
		t.Fatal("expected denied for empty held set")
	}
}

func TestOverrideEscapeHatch(t *testing.T) {
	ev := DefaultEvaluator()
	ctx := context.Background()

	// A requirement list containing the override passes for every principal,
	// even one holding nothing.
	if !ev.IsAuthorized(ctx, "", []permission.Name{permission.AccessAll}) {
		t.Fatal("expected override requirement to pass with empty held set")
	}
	if !ev.IsAuthorized(ctx, permission.PackNames(permission.UsersView), []permission.Name{permission.RolesApprove, permission.AccessAll}) {
		t.Fatal("expected override requirement to pass regardless of held set")
	}
}

func TestUnknownCharactersDegradeToNoPermissions(t *testing.T) {
	ev := DefaultEvaluator()

	// A packed string of unmapped code points decodes to nothing.
	if ev.IsAuthorized(context.Background(), string([]rune{rune(5000), rune(6000)}), []permission.Name{permission.UsersView}) {
		t.Fatal("expected denied for unmapped packed string")
	}
}

type countingCache struct {
	store map[string][]permission.Name
	gets  int
	sets  int
}

func (c *countingCache) Get(_ context.Context, packed string) ([]permission.Name, bool) {
	c.gets++
	names, ok := c.store[packed]
	return names, ok
}

func (c *countingCache) Set(_ context.Context, packed string, names []permission.Name) {
	c.sets++
	c.store[packed] = names
}

func TestCachedEvaluator(t *testing.T) {
	cache := &countingCache{store: make(map[string][]permission.Name)}
	ev := CachedEvaluator(cache)
	ctx := context.Background()

	packed := permission.PackNames(permission.UsersApprove)
	required := []permission.Name{permission.UsersApprove}

	if !ev.IsAuthorized(ctx, packed, required) {
		t.Fatal("expected authorized")
	}
	if cache.sets != 1 {
		t.Fatalf("expected one cache fill, got %d", cache.sets)
	}

	// Second evaluation hits the cache instead of decoding again.
	if !ev.IsAuthorized(ctx, packed, required) {
		t.Fatal("expected authorized on cached path")
	}
	if cache.sets != 1 {
		t.Fatalf("expected no second cache fill, got %d sets", cache.sets)
	}
	if cache.gets != 2 {
		t.Fatalf("expected two cache lookups, got %d", cache.gets)
	}
}
