package permission

import "testing"

func TestTableLookups(t *testing.T) {
	code, ok := CodeOf(UsersView)
	if !ok || code != 150 {
		t.Fatalf("expected UsersView = 150, got %d (%v)", code, ok)
	}

	name, ok := ByCode(9998)
	if !ok || name != AccessAll {
		t.Fatalf("expected code 9998 = AccessAll, got %q (%v)", name, ok)
	}

	if _, ok := CodeOf(Name("Bogus")); ok {
		t.Fatal("unregistered name should not resolve")
	}
	if _, ok := ByCode(9000); ok {
		t.Fatal("unassigned code should not resolve")
	}
}

func TestAllSortedByCode(t *testing.T) {
	names := All()
	if len(names) == 0 {
		t.Fatal("table should not be empty")
	}
	prev := 0
	for _, n := range names {
		code, ok := CodeOf(n)
		if !ok {
			t.Fatalf("All returned unregistered name %q", n)
		}
		if code <= prev {
			t.Fatalf("All not sorted by code: %d after %d", code, prev)
		}
		prev = code
	}
}

func TestRegisterRejectsCollisions(t *testing.T) {
	assertPanics := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Fatalf("%s: expected panic", name)
			}
		}()
		fn()
	}

	assertPanics("duplicate name", func() { Register(UsersView, 8000) })
	assertPanics("duplicate code", func() { Register(Name("Fresh"), 150) })
	assertPanics("code out of range", func() { Register(Name("Fresh"), 10000) })
}
