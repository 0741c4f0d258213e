package permission

import "testing"

func TestPackUnpackRoundTrip(t *testing.T) {
	names := []Name{UsersView, UsersCreate, RolesApprove, AccessAll}

	packed := PackNames(names...)
	if len([]rune(packed)) != len(names) {
		t.Fatalf("expected %d code points, got %d", len(names), len([]rune(packed)))
	}

	got := Unpack(packed)
	if len(got) != len(names) {
		t.Fatalf("expected %d names back, got %d: %v", len(names), len(got), got)
	}
	want := make(map[Name]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	for _, n := range got {
		if _, ok := want[n]; !ok {
			t.Fatalf("unexpected name %q in decoded set", n)
		}
	}
}

func TestPackRawCodes(t *testing.T) {
	codes := []int{150, 204, 9998}
	packed := Pack(codes)

	got := Unpack(packed)
	if len(got) != 3 {
		t.Fatalf("expected 3 names, got %v", got)
	}
	if got[0] != UsersView || got[1] != RolesApprove || got[2] != AccessAll {
		t.Fatalf("decode order should follow encode order, got %v", got)
	}
}

func TestUnpackDropsUnknownCodes(t *testing.T) {
	// 9000 is inside the valid range but unassigned; it must be skipped
	// without aborting the rest of the string.
	packed := Pack([]int{150, 9000, 151})

	got := Unpack(packed)
	if len(got) != 2 {
		t.Fatalf("expected unknown code to be dropped, got %v", got)
	}
	if got[0] != UsersView || got[1] != UsersCreate {
		t.Fatalf("expected [UsersView UsersCreate], got %v", got)
	}
}

func TestUnpackEmptyString(t *testing.T) {
	if got := Unpack(""); len(got) != 0 {
		t.Fatalf("empty string should decode to empty set, got %v", got)
	}
}

func TestUnpackClaim(t *testing.T) {
	if _, err := UnpackClaim(nil); err != ErrNoPackedPermissions {
		t.Fatalf("nil claim should fail with ErrNoPackedPermissions, got %v", err)
	}

	empty := ""
	got, err := UnpackClaim(&empty)
	if err != nil {
		t.Fatalf("empty claim should not error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("empty claim should decode to empty set, got %v", got)
	}
}

func TestPackNamesSkipsUnregistered(t *testing.T) {
	packed := PackNames(UsersView, Name("NoSuchPermission"))
	if len([]rune(packed)) != 1 {
		t.Fatalf("unregistered name should be skipped, packed %q", packed)
	}
}
