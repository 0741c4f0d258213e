package staging

import (
	"testing"

	"github.com/xraph/countersign/permission"
)

func TestStatusTerminal(t *testing.T) {
	if !StatusCompleted.Terminal() || !StatusDeclined.Terminal() {
		t.Fatal("expected completed and declined to be terminal")
	}
	if StatusPending.Terminal() {
		t.Fatal("expected pending to be non-terminal")
	}
	// Reserved statuses never terminate a workflow this module runs.
	if StatusReview.Terminal() || StatusFailed.Terminal() {
		t.Fatal("expected reserved statuses to be non-terminal")
	}
}

func TestDefaultCapability(t *testing.T) {
	cases := []struct {
		kind Kind
		want permission.Name
	}{
		{KindUserCreate, permission.UsersApprove},
		{KindUserUpdate, permission.UsersApprove},
		{KindUserToggle, permission.UsersApprove},
		{KindRoleCreate, permission.RolesApprove},
		{KindRoleUpdate, permission.RolesApprove},
		{KindRolePermissions, permission.RolesApprove},
	}
	for _, c := range cases {
		got, ok := DefaultCapability(c.kind)
		if !ok || got != c.want {
			t.Fatalf("DefaultCapability(%s) = %s, %v; want %s", c.kind, got, ok, c.want)
		}
	}

	if _, ok := DefaultCapability(Kind("mystery")); ok {
		t.Fatal("expected unknown kind to resolve no capability")
	}
}

func TestKindModule(t *testing.T) {
	if KindUserToggle.Module() != "users" {
		t.Fatalf("unexpected module %s", KindUserToggle.Module())
	}
	if KindRolePermissions.Module() != "roles" {
		t.Fatalf("unexpected module %s", KindRolePermissions.Module())
	}
	if Kind("mystery").Module() != "staging" {
		t.Fatal("expected unknown kinds to fall back to the staging module")
	}
}

func TestKindValid(t *testing.T) {
	if !KindUserCreate.Valid() {
		t.Fatal("expected user_create to be valid")
	}
	if Kind("mystery").Valid() {
		t.Fatal("expected unknown kind to be invalid")
	}
}
