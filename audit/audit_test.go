package audit

import (
	"testing"

	"github.com/xraph/countersign/staging"
)

func TestTypeFor(t *testing.T) {
	cases := []struct {
		kind  staging.Kind
		stage Stage
		want  string
	}{
		{staging.KindUserCreate, StageInitiated, "UserCreateInitiated"},
		{staging.KindUserCreate, StageApproved, "UserCreateApproved"},
		{staging.KindUserToggle, StageDeclined, "UserToggleDeclined"},
		{staging.KindRolePermissions, StageApproved, "RolePermissionsApproved"},
		{staging.Kind("mystery"), StageInitiated, "ChangeInitiated"},
	}
	for _, c := range cases {
		if got := TypeFor(c.kind, c.stage); got != c.want {
			t.Fatalf("TypeFor(%s, %s) = %s, want %s", c.kind, c.stage, got, c.want)
		}
	}
}
