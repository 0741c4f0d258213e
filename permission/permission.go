// Package permission defines the static permission code table and the packed
// string codec used to carry a principal's permission set inside a bearer
// token claim.
//
// Every permission has a stable numeric code in the range 1–9999. Codes are
// assigned by feature area and are never reused or renumbered once shipped,
// because they are persisted inside previously issued tokens and historical
// audit records.
package permission

import (
	"fmt"
	"sort"
)

// Name identifies a permission.
type Name string

// Permission names and their feature-area code blocks.
//
// Dashboard: 100–109, users: 150–169, audit: 170–179, roles: 200–209,
// staging: 210–219. Code 9998 is reserved for the universal override.
const (
	DashboardView Name = "DashboardView"

	UsersView    Name = "UsersView"
	UsersCreate  Name = "UsersCreate"
	UsersEdit    Name = "UsersEdit"
	UsersToggle  Name = "UsersToggle"
	UsersApprove Name = "UsersApprove"
	UsersExport  Name = "UsersExport"

	AuditTrailsView Name = "AuditTrailsView"

	RolesView           Name = "RolesView"
	RolesCreate         Name = "RolesCreate"
	RolesEdit           Name = "RolesEdit"
	RolesPermissionsEdit Name = "RolesPermissionsEdit"
	RolesApprove        Name = "RolesApprove"

	StagingView Name = "StagingView"

	// AccessAll is the universal override. A principal holding it passes
	// every check, and a requirement list containing it passes for every
	// principal.
	AccessAll Name = "PermissionsAccessAll"
)

// MinCode and MaxCode bound the valid code range. The bounds exist so every
// code is a valid single code point in a packed string.
const (
	MinCode = 1
	MaxCode = 9999
)

var (
	codeByName = map[Name]int{}
	nameByCode = map[int]Name{}
)

// Register adds a permission to the table. It panics if the name or code is
// already taken or the code is out of range; the table is assembled at init
// time and a collision is a programming error.
func Register(name Name, code int) {
	if code < MinCode || code > MaxCode {
		panic(fmt.Sprintf("permission: code %d for %q out of range [%d, %d]", code, name, MinCode, MaxCode))
	}
	if existing, ok := codeByName[name]; ok {
		panic(fmt.Sprintf("permission: %q already registered with code %d", name, existing))
	}
	if existing, ok := nameByCode[code]; ok {
		panic(fmt.Sprintf("permission: code %d already registered as %q", code, existing))
	}
	codeByName[name] = code
	nameByCode[code] = name
}

func init() {
	Register(DashboardView, 100)

	Register(UsersView, 150)
	Register(UsersCreate, 151)
	Register(UsersEdit, 152)
	Register(UsersToggle, 153)
	Register(UsersApprove, 154)
	Register(UsersExport, 155)

	Register(AuditTrailsView, 170)

	Register(RolesView, 200)
	Register(RolesCreate, 201)
	Register(RolesEdit, 202)
	Register(RolesPermissionsEdit, 203)
	Register(RolesApprove, 204)

	Register(StagingView, 210)

	Register(AccessAll, 9998)
}

// CodeOf returns the numeric code for a permission name.
func CodeOf(name Name) (int, bool) {
	code, ok := codeByName[name]
	return code, ok
}

// ByCode returns the permission name for a numeric code.
func ByCode(code int) (Name, bool) {
	name, ok := nameByCode[code]
	return name, ok
}

// All returns every registered permission name, sorted by code.
func All() []Name {
	codes := make([]int, 0, len(nameByCode))
	for c := range nameByCode {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	names := make([]Name, len(codes))
	for i, c := range codes {
		names[i] = nameByCode[c]
	}
	return names
}
