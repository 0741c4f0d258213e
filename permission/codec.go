package permission

import "errors"

// ErrNoPackedPermissions is returned when a packed permission string is
// absent entirely (a missing token claim), as opposed to empty.
var ErrNoPackedPermissions = errors.New("permission: packed permission string is absent")

// Pack encodes a set of permission codes into a packed string: one character
// per code, the character's ordinal value being the code. Order follows the
// input; Pack does not deduplicate.
func Pack(codes []int) string {
	runes := make([]rune, 0, len(codes))
	for _, c := range codes {
		runes = append(runes, rune(c))
	}
	return string(runes)
}

// PackNames encodes registered permission names into a packed string.
// Names not present in the table are skipped, mirroring Unpack's treatment
// of unknown codes.
func PackNames(names ...Name) string {
	runes := make([]rune, 0, len(names))
	for _, n := range names {
		if code, ok := codeByName[n]; ok {
			runes = append(runes, rune(code))
		}
	}
	return string(runes)
}

// Unpack decodes a packed string into permission names. Characters whose
// ordinal value does not match a registered code are dropped silently: a
// token minted against a newer table decodes cleanly on an older one, and a
// corrupted string degrades toward "permission absent", never toward
// "permission present". An empty string decodes to an empty set.
func Unpack(packed string) []Name {
	names := make([]Name, 0, len(packed))
	for _, r := range packed {
		if name, ok := nameByCode[int(r)]; ok {
			names = append(names, name)
		}
	}
	return names
}

// UnpackClaim decodes a packed permission claim that may be absent.
// A nil claim yields ErrNoPackedPermissions; an empty one is a valid empty
// set.
func UnpackClaim(claim *string) ([]Name, error) {
	if claim == nil {
		return nil, ErrNoPackedPermissions
	}
	return Unpack(*claim), nil
}
