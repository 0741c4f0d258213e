package countersign

import (
	"context"
	"strings"

	"github.com/xraph/countersign/permission"
)

// Evaluator decides whether a packed permission string satisfies a
// requirement list. Implementations must be pure decision functions.
type Evaluator interface {
	IsAuthorized(ctx context.Context, packed string, required []permission.Name) bool
}

// DefaultEvaluator returns the built-in packed-string evaluator.
func DefaultEvaluator() Evaluator { return &packedEvaluator{} }

// CachedEvaluator returns an evaluator that memoizes decoded sets in c.
func CachedEvaluator(c Cache) Evaluator { return &packedEvaluator{cache: c} }

type packedEvaluator struct {
	cache Cache
}

// IsAuthorized decodes the principal's packed string and applies ANY-of
// semantics: the check passes when the held set and the requirement list
// share at least one name. A requirement list containing the universal
// override passes unconditionally: the check is against the requirement
// list, not the held set, so routes that must always render list the
// override as a requirement.
func (e *packedEvaluator) IsAuthorized(ctx context.Context, packed string, required []permission.Name) bool {
	if len(required) == 0 {
		return false
	}

	for _, r := range required {
		if trimName(r) == permission.AccessAll {
			return true
		}
	}

	held := e.decode(ctx, packed)
	if len(held) == 0 {
		return false
	}

	for _, r := range required {
		if _, ok := held[trimName(r)]; ok {
			return true
		}
	}
	return false
}

func (e *packedEvaluator) decode(ctx context.Context, packed string) map[permission.Name]struct{} {
	var names []permission.Name
	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, packed); ok {
			names = cached
		}
	}
	if names == nil {
		names = permission.Unpack(packed)
		if e.cache != nil {
			e.cache.Set(ctx, packed, names)
		}
	}

	held := make(map[permission.Name]struct{}, len(names))
	for _, n := range names {
		held[trimName(n)] = struct{}{}
	}
	return held
}

// trimName normalizes a permission name. Held and required names are both
// trimmed before comparison.
func trimName(n permission.Name) permission.Name {
	return permission.Name(strings.TrimSpace(string(n)))
}
