package countersign

import (
	"context"

	"github.com/xraph/countersign/permission"
)

// Cache caches decoded permission sets keyed by the packed string. Decoding
// is cheap but sits on every route guard, so a small TTL cache keeps the hot
// path allocation-free for repeat tokens.
type Cache interface {
	// Get returns a cached decoded set, if available.
	Get(ctx context.Context, packed string) ([]permission.Name, bool)

	// Set stores a decoded set in the cache.
	Set(ctx context.Context, packed string, names []permission.Name)
}
