// Package cache memoizes derived artifacts of the finalize service.
//
// The service derives algorithm documents and projected scenes from card
// stacks. Both are pure functions of their input, so they are cached under
// a key computed from the canonical JSON encoding of the cards (see [Keyer]).
//
// Three backends implement [Cache]:
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, for single-host deployments
//   - [RedisCache]: shared cache for multi-instance deployments
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/cardstack/pkg/observability"
)

// DefaultTTL is how long entries live when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NullCache is a no-op cache that never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

func (c *NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (c *NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (c *NullCache) Delete(context.Context, string) error                     { return nil }
func (c *NullCache) Close() error                                             { return nil }

// Ensure NullCache implements Cache.
var _ Cache = (*NullCache)(nil)

// Memoize returns the cached value for key, or computes it with fn and stores
// it. hit reports whether the value came from the cache. Cache read and write
// failures degrade to recomputation and are not returned.
func Memoize(ctx context.Context, c Cache, key string, ttl time.Duration, fn func() ([]byte, error)) (data []byte, hit bool, err error) {
	kind := keyType(key)
	if cached, ok, gerr := c.Get(ctx, key); gerr == nil && ok {
		observability.Cache().OnCacheHit(ctx, kind)
		return cached, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, kind)

	data, err = fn()
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, kind, len(data))
	}
	return data, false, nil
}

// keyType returns the segment before the hash, the kind of artifact a key
// names. Scope prefixes come before it and are ignored.
func keyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}
