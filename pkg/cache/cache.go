// Package cache stores rendered artifacts and evaluation results.
//
// Building and laying out a tree is cheap; rendering it through Graphviz or
// rsvg-convert and simplifying it symbolically are not. The pipeline keys
// those results by the canonical tree text so that "1 + 2" and "1+2" share
// entries.
//
// # Backends
//
//   - [FileCache]: JSON entry files under the user cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: never stores anything (--no-cache)
//
// # Keys
//
// Keys are produced by a [Keyer] so that every backend uses the same layout:
//
//	artifact:<sha256 of tree + render options>
//	eval:<sha256 of expression + evaluator options>
//
// [ScopedKeyer] prefixes every key, which lets several deployments share
// one Redis database.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default TTLs per entry kind.
const (
	// TTLArtifact applies to Graphviz-rendered outputs (svg, png, pdf).
	TTLArtifact = 7 * 24 * time.Hour
	// TTLEval applies to evaluator results.
	TTLEval = 24 * time.Hour
)

// Clear removes every entry from c if the backend supports it.
func Clear(ctx context.Context, c Cache) error {
	if cl, ok := c.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return ErrUnsupported
}
