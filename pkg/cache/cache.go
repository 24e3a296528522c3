// Package cache stores raw datasets fetched by sources so repeated layouts
// of the same project skip the upstream round trip.
//
// Three backends implement [Cache]:
//   - [NullCache] stores nothing (caching disabled, tests)
//   - [FileCache] keeps JSON entries under a directory (CLI)
//   - [RedisCache] shares entries between server replicas
//
// Keys come from a [Keyer] so that the key layout is defined in one place.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil); errors
	// are reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// DatasetKey identifies the raw dataset of project as served by the
	// named source.
	DatasetKey(source, project string) string
}

// DefaultKeyer produces "dataset:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key layout.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) DatasetKey(source, project string) string {
	return hashKey("dataset", source, project)
}
