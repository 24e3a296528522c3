package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments (or a
// test run) can share one Redis database without seeing each other's
// entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// DatasetKey returns the prefixed dataset key.
func (k *ScopedKeyer) DatasetKey(source, project string) string {
	return k.prefix + k.inner.DatasetKey(source, project)
}
