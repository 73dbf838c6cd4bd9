package cache

// ScopedKeyer wraps a Keyer with a prefix so that several repositories can
// share one backend, typically a [RedisCache]:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "archlens:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ImportsKey generates a prefixed key for parsed imports.
func (k *ScopedKeyer) ImportsKey(language, version, contentHash string) string {
	return k.prefix + k.inner.ImportsKey(language, version, contentHash)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(graphHash, opts)
}
