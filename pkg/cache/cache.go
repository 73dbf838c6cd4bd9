// Package cache stores intermediate scan results so repeated runs over an
// unchanged codebase skip the expensive parsing step.
//
// # Backends
//
//   - [FileCache]: JSON entries under a directory, the default for the CLI
//   - [RedisCache]: a shared Redis instance, useful when several machines
//     analyze the same repository (CI runners, the report server)
//   - [NullCache]: stores nothing, used with --no-cache and in tests
//
// # Keys
//
// A [Keyer] derives cache keys. Keys for parsed imports are content
// addressed: the hash of the file's bytes plus the reader's language and
// version, so an edited file is re-parsed and an unchanged file moved to
// another path is not.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value stored under key. A missing or expired entry is
	// reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// ImportsKey addresses the parsed imports of one source file.
	ImportsKey(language, version, contentHash string) string

	// ArtifactKey addresses a rendered artifact of a graph.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change an artifact. Any
// option that alters the output bytes belongs here; artifacts never expire.
type ArtifactKeyOpts struct {
	View        string  `json:"view"`
	Format      string  `json:"format"`
	Title       string  `json:"title,omitempty"`
	Detailed    bool    `json:"detailed,omitempty"`
	WeightScale float64 `json:"weight_scale,omitempty"`
	MinWeight   float64 `json:"min_weight,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard [Keyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ImportsKey returns "imports:<language>:<version>:<hash>".
func (DefaultKeyer) ImportsKey(language, version, contentHash string) string {
	return "imports:" + language + ":" + version + ":" + contentHash
}

// ArtifactKey hashes the options so that any change produces a new key.
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}
