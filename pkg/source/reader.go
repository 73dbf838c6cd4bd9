package source

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archlens/pkg/cache"
	"github.com/matzehuels/archlens/pkg/errors"
	"github.com/matzehuels/archlens/pkg/observability"
)

// ImportReader returns the fully qualified module names a source file
// imports. Relative imports are not reported.
type ImportReader interface {
	ReadImports(ctx context.Context, path string) ([]string, error)
}

// Parser extracts imports from source bytes. Version identifies the
// extraction rules and must change whenever they do, since it is part of
// the cache key.
type Parser interface {
	Language() string
	Version() string
	ParseImports(ctx context.Context, src []byte) ([]string, error)
}

// ReadFile reads path with errors classified for the scan pipeline.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return data, nil
}

// CachedReader is an [ImportReader] that consults a cache before parsing.
type CachedReader struct {
	Parser Parser
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger
}

// NewCachedReader returns a reader caching p's results in c. A nil cache
// disables caching.
func NewCachedReader(p Parser, c cache.Cache, ttl time.Duration, logger *log.Logger) *CachedReader {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CachedReader{Parser: p, Cache: c, Keyer: cache.NewDefaultKeyer(), TTL: ttl, Logger: logger}
}

// ReadImports implements [ImportReader]. Cache failures are logged and
// otherwise ignored.
func (r *CachedReader) ReadImports(ctx context.Context, path string) ([]string, error) {
	src, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	key := r.Keyer.ImportsKey(r.Parser.Language(), r.Parser.Version(), cache.Hash(src))
	hooks := observability.Cache()

	if data, hit, err := r.Cache.Get(ctx, key); err != nil {
		r.Logger.Debug("cache read failed", "path", path, "error", err)
	} else if hit {
		var imports []string
		if err := json.Unmarshal(data, &imports); err == nil {
			hooks.OnCacheHit(ctx, "imports")
			return imports, nil
		}
	}
	hooks.OnCacheMiss(ctx, "imports")

	imports, err := r.Parser.ParseImports(ctx, src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "parse %s", path)
	}

	if data, err := json.Marshal(imports); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Debug("cache write failed", "path", path, "error", err)
		} else {
			hooks.OnCacheSet(ctx, "imports", len(data))
		}
	}
	return imports, nil
}
