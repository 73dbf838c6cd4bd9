package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archlens/pkg/cache"
	"github.com/matzehuels/archlens/pkg/config"
	"github.com/matzehuels/archlens/pkg/errors"
	"github.com/matzehuels/archlens/pkg/pipeline"
	"github.com/matzehuels/archlens/pkg/render"
	"github.com/matzehuels/archlens/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "archlens"

	// snapshotDB is the snapshot database file inside the cache directory.
	snapshotDB = "snapshots.db"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	root       string
	noCache    bool
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the configuration named by --config, else archlens.toml
// in the working directory, else the defaults. --root overrides the
// configured source root.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		path = config.Find(wd)
	}

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
		c.Logger.Debug("loaded config", "path", path)
	}
	if c.root != "" {
		cfg.Source.Root = c.root
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, cfg.Cache.TTL.Duration, c.Logger)
	if _, shared := cc.(*cache.RedisCache); shared {
		r.SetKeyer(cache.NewScopedKeyer(nil, appName+":"))
	}
	return r, nil
}

// newCache picks the cache backend: none when disabled, Redis when a URL is
// configured and the file cache otherwise. An unreachable Redis falls back
// to the file cache.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.noCache || cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err == nil {
			c.Logger.Debug("using redis cache")
			return rc, nil
		}
		c.Logger.Warn("redis cache unavailable, using file cache", "error", err)
	}
	fc, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", cfg.Cache.Dir, "error", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// openStore opens the snapshot database in the cache directory.
func (c *CLI) openStore(cfg *config.Config) (*store.Store, error) {
	if err := os.MkdirAll(cfg.Cache.Dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create %s", cfg.Cache.Dir)
	}
	return store.Open(filepath.Join(cfg.Cache.Dir, snapshotDB))
}

// scanOptions builds the scan options from cfg.
func scanOptions(cfg *config.Config) pipeline.ScanOptions {
	return pipeline.ScanOptions{
		Resolver:   cfg.Resolver(),
		Exclude:    cfg.Source.Exclude,
		Churn:      cfg.History.Churn,
		Repository: cfg.History.Repository,
	}
}

// runScan scans with a spinner on stderr.
func (c *CLI) runScan(ctx context.Context, runner *pipeline.Runner, cfg *config.Config) (*pipeline.Scan, error) {
	spinner := newSpinner(ctx, "Scanning "+cfg.Source.Root+"...")
	spinner.Start()
	scan, err := runner.Scan(ctx, scanOptions(cfg))
	if err != nil {
		spinner.StopWithError("Scan failed")
		return nil, err
	}
	spinner.Stop()
	return scan, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) ([]render.Format, error) {
	if s == "" {
		return []render.Format{render.FormatSVG}, nil
	}
	var formats []render.Format
	for _, name := range strings.Split(s, ",") {
		f, err := render.ParseFormat(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// outputPath returns where format f of a rendering is written. A single
// format goes to output as given; several formats share output's base name.
func outputPath(output, name string, f render.Format, multiple bool) string {
	switch {
	case output == "":
		return name + "." + string(f)
	case !multiple:
		return output
	}
	return strings.TrimSuffix(output, filepath.Ext(output)) + "." + string(f)
}
