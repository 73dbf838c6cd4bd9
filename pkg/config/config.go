// Package config loads archlens.toml.
//
// A minimal file names nothing at all; every setting has a default that
// analyzes Python sources below the current directory:
//
//	[source]
//	root = "src"
//	exclude = ["**/tests/**", "migrations"]
//
//	[system]
//	significant = ["flask", "sqlalchemy", "requests"]
//
//	[cache]
//	ttl = "168h"
//	redis_url = "redis://localhost:6379/0"
//
//	[[view]]
//	name = "api"
//	kind = "sub-module"
//	parent = "app.api"
//	keep = ["app.core"]
//
// Relative paths are resolved against the directory holding the file.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/matzehuels/archlens/pkg/errors"
	"github.com/matzehuels/archlens/pkg/modname"
	"github.com/matzehuels/archlens/pkg/view"
)

// FileName is the configuration file looked up by [Find].
const FileName = "archlens.toml"

// Config is the decoded configuration.
type Config struct {
	Source  Source            `toml:"source"`
	System  view.Classifier   `toml:"system"`
	Cache   Cache             `toml:"cache"`
	History History           `toml:"history"`
	Server  Server            `toml:"server"`
	Views   []view.Definition `toml:"view"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

// Source selects the files to scan.
type Source struct {
	Root          string   `toml:"root"`
	Extension     string   `toml:"extension"`
	PackageMarker string   `toml:"package_marker"`
	Exclude       []string `toml:"exclude"`
}

// Cache configures the import cache.
type Cache struct {
	Disabled bool     `toml:"disabled"`
	Dir      string   `toml:"dir"`
	TTL      Duration `toml:"ttl"`
	RedisURL string   `toml:"redis_url"`
}

// History configures churn mining.
type History struct {
	Churn bool `toml:"churn"`
	// Repository is the git work tree; empty means the one containing
	// Source.Root.
	Repository string `toml:"repository"`
}

// Server configures the report server.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string such as "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Source: Source{
			Root:          ".",
			Extension:     ".py",
			PackageMarker: "__init__",
		},
		Cache: Cache{
			Dir: defaultCacheDir(),
			TTL: Duration{7 * 24 * time.Hour},
		},
		History: History{Churn: true},
		Server:  Server{Addr: "127.0.0.1:8080"},
		Views:   view.Defaults(),
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "archlens")
	}
	return filepath.Join(os.TempDir(), "archlens-cache")
}

// Find returns the path of archlens.toml in dir, or "" when there is none.
func Find(dir string) string {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Load reads the file at path over the defaults and validates the result.
// An empty path returns the validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	cfg.Views = nil
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if !md.IsDefined("view") {
		cfg.Views = view.Defaults()
	}

	cfg.Path = path
	base := filepath.Dir(path)
	cfg.Source.Root = resolve(base, cfg.Source.Root)
	cfg.History.Repository = resolve(base, cfg.History.Repository)
	if md.IsDefined("cache", "dir") {
		cfg.Cache.Dir = resolve(base, cfg.Cache.Dir)
	}
	return cfg, cfg.Validate()
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Source.Root == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "source.root cannot be empty")
	}
	if err := errors.ValidateExtension(c.Source.Extension); err != nil {
		return err
	}
	for _, p := range c.Source.Exclude {
		if !doublestar.ValidatePattern(p) {
			return errors.New(errors.ErrCodeInvalidConfig, "source.exclude: invalid pattern %q", p)
		}
	}
	for _, name := range slices.Concat(c.System.SystemPrefixes, c.System.SystemNames, c.System.Significant) {
		if err := errors.ValidateModuleName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "system")
		}
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}

	seen := make(map[string]bool, len(c.Views))
	for _, d := range c.Views {
		if seen[d.Name] {
			return errors.New(errors.ErrCodeInvalidView, "view %q defined twice", d.Name)
		}
		seen[d.Name] = true
		if _, err := d.Compile(); err != nil {
			return err
		}
	}
	return nil
}

// Resolver returns the module identity resolver for the source tree.
func (c *Config) Resolver() modname.Resolver {
	return modname.Resolver{
		Root:          c.Source.Root,
		Extension:     c.Source.Extension,
		PackageMarker: c.Source.PackageMarker,
	}
}

// CompileViews compiles every configured view in order.
func (c *Config) CompileViews() ([]*view.View, error) {
	views := make([]*view.View, 0, len(c.Views))
	for _, d := range c.Views {
		v, err := d.Compile()
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// View compiles the view called name.
func (c *Config) View(name string) (*view.View, error) {
	for _, d := range c.Views {
		if d.Name == name {
			return d.Compile()
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no view named %q", name)
}
