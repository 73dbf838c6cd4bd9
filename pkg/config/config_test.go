package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archlens/pkg/errors"
	"github.com/matzehuels/archlens/pkg/view"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Source.Root)
	assert.Equal(t, ".py", cfg.Source.Extension)
	assert.Equal(t, "__init__", cfg.Source.PackageMarker)
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.TTL.Duration)
	assert.True(t, cfg.History.Churn)
	require.Len(t, cfg.Views, 1)
	assert.Equal(t, "top-level", cfg.Views[0].Name)
	assert.Empty(t, cfg.Path)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[source]
root = "src"
exclude = ["**/tests/**"]

[system]
system_prefixes = ["app", "tools"]
significant = ["flask", "sqlalchemy"]

[cache]
ttl = "1h30m"
dir = ".cache"

[history]
churn = false

[[view]]
name = "api"
kind = "sub-module"
parent = "app.api"
keep = ["app.core"]
weight_scale = 1.0

[[view]]
name = "core"
kind = "custom"
keep = ["app.core.*"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, filepath.Join(dir, "src"), cfg.Source.Root)
	assert.Equal(t, ".py", cfg.Source.Extension)
	assert.Equal(t, []string{"**/tests/**"}, cfg.Source.Exclude)
	assert.Equal(t, []string{"app", "tools"}, cfg.System.SystemPrefixes)
	assert.Equal(t, 90*time.Minute, cfg.Cache.TTL.Duration)
	assert.Equal(t, filepath.Join(dir, ".cache"), cfg.Cache.Dir)
	assert.False(t, cfg.History.Churn)

	require.Len(t, cfg.Views, 2)
	assert.Equal(t, view.KindSubModule, cfg.Views[0].Kind)
	assert.Equal(t, []string{"app.core"}, cfg.Views[0].Keep)

	views, err := cfg.CompileViews()
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 1.0, views[0].WeightScale)

	v, err := cfg.View("core")
	require.NoError(t, err)
	assert.Equal(t, "core", v.Name)

	_, err = cfg.View("missing")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	r := cfg.Resolver()
	assert.Equal(t, cfg.Source.Root, r.Root)
	assert.Equal(t, "__init__", r.PackageMarker)
}

func TestLoadKeepsDefaultViews(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[source]\nroot = \"/abs/src\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "/abs/src", filepath.ToSlash(cfg.Source.Root))
	assert.Equal(t, view.Defaults(), cfg.Views)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", "[source\n", errors.ErrCodeInvalidConfig},
		{"unknown key", "[source]\nrooot = \"src\"\n", errors.ErrCodeInvalidConfig},
		{"bad duration", "[cache]\nttl = \"soon\"\n", errors.ErrCodeInvalidConfig},
		{"negative ttl", "[cache]\nttl = \"-1h\"\n", errors.ErrCodeInvalidConfig},
		{"bad extension", "[source]\nextension = \"py\"\n", errors.ErrCodeInvalidConfig},
		{"bad exclude", "[source]\nexclude = [\"[\"]\n", errors.ErrCodeInvalidConfig},
		{"bad system name", "[system]\nsignificant = [\"flask..ext\"]\n", errors.ErrCodeInvalidConfig},
		{"duplicate view", "[[view]]\nname = \"a\"\n[[view]]\nname = \"a\"\n", errors.ErrCodeInvalidView},
		{"bad view", "[[view]]\nname = \"a\"\nkind = \"sub-module\"\n", errors.ErrCodeInvalidView},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), err.Error())
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, Find(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), nil, 0o644))
	assert.Equal(t, filepath.Join(dir, FileName), Find(dir))
}
