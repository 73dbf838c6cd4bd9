package modname

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archlens/pkg/errors"
)

func pyResolver(root string) Resolver {
	return Resolver{Root: root, Extension: ".py", PackageMarker: "__init__"}
}

func TestResolverFromPath(t *testing.T) {
	root := filepath.FromSlash("/proj")
	r := pyResolver(root)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"module", "/proj/pkg/sub/mod.py", "pkg.sub.mod"},
		{"package marker", "/proj/pkg/sub/__init__.py", "pkg.sub"},
		{"top level", "/proj/a.py", "a"},
		{"top level package", "/proj/pkg/__init__.py", "pkg"},
		{"unclean path", "/proj/pkg/./sub/../sub/mod.py", "pkg.sub.mod"},
		{"no extension", "/proj/pkg/data", "pkg.data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.FromPath(filepath.FromSlash(tt.path))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolverFromPathOutsideRoot(t *testing.T) {
	r := pyResolver(filepath.FromSlash("/proj"))

	for _, p := range []string{"/other/a.py", "/proj", "/projx/a.py", "/proj/__init__.py", "relative/a.py"} {
		t.Run(p, func(t *testing.T) {
			_, err := r.FromPath(filepath.FromSlash(p))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidPath))
		})
	}
}

func TestResolverRoundTrip(t *testing.T) {
	r := pyResolver(filepath.FromSlash("/proj"))
	for _, name := range []string{"a", "pkg.sub.mod", "zeeguu.core.model.user"} {
		got, err := r.FromPath(r.ToPath(name))
		require.NoError(t, err)
		assert.Equal(t, name, got)
	}
}

func TestParent(t *testing.T) {
	assert.Equal(t, "a", Parent("a.b.c", 1))
	assert.Equal(t, "a.b", Parent("a.b.c", 2))
	assert.Equal(t, "a.b.c", Parent("a.b.c", 3))
	assert.Equal(t, "a.b.c", Parent("a.b.c", 10))
	assert.Equal(t, "", Parent("a.b.c", 0))
	assert.Equal(t, "", Parent("a.b.c", -1))
}

func TestLevelAndLocal(t *testing.T) {
	assert.Equal(t, 0, Level(""))
	assert.Equal(t, 1, Level("a"))
	assert.Equal(t, 3, Level("a.b.c"))
	assert.Equal(t, "c", Local("a.b.c"))
	assert.Equal(t, "a", Local("a"))
}

func TestJoinAndComponents(t *testing.T) {
	assert.Equal(t, "a.b.c", Join("a", "", "b", "c"))
	assert.Equal(t, "", Join())
	assert.Equal(t, []string{"a", "b"}, Components("a.b"))
}

var names = []string{"a", "a.b", "a.b.c", "a.bc", "ab", "b", "b.a", "x.y.z"}

func TestContainsIrreflexive(t *testing.T) {
	for _, x := range names {
		assert.False(t, Contains(x, x), x)
	}
}

func TestContainsAntisymmetric(t *testing.T) {
	for _, x := range names {
		for _, y := range names {
			if x == y {
				continue
			}
			assert.False(t, Contains(x, y) && Contains(y, x), "%s / %s", x, y)
		}
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("a", "a.b"))
	assert.True(t, Contains("a", "a.b.c"))
	assert.True(t, Contains("a.b", "a.b.c"))
	assert.False(t, Contains("a", "ab"))
	assert.False(t, Contains("a.b", "a.bc"))
	assert.False(t, Contains("a.b", "a"))
	assert.False(t, Contains("", "a"))
}

func TestAnyContains(t *testing.T) {
	assert.True(t, AnyContains([]string{"x", "a"}, "a.b"))
	assert.False(t, AnyContains([]string{"a.b"}, "a.b"))
	assert.False(t, AnyContains(nil, "a"))
}

func TestRelativeLevel(t *testing.T) {
	for _, a := range names {
		for _, b := range names {
			got := RelativeLevel(a, b)
			switch {
			case a == b:
				assert.Equal(t, 0, got)
			case !Contains(a, b):
				assert.Equal(t, -1, got, "%s / %s", a, b)
			default:
				assert.Equal(t, Level(b)-Level(a), got)
				assert.GreaterOrEqual(t, got, 1)
			}
		}
	}
}

func TestIsDirectChild(t *testing.T) {
	assert.True(t, IsDirectChild("a", "a.b"))
	assert.False(t, IsDirectChild("a", "a.b.c"))
	assert.False(t, IsDirectChild("a", "a"))
	assert.False(t, IsDirectChild("a", "b.a"))
}
