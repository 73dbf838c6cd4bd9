package modtree

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archlens/pkg/depgraph"
	"github.com/matzehuels/archlens/pkg/modname"
)

type mod struct {
	name    string
	imports []string
}

func buildForest(t *testing.T, mods ...mod) *Forest {
	t.Helper()
	f := New(nil)
	for _, m := range mods {
		require.True(t, f.Add(NewModule(m.name, strings.ReplaceAll(m.name, ".", "/")+".py", m.imports)))
	}
	f.ResolveExternal()
	return f
}

// dump renders every descriptor with its imports for structural comparison.
func dump(f *Forest) []string {
	var out []string
	for d := range f.All() {
		out = append(out, fmt.Sprintf("%s %v -> %v", d.FullName, d.Imports, d.Resolved))
	}
	return out
}

func assertNoDangling(t *testing.T, f *Forest) {
	t.Helper()
	for d := range f.All() {
		for _, r := range d.Resolved {
			assert.NotNil(t, f.Get(r), "%s resolves to missing %s", d.FullName, r)
		}
	}
}

func sampleForest(t *testing.T) *Forest {
	return buildForest(t,
		mod{"app", []string{"flask"}},
		mod{"app.api", []string{"app.core.model", "requests"}},
		mod{"app.api.v1", []string{"app.api", "app.core", "flask.Flask"}},
		mod{"app.core", []string{"sqlalchemy.orm", "app.core.db"}},
		mod{"app.core.model", []string{"app.core.db", "app.core.model.base"}},
		mod{"app.core.db", nil},
		mod{"tools.migrate", []string{"app.core.db.Session"}},
	)
}

func TestForestDuplicate(t *testing.T) {
	f := New(nil)
	require.True(t, f.Add(NewModule("a", "a.py", nil)))
	assert.False(t, f.Add(NewModule("a", "src/a.py", nil)))
	assert.False(t, f.Add(&Descriptor{Path: "weird.py"}))

	assert.Equal(t, 1, f.Duplicates())
	diags := f.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, DiagDuplicateModule, diags[0].Kind)
	assert.Equal(t, "a", diags[0].Module)
	assert.Equal(t, DiagInvalidName, diags[1].Kind)
	assert.Equal(t, "a.py", f.Get("a").Path)
}

func TestResolveExternal(t *testing.T) {
	f := sampleForest(t)

	assert.Equal(t, []string{"flask", "requests", "sqlalchemy.orm"}, f.External.Names())
	for d := range f.External.All() {
		assert.True(t, d.IsExternal())
	}

	before := dump(f)
	assert.Equal(t, 0, f.ResolveExternal())
	assert.Equal(t, before, dump(f))

	assert.Equal(t, []string{"app.api", "app.core", "flask"}, f.System.Get("app.api.v1").Resolved)
	// symbol import inside a module resolves to the module
	assert.Equal(t, []string{"app.core.db"}, f.System.Get("tools.migrate").Resolved)
	assertNoDangling(t, f)
}

func TestResolveExternalOrderIndependent(t *testing.T) {
	f := buildForest(t,
		mod{"a", []string{"lib.sub"}},
		mod{"b", []string{"lib"}},
	)
	assert.Equal(t, []string{"lib", "lib.sub"}, f.External.Names())
	assert.Equal(t, []string{"lib.sub"}, f.System.Get("a").Resolved)
	assert.Equal(t, []string{"lib"}, f.System.Get("b").Resolved)
}

func TestPruneIsIdempotent(t *testing.T) {
	f := sampleForest(t)
	before := dump(f)
	f.Prune()
	f.Prune()
	assert.Equal(t, before, dump(f))
}

func TestFoldNothingIsIdentity(t *testing.T) {
	f := sampleForest(t)
	folded := f.Fold(func(string) bool { return false })

	assert.Equal(t, dump(f), dump(folded))
	assert.Empty(t, folded.Diagnostics())
}

func TestFoldMergesSubtrees(t *testing.T) {
	f := sampleForest(t)
	before := dump(f)

	folded := f.Fold(func(name string) bool {
		return modname.AnyContains([]string{"app.api", "app.core"}, name)
	})

	assert.Equal(t, []string{"app", "app.api", "app.core", "tools.migrate"}, folded.System.Names())

	api := folded.System.Get("app.api")
	assert.Equal(t, []string{"app.core", "app.core.model", "flask.Flask", "requests"}, api.Imports)
	assert.Equal(t, []string{"app.core", "flask", "requests"}, api.Resolved)

	core := folded.System.Get("app.core")
	assert.Equal(t, []string{"sqlalchemy.orm"}, core.Imports)
	assert.Equal(t, []string{"sqlalchemy.orm"}, core.Resolved)

	// references into a folded sub-tree land on the absorbing module
	assert.Equal(t, []string{"app.core"}, folded.System.Get("tools.migrate").Resolved)

	assert.Equal(t, before, dump(f), "input forest modified")
	assertNoDangling(t, folded)
}

func TestFoldDiscardsSiblingReferencesRegardlessOfOrder(t *testing.T) {
	for _, order := range [][]string{{"pkg.a", "pkg.b"}, {"pkg.b", "pkg.a"}} {
		f := New(nil)
		f.Add(NewModule("pkg", "pkg/__init__.py", []string{"pkg.a"}))
		for _, name := range order {
			other := "pkg.a"
			if name == "pkg.a" {
				other = "pkg.b.x"
			}
			f.Add(NewModule(name, name+".py", []string{other}))
		}
		f.ResolveExternal()

		folded := f.Fold(func(name string) bool { return modname.Contains("pkg", name) })
		pkg := folded.System.Get("pkg")
		assert.Empty(t, pkg.Imports, "order %v", order)
		assert.Empty(t, pkg.Resolved)
	}
}

func TestFoldWithoutTarget(t *testing.T) {
	f := buildForest(t,
		mod{"ns.a", []string{"requests"}},
		mod{"ns.b", nil},
		mod{"other", []string{"ns.a"}},
	)

	folded := f.Fold(func(name string) bool { return name == "ns.a" })

	assert.Equal(t, []string{"ns.b", "other"}, folded.System.Names())
	diags := folded.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, DiagFoldWithoutTarget, diags[0].Kind)
	assert.Equal(t, "ns.a", diags[0].Module)
	assert.Empty(t, folded.System.Get("other").Resolved)
	assertNoDangling(t, folded)
}

func TestFoldExternalTree(t *testing.T) {
	f := buildForest(t,
		mod{"a", []string{"lib.sub.x"}},
		mod{"b", []string{"lib"}},
	)
	require.Equal(t, []string{"lib", "lib.sub.x"}, f.External.Names())

	folded := f.Fold(func(name string) bool { return modname.Contains("lib", name) })

	assert.Equal(t, []string{"lib"}, folded.External.Names())
	assert.Equal(t, []string{"lib"}, folded.System.Get("a").Resolved)
	assert.Empty(t, folded.Diagnostics())
}

func TestFilterKeepsDescendantOfRemovedAncestor(t *testing.T) {
	f := buildForest(t,
		mod{"pkg.a", []string{"pkg.a.b"}},
		mod{"pkg.a.b", []string{"requests"}},
	)

	filtered := f.Filter(func(name string) bool { return name != "pkg.a" })

	assert.Nil(t, filtered.System.Get("pkg.a"))
	require.NotNil(t, filtered.System.Get("pkg.a.b"))
	assert.Equal(t, []string{"requests"}, filtered.System.Get("pkg.a.b").Resolved)
	assert.NotNil(t, f.System.Get("pkg.a"), "input forest modified")
}

func TestFilterNarrowsImportsByResolvedName(t *testing.T) {
	f := buildForest(t,
		mod{"app.api", []string{"app.core.User", "leftpad", "flask"}},
		mod{"app.core", nil},
	)
	keep := func(name string) bool {
		return name == "app.api" || name == "app.core" || name == "flask"
	}

	filtered := f.Filter(keep)

	api := filtered.System.Get("app.api")
	assert.Equal(t, []string{"app.core.User", "flask"}, api.Imports)
	assert.Equal(t, []string{"app.core", "flask"}, api.Resolved)
	assert.Equal(t, []string{"flask"}, filtered.External.Names())
	assert.Equal(t, []string{"app.core.User", "flask", "leftpad"}, f.System.Get("app.api").Imports)
}

func TestTransformSequenceHasNoDanglingReferences(t *testing.T) {
	f := sampleForest(t)

	g := f.Fold(func(name string) bool { return modname.Contains("app.core", name) })
	g = g.Filter(func(name string) bool { return name != "app.core" && name != "requests" })
	g = g.Fold(func(name string) bool { return modname.Contains("app", name) })
	g = g.Filter(func(name string) bool { return !strings.HasPrefix(name, "sqlalchemy") })

	assertNoDangling(t, g)
	assert.Equal(t, []string{"app", "tools.migrate"}, g.System.Names())
	assertNoDangling(t, f)
}

func TestStripImports(t *testing.T) {
	f := sampleForest(t)
	c := f.Clone()

	ok := c.StripImports("app.api", func(name string) bool {
		d := c.Get(name)
		return d != nil && d.IsExternal()
	})
	require.True(t, ok)
	assert.Equal(t, []string{"app.core.model"}, c.System.Get("app.api").Resolved)
	assert.Equal(t, []string{"app.core.model", "requests"}, f.System.Get("app.api").Imports)

	assert.False(t, c.StripImports("missing", func(string) bool { return true }))
	diags := c.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, DiagMissingDescriptor, diags[0].Kind)
}

func TestIsReferenced(t *testing.T) {
	f := sampleForest(t)
	assert.True(t, f.IsReferenced("requests"))
	assert.True(t, f.IsReferenced("app.core.db"))
	assert.False(t, f.IsReferenced("tools.migrate"))
}

func TestProjectEndToEnd(t *testing.T) {
	f := buildForest(t,
		mod{"a", []string{"b"}},
		mod{"sub.b", []string{"c.d"}},
	)

	g := f.Project()

	assert.Equal(t, []string{"a", "sub.b", "b", "c.d"}, g.NodeIDs())
	assert.Equal(t, []depgraph.Edge{
		{From: "a", To: "b", Meta: depgraph.Metadata{}},
		{From: "sub.b", To: "c.d", Meta: depgraph.Metadata{}},
	}, g.Edges())

	n, ok := g.Node("c.d")
	require.True(t, ok)
	assert.True(t, n.IsExternal())
	n, _ = g.Node("sub.b")
	assert.Equal(t, "sub/b.py", n.Meta.Text(depgraph.MetaPath))
}

func TestProjectFullyQualifiedImport(t *testing.T) {
	f := buildForest(t,
		mod{"a", []string{"sub.b"}},
		mod{"sub.b", []string{"c.d"}},
	)

	g := f.Project()

	assert.Equal(t, []string{"a", "sub.b", "c.d"}, g.NodeIDs())
	assert.True(t, g.HasEdge("a", "sub.b"))
	assert.True(t, g.HasEdge("sub.b", "c.d"))
	assert.Equal(t, 2, g.EdgeCount())
}

func TestProjectSkipsMissingTargets(t *testing.T) {
	f := buildForest(t, mod{"a", nil}, mod{"b", nil})
	f.System.Get("a").Resolved = []string{"b", "ghost"}

	g := f.Project()

	assert.Equal(t, 1, g.EdgeCount())
	assert.True(t, g.HasEdge("a", "b"))
	assert.Empty(t, f.Diagnostics())
}

func TestProjectDuplicateAcrossTrees(t *testing.T) {
	f := buildForest(t, mod{"a", []string{"six"}})
	f.AddExternal(NewExternal("a"))

	g := f.Project()

	assert.Equal(t, 2, g.NodeCount())
	n, _ := g.Node("a")
	assert.False(t, n.IsExternal())
	diags := f.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, DiagDuplicateGraphNode, diags[0].Kind)
}
