package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archlens/pkg/cache"
	"github.com/matzehuels/archlens/pkg/depgraph"
	graphio "github.com/matzehuels/archlens/pkg/io"
	"github.com/matzehuels/archlens/pkg/modname"
	"github.com/matzehuels/archlens/pkg/render"
	"github.com/matzehuels/archlens/pkg/view"
)

var sources = map[string]string{
	"__init__.py":          "",
	"app/__init__.py":      "import flask\nimport os\n",
	"app/api.py":           "from app.core import db\nimport requests\n\n\ndef handler():\n    pass\n",
	"app/core/__init__.py": "",
	"app/core/db.py":       "import sqlalchemy\n",
	"tools/__init__.py":    "",
	"tools/run.py":         "import app.api\n",
	"tools/README.md":      "not python\n",
}

func writeSources(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range sources {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, 0, log.New(io.Discard))
}

func scanOptions(dir string) ScanOptions {
	return ScanOptions{Resolver: modname.Resolver{Root: dir, Extension: ".py", PackageMarker: "__init__"}}
}

func TestScan(t *testing.T) {
	dir := writeSources(t)
	r := quietRunner(nil)

	scan, err := r.Scan(context.Background(), scanOptions(dir))
	require.NoError(t, err)

	assert.Equal(t, 7, scan.Files)
	assert.Equal(t, []string{"app", "app.api", "app.core", "app.core.db", "tools", "tools.run"}, scan.Forest.System.Names())
	assert.Equal(t, []string{"flask", "os", "requests", "sqlalchemy"}, slices.Sorted(slices.Values(scan.Forest.External.Names())))

	require.Len(t, scan.Skipped, 1)
	assert.Equal(t, filepath.Join(scan.Root, "__init__.py"), scan.Skipped[0].Path)
	assert.Contains(t, scan.Skipped[0].Reason, "does not name a module")

	api := scan.Forest.System.Get("app.api")
	assert.Equal(t, "app/api.py", api.Path)
	assert.Equal(t, 6, api.Lines)
	assert.Equal(t, []string{"app.core.db", "requests"}, api.Resolved)
	assert.Equal(t, []string{"app.api"}, scan.Forest.System.Get("tools.run").Resolved)

	assert.Equal(t, 6, scan.Lines["app.api"])
	rolled := scan.RolledLines()
	assert.Equal(t, 9, rolled["app"])
	assert.Equal(t, 1, rolled["app.core"])
	assert.Equal(t, 1, rolled["tools"])
	assert.Nil(t, scan.Churn)
	assert.Nil(t, scan.RolledChurn())
}

func TestScanRelativeRoot(t *testing.T) {
	dir := writeSources(t)
	t.Chdir(dir)

	scan, err := quietRunner(nil).Scan(context.Background(), scanOptions("."))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(scan.Root))
	assert.Equal(t, 6, scan.Forest.System.Len())
}

func TestScanExclude(t *testing.T) {
	dir := writeSources(t)
	opts := scanOptions(dir)
	opts.Exclude = []string{"tools/**"}

	scan, err := quietRunner(nil).Scan(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "app.api", "app.core", "app.core.db"}, scan.Forest.System.Names())
}

func TestScanCancelled(t *testing.T) {
	dir := writeSources(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := quietRunner(nil).Scan(ctx, scanOptions(dir))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanMissingRoot(t *testing.T) {
	_, err := quietRunner(nil).Scan(context.Background(), scanOptions(filepath.Join(t.TempDir(), "missing")))
	assert.Error(t, err)
}

func TestScanChurnOutsideRepository(t *testing.T) {
	dir := writeSources(t)
	opts := scanOptions(dir)
	opts.Churn = true

	scan, err := quietRunner(nil).Scan(context.Background(), opts)
	require.NoError(t, err)
	assert.Nil(t, scan.Churn)
}

func TestScanChurn(t *testing.T) {
	dir := writeSources(t)
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&git.AddOptions{All: true}))
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	opts := scanOptions(dir)
	opts.Churn = true

	scan, err := quietRunner(nil).Scan(context.Background(), opts)
	require.NoError(t, err)
	require.NotNil(t, scan.Churn)
	assert.Equal(t, 1, scan.Churn["app.api"].Commits)

	rolled := scan.RolledChurn()
	require.NotNil(t, rolled)
	assert.Contains(t, rolled, "app")
}

func TestViewAndGraph(t *testing.T) {
	dir := writeSources(t)
	r := quietRunner(nil)
	ctx := context.Background()

	scan, err := r.Scan(ctx, scanOptions(dir))
	require.NoError(t, err)
	before := scan.Forest.System.Names()

	v, err := view.Definition{Name: "top-level", Kind: view.KindTopLevel}.Compile()
	require.NoError(t, err)
	forest := r.View(ctx, scan, v, view.Classifier{})

	assert.Equal(t, []string{"app", "tools"}, forest.System.Names())
	assert.Equal(t, before, scan.Forest.System.Names(), "scan forest modified")

	g := r.Graph(scan, forest, GraphOptions{View: v.Name})
	assert.True(t, g.HasEdge("tools", "app"))
	assert.True(t, g.HasEdge("app", "flask"))
	assert.True(t, g.HasEdge("app", "sqlalchemy"))

	app, ok := g.Node("app")
	require.True(t, ok)
	assert.Equal(t, 9, app.Meta.Int(depgraph.MetaLines))
	_, hasChurn := app.Meta[depgraph.MetaChurn]
	assert.False(t, hasChurn)

	flask, ok := g.Node("flask")
	require.True(t, ok)
	assert.True(t, flask.IsExternal())
	_, hasLines := flask.Meta[depgraph.MetaLines]
	assert.False(t, hasLines)

	assert.Equal(t, "top-level", g.Meta().Text(MetaView))
	assert.Equal(t, scan.Root, g.Meta().Text(MetaRoot))
}

func TestGraphWithinAndCollapse(t *testing.T) {
	dir := writeSources(t)
	r := quietRunner(nil)
	ctx := context.Background()

	scan, err := r.Scan(ctx, scanOptions(dir))
	require.NoError(t, err)

	g := r.Graph(scan, scan.Forest, GraphOptions{Within: "app"})
	for _, id := range g.NodeIDs() {
		assert.True(t, id == "app" || modname.Contains("app", id), "unexpected node %s", id)
	}

	g = r.Graph(scan, scan.Forest, GraphOptions{Collapse: 1})
	app, ok := g.Node("app")
	require.True(t, ok)
	assert.Equal(t, 9, app.Meta.Int(depgraph.MetaLines))
	_, ok = g.Node("app.core.db")
	assert.False(t, ok)
}

func TestGraphReduce(t *testing.T) {
	dir := writeSources(t)
	r := quietRunner(nil)

	scan, err := r.Scan(context.Background(), scanOptions(dir))
	require.NoError(t, err)

	g := r.Graph(scan, scan.Forest, GraphOptions{Reduce: true})
	assert.False(t, g.HasCycle())
	assert.NotContains(t, g.Meta(), MetaCycles)
}

func TestGraphReduceRecordsCycles(t *testing.T) {
	dir := writeSources(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app", "core", "db.py"), []byte("import sqlalchemy\nimport app.api\n"), 0o644))
	r := quietRunner(nil)

	scan, err := r.Scan(context.Background(), scanOptions(dir))
	require.NoError(t, err)

	g := r.Graph(scan, scan.Forest, GraphOptions{Reduce: true})
	assert.False(t, g.HasCycle())
	cycles, ok := g.Meta()[MetaCycles].([]string)
	require.True(t, ok)
	assert.Len(t, cycles, 1)
	assert.Contains(t, []string{"app.api -> app.core.db", "app.core.db -> app.api"}, cycles[0])
}

// countingCache records cache traffic on top of an in-memory map.
type countingCache struct {
	data       map[string][]byte
	hits, sets int
}

func newCountingCache() *countingCache { return &countingCache{data: make(map[string][]byte)} }

func (c *countingCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *countingCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.sets++
	c.data[key] = data
	return nil
}

func (c *countingCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *countingCache) Close() error { return nil }

func sampleGraph(t *testing.T) *depgraph.Graph {
	t.Helper()
	g := depgraph.New(nil)
	require.NoError(t, g.AddNode(depgraph.Node{ID: "app", Meta: depgraph.Metadata{depgraph.MetaLines: 120}}))
	require.NoError(t, g.AddNode(depgraph.Node{ID: "tools", Meta: depgraph.Metadata{depgraph.MetaLines: 40}}))
	require.NoError(t, g.AddNode(depgraph.Node{ID: "flask", Kind: depgraph.KindExternal}))
	require.NoError(t, g.AddEdge(depgraph.Edge{From: "tools", To: "app"}))
	require.NoError(t, g.AddEdge(depgraph.Edge{From: "app", To: "flask"}))
	return g
}

func TestRender(t *testing.T) {
	r := quietRunner(nil)
	g := sampleGraph(t)

	out, err := r.Render(context.Background(), g, RenderOptions{
		Title:   "Example",
		Formats: []render.Format{render.FormatDOT, render.FormatJSON},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	dot := string(out[render.FormatDOT])
	assert.True(t, strings.HasPrefix(dot, "digraph G {"))
	assert.Contains(t, dot, `"tools" -> "app"`)
	assert.Contains(t, dot, `label="Example"`)

	back, err := graphio.ReadJSON(strings.NewReader(string(out[render.FormatJSON])))
	require.NoError(t, err)
	assert.Equal(t, g.NodeIDs(), back.NodeIDs())
	assert.Equal(t, 2, back.EdgeCount())
}

func TestRenderCachesArtifacts(t *testing.T) {
	c := newCountingCache()
	r := quietRunner(c)
	ctx := context.Background()
	opts := RenderOptions{Formats: []render.Format{render.FormatDOT, render.FormatJSON}, CacheKey: "top-level"}

	first, err := r.Render(ctx, sampleGraph(t), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, c.sets)
	assert.Equal(t, 0, c.hits)

	second, err := r.Render(ctx, sampleGraph(t), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, c.sets)
	assert.Equal(t, 2, c.hits)
	assert.Equal(t, first, second)

	// a different graph is a different key
	g := sampleGraph(t)
	require.NoError(t, g.AddEdge(depgraph.Edge{From: "tools", To: "flask"}))
	_, err = r.Render(ctx, g, opts)
	require.NoError(t, err)
	assert.Equal(t, 4, c.sets)
}

func TestRenderWithoutCacheKeySkipsCache(t *testing.T) {
	c := newCountingCache()
	r := quietRunner(c)

	_, err := r.Render(context.Background(), sampleGraph(t), RenderOptions{Formats: []render.Format{render.FormatDOT}})
	require.NoError(t, err)
	assert.Zero(t, c.sets)
	assert.Zero(t, c.hits)
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := quietRunner(nil).Render(context.Background(), sampleGraph(t), RenderOptions{Formats: []render.Format{"bmp"}})
	assert.Error(t, err)
}

func TestRenderCacheKeyCoversRenderOptions(t *testing.T) {
	c := newCountingCache()
	r := quietRunner(c)
	ctx := context.Background()
	base := RenderOptions{
		Title:       "A",
		WeightScale: 1,
		MinWeight:   1,
		Formats:     []render.Format{render.FormatDOT},
		CacheKey:    "top-level",
	}

	first, err := r.Render(ctx, sampleGraph(t), base)
	require.NoError(t, err)

	variants := map[string]func(*RenderOptions){
		"title":        func(o *RenderOptions) { o.Title = "B" },
		"weight scale": func(o *RenderOptions) { o.WeightScale = 10000 },
		"min weight":   func(o *RenderOptions) { o.MinWeight = 50 },
		"png scale":    func(o *RenderOptions) { o.Scale = 4 },
	}
	for name, change := range variants {
		t.Run(name, func(t *testing.T) {
			opts := base
			change(&opts)
			hits := c.hits

			_, err := r.Render(ctx, sampleGraph(t), opts)
			require.NoError(t, err)
			assert.Equal(t, hits, c.hits, "served from cache")
		})
	}

	title := base
	title.Title = "B"
	second, err := r.Render(ctx, sampleGraph(t), title)
	require.NoError(t, err)
	assert.NotEqual(t, first[render.FormatDOT], second[render.FormatDOT])
	assert.Contains(t, string(second[render.FormatDOT]), `"B"`)
}

func TestLineWeight(t *testing.T) {
	g := depgraph.New(nil)
	require.NoError(t, g.AddNode(depgraph.Node{ID: "app", Kind: depgraph.KindSystem, Meta: depgraph.Metadata{depgraph.MetaLines: 550}}))
	require.NoError(t, g.AddNode(depgraph.Node{ID: "flask", Kind: depgraph.KindExternal}))

	assert.Nil(t, lineWeight(g, RenderOptions{}))

	w := lineWeight(g, RenderOptions{WeightScale: 0.1, MinWeight: 10})
	assert.InDelta(t, 55.0, w("app"), 1e-9)
	assert.InDelta(t, 10.0, w("flask"), 1e-9)
	assert.InDelta(t, 10.0, w("missing"), 1e-9)
}

func TestCloseReleasesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := quietRunner(fc)
	assert.NoError(t, r.Close())
}

func TestSetKeyerScopesImportAndArtifactKeys(t *testing.T) {
	c := newCountingCache()
	r := quietRunner(c)
	r.SetKeyer(cache.NewScopedKeyer(nil, "archlens:"))

	_, err := r.Scan(context.Background(), scanOptions(writeSources(t)))
	require.NoError(t, err)
	_, err = r.Render(context.Background(), sampleGraph(t), RenderOptions{
		Formats:  []render.Format{render.FormatDOT},
		CacheKey: "top-level",
	})
	require.NoError(t, err)

	require.NotEmpty(t, c.data)
	for key := range c.data {
		assert.True(t, strings.HasPrefix(key, "archlens:"), key)
	}
}
