package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archlens/pkg/depgraph"
	"github.com/matzehuels/archlens/pkg/errors"
	"github.com/matzehuels/archlens/pkg/modtree"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedClock makes snapshot timestamps advance one minute per save.
func fixedClock(t *testing.T) {
	t.Helper()
	orig := now
	next := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time {
		next = next.Add(time.Minute)
		return next
	}
	t.Cleanup(func() { now = orig })
}

type mod struct {
	name, path string
	lines      int
	imports    []string
}

func forest(t *testing.T, mods ...mod) *modtree.Forest {
	t.Helper()
	f := modtree.New(nil)
	for _, m := range mods {
		d := modtree.NewModule(m.name, m.path, m.imports)
		d.Lines = m.lines
		require.True(t, f.Add(d))
	}
	f.ResolveExternal()
	return f
}

func firstForest(t *testing.T) *modtree.Forest {
	return forest(t,
		mod{"app", "app/__init__.py", 10, []string{"flask"}},
		mod{"app.api", "app/api.py", 120, []string{"app.core.User", "requests"}},
		mod{"app.core", "app/core.py", 80, nil},
	)
}

func secondForest(t *testing.T) *modtree.Forest {
	return forest(t,
		mod{"app", "app/__init__.py", 10, []string{"flask"}},
		mod{"app.api", "app/api.py", 150, []string{"app.core.User", "httpx"}},
		mod{"app.core", "app/core.py", 80, nil},
		mod{"app.jobs", "app/jobs.py", 30, []string{"app.core"}},
	)
}

func TestOpenMigratesIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	for _, table := range []string{"snapshots", "modules", "imports", "edges"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Save(context.Background(), Input{Root: "/src", Forest: firstForest(t)})
	require.NoError(t, err)
	snaps, err := s.Snapshots(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestSave(t *testing.T) {
	fixedClock(t)
	s := newTestStore(t)
	ctx := context.Background()
	f := firstForest(t)

	snap, err := s.Save(ctx, Input{Root: "/src", View: "top-level", Forest: f, Graph: f.Project()})
	require.NoError(t, err)

	_, err = uuid.Parse(snap.ID)
	assert.NoError(t, err)
	assert.Equal(t, 3, snap.Modules)
	assert.Equal(t, 3, snap.Edges)

	got, err := s.Snapshot(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.Root, got.Root)
	assert.Equal(t, "top-level", got.View)
	assert.True(t, snap.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, 3, got.Modules)
	assert.Equal(t, 3, got.Edges)

	mods, err := s.Modules(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, []Module{
		{Name: "app", Path: "app/__init__.py", Lines: 10},
		{Name: "app.api", Path: "app/api.py", Lines: 120},
		{Name: "app.core", Path: "app/core.py", Lines: 80},
	}, mods)

	raw, err := s.Imports(ctx, snap.ID, "app.api", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.core.User", "requests"}, raw)
	resolved, err := s.Imports(ctx, snap.ID, "app.api", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.core", "requests"}, resolved)

	edges, err := s.Edges(ctx, snap.ID)
	require.NoError(t, err)
	require.Len(t, edges, 3)
	assert.Equal(t, depgraph.Edge{From: "app", To: "flask", Meta: depgraph.Metadata{}}, edges[0])
}

func TestSaveRejectsIncompleteInput(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Save(context.Background(), Input{Forest: firstForest(t)})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	_, err = s.Save(context.Background(), Input{Root: "/src"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestSnapshotsNewestFirst(t *testing.T) {
	fixedClock(t)
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.Save(ctx, Input{Root: "/src", Forest: firstForest(t)})
	require.NoError(t, err)
	b, err := s.Save(ctx, Input{Root: "/src", Forest: secondForest(t)})
	require.NoError(t, err)
	_, err = s.Save(ctx, Input{Root: "/other", Forest: firstForest(t)})
	require.NoError(t, err)

	snaps, err := s.Snapshots(ctx, "/src")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, b.ID, snaps[0].ID)
	assert.Equal(t, a.ID, snaps[1].ID)
	assert.Equal(t, 4, snaps[0].Modules)

	all, err := s.Snapshots(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSnapshotNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Snapshot(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	f := firstForest(t)

	snap, err := s.Save(ctx, Input{Root: "/src", Forest: f, Graph: f.Project()})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, snap.ID))

	mods, err := s.Modules(ctx, snap.ID)
	require.NoError(t, err)
	assert.Empty(t, mods)
	edges, err := s.Edges(ctx, snap.ID)
	require.NoError(t, err)
	assert.Empty(t, edges)

	assert.True(t, errors.Is(s.Delete(ctx, snap.ID), errors.ErrCodeNotFound))
}

func TestDiff(t *testing.T) {
	fixedClock(t)
	s := newTestStore(t)
	ctx := context.Background()
	first, second := firstForest(t), secondForest(t)

	a, err := s.Save(ctx, Input{Root: "/src", Forest: first, Graph: first.Project()})
	require.NoError(t, err)
	b, err := s.Save(ctx, Input{Root: "/src", Forest: second, Graph: second.Project()})
	require.NoError(t, err)

	d, err := s.Diff(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, d.Empty())
	assert.Equal(t, []string{"app.jobs"}, d.AddedModules)
	assert.Empty(t, d.RemovedModules)

	var added, removed []string
	for _, e := range d.AddedEdges {
		added = append(added, e.From+"->"+e.To)
	}
	for _, e := range d.RemovedEdges {
		removed = append(removed, e.From+"->"+e.To)
	}
	assert.Equal(t, []string{"app.api->httpx", "app.jobs->app.core"}, added)
	assert.Equal(t, []string{"app.api->requests"}, removed)

	same, err := s.Diff(ctx, a.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, same.Empty())

	_, err = s.Diff(ctx, a.ID, "missing")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}
