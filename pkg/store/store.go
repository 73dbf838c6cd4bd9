// Package store persists scan snapshots in SQLite.
//
// A snapshot records the modules of one scan, their raw and resolved
// imports, and the edges of one rendered view. Snapshots of the same root
// taken over time show how the architecture drifts; see [Store.Diff].
//
// # Usage
//
//	s, err := store.Open(filepath.Join(cacheDir, "snapshots.db"))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	snap, err := s.Save(ctx, store.Input{Root: scan.Root, View: "top-level", Forest: scan.Forest, Graph: g})
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/matzehuels/archlens/pkg/depgraph"
	"github.com/matzehuels/archlens/pkg/errors"
	"github.com/matzehuels/archlens/pkg/modtree"
)

// Store is the SQLite data access layer for snapshots.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
// The path ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000"
	if path == ":memory:" {
		dsn = "file::memory:?_foreign_keys=ON"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// every connection would see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS snapshots (
  id              TEXT PRIMARY KEY,
  root            TEXT NOT NULL,
  view            TEXT NOT NULL DEFAULT '',
  created_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS modules (
  snapshot_id     TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
  name            TEXT NOT NULL,
  path            TEXT NOT NULL,
  lines           INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (snapshot_id, name)
);

CREATE TABLE IF NOT EXISTS imports (
  snapshot_id     TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
  module          TEXT NOT NULL,
  name            TEXT NOT NULL,
  resolved        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS edges (
  snapshot_id     TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
  source          TEXT NOT NULL,
  target          TEXT NOT NULL,
  external        INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (snapshot_id, source, target)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_root ON snapshots(root, created_at);
CREATE INDEX IF NOT EXISTS idx_imports_snapshot ON imports(snapshot_id, module);
`

// Snapshot describes one saved scan.
type Snapshot struct {
	ID        string    `json:"id"`
	Root      string    `json:"root"`
	View      string    `json:"view,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Modules   int       `json:"modules"`
	Edges     int       `json:"edges"`
}

// Module is a system module stored with a snapshot.
type Module struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Lines int    `json:"lines"`
}

// Input is what [Store.Save] persists. Graph is optional.
type Input struct {
	Root   string
	View   string
	Forest *modtree.Forest
	Graph  *depgraph.Graph
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// Save stores in as a new snapshot inside a single transaction.
func (s *Store) Save(ctx context.Context, in Input) (Snapshot, error) {
	if in.Root == "" || in.Forest == nil {
		return Snapshot{}, errors.New(errors.ErrCodeInvalidInput, "snapshot needs a root and a forest")
	}
	snap := Snapshot{ID: uuid.NewString(), Root: in.Root, View: in.View, CreatedAt: now()}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, root, view, created_at) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.Root, snap.View, snap.CreatedAt,
	); err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}

	insModule, err := tx.PrepareContext(ctx, `INSERT INTO modules (snapshot_id, name, path, lines) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: prepare modules: %w", err)
	}
	defer insModule.Close()
	insImport, err := tx.PrepareContext(ctx, `INSERT INTO imports (snapshot_id, module, name, resolved) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: prepare imports: %w", err)
	}
	defer insImport.Close()

	for d := range in.Forest.System.All() {
		if _, err := insModule.ExecContext(ctx, snap.ID, d.FullName, d.Path, d.Lines); err != nil {
			return Snapshot{}, fmt.Errorf("save snapshot: module %q: %w", d.FullName, err)
		}
		snap.Modules++
		for _, name := range d.Imports {
			if _, err := insImport.ExecContext(ctx, snap.ID, d.FullName, name, false); err != nil {
				return Snapshot{}, fmt.Errorf("save snapshot: import %q: %w", name, err)
			}
		}
		for _, name := range d.Resolved {
			if _, err := insImport.ExecContext(ctx, snap.ID, d.FullName, name, true); err != nil {
				return Snapshot{}, fmt.Errorf("save snapshot: import %q: %w", name, err)
			}
		}
	}

	if in.Graph != nil {
		insEdge, err := tx.PrepareContext(ctx, `INSERT INTO edges (snapshot_id, source, target, external) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return Snapshot{}, fmt.Errorf("save snapshot: prepare edges: %w", err)
		}
		defer insEdge.Close()
		for _, e := range in.Graph.Edges() {
			external := false
			if n, ok := in.Graph.Node(e.To); ok {
				external = n.IsExternal()
			}
			if _, err := insEdge.ExecContext(ctx, snap.ID, e.From, e.To, external); err != nil {
				return Snapshot{}, fmt.Errorf("save snapshot: edge %s -> %s: %w", e.From, e.To, err)
			}
			snap.Edges++
		}
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: commit: %w", err)
	}
	return snap, nil
}

// Snapshots lists the snapshots of root, newest first. An empty root lists
// every snapshot.
func (s *Store) Snapshots(ctx context.Context, root string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.root, s.view, s.created_at,
		  (SELECT COUNT(*) FROM modules m WHERE m.snapshot_id = s.id),
		  (SELECT COUNT(*) FROM edges e WHERE e.snapshot_id = s.id)
		FROM snapshots s
		WHERE ? = '' OR s.root = ?
		ORDER BY s.created_at DESC, s.id`, root, root)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Root, &snap.View, &snap.CreatedAt, &snap.Modules, &snap.Edges); err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Snapshot returns the snapshot with the given id. A missing snapshot
// returns an error with code [errors.ErrCodeNotFound].
func (s *Store) Snapshot(ctx context.Context, id string) (Snapshot, error) {
	snap := Snapshot{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT root, view, created_at,
		  (SELECT COUNT(*) FROM modules WHERE snapshot_id = ?),
		  (SELECT COUNT(*) FROM edges WHERE snapshot_id = ?)
		FROM snapshots WHERE id = ?`, id, id, id,
	).Scan(&snap.Root, &snap.View, &snap.CreatedAt, &snap.Modules, &snap.Edges)
	if err == sql.ErrNoRows {
		return Snapshot{}, errors.New(errors.ErrCodeNotFound, "snapshot %s not found", id)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

// Modules returns the modules of snapshot id ordered by name.
func (s *Store) Modules(ctx context.Context, id string) ([]Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, path, lines FROM modules WHERE snapshot_id = ? ORDER BY name`, id)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var out []Module
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.Name, &m.Path, &m.Lines); err != nil {
			return nil, fmt.Errorf("list modules: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Imports returns the imports module declared in snapshot id. With
// resolved set the names the imports resolved to are returned instead.
func (s *Store) Imports(ctx context.Context, id, module string, resolved bool) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM imports WHERE snapshot_id = ? AND module = ? AND resolved = ? ORDER BY rowid`,
		id, module, resolved)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list imports: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Edges returns the graph edges of snapshot id in insertion order.
func (s *Store) Edges(ctx context.Context, id string) ([]depgraph.Edge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, target FROM edges WHERE snapshot_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()

	var out []depgraph.Edge
	for rows.Next() {
		e := depgraph.Edge{Meta: depgraph.Metadata{}}
		if err := rows.Scan(&e.From, &e.To); err != nil {
			return nil, fmt.Errorf("list edges: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes snapshot id and everything stored with it.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.ErrCodeNotFound, "snapshot %s not found", id)
	}
	return nil
}
