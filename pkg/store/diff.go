package store

import (
	"context"
	"slices"

	"github.com/matzehuels/archlens/pkg/depgraph"
)

// Diff lists what changed between two snapshots.
type Diff struct {
	From string `json:"from"`
	To   string `json:"to"`

	AddedModules   []string        `json:"added_modules,omitempty"`
	RemovedModules []string        `json:"removed_modules,omitempty"`
	AddedEdges     []depgraph.Edge `json:"added_edges,omitempty"`
	RemovedEdges   []depgraph.Edge `json:"removed_edges,omitempty"`
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return len(d.AddedModules) == 0 && len(d.RemovedModules) == 0 &&
		len(d.AddedEdges) == 0 && len(d.RemovedEdges) == 0
}

// Diff compares snapshot from with snapshot to. Both must exist.
func (s *Store) Diff(ctx context.Context, from, to string) (Diff, error) {
	for _, id := range []string{from, to} {
		if _, err := s.Snapshot(ctx, id); err != nil {
			return Diff{}, err
		}
	}
	d := Diff{From: from, To: to}

	oldMods, err := s.Modules(ctx, from)
	if err != nil {
		return Diff{}, err
	}
	newMods, err := s.Modules(ctx, to)
	if err != nil {
		return Diff{}, err
	}
	d.AddedModules, d.RemovedModules = compare(moduleNames(oldMods), moduleNames(newMods))

	oldEdges, err := s.Edges(ctx, from)
	if err != nil {
		return Diff{}, err
	}
	newEdges, err := s.Edges(ctx, to)
	if err != nil {
		return Diff{}, err
	}
	added, removed := compare(edgeKeys(oldEdges), edgeKeys(newEdges))
	d.AddedEdges = keysToEdges(added, newEdges)
	d.RemovedEdges = keysToEdges(removed, oldEdges)
	return d, nil
}

func moduleNames(mods []Module) []string {
	names := make([]string, len(mods))
	for i, m := range mods {
		names[i] = m.Name
	}
	return names
}

type edgeKey struct{ from, to string }

func edgeKeys(edges []depgraph.Edge) []edgeKey {
	keys := make([]edgeKey, len(edges))
	for i, e := range edges {
		keys[i] = edgeKey{e.From, e.To}
	}
	return keys
}

func keysToEdges(keys []edgeKey, edges []depgraph.Edge) []depgraph.Edge {
	var out []depgraph.Edge
	for _, e := range edges {
		if slices.Contains(keys, edgeKey{e.From, e.To}) {
			out = append(out, e)
		}
	}
	return out
}

// compare returns the elements only in b and those only in a, each in the
// order they appear.
func compare[T comparable](a, b []T) (added, removed []T) {
	inA := make(map[T]bool, len(a))
	for _, v := range a {
		inA[v] = true
	}
	inB := make(map[T]bool, len(b))
	for _, v := range b {
		inB[v] = true
		if !inA[v] {
			added = append(added, v)
		}
	}
	for _, v := range a {
		if !inB[v] {
			removed = append(removed, v)
		}
	}
	return added, removed
}
