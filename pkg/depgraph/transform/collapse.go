package transform

import (
	"github.com/matzehuels/archlens/pkg/depgraph"
	"github.com/matzehuels/archlens/pkg/modname"
)

// Collapse returns a graph in which every node is replaced by its ancestor
// at the given depth (see [modname.Parent]). A group is a system node when
// any of its members is one. Groups start without metadata; figures for
// the merged modules come from the caller, which knows their totals. Edges
// inside a group are dropped and parallel edges between groups are merged.
//
// A depth below 1 returns a copy of g.
func Collapse(g *depgraph.Graph, depth int) *depgraph.Graph {
	if depth < 1 {
		return g.Clone()
	}

	out := depgraph.New(nil)
	group := make(map[string]string, g.NodeCount())
	for _, n := range g.Nodes() {
		id := modname.Parent(n.ID, depth)
		group[n.ID] = id

		agg, ok := out.Node(id)
		if !ok {
			_ = out.AddNode(depgraph.Node{ID: id, Kind: n.Kind})
			agg, _ = out.Node(id)
		}
		if n.Kind == depgraph.KindSystem {
			agg.Kind = depgraph.KindSystem
		}
	}

	for _, e := range g.Edges() {
		from, to := group[e.From], group[e.To]
		if from == to {
			continue
		}
		_ = out.AddEdge(depgraph.Edge{From: from, To: to})
	}
	return out
}

// Within returns the sub-graph of modules equal to or inside prefix, with
// the edges among them.
func Within(g *depgraph.Graph, prefix string) *depgraph.Graph {
	inside := func(id string) bool { return id == prefix || modname.Contains(prefix, id) }

	out := depgraph.New(nil)
	for _, n := range g.Nodes() {
		if inside(n.ID) {
			_ = out.AddNode(depgraph.Node{ID: n.ID, Kind: n.Kind, Meta: n.Meta.Clone()})
		}
	}
	for _, e := range g.Edges() {
		if inside(e.From) && inside(e.To) {
			_ = out.AddEdge(depgraph.Edge{From: e.From, To: e.To, Meta: e.Meta.Clone()})
		}
	}
	return out
}
