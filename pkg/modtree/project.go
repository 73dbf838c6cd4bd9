package modtree

import (
	"errors"

	"github.com/matzehuels/archlens/pkg/depgraph"
)

// Project flattens the forest into a directed graph. Every descriptor of
// System, then of External, becomes a node; a name present in both trees
// keeps its System node and records a [DiagDuplicateGraphNode] diagnostic.
// Every resolved import becomes an edge when its target is a node and is
// skipped silently otherwise.
//
// System nodes carry [depgraph.KindSystem], External nodes
// [depgraph.KindExternal]. Node metadata holds the module's "path" and
// "lines" when known.
func (f *Forest) Project() *depgraph.Graph {
	g := depgraph.New(nil)
	f.projectNodes(g, f.System, depgraph.KindSystem)
	f.projectNodes(g, f.External, depgraph.KindExternal)

	for d := range f.All() {
		for _, to := range d.Resolved {
			if _, ok := g.Node(to); !ok {
				continue
			}
			_ = g.AddEdge(depgraph.Edge{From: d.FullName, To: to})
		}
	}
	return g
}

func (f *Forest) projectNodes(g *depgraph.Graph, t *Tree, kind depgraph.NodeKind) {
	for d := range t.All() {
		meta := depgraph.Metadata{}
		if d.Path != "" {
			meta[depgraph.MetaPath] = d.Path
		}
		if d.Lines > 0 {
			meta[depgraph.MetaLines] = d.Lines
		}
		err := g.AddNode(depgraph.Node{ID: d.FullName, Kind: kind, Meta: meta})
		if errors.Is(err, depgraph.ErrDuplicateNodeID) {
			f.note(DiagDuplicateGraphNode, d.FullName, "defined in both trees, keeping the first")
		}
	}
}
