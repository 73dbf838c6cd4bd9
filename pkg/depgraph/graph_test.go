package depgraph

import (
	"errors"
	"slices"
	"testing"
)

func build(t *testing.T, ids []string, edges [][2]string) *Graph {
	t.Helper()
	g := New(nil)
	for _, id := range ids {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%q) = %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatalf("AddEdge(%v) = %v", e, err)
		}
	}
	return g
}

func TestAddNodeErrors(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) = %v", err)
	}
	if err := g.AddNode(Node{ID: "a", Kind: KindExternal}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(a) again = %v, want ErrDuplicateNodeID", err)
	}
	n, _ := g.Node("a")
	if n.Kind != KindSystem {
		t.Errorf("duplicate AddNode replaced node kind: %v", n.Kind)
	}
	if n.Meta == nil {
		t.Error("Meta is nil after AddNode")
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := build(t, []string{"a"}, nil)
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(x→a) = %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(a→x) = %v, want ErrUnknownTargetNode", err)
	}
}

func TestAddEdgeDeduplicates(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"a", "b"}})
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if got := g.Children("a"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Children(a) = %v, want [b]", got)
	}
}

func TestInsertionOrder(t *testing.T) {
	ids := []string{"zeta", "alpha", "mid"}
	g := build(t, ids, nil)
	if got := g.NodeIDs(); !slices.Equal(got, ids) {
		t.Errorf("NodeIDs() = %v, want %v", got, ids)
	}
}

func TestRemoveNode(t *testing.T) {
	g := build(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "b"}})
	g.RemoveNode("b")

	if g.NodeCount() != 2 || g.EdgeCount() != 0 {
		t.Errorf("after RemoveNode: %d nodes, %d edges, want 2, 0", g.NodeCount(), g.EdgeCount())
	}
	if len(g.Children("a")) != 0 || len(g.Parents("c")) != 0 {
		t.Error("adjacency still references removed node")
	}
	if got := g.NodeIDs(); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("NodeIDs() = %v", got)
	}
}

func TestRenameNode(t *testing.T) {
	g := build(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	if err := g.RenameNode("b", "x"); err != nil {
		t.Fatalf("RenameNode = %v", err)
	}
	if !g.HasEdge("a", "x") || !g.HasEdge("x", "c") {
		t.Errorf("edges not renamed: %v", g.Edges())
	}
	if got := g.Parents("x"); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Parents(x) = %v", got)
	}
	if got := g.NodeIDs(); !slices.Equal(got, []string{"a", "x", "c"}) {
		t.Errorf("NodeIDs() = %v", got)
	}
	if err := g.RenameNode("x", "a"); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("RenameNode to taken id = %v", err)
	}
	if err := g.RenameNode("nope", "y"); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("RenameNode unknown = %v", err)
	}
}

func TestSourcesAndSinks(t *testing.T) {
	g := build(t, []string{"app", "cli", "lib", "core"}, [][2]string{
		{"app", "lib"}, {"cli", "lib"}, {"lib", "core"},
	})
	var sources, sinks []string
	for _, n := range g.Sources() {
		sources = append(sources, n.ID)
	}
	for _, n := range g.Sinks() {
		sinks = append(sinks, n.ID)
	}
	if !slices.Equal(sources, []string{"app", "cli"}) {
		t.Errorf("Sources() = %v", sources)
	}
	if !slices.Equal(sinks, []string{"core"}) {
		t.Errorf("Sinks() = %v", sinks)
	}
}

func TestHasCycle(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]string
		want  bool
	}{
		{"acyclic", [][2]string{{"a", "b"}, {"b", "c"}}, false},
		{"diamond", [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}, false},
		{"two-cycle", [][2]string{{"a", "b"}, {"b", "a"}}, true},
		{"triangle", [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, true},
		{"self-loop", [][2]string{{"a", "a"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, []string{"a", "b", "c", "d"}, tt.edges)
			if got := g.HasCycle(); got != tt.want {
				t.Errorf("HasCycle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClone(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	n, _ := g.Node("a")
	n.Meta[MetaLines] = 10

	c := g.Clone()
	cn, _ := c.Node("a")
	cn.Meta[MetaLines] = 20
	c.RemoveEdge("a", "b")

	if n.Meta.Int(MetaLines) != 10 {
		t.Error("Clone shares node metadata")
	}
	if !g.HasEdge("a", "b") {
		t.Error("Clone shares edges")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestMetadataAccessors(t *testing.T) {
	m := Metadata{"i": 3, "f": 2.0, "s": "x", "i64": int64(7)}
	if m.Int("i") != 3 || m.Int("f") != 2 || m.Int("i64") != 7 || m.Int("s") != 0 || m.Int("none") != 0 {
		t.Errorf("Int accessors wrong: %v", m)
	}
	if m.Text("s") != "x" || m.Text("i") != "" {
		t.Errorf("Text accessors wrong: %v", m)
	}
}

func TestParseNodeKind(t *testing.T) {
	for _, k := range []NodeKind{KindSystem, KindExternal} {
		if got := ParseNodeKind(k.String()); got != k {
			t.Errorf("ParseNodeKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
}
