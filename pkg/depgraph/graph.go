package depgraph

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] and [Graph.RenameNode]
	// when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] and [Graph.RenameNode]
	// when a node with the same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist, or by [Graph.RenameNode] when the old ID is not found.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
)

// Well-known metadata keys.
const (
	MetaPath  = "path"  // source file of a system module
	MetaLines = "lines" // line count, own file plus sub-modules once rolled up
	MetaChurn = "churn" // lines changed over the repository history
)

// Metadata stores arbitrary key-value pairs attached to nodes, edges or the
// graph itself.
type Metadata map[string]any

// Int returns the integer stored under key, or 0.
func (m Metadata) Int(key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Text returns the string stored under key, or "".
func (m Metadata) Text(key string) string {
	s, _ := m[key].(string)
	return s
}

// NodeKind distinguishes modules of the analyzed system from third-party
// packages.
type NodeKind int

const (
	// KindSystem is a module whose source belongs to the analyzed codebase.
	KindSystem NodeKind = iota
	// KindExternal is a third-party package materialized from an import.
	KindExternal
)

func (k NodeKind) String() string {
	if k == KindExternal {
		return "external"
	}
	return "system"
}

// ParseNodeKind is the inverse of [NodeKind.String]. Unknown values map to
// KindSystem.
func ParseNodeKind(s string) NodeKind {
	if strings.EqualFold(s, "external") {
		return KindExternal
	}
	return KindSystem
}

// Node is a module in the graph.
type Node struct {
	ID   string   // Full module name
	Kind NodeKind // System or external
	Meta Metadata // Never nil after AddNode
}

// IsExternal reports whether the node is a third-party package.
func (n Node) IsExternal() bool { return n.Kind == KindExternal }

// Edge is a directed import relationship: From imports To.
type Edge struct {
	From string
	To   string
	Meta Metadata // Never nil after AddEdge
}

// Graph is a directed graph of modules. Cycles are allowed.
//
// The zero value is not usable - use New to create a valid Graph instance.
type Graph struct {
	order    []string
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
	meta     Metadata
}

// New creates an empty graph with optional graph-level metadata.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a node. It returns ErrInvalidNodeID for an empty ID and
// ErrDuplicateNodeID when the ID is taken.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes. Adding an edge
// that is already present does nothing.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if g.HasEdge(e.From, e.To) {
		return nil
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// HasEdge reports whether the edge from→to exists.
func (g *Graph) HasEdge(from, to string) bool {
	return slices.Contains(g.outgoing[from], to)
}

// RemoveEdge removes the edge from→to if it exists.
func (g *Graph) RemoveEdge(from, to string) {
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.From == from && e.To == to })
	g.outgoing[from] = slices.DeleteFunc(g.outgoing[from], func(s string) bool { return s == to })
	g.incoming[to] = slices.DeleteFunc(g.incoming[to], func(s string) bool { return s == from })
}

// RemoveNode removes a node and every edge touching it.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for _, to := range slices.Clone(g.outgoing[id]) {
		g.RemoveEdge(id, to)
	}
	for _, from := range slices.Clone(g.incoming[id]) {
		g.RemoveEdge(from, id)
	}
	delete(g.nodes, id)
	delete(g.outgoing, id)
	delete(g.incoming, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })
}

// RenameNode changes a node's ID, updating all edges and indices.
func (g *Graph) RenameNode(oldID, newID string) error {
	if newID == "" {
		return ErrInvalidNodeID
	}
	node, ok := g.nodes[oldID]
	if !ok {
		return ErrUnknownSourceNode
	}
	if _, exists := g.nodes[newID]; exists {
		return ErrDuplicateNodeID
	}

	node.ID = newID
	delete(g.nodes, oldID)
	g.nodes[newID] = node
	g.order[slices.Index(g.order, oldID)] = newID

	for i := range g.edges {
		if g.edges[i].From == oldID {
			g.edges[i].From = newID
		}
		if g.edges[i].To == oldID {
			g.edges[i].To = newID
		}
	}

	g.outgoing[newID] = g.outgoing[oldID]
	delete(g.outgoing, oldID)
	g.incoming[newID] = g.incoming[oldID]
	delete(g.incoming, oldID)
	for _, adj := range []map[string][]string{g.outgoing, g.incoming} {
		for id, ids := range adj {
			for i, s := range ids {
				if s == oldID {
					adj[id][i] = newID
				}
			}
		}
	}
	return nil
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// graph's nodes.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Children returns the IDs of modules that id imports. The slice must not be
// modified.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the IDs of modules that import id. The slice must not be
// modified.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// OutDegree returns the number of modules id imports.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of modules importing id.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Sources returns nodes with no incoming edges, in insertion order.
func (g *Graph) Sources() []*Node {
	var sources []*Node
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			sources = append(sources, g.nodes[id])
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges, in insertion order.
func (g *Graph) Sinks() []*Node {
	var sinks []*Node
	for _, id := range g.order {
		if len(g.outgoing[id]) == 0 {
			sinks = append(sinks, g.nodes[id])
		}
	}
	return sinks
}

// Clone returns a deep copy of the graph. Metadata maps are copied one
// level deep.
func (g *Graph) Clone() *Graph {
	c := New(g.meta.Clone())
	for _, n := range g.Nodes() {
		_ = c.AddNode(Node{ID: n.ID, Kind: n.Kind, Meta: n.Meta.Clone()})
	}
	for _, e := range g.edges {
		_ = c.AddEdge(Edge{From: e.From, To: e.To, Meta: e.Meta.Clone()})
	}
	return c
}

// Clone returns a shallow copy of m. The copy is never nil.
func (m Metadata) Clone() Metadata {
	c := make(Metadata, len(m))
	maps.Copy(c, m)
	return c
}

// Validate checks that every edge connects existing nodes.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return ErrInvalidEdgeEndpoint
		}
		if _, ok := g.nodes[e.To]; !ok {
			return ErrInvalidEdgeEndpoint
		}
	}
	return nil
}

// HasCycle reports whether the graph contains a directed cycle, self-loops
// included.
func (g *Graph) HasCycle() bool {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range g.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return true
			}
		}
	}
	return false
}
