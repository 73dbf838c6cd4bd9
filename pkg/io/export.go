package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/archlens/pkg/depgraph"
)

type graph struct {
	Meta  depgraph.Metadata `json:"meta,omitempty"`
	Nodes []node            `json:"nodes"`
	Edges []edge            `json:"edges"`
}

type node struct {
	ID   string            `json:"id"`
	Kind string            `json:"kind,omitempty"`
	Meta depgraph.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From string            `json:"from"`
	To   string            `json:"to"`
	Meta depgraph.Metadata `json:"meta,omitempty"`
}

// WriteJSON encodes a module graph as JSON and writes it to w.
// System nodes omit the kind field; external nodes carry "external".
// The output can be read back with [ReadJSON].
func WriteJSON(g *depgraph.Graph, w io.Writer) error {
	nodes := g.Nodes()
	edges := g.Edges()
	out := graph{
		Meta:  g.Meta(),
		Nodes: make([]node, len(nodes)),
		Edges: make([]edge, len(edges)),
	}

	for i, n := range nodes {
		nd := node{ID: n.ID, Meta: n.Meta}
		if n.IsExternal() {
			nd.Kind = n.Kind.String()
		}
		out.Nodes[i] = nd
	}
	for i, e := range edges {
		out.Edges[i] = edge{From: e.From, To: e.To, Meta: e.Meta}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a module graph to a JSON file at path.
func ExportJSON(g *depgraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
