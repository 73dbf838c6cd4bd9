package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/archlens/pkg/depgraph"
)

// ReadJSON decodes a JSON module graph from r.
//
// The input is an object with "nodes" and "edges" arrays and an optional
// "meta" object:
//
//	{
//	  "nodes": [{"id": "app.api"}, {"id": "flask", "kind": "external"}],
//	  "edges": [{"from": "app.api", "to": "flask"}]
//	}
//
// ReadJSON fails on malformed JSON, duplicate or empty node IDs and edges
// that reference unknown nodes. Errors name the offending node or edge and
// wrap the [depgraph] sentinel errors.
//
// Numbers in metadata decode as float64; [depgraph.Metadata.Int] reads them
// back as integers.
func ReadJSON(r io.Reader) (*depgraph.Graph, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := depgraph.New(data.Meta)
	for _, n := range data.Nodes {
		nd := depgraph.Node{ID: n.ID, Kind: depgraph.ParseNodeKind(n.Kind), Meta: n.Meta}
		if err := g.AddNode(nd); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(depgraph.Edge{From: e.From, To: e.To, Meta: e.Meta}); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}

	return g, nil
}

// ImportJSON reads the JSON file at path with [ReadJSON].
func ImportJSON(path string) (*depgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
