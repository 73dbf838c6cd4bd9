package io

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/archlens/pkg/depgraph"
)

func sampleGraph(t *testing.T) *depgraph.Graph {
	t.Helper()
	g := depgraph.New(depgraph.Metadata{"view": "top-level"})
	for _, n := range []depgraph.Node{
		{ID: "app", Meta: depgraph.Metadata{depgraph.MetaPath: "app/__init__.py", depgraph.MetaLines: 120}},
		{ID: "app.api", Meta: depgraph.Metadata{depgraph.MetaLines: 40}},
		{ID: "flask", Kind: depgraph.KindExternal},
	} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []depgraph.Edge{{From: "app", To: "flask"}, {From: "app.api", To: "app"}, {From: "app", To: "app.api"}} {
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestRoundTrip(t *testing.T) {
	g := sampleGraph(t)
	path := filepath.Join(t.TempDir(), "graph.json")

	if err := ExportJSON(g, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}

	if got.Meta().Text("view") != "top-level" {
		t.Errorf("graph meta = %v", got.Meta())
	}
	if ids := strings.Join(got.NodeIDs(), ","); ids != "app,app.api,flask" {
		t.Errorf("nodes = %s", ids)
	}
	if got.EdgeCount() != 3 || !got.HasEdge("app.api", "app") || !got.HasEdge("app", "app.api") {
		t.Errorf("edges = %v", got.Edges())
	}
	if !got.HasCycle() {
		t.Error("cycle app <-> app.api lost")
	}

	app, _ := got.Node("app")
	if app.Meta.Int(depgraph.MetaLines) != 120 || app.Meta.Text(depgraph.MetaPath) != "app/__init__.py" {
		t.Errorf("app meta = %v", app.Meta)
	}
	if flask, _ := got.Node("flask"); !flask.IsExternal() {
		t.Error("flask should be external")
	}
}

func TestWriteJSONOmitsSystemKind(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleGraph(t), &buf); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), `"kind"`); n != 1 {
		t.Errorf("want one kind field, got %d:\n%s", n, buf.String())
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"duplicate node", `{"nodes":[{"id":"a"},{"id":"a"}],"edges":[]}`, depgraph.ErrDuplicateNodeID},
		{"empty id", `{"nodes":[{"id":""}],"edges":[]}`, depgraph.ErrInvalidNodeID},
		{"unknown source", `{"nodes":[{"id":"a"}],"edges":[{"from":"x","to":"a"}]}`, depgraph.ErrUnknownSourceNode},
		{"unknown target", `{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"x"}]}`, depgraph.ErrUnknownTargetNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ReadJSON(strings.NewReader("{")); err == nil {
		t.Error("malformed JSON should fail")
	}
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}
