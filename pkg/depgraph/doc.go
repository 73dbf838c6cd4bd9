// Package depgraph provides the directed module dependency graph that
// archlens renders, exports and stores.
//
// # Overview
//
// A [Graph] holds one [Node] per module and one [Edge] per import
// relationship. Unlike a layered DAG, an import graph may contain cycles:
// two packages importing each other are common in real codebases. Use
// [Graph.HasCycle] to detect them and the [transform] subpackage to break
// them when a downstream consumer needs an acyclic graph.
//
// Nodes and edges keep their insertion order, so a graph projected from the
// same module tree always produces the same DOT, JSON and database output.
//
// # Basic Usage
//
//	g := depgraph.New(nil)
//	g.AddNode(depgraph.Node{ID: "app.api", Kind: depgraph.KindSystem})
//	g.AddNode(depgraph.Node{ID: "flask", Kind: depgraph.KindExternal})
//	g.AddEdge(depgraph.Edge{From: "app.api", To: "flask"})
//
// Adding an edge that already exists is a no-op, so callers can add one edge
// per import without de-duplicating first.
//
// # Node Kinds
//
//   - [KindSystem]: a module of the analyzed codebase
//   - [KindExternal]: a third-party package referenced by an import
//
// # Metadata
//
// Nodes, edges and the graph carry [Metadata] maps. The pipeline stores line
// counts ([MetaLines]), churn ([MetaChurn]) and source paths ([MetaPath])
// there. Metadata maps are never nil after a node or edge is added.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Callers must synchronize
// access if multiple goroutines read or modify the same graph.
//
// [transform]: github.com/matzehuels/archlens/pkg/depgraph/transform
package depgraph
