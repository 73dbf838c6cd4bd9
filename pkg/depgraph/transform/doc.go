// Package transform provides graph transformations for module dependency
// graphs.
//
// The functions operate on a [depgraph.Graph] produced by projecting a module
// forest. Some modify the graph in place ([BreakCycles],
// [TransitiveReduction]); others build a new graph ([Collapse], [Within]).
//
// # Abstraction
//
// [Collapse] merges every module into its ancestor at a given depth, so
// "app.api.users" and "app.api.auth" become "app.api" at depth 2. Edges
// between merged modules disappear and edges across groups are kept once.
// Merged nodes carry no metadata. [Within] keeps only the modules inside
// a package, which combined with Collapse reproduces a "sub-modules of X"
// view on an already projected graph.
//
// # Simplification
//
// [TransitiveReduction] removes import edges implied by longer paths, and
// [BreakCycles] removes one import per cycle so that the graph becomes
// acyclic, and returns those imports so callers can report the cycles.
//
// [depgraph.Graph]: github.com/matzehuels/archlens/pkg/depgraph
package transform
