// Package modtree builds and transforms the module model of a codebase.
//
// # Overview
//
// Every module of the analyzed system is described by a [Descriptor]: its
// dotted identity, the file it came from, the raw names it imports and the
// names those imports resolve to. Descriptors live in a prefix tree keyed by
// name component ([Tree]). A node may carry a descriptor and children at the
// same time (a package with sub-packages); a node without a descriptor is a
// pure path segment.
//
// A [Forest] groups two trees: System, holding the modules found on disk,
// and External, holding placeholder descriptors for third-party packages.
// External descriptors are materialized by [Forest.ResolveExternal] the first
// time an import cannot be found in either tree.
//
// # Lookup
//
// [Tree.Lookup] implements a best-available-match policy. Walking
// "pkg.mod.Class" stops at the deepest node that exists and returns its
// descriptor, so an import of a symbol inside a module, or of a module that
// has since been folded into an ancestor, resolves to that module or
// ancestor. A path that resolves fully to a node without a descriptor yields
// nil.
//
// # Transformations
//
// [Forest.Fold] collapses sub-trees into their ancestor and [Forest.Filter]
// removes descriptors that fail a predicate. Both return a new forest and
// never touch their input, so several views can be derived from the same
// base forest. Both end with [Forest.Prune], which rebuilds every
// descriptor's Resolved list from its raw imports and drops names that no
// longer resolve. After a prune every resolved name denotes a descriptor
// in one of the two trees.
//
// Cross references between descriptors are always by name. No descriptor
// holds a pointer into another descriptor or into the other tree.
//
// # Projection
//
// [Forest.Project] flattens a forest into a [depgraph.Graph]: one node per
// descriptor and one edge per resolved import whose target is a node.
//
// # Diagnostics
//
// Duplicate modules, folds without an absorbing module and similar
// conditions never fail an operation. They are recorded as [Diagnostic]
// values on the forest and, when the forest has a logger, logged as
// warnings.
//
// [depgraph.Graph]: github.com/matzehuels/archlens/pkg/depgraph
package modtree
