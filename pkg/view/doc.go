// Package view builds the named module views drawn in reports.
//
// A view is a sequence of fold and filter passes over a resolved
// [modtree.Forest]. Views never modify their input, so any number of views
// can be computed from one scan.
//
// # Classification
//
// A [Classifier] decides which names belong to the analyzed system and which
// third-party packages are significant enough to draw. The defaults derive
// the system from the top-level names of the scanned tree and treat every
// external package as significant.
//
// # Built-in views
//
//   - [TopLevel] folds everything below a list of module roots and keeps
//     system modules plus significant top-level packages.
//   - [SubModule] zooms into one module: its direct children, a list of
//     other modules kept for context, and the significant packages they
//     actually reference.
//   - [Custom] applies one fold and one filter, each given as a predicate.
//
// [Definition] describes any of these declaratively so views can be listed
// in a configuration file.
package view
