// Package history mines version control history for per-file change
// statistics.
//
// [Churn] replays the commits reachable from HEAD, oldest first, and keeps a
// running tally per file:
//
//   - a modification adds its added and deleted line counts to the file's
//     churn and counts one commit;
//   - a rename moves the tally to the new path and counts one commit; lines
//     edited in the same commit are not added;
//   - a deletion drops the tally;
//   - an addition starts a tally with one commit and no churn, since the
//     initial lines are not change.
//
// Merge commits are skipped; their changes are already accounted for on the
// merged branches. Paths are slash-separated and relative to the repository
// root.
//
// [ModuleChurn] maps the result onto module names with a [modname.Resolver]
// so the figures can be attached to graph nodes and rolled up with
// [metrics.Rollup].
//
// [metrics.Rollup]: github.com/matzehuels/archlens/pkg/metrics.Rollup
package history
