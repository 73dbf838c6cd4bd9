// Package modname derives canonical module identities from source paths and
// answers hierarchy questions about them.
//
// # Identities
//
// A module identity is a non-empty, dot-separated sequence of name components
// such as "zeeguu.core.model.user". Identities are plain strings; this package
// never allocates a richer type so that identities can flow unchanged through
// trees, graphs, caches and JSON.
//
// A [Resolver] turns a file path into an identity. The path must live under
// the resolver's root. Separators become dots, the extension is stripped and
// a trailing package marker (for Python, "__init__") is dropped so that the
// package takes the name of its directory:
//
//	r := modname.Resolver{Root: "/proj", Extension: ".py", PackageMarker: "__init__"}
//	r.FromPath("/proj/pkg/sub/mod.py")      // "pkg.sub.mod"
//	r.FromPath("/proj/pkg/sub/__init__.py") // "pkg.sub"
//
// # Hierarchy
//
// [Contains] is strict: a module never contains itself, and two distinct
// identities never contain each other. [RelativeLevel] is 0 for equal
// identities, -1 when the first does not contain the second and the depth
// difference otherwise. [Parent] truncates an identity to a given depth.
package modname
