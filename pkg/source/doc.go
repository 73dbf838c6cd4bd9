// Package source enumerates the files of a codebase and reads their imports.
//
// [Walk] lists source files below a root, honoring doublestar exclude
// patterns ("**/tests/**", "build/**"). [LineCount] provides the size
// metric used to weight modules. [ImportReader] is implemented per language;
// the Python implementation lives in the python subpackage.
//
// [CachedReader] puts a [cache.Cache] in front of any [Parser], keyed by the
// hash of the file's content, so that re-scanning an unchanged codebase does
// not parse anything.
//
// [cache.Cache]: github.com/matzehuels/archlens/pkg/cache
package source
