package modname

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/archlens/pkg/errors"
)

// Separator joins the components of an identity.
const Separator = "."

// Resolver derives identities from file paths below Root.
//
// Extension is stripped from the final component when present (".py").
// PackageMarker names the file whose module is its directory ("__init__");
// leave it empty for languages without package markers.
type Resolver struct {
	Root          string
	Extension     string
	PackageMarker string
}

// FromPath returns the identity of the source file at path.
//
// The path may be absolute or relative; it is cleaned and compared to the
// cleaned root. A path outside Root, or one that yields no components (the
// package marker of the root itself), returns an error with code
// [errors.ErrCodeInvalidPath].
func (r Resolver) FromPath(path string) (string, error) {
	root := filepath.Clean(r.Root)
	clean := filepath.Clean(path)

	rel, err := filepath.Rel(root, clean)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New(errors.ErrCodeInvalidPath, "%s is not under %s", path, r.Root)
	}

	rel = filepath.ToSlash(rel)
	if r.Extension != "" {
		rel = strings.TrimSuffix(rel, r.Extension)
	}

	parts := strings.Split(rel, "/")
	if r.PackageMarker != "" && parts[len(parts)-1] == r.PackageMarker {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return "", errors.New(errors.ErrCodeInvalidPath, "%s does not name a module", path)
	}
	return Join(parts...), nil
}

// ToPath is the inverse of FromPath for plain modules: it returns the file
// path that FromPath maps to name. Packages are not distinguished from
// modules, so "pkg" maps to Root/pkg.ext rather than Root/pkg/__init__.ext.
func (r Resolver) ToPath(name string) string {
	parts := Components(name)
	parts[len(parts)-1] += r.Extension
	return filepath.Join(append([]string{r.Root}, parts...)...)
}

// Components splits an identity into its name components.
func Components(name string) []string {
	return strings.Split(name, Separator)
}

// Join builds an identity from components, skipping empty ones.
func Join(parts ...string) string {
	return strings.Join(slices.DeleteFunc(slices.Clone(parts), func(s string) bool { return s == "" }), Separator)
}

// Level returns the number of components in name. The empty identity has
// level 0.
func Level(name string) int {
	if name == "" {
		return 0
	}
	return strings.Count(name, Separator) + 1
}

// Local returns the last component of name.
func Local(name string) string {
	if i := strings.LastIndex(name, Separator); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Parent returns the first depth components of name. A depth beyond the
// component count returns name unchanged; a depth below 1 returns "".
func Parent(name string, depth int) string {
	if depth < 1 {
		return ""
	}
	parts := Components(name)
	if depth >= len(parts) {
		return name
	}
	return strings.Join(parts[:depth], Separator)
}

// Contains reports whether b is strictly inside a.
func Contains(a, b string) bool {
	if a == "" || a == b {
		return false
	}
	return Parent(b, Level(a)) == a
}

// AnyContains reports whether any identity in names contains b.
func AnyContains(names []string, b string) bool {
	return slices.ContainsFunc(names, func(a string) bool { return Contains(a, b) })
}

// RelativeLevel returns 0 when a equals b, -1 when a does not contain b and
// the depth of b below a otherwise.
func RelativeLevel(a, b string) int {
	if a == b {
		return 0
	}
	if !Contains(a, b) {
		return -1
	}
	return Level(b) - Level(a)
}

// IsDirectChild reports whether b sits exactly one level below a.
func IsDirectChild(a, b string) bool {
	return RelativeLevel(a, b) == 1
}
