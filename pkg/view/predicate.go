package view

import (
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/matzehuels/archlens/pkg/errors"
	"github.com/matzehuels/archlens/pkg/modname"
	"github.com/matzehuels/archlens/pkg/modtree"
)

// And is satisfied when every predicate is. With no predicates it always
// holds.
func And(preds ...modtree.Predicate) modtree.Predicate {
	return func(name string) bool {
		for _, p := range preds {
			if !p(name) {
				return false
			}
		}
		return true
	}
}

// Or is satisfied when any predicate is.
func Or(preds ...modtree.Predicate) modtree.Predicate {
	return func(name string) bool {
		for _, p := range preds {
			if p(name) {
				return true
			}
		}
		return false
	}
}

// Not negates p.
func Not(p modtree.Predicate) modtree.Predicate {
	return func(name string) bool { return !p(name) }
}

// In matches the listed names exactly.
func In(names ...string) modtree.Predicate {
	return func(name string) bool { return slices.Contains(names, name) }
}

// AnyContains matches names strictly inside any of the listed modules.
func AnyContains(names ...string) modtree.Predicate {
	return func(name string) bool { return modname.AnyContains(names, name) }
}

// Under matches the listed modules and everything inside them.
func Under(names ...string) modtree.Predicate {
	return Or(In(names...), AnyContains(names...))
}

// DeeperThan matches names more than depth levels below parent.
func DeeperThan(parent string, depth int) modtree.Predicate {
	return func(name string) bool { return modname.RelativeLevel(parent, name) > depth }
}

// ChildOf matches the direct children of parent.
func ChildOf(parent string) modtree.Predicate {
	return func(name string) bool { return modname.IsDirectChild(parent, name) }
}

// Glob matches module names against doublestar patterns written with dots:
// "*" stands for one name component and "**" for any number of them, so
// "app.*.models" matches "app.api.models" and "app.**" matches everything
// inside app.
func Glob(patterns ...string) (modtree.Predicate, error) {
	globs := make([]string, len(patterns))
	for i, p := range patterns {
		g := toSlashes(p)
		if !doublestar.ValidatePattern(g) {
			return nil, errors.New(errors.ErrCodeInvalidView, "invalid module pattern %q", p)
		}
		globs[i] = g
	}
	return func(name string) bool {
		path := toSlashes(name)
		for _, g := range globs {
			if ok, _ := doublestar.Match(g, path); ok {
				return true
			}
		}
		return false
	}, nil
}

func toSlashes(name string) string {
	return strings.ReplaceAll(name, modname.Separator, "/")
}
