// Package metrics aggregates per-module measurements such as line counts and
// churn, and turns them into node weights for rendering.
//
// Measurements are collected per file, which means per module. A package is
// as large as everything below it, so [Rollup] adds each module's value to
// every ancestor:
//
//	own := map[string]int{"app": 10, "app.api": 40, "app.api.v1": 50}
//	metrics.Rollup(own) // app: 100, app.api: 90, app.api.v1: 50
package metrics

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/archlens/pkg/modname"
)

// WeightFunc maps a module name to a weight.
type WeightFunc func(module string) float64

// Rollup returns a copy of own in which every module also carries the sum of
// its descendants. Ancestors that have no value of their own, such as
// directories without a package marker, are added.
func Rollup(own map[string]int) map[string]int {
	out := make(map[string]int, len(own))
	for _, name := range slices.Sorted(maps.Keys(own)) {
		v := own[name]
		out[name] += v
		for depth := modname.Level(name) - 1; depth > 0; depth-- {
			out[modname.Parent(name, depth)] += v
		}
	}
	return out
}

// Lookup returns a weight function reading values. Unknown modules weigh 0.
func Lookup(values map[string]int) WeightFunc {
	return func(module string) float64 {
		return float64(values[module])
	}
}

// Scaled returns fn multiplied by scale and clamped from below at min.
func Scaled(fn WeightFunc, scale, min float64) WeightFunc {
	return func(module string) float64 {
		return max(fn(module)*scale, min)
	}
}

// Top returns the n modules with the largest values, largest first. Ties are
// broken by name.
func Top(values map[string]int, n int) []string {
	names := slices.Collect(maps.Keys(values))
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(values[b], values[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	if n >= 0 && n < len(names) {
		names = names[:n]
	}
	return names
}
