// Package pipeline runs the archlens analysis: scan → view → graph → render.
//
// The CLI and the report server both drive analysis through a [Runner], so
// caching, logging and observability behave the same on every entry point.
//
// # Stages
//
//  1. Scan: walk the source root, read every module's imports and build the
//     resolved module forest, optionally with churn from git history
//  2. View: fold and filter the forest with a named [view.View]
//  3. Graph: project the view onto a module graph annotated with rolled-up
//     line counts and churn, optionally simplified
//  4. Render: produce DOT, SVG, JSON, PDF or PNG
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, cfg.Cache.TTL.Duration, logger)
//	scan, err := runner.Scan(ctx, pipeline.ScanOptions{Resolver: cfg.Resolver()})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, _ := cfg.View("top-level")
//	forest := runner.View(ctx, scan, v, cfg.System)
//	g := runner.Graph(scan, forest, pipeline.GraphOptions{View: v.Name})
//	artifacts, err := runner.Render(ctx, g, pipeline.RenderOptions{
//	    Title:       v.Title,
//	    WeightScale: v.WeightScale,
//	    MinWeight:   v.MinWeight,
//	    Formats:     []render.Format{render.FormatSVG},
//	})
package pipeline

import (
	"time"

	"github.com/matzehuels/archlens/pkg/history"
	"github.com/matzehuels/archlens/pkg/metrics"
	"github.com/matzehuels/archlens/pkg/modname"
	"github.com/matzehuels/archlens/pkg/modtree"
	"github.com/matzehuels/archlens/pkg/render"
)

// ScanOptions selects what to scan.
type ScanOptions struct {
	// Resolver maps files below Resolver.Root to module names.
	Resolver modname.Resolver
	// Exclude lists doublestar patterns, relative to the root, to skip.
	Exclude []string
	// Churn mines git history for per-module churn. A root outside a
	// repository is logged and otherwise ignored.
	Churn bool
	// Repository is the git work tree; empty means the one containing the
	// root.
	Repository string
}

// Skipped records a file left out of a scan.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Scan is the result of [Runner.Scan].
type Scan struct {
	Root   string
	Forest *modtree.Forest

	// Lines holds each module's own line count.
	Lines map[string]int
	// Churn holds per-module history figures; nil when churn was not mined.
	Churn map[string]history.FileStats

	Files    int
	Skipped  []Skipped
	Duration time.Duration
}

// RolledLines returns line counts with every module including its
// sub-modules.
func (s *Scan) RolledLines() map[string]int {
	return metrics.Rollup(s.Lines)
}

// RolledChurn returns churn with every module including its sub-modules,
// or nil when churn was not mined.
func (s *Scan) RolledChurn() map[string]int {
	if s.Churn == nil {
		return nil
	}
	return metrics.Rollup(history.ChurnValues(s.Churn))
}

// GraphOptions controls how a view is turned into a graph.
type GraphOptions struct {
	// View names the view; it is stored in the graph metadata.
	View string
	// Within keeps only modules equal to or inside this module.
	Within string
	// Collapse merges modules into their ancestors at this depth when > 0.
	Collapse int
	// Reduce removes cycles, then edges implied by longer paths.
	Reduce bool
}

// RenderOptions controls rendering.
type RenderOptions struct {
	Title    string
	Detailed bool
	Formats  []render.Format

	// WeightScale sizes nodes by their "lines" metadata times this factor,
	// bounded below by MinWeight. Zero draws nodes at a uniform size.
	WeightScale float64
	MinWeight   float64

	// Scale is the PNG resolution factor; 0 means 2.
	Scale float64
	// CacheKey, when set, caches artifacts under this view name.
	CacheKey string
}

// Graph-level metadata keys set by [Runner.Graph].
const (
	MetaView        = "view"
	MetaRoot        = "root"
	MetaDiagnostics = "diagnostics"
	// MetaCycles lists the imports removed to break cycles, as "from -> to".
	MetaCycles = "cycles"
)
