package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archlens/pkg/cache"
	"github.com/matzehuels/archlens/pkg/depgraph"
	"github.com/matzehuels/archlens/pkg/depgraph/transform"
	graphio "github.com/matzehuels/archlens/pkg/io"
	"github.com/matzehuels/archlens/pkg/metrics"
	"github.com/matzehuels/archlens/pkg/modtree"
	"github.com/matzehuels/archlens/pkg/observability"
	"github.com/matzehuels/archlens/pkg/render"
	"github.com/matzehuels/archlens/pkg/render/nodelink"
	"github.com/matzehuels/archlens/pkg/source"
	"github.com/matzehuels/archlens/pkg/source/python"
	"github.com/matzehuels/archlens/pkg/view"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner keeps no results between calls. Scan, View, Graph and Render
// may be called from several goroutines as long as the cache backend and
// reader allow it; the built-in ones do.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Reader source.ImportReader
	Logger *log.Logger
}

// NewRunner creates a runner reading Python sources through c.
// If c is nil, a NullCache is used (caching disabled).
// If logger is nil, the default logger is used.
func NewRunner(c cache.Cache, ttl time.Duration, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  cache.NewDefaultKeyer(),
		Reader: source.NewCachedReader(python.NewReader(), c, ttl, logger),
		Logger: logger,
	}
}

// SetKeyer makes the runner and its cached reader derive cache keys with k.
func (r *Runner) SetKeyer(k cache.Keyer) {
	r.Keyer = k
	if cr, ok := r.Reader.(*source.CachedReader); ok {
		cr.Keyer = k
	}
}

// View applies v to the scanned forest. The scan is not modified.
func (r *Runner) View(ctx context.Context, scan *Scan, v *view.View, cls view.Classifier) *modtree.Forest {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnTransformStart(ctx, v.Name, scan.Forest.Len())

	out := v.Apply(scan.Forest, cls.WithDefaults(scan.Forest))

	hooks.OnTransformComplete(ctx, v.Name, out.Len(), time.Since(start))
	r.Logger.Debug("applied view",
		"view", v.Name,
		"modules", out.Len(),
		"diagnostics", len(out.Diagnostics()),
		"duration", time.Since(start))
	return out
}

// Graph projects forest, applies the simplifications in opts and annotates
// every system node with rolled-up "lines" and, when churn was mined,
// "churn". Rolled-up figures cover all sub-modules of the scan, including
// those folded or filtered out of the view.
func (r *Runner) Graph(scan *Scan, forest *modtree.Forest, opts GraphOptions) *depgraph.Graph {
	g := forest.Project()

	if opts.Within != "" {
		g = transform.Within(g, opts.Within)
	}
	if opts.Collapse > 0 {
		g = transform.Collapse(g, opts.Collapse)
	}
	if opts.Reduce {
		cycles := transform.BreakCycles(g)
		for _, e := range cycles {
			r.Logger.Warn("import cycle", "from", e.From, "to", e.To)
		}
		reduced := transform.TransitiveReduction(g)
		r.Logger.Debug("simplified graph", "cycles", len(cycles), "implied_edges", reduced)
		if len(cycles) > 0 {
			g.Meta()[MetaCycles] = cycleNames(cycles)
		}
	}

	lines := scan.RolledLines()
	churn := scan.RolledChurn()
	for _, n := range g.Nodes() {
		if n.IsExternal() {
			continue
		}
		n.Meta[depgraph.MetaLines] = lines[n.ID]
		if churn != nil {
			n.Meta[depgraph.MetaChurn] = churn[n.ID]
		}
	}

	meta := g.Meta()
	meta[MetaRoot] = scan.Root
	if opts.View != "" {
		meta[MetaView] = opts.View
	}
	if n := len(forest.Diagnostics()); n > 0 {
		meta[MetaDiagnostics] = n
	}
	return g
}

// Render produces the requested formats for g. With opts.CacheKey set,
// artifacts are looked up in and stored to the runner's cache, keyed by the
// graph's content.
func (r *Runner) Render(ctx context.Context, g *depgraph.Graph, opts RenderOptions) (_ map[render.Format][]byte, err error) {
	formats := opts.Formats
	if len(formats) == 0 {
		formats = []render.Format{render.FormatSVG}
	}
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, names)
	defer func() {
		hooks.OnRenderComplete(ctx, names, time.Since(start), err)
	}()

	var graphJSON bytes.Buffer
	if err := graphio.WriteJSON(g, &graphJSON); err != nil {
		return nil, fmt.Errorf("serialize graph: %w", err)
	}
	graphHash := cache.Hash(graphJSON.Bytes())

	dot := nodelink.ToDOT(g, nodelink.Options{Title: opts.Title, Detailed: opts.Detailed, Weight: lineWeight(g, opts)})
	var svg []byte

	artifacts := make(map[render.Format][]byte, len(formats))
	for _, f := range formats {
		key := r.Keyer.ArtifactKey(graphHash, cache.ArtifactKeyOpts{
			View:        opts.CacheKey,
			Format:      string(f),
			Title:       opts.Title,
			Detailed:    opts.Detailed,
			WeightScale: opts.WeightScale,
			MinWeight:   opts.MinWeight,
			Scale:       opts.Scale,
		})
		if opts.CacheKey != "" {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[f] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}

		var data []byte
		switch f {
		case render.FormatDOT:
			data = []byte(dot)
		case render.FormatJSON:
			data = graphJSON.Bytes()
		case render.FormatSVG, render.FormatPDF, render.FormatPNG:
			if svg == nil {
				if svg, err = nodelink.RenderSVG(ctx, dot); err != nil {
					return nil, fmt.Errorf("render svg: %w", err)
				}
			}
			data, err = convert(ctx, svg, f, opts.Scale)
		default:
			_, err = render.ParseFormat(string(f))
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", f, err)
		}
		artifacts[f] = data

		if opts.CacheKey != "" {
			if err := r.Cache.Set(ctx, key, data, 0); err != nil {
				r.Logger.Debug("artifact cache write failed", "format", f, "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "artifact", len(data))
			}
		}
	}

	r.Logger.Debug("rendered outputs", "formats", names, "duration", time.Since(start))
	return artifacts, nil
}

func convert(ctx context.Context, svg []byte, f render.Format, scale float64) ([]byte, error) {
	switch f {
	case render.FormatPDF:
		return render.ToPDF(ctx, svg)
	case render.FormatPNG:
		if scale == 0 {
			scale = 2
		}
		return render.ToPNG(ctx, svg, scale)
	}
	return svg, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lineWeight sizes nodes by the "lines" metadata set in [Runner.Graph].
// Nodes without it, such as third-party packages, get the minimum weight.
func lineWeight(g *depgraph.Graph, opts RenderOptions) metrics.WeightFunc {
	if opts.WeightScale <= 0 {
		return nil
	}
	lines := func(id string) float64 {
		if n, ok := g.Node(id); ok {
			return float64(n.Meta.Int(depgraph.MetaLines))
		}
		return 0
	}
	return metrics.Scaled(lines, opts.WeightScale, opts.MinWeight)
}

// cycleNames formats removed imports as "from -> to".
func cycleNames(edges []depgraph.Edge) []string {
	names := make([]string, len(edges))
	for i, e := range edges {
		names[i] = e.From + " -> " + e.To
	}
	return names
}
