package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/archlens/pkg/depgraph"
)

// Colors used for nodes and edges.
const (
	SystemColor       = "#00d4e9"
	ExternalColor     = "orange"
	SystemEdgeColor   = "black"
	ExternalEdgeColor = "lightgrey"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Title is drawn above the diagram when non-empty.
	Title string

	// Detailed includes node metadata in labels.
	// When false, only the module name is shown.
	Detailed bool

	// Weight sizes nodes. Nodes are drawn as circles whose area grows with
	// the weight; nil draws plain boxes.
	Weight func(id string) float64
}

// ToDOT converts a module graph to Graphviz DOT format.
// The resulting DOT string can be laid out with [RenderSVG].
//
// System modules are filled cyan and third-party packages orange. Imports of
// system modules are drawn black, imports of third-party packages light grey.
func ToDOT(g *depgraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Weight != nil {
		buf.WriteString("  node [shape=circle, style=filled, fontsize=14, margin=\"0.05,0.05\"];\n")
	} else {
		buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	}
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontsize=20;\n", opts.Title)
	}
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(*n, opts.Detailed)
		attrs := fmtAttrs(*n, label, opts.Weight)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		color := SystemEdgeColor
		if to, ok := g.Node(e.To); ok && to.IsExternal() {
			color = ExternalEdgeColor
		}
		fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", e.From, e.To, color)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n depgraph.Node, detailed bool) string {
	if !detailed || len(n.Meta) == 0 {
		return n.ID
	}

	parts := make([]string, 0, len(n.Meta))
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return n.ID + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n depgraph.Node, label string, weight func(string) float64) []string {
	fill := SystemColor
	if n.IsExternal() {
		fill = ExternalColor
	}
	attrs := []string{fmt.Sprintf("label=%q", label), fmt.Sprintf("fillcolor=%q", fill)}
	if weight != nil {
		attrs = append(attrs, "width="+strconv.FormatFloat(nodeSize(weight(n.ID)), 'f', 2, 64))
	}
	return attrs
}

// nodeSize maps a weight to a circle diameter in inches. Weights are areas,
// so the diameter grows with the square root.
func nodeSize(w float64) float64 {
	if w <= 0 {
		return 0.1
	}
	return math.Sqrt(w) / 10
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with
// its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
