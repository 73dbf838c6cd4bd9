// Package nodelink renders module graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT, then lay it out as SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{
//	    Title:  "Top-level modules sized by lines of code",
//	    Weight: metrics.Scaled(metrics.Lookup(lines), 0.1, 10),
//	})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The SVG converts to PDF or PNG with [render.ToPDF] and [render.ToPNG].
//
// # Styling
//
// System modules are filled cyan ([SystemColor]) and third-party packages
// orange ([ExternalColor]). An edge is black when it points at a system
// module and light grey when it points at a package, so dependencies inside
// the system stand out.
//
// With a weight function nodes become circles whose area follows the
// weight, typically lines of code rolled up over sub-modules.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
