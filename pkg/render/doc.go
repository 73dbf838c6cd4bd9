// Package render turns module graphs into images.
//
// Diagrams are produced by the [nodelink] subpackage as Graphviz DOT and
// laid out in-process as SVG. This package converts that SVG to PDF or PNG
// with the external rsvg-convert tool (from librsvg):
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Title: "Top-level modules"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [Format] names the outputs understood by the CLI and the report server.
//
// [nodelink]: github.com/matzehuels/archlens/pkg/render/nodelink
package render
