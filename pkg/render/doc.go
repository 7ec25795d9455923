// Package render turns laid out topology diagrams into images.
//
// The [nodelink] subpackage draws a [diagram.Diagram] with Graphviz, keeping
// every node pinned at its computed position. This package converts the
// resulting SVG to PNG or PDF with the external rsvg-convert tool (from
// librsvg); [ErrNoConverter] reports when it is missing.
//
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(d, nodelink.Options{}))
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [nodelink]: github.com/matzehuels/kubetopo/pkg/render/nodelink
// [diagram.Diagram]: github.com/matzehuels/kubetopo/pkg/diagram.Diagram
package render
