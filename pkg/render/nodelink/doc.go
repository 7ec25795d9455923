// Package nodelink renders laid out topology diagrams as node-link images.
//
// Positions come from the layout engine; Graphviz only draws. [ToDOT] pins
// every node with pos="x,y!" and [RenderSVG] runs neato, which keeps pinned
// nodes where they are and routes straight edges between them.
//
//	dot := nodelink.ToDOT(d, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// Node shapes and fills follow the resource type; nodes the user dragged are
// drawn with a heavier outline.
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
