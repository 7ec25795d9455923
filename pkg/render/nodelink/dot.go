package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kubetopo/pkg/diagram"
	"github.com/matzehuels/kubetopo/pkg/render"
	"github.com/matzehuels/kubetopo/pkg/topology"
)

// DefaultNodeSize matches the layout engine's default node size.
const DefaultNodeSize = 50

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the qualified name and pod summary to node labels.
	// When false, only the wrapped label is shown.
	Detailed bool

	// NodeSize is the node diameter in canvas units. Zero means DefaultNodeSize.
	NodeSize float64
}

type nodeStyle struct {
	shape string
	fill  string
}

var typeStyles = map[string]nodeStyle{
	topology.TypeInternet:    {"doublecircle", "#dbeafe"},
	topology.TypeCluster:     {"folder", "#e5e7eb"},
	topology.TypeHost:        {"box3d", "#fef3c7"},
	topology.TypeService:     {"hexagon", "#dcfce7"},
	topology.TypeDeployment:  {"component", "#ede9fe"},
	topology.TypeDaemonSet:   {"component", "#ede9fe"},
	topology.TypeStatefulSet: {"component", "#ede9fe"},
	topology.TypeCronJob:     {"component", "#ede9fe"},
	topology.TypePod:         {"ellipse", "#fce7f3"},
	topology.TypeContainer:   {"box", "#ffffff"},
}

var defaultStyle = nodeStyle{"ellipse", "#f3f4f6"}

// ToDOT converts a diagram to Graphviz DOT with every node pinned at its
// laid out position. The canvas y axis points down, Graphviz's points up,
// so y is flipped against the diagram height.
//
// The result can be rendered with [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(d diagram.Diagram, opts Options) string {
	size := opts.NodeSize
	if size <= 0 {
		size = DefaultNodeSize
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  graph [bgcolor=\"transparent\", splines=line, notranslate=true, bb=\"0,0,%s,%s\"];\n",
		ftoa(d.Width), ftoa(d.Height))
	fmt.Fprintf(&buf, "  node [style=filled, fixedsize=true, width=%s, fontsize=9, fontname=\"Helvetica\"];\n",
		strconv.FormatFloat(size/72, 'f', 3, 64))
	buf.WriteString("  edge [arrowsize=0.6, color=\"#6b7280\"];\n")
	buf.WriteString("\n")

	for _, n := range d.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.UID, strings.Join(fmtAttrs(n, d.Height, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n diagram.Node, detailed bool) string {
	label := n.Label
	if label == "" {
		label = n.UID
	}
	if !detailed {
		return label
	}
	parts := []string{label}
	if n.QName != "" && n.QName != "/" {
		parts = append(parts, n.QName)
	}
	if n.Info != "" {
		parts = append(parts, n.Info)
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n diagram.Node, height float64, detailed bool) []string {
	style, ok := typeStyles[n.Type]
	if !ok {
		style = defaultStyle
	}
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("pos=\"%s,%s!\"", ftoa(n.X), ftoa(height-n.Y)),
		"shape=" + style.shape,
		fmt.Sprintf("fillcolor=%q", style.fill),
	}
	if n.Dragged {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// RenderSVG renders a pinned DOT graph to SVG using Graphviz's neato engine,
// which honours the fixed node positions.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
