// Package fdp lays out force sections with Graphviz's force-directed
// placement engine and fits the result into the section's bounding box.
package fdp

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kubetopo/pkg/layout"
	"github.com/matzehuels/kubetopo/pkg/topology"
)

// pointsPerInch converts the node size to Graphviz's inch based widths.
const pointsPerInch = 72

// Primitive is a layout.Primitive backed by Graphviz fdp. Each Run starts its
// own Graphviz instance, so a Primitive is safe for concurrent use.
type Primitive struct {
	// NodeSize is the diameter of a node in canvas units. It also pads the
	// section's box so nodes are not cut off at the edges.
	NodeSize float64

	// Seed fixes fdp's initial placement so repeated runs agree.
	Seed int
}

// New returns an fdp primitive for nodes of the given size.
func New(nodeSize float64) *Primitive {
	return &Primitive{NodeSize: nodeSize, Seed: 1}
}

// Run implements layout.Primitive.
func (p *Primitive) Run(ctx context.Context, s *layout.Section) (layout.Placement, error) {
	if err := ctx.Err(); err != nil {
		return layout.Placement{}, err
	}
	pl := layout.Placement{
		Positions: make(map[string]topology.Point, len(s.Nodes)),
		Loops:     layout.DetectLoops(s),
	}
	bb := s.Options.BoundingBox
	switch len(s.Nodes) {
	case 0:
		return pl, nil
	case 1:
		pl.Positions[s.Nodes[0].UID] = topology.Point{X: bb.X1 + bb.W/2, Y: bb.Y1 + bb.H/2}
		return pl, nil
	}

	out, err := p.render(ctx, ToDOT(s, p.NodeSize, p.Seed))
	if err != nil {
		return layout.Placement{}, err
	}
	raw, err := ParsePositions(out)
	if err != nil {
		return layout.Placement{}, err
	}
	fitted, err := fit(raw, len(s.Nodes), bb, p.NodeSize/2)
	if err != nil {
		return layout.Placement{}, err
	}
	for i, n := range s.Nodes {
		pl.Positions[n.UID] = fitted[i]
	}
	return pl, nil
}

func (p *Primitive) render(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.FDP)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("fdp: %w", err)
	}
	return buf.Bytes(), nil
}

// ToDOT writes a section as an undirected Graphviz graph. Nodes are named
// n0..nK after their index in the section; self loops are left out since
// they carry no placement information.
func ToDOT(s *layout.Section, nodeSize float64, seed int) string {
	index := make(map[string]int, len(s.Nodes))
	for i, n := range s.Nodes {
		index[n.UID] = i
	}

	overlap := "true"
	if s.Options.AvoidOverlap {
		overlap = "false"
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  graph [start=%d, overlap=%s, splines=false];\n", seed, overlap)
	fmt.Fprintf(&buf, "  node [shape=circle, fixedsize=true, label=\"\", width=%s];\n",
		strconv.FormatFloat(nodeSize/pointsPerInch, 'f', 3, 64))
	for i := range s.Nodes {
		fmt.Fprintf(&buf, "  n%d;\n", i)
	}
	for _, e := range s.Edges {
		if e.Edge.IsLoop() {
			continue
		}
		src, ok1 := index[e.Edge.Source]
		dst, ok2 := index[e.Edge.Target]
		if !ok1 || !ok2 {
			continue
		}
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", src, dst)
	}
	buf.WriteString("}\n")
	return buf.String()
}

var (
	nodeStmtRe = regexp.MustCompile(`(?m)^\s*"?n(\d+)"?\s*\[([^\]]*)\]`)
	posAttrRe  = regexp.MustCompile(`\bpos="([-0-9.e+]+),([-0-9.e+]+)!?"`)
)

// ParsePositions extracts the pos attribute of every nX node statement in
// laid out DOT output, keyed by X.
func ParsePositions(dot []byte) (map[int]topology.Point, error) {
	out := make(map[int]topology.Point)
	for _, m := range nodeStmtRe.FindAllSubmatch(dot, -1) {
		idx, err := strconv.Atoi(string(m[1]))
		if err != nil {
			continue
		}
		attrs := strings.ReplaceAll(string(m[2]), "\\\n", "")
		pm := posAttrRe.FindStringSubmatch(attrs)
		if pm == nil {
			continue
		}
		x, err := strconv.ParseFloat(pm[1], 64)
		if err != nil {
			return nil, fmt.Errorf("node n%d: parse x: %w", idx, err)
		}
		y, err := strconv.ParseFloat(pm[2], 64)
		if err != nil {
			return nil, fmt.Errorf("node n%d: parse y: %w", idx, err)
		}
		out[idx] = topology.Point{X: x, Y: y}
	}
	return out, nil
}

// fit scales raw Graphviz coordinates into bb, inset by pad on every side.
// Graphviz's y axis points up, the canvas' points down.
func fit(raw map[int]topology.Point, n int, bb layout.Box, pad float64) ([]topology.Point, error) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i < n; i++ {
		pt, ok := raw[i]
		if !ok {
			return nil, fmt.Errorf("graphviz returned no position for node n%d", i)
		}
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	pad = min(pad, bb.W/2, bb.H/2)
	w, h := bb.W-2*pad, bb.H-2*pad
	out := make([]topology.Point, n)
	for i := 0; i < n; i++ {
		pt := raw[i]
		fx, fy := 0.5, 0.5
		if maxX > minX {
			fx = (pt.X - minX) / (maxX - minX)
		}
		if maxY > minY {
			fy = (maxY - pt.Y) / (maxY - minY)
		}
		out[i] = topology.Point{X: bb.X1 + pad + fx*w, Y: bb.Y1 + pad + fy*h}
	}
	return out, nil
}

var _ layout.Primitive = (*Primitive)(nil)
