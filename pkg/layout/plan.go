package layout

import (
	"math"

	"github.com/matzehuels/kubetopo/pkg/topology"
)

// forceColumns is the rough column budget of a force section with count nodes.
func forceColumns(count int) int {
	switch {
	case count <= 3:
		return 1
	case count <= 6:
		return 2
	case count <= 12:
		return 3
	case count <= 24:
		return 4
	default:
		return 5
	}
}

// gridColumns is the column step of a grid section with count nodes.
func gridColumns(count int) int {
	switch {
	case count <= 9:
		return 3
	case count <= 12:
		return 4
	case count <= 18:
		return 5
	case count <= 24:
		return 6
	case count <= 30:
		return 7
	default:
		return 8
	}
}

// planForce tiles force sections left to right with no gap and returns the
// row's width and height.
func (e *Engine) planForce(sections []*Section) (width, height float64) {
	size := e.cfg.NodeSize
	x := 0.0
	for _, s := range sections {
		cols := forceColumns(len(s.Nodes))
		w := float64(cols) * size * 5
		h := float64(cols) * size * 2
		s.Options = SectionOptions{
			Name:         PrimitiveFDP,
			BoundingBox:  Box{X1: x, W: w, H: h},
			Cols:         cols,
			AvoidOverlap: true,
		}
		height = max(height, h)
		x += w
	}
	return x, height
}

// planGrid tiles grid sections left to right, one node size apart, and
// returns the row's width (trailing gap included) and height.
func (e *Engine) planGrid(sections []*Section) (width, height float64) {
	size := e.cfg.NodeSize
	x := 0.0
	for _, s := range sections {
		count := len(s.Nodes)
		step := gridColumns(count)
		cols := min(count, step)
		rows := int(math.Ceil(float64(count) / float64(step)))
		w := float64(cols) * size * 2
		h := float64(rows) * size * 2
		s.Options = SectionOptions{
			Name:        PrimitiveGrid,
			BoundingBox: Box{X1: x, W: w, H: h},
			Cols:        cols,
			Rows:        rows,
			Sort:        byType,
		}
		height = max(height, h)
		x += w + size
	}
	return x, height
}

// planSections sizes and positions every section and returns the canvas box.
// Force sections tile left to right on the top row, grid sections on the row
// below; the narrower row is centered under or over the wider one.
func (e *Engine) planSections(force, grid []*Section) topology.BoundingBox {
	fw, fh := e.planForce(force)
	gw, gh := e.planGrid(grid)

	for _, s := range grid {
		s.Options.BoundingBox.Y1 += fh
	}
	if fw > gw {
		dx := (fw - gw) / 2
		for _, s := range grid {
			s.Options.BoundingBox.X1 += dx
		}
	} else {
		dx := (gw - fw) / 2
		for _, s := range force {
			s.Options.BoundingBox.X1 += dx
		}
	}

	return topology.BoundingBox{
		Width:  max(fw, gw) + e.cfg.NodeSize*2,
		Height: fh + gh,
	}
}
