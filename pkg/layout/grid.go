package layout

import (
	"context"
	"math"
	"slices"

	"github.com/matzehuels/kubetopo/pkg/topology"
)

// GridPrimitive places section nodes on a regular grid filling the section's
// bounding box, row by row, after applying the section's sort.
type GridPrimitive struct{}

// Run implements Primitive.
func (GridPrimitive) Run(ctx context.Context, s *Section) (Placement, error) {
	if err := ctx.Err(); err != nil {
		return Placement{}, err
	}
	p := Placement{
		Positions: make(map[string]topology.Point, len(s.Nodes)),
		Loops:     DetectLoops(s),
	}
	if len(s.Nodes) == 0 {
		return p, nil
	}

	nodes := slices.Clone(s.Nodes)
	if s.Options.Sort != nil {
		slices.SortStableFunc(nodes, s.Options.Sort)
	}

	cols := s.Options.Cols
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(len(nodes)))))
	}
	rows := int(math.Ceil(float64(len(nodes)) / float64(cols)))

	bb := s.Options.BoundingBox
	cw := bb.W / float64(cols)
	ch := bb.H / float64(rows)
	for i, n := range nodes {
		row, col := i/cols, i%cols
		p.Positions[n.UID] = topology.Point{
			X: bb.X1 + cw*float64(col) + cw/2,
			Y: bb.Y1 + ch*float64(row) + ch/2,
		}
	}
	return p, nil
}

var _ Primitive = GridPrimitive{}
