package layout

import (
	"fmt"
	"testing"

	"github.com/matzehuels/kubetopo/pkg/topology"
)

func TestForceColumns(t *testing.T) {
	tests := []struct{ count, want int }{
		{1, 1}, {3, 1}, {4, 2}, {6, 2}, {7, 3}, {12, 3}, {13, 4}, {24, 4}, {25, 5}, {500, 5},
	}
	for _, tt := range tests {
		if got := forceColumns(tt.count); got != tt.want {
			t.Errorf("forceColumns(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestGridColumns(t *testing.T) {
	tests := []struct{ count, want int }{
		{1, 3}, {9, 3}, {10, 4}, {12, 4}, {13, 5}, {18, 5}, {19, 6}, {24, 6}, {25, 7}, {30, 7}, {31, 8},
	}
	for _, tt := range tests {
		if got := gridColumns(tt.count); got != tt.want {
			t.Errorf("gridColumns(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func hosts(n int) []*topology.Node {
	out := make([]*topology.Node, n)
	for i := range out {
		out[i] = &topology.Node{UID: fmt.Sprintf("h%d", i), Type: topology.TypeHost}
	}
	return out
}

func TestPlanGridGeometry(t *testing.T) {
	tests := []struct {
		count      int
		cols, rows int
		w, h       float64
	}{
		{1, 1, 1, 100, 100},
		{2, 2, 1, 200, 100},
		{9, 3, 3, 300, 300},
		{10, 4, 3, 400, 300},
		{40, 8, 5, 800, 500},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.count), func(t *testing.T) {
			e := newTestEngine(t, nil)
			p := e.Plan(hosts(tt.count), nil)
			o := p.Sections[0].Options
			if o.Name != PrimitiveGrid || o.Cols != tt.cols || o.Rows != tt.rows {
				t.Errorf("options = %+v, want %d cols %d rows", o, tt.cols, tt.rows)
			}
			if o.BoundingBox.W != tt.w || o.BoundingBox.H != tt.h {
				t.Errorf("box = %+v, want %vx%v", o.BoundingBox, tt.w, tt.h)
			}
			// Grid row width includes the trailing gap.
			want := topology.BoundingBox{Width: tt.w + 50 + 100, Height: tt.h}
			if p.BoundingBox != want {
				t.Errorf("canvas = %+v, want %+v", p.BoundingBox, want)
			}
		})
	}
}

func TestPlanComposition(t *testing.T) {
	e := newTestEngine(t, nil)
	nodes := []*topology.Node{
		{UID: "a", Type: topology.TypeHost},
		{UID: "b", Type: topology.TypeHost},
		{UID: "u", Type: topology.TypePod},
	}
	edges := []topology.Edge{{Source: "a", Target: "b"}}

	p := e.Plan(nodes, edges)

	if len(p.Sections) != 3 {
		t.Fatalf("sections = %d, want 3", len(p.Sections))
	}
	force, empty, grid := p.Sections[0].Options, p.Sections[1].Options, p.Sections[2].Options
	if force.Name != PrimitiveFDP {
		t.Errorf("force primitive = %q", force.Name)
	}
	// One column force section: 250x100 at the origin.
	if force.BoundingBox != (Box{X1: 0, Y1: 0, W: 250, H: 100}) {
		t.Errorf("force box = %+v", force.BoundingBox)
	}
	// The host group has no unconnected nodes but still takes its gap, so the
	// grid row is 200 wide, centered under the 250 wide force row.
	if empty.BoundingBox != (Box{X1: 25, Y1: 100}) {
		t.Errorf("empty host grid box = %+v", empty.BoundingBox)
	}
	if grid.BoundingBox != (Box{X1: 75, Y1: 100, W: 100, H: 100}) {
		t.Errorf("pod grid box = %+v", grid.BoundingBox)
	}
	want := topology.BoundingBox{Width: 350, Height: 200}
	if p.BoundingBox != want {
		t.Errorf("canvas = %+v, want %+v", p.BoundingBox, want)
	}
}

func TestPlanCentersNarrowForceRow(t *testing.T) {
	e := newTestEngine(t, nil)
	nodes := hosts(2)
	for i := 0; i < 20; i++ {
		nodes = append(nodes, &topology.Node{UID: fmt.Sprintf("p%d", i), Type: topology.TypePod})
	}
	edges := []topology.Edge{{Source: "h0", Target: "h1"}}

	p := e.Plan(nodes, edges)

	force, grid := p.Sections[0].Options.BoundingBox, p.Sections[2].Options.BoundingBox
	// 20 pods: 6 columns, 4 rows → 600 wide, after the empty host grid's gap;
	// row width 700 with both gaps.
	if grid.W != 600 || grid.H != 400 || grid.X1 != 50 || grid.Y1 != 100 {
		t.Errorf("grid box = %+v", grid)
	}
	if force.X1 != (700-250)/2 {
		t.Errorf("force x1 = %v, want %v", force.X1, (700-250)/2)
	}
	if p.BoundingBox.Width != 800 || p.BoundingBox.Height != 500 {
		t.Errorf("canvas = %+v", p.BoundingBox)
	}
}

func TestPlanForceTilesLeftToRight(t *testing.T) {
	e := newTestEngine(t, nil)
	var nodes []*topology.Node
	var edges []topology.Edge
	// Component sizes 2 and 5: one and two columns.
	for i, size := range []int{2, 5} {
		for j := 0; j < size; j++ {
			uid := fmt.Sprintf("c%d-%d", i, j)
			nodes = append(nodes, &topology.Node{UID: uid, Type: topology.TypeHost})
			if j > 0 {
				edges = append(edges, topology.Edge{Source: fmt.Sprintf("c%d-%d", i, j-1), Target: uid})
			}
		}
	}

	p := e.Plan(nodes, edges)

	a, b := p.Sections[0].Options.BoundingBox, p.Sections[1].Options.BoundingBox
	if a != (Box{X1: 0, W: 250, H: 100}) {
		t.Errorf("first box = %+v", a)
	}
	if b != (Box{X1: 250, W: 500, H: 200}) {
		t.Errorf("second box = %+v", b)
	}
	if p.BoundingBox != (topology.BoundingBox{Width: 850, Height: 200}) {
		t.Errorf("canvas = %+v", p.BoundingBox)
	}
}

func TestPlanEmpty(t *testing.T) {
	e := newTestEngine(t, nil)
	p := e.Plan(nil, nil)
	if len(p.Sections) != 0 {
		t.Errorf("sections = %d", len(p.Sections))
	}
	if p.BoundingBox != (topology.BoundingBox{Width: 100}) {
		t.Errorf("canvas = %+v", p.BoundingBox)
	}
}
