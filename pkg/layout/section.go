package layout

import "strings"

// SectionKind tells the runner which layout primitive a section needs.
type SectionKind string

const (
	// KindForce sections have edges and get a force-directed layout.
	KindForce SectionKind = "force"
	// KindGrid sections have no edges and are arranged on a grid.
	KindGrid SectionKind = "grid"
)

// Primitive names stamped on section options.
const (
	PrimitiveFDP  = "fdp"
	PrimitiveGrid = "grid"
)

// Box is a section's placement on the canvas: top-left corner and size.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	W  float64 `json:"w"`
	H  float64 `json:"h"`
}

// SectionOptions is the declarative contract handed to a layout primitive.
type SectionOptions struct {
	Name        string `json:"name"`
	BoundingBox Box    `json:"bounding_box"`
	Cols        int    `json:"cols,omitempty"`
	Rows        int    `json:"rows,omitempty"`

	// AvoidOverlap asks the primitive to spread nodes even if they overflow
	// the bounding box. Force sections set it, grid sections leave it off.
	AvoidOverlap bool `json:"avoid_overlap,omitempty"`

	// Sort orders grid cells. Nil keeps section order.
	Sort func(a, b *NodeInfo) int `json:"-"`
}

// Section is an independently laid out sub-graph: one connected component or
// one group's unconnected nodes.
type Section struct {
	Kind    SectionKind
	Group   string // type group the section was started from
	Nodes   []*NodeInfo
	Edges   []*EdgeInfo
	Options SectionOptions
}

// byType orders nodes by rendered type so same-type nodes cluster on a grid.
func byType(a, b *NodeInfo) int { return strings.Compare(a.Type, b.Type) }

// buildSections turns every component into a force section and every group's
// unconnected list into a grid section, walking groups in order. A group left
// empty by absorption still gets its zero-size grid section and gap.
// It returns force sections, grid sections and all section edges.
func (e *Engine) buildSections(g *grouping, order []string) (force, grid []*Section, edges []*EdgeInfo) {
	center := e.cfg.Center
	for _, typ := range order {
		grp := g.groups[typ]
		for _, c := range grp.connected {
			s := &Section{Kind: KindForce, Group: typ}
			for _, n := range c.nodes {
				info := g.infos[n.UID]
				info.Center = center
				s.Nodes = append(s.Nodes, info)
			}
			for _, edge := range c.edges {
				ei := &EdgeInfo{
					Edge:   edge,
					Source: g.infos[edge.Source],
					Target: g.infos[edge.Target],
					Center: center,
				}
				s.Edges = append(s.Edges, ei)
				edges = append(edges, ei)
			}
			force = append(force, s)
		}

		s := &Section{Kind: KindGrid, Group: typ}
		for _, n := range grp.unconnected {
			info := g.infos[n.UID]
			info.Center = center
			s.Nodes = append(s.Nodes, info)
		}
		grid = append(grid, s)
	}
	return force, grid, edges
}
