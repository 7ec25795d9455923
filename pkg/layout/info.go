package layout

import (
	"github.com/matzehuels/kubetopo/pkg/topology"
)

// NodeInfo is the per-pass layout record of one surviving node. It is owned by
// the [Result] of a single pass and never stored on the input node.
type NodeInfo struct {
	UID   string
	Type  string // rendered type; "service" for controllers fronted by a service
	Label string
	QName string

	// Info summarizes absorbed pods, e.g. "deployment of 3 pods".
	Info string

	// Pods and Services were folded into this controller and are not laid out.
	Pods     []*topology.Node
	Services []*topology.Node

	Center topology.Point
	X, Y   float64

	Node *topology.Node
}

// Position returns the node's laid out position.
func (n *NodeInfo) Position() topology.Point { return topology.Point{X: n.X, Y: n.Y} }

// EdgeInfo is the per-pass layout record of one surviving edge.
type EdgeInfo struct {
	Edge   *topology.Edge
	Source *NodeInfo
	Target *NodeInfo
	Center topology.Point
	IsLoop bool
}

// Result holds everything one layout pass produced.
type Result struct {
	BoundingBox topology.BoundingBox

	// Nodes is keyed by UID and only has entries for nodes that were not
	// absorbed into a controller.
	Nodes map[string]*NodeInfo

	// Edges lists every surviving edge in section order.
	Edges []*EdgeInfo

	Sections []*Section
}

// Node returns the layout record for uid.
func (r *Result) Node(uid string) (*NodeInfo, bool) {
	n, ok := r.Nodes[uid]
	return n, ok
}
