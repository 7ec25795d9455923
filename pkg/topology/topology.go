package topology

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNodeID is returned by [Graph.Validate] when a node has an
	// empty UID. Every node must be addressable by edges.
	ErrInvalidNodeID = errors.New("node UID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.Validate] when two nodes share
	// a UID.
	ErrDuplicateNodeID = errors.New("duplicate node UID")

	// ErrMissingType is returned by [Graph.Validate] when a node has no type.
	ErrMissingType = errors.New("node type must not be empty")
)

// Resource types understood by the layout engine. Any other string is a valid
// type too; it simply forms its own group.
const (
	TypeCluster     = "cluster"
	TypeInternet    = "internet"
	TypeHost        = "host"
	TypeService     = "service"
	TypePod         = "pod"
	TypeContainer   = "container"
	TypeUnmanaged   = "unmanaged"
	TypeDeployment  = "deployment"
	TypeDaemonSet   = "daemonset"
	TypeStatefulSet = "statefulset"
	TypeCronJob     = "cronjob"

	// TypeController is the synthetic group that controller kinds collapse into.
	TypeController = "controller"
)

// Point is a position on the diagram canvas.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// BoundingBox is an axis-aligned rectangle on the canvas.
type BoundingBox struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Node is one Kubernetes resource instance in the diagram.
type Node struct {
	UID       string `json:"uid" bson:"uid"`
	Type      string `json:"type" bson:"type"`
	Name      string `json:"name,omitempty" bson:"name,omitempty"`
	Namespace string `json:"namespace,omitempty" bson:"namespace,omitempty"`

	// Dragged is the position the user manually moved the node to in a
	// previous interaction. When set it overrides the computed position.
	Dragged *Point `json:"dragged,omitempty" bson:"dragged,omitempty"`
}

// Edge is a directed relation between two nodes, by UID.
type Edge struct {
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// IsLoop reports whether the edge starts and ends at the same node.
func (e Edge) IsLoop() bool { return e.Source == e.Target }

// Graph is the canonical input of a layout pass.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges, dangling ones included.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Validate checks that every node has a unique non-empty UID and a type.
// Dangling edges are not an error; the layout engine drops them.
func (g *Graph) Validate() error {
	seen := make(map[string]struct{}, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.UID == "" {
			return fmt.Errorf("node %d: %w", i, ErrInvalidNodeID)
		}
		if n.Type == "" {
			return fmt.Errorf("node %q: %w", n.UID, ErrMissingType)
		}
		if _, dup := seen[n.UID]; dup {
			return fmt.Errorf("node %q: %w", n.UID, ErrDuplicateNodeID)
		}
		seen[n.UID] = struct{}{}
	}
	return nil
}

// Pointers returns the graph's nodes as pointers into g.Nodes, preserving order.
func (g *Graph) Pointers() []*Node {
	out := make([]*Node, len(g.Nodes))
	for i := range g.Nodes {
		out[i] = &g.Nodes[i]
	}
	return out
}
