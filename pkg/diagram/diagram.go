package diagram

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/matzehuels/kubetopo/pkg/layout"
)

// ErrDanglingEdge is returned by [Unmarshal] when an edge references a node
// the diagram does not contain.
var ErrDanglingEdge = errors.New("edge references unknown node")

// Diagram is the serialized result of a layout pass: positioned nodes and
// edges plus the canvas and section geometry they were placed in.
type Diagram struct {
	// ID identifies the pass that produced the diagram.
	ID string `json:"id,omitempty" bson:"id,omitempty"`

	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	Nodes    []Node    `json:"nodes" bson:"nodes"`
	Edges    []Edge    `json:"edges" bson:"edges"`
	Sections []Section `json:"sections,omitempty" bson:"sections,omitempty"`
}

// Node is a positioned node. Pods and Services list the UIDs of resources
// folded into it.
type Node struct {
	UID      string   `json:"uid" bson:"uid"`
	Type     string   `json:"type" bson:"type"`
	Label    string   `json:"label" bson:"label"`
	QName    string   `json:"qname,omitempty" bson:"qname,omitempty"`
	Info     string   `json:"info,omitempty" bson:"info,omitempty"`
	X        float64  `json:"x" bson:"x"`
	Y        float64  `json:"y" bson:"y"`
	Pods     []string `json:"pods,omitempty" bson:"pods,omitempty"`
	Services []string `json:"services,omitempty" bson:"services,omitempty"`
	Dragged  bool     `json:"dragged,omitempty" bson:"dragged,omitempty"`
}

// Edge connects two diagram nodes by UID.
type Edge struct {
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Loop   bool   `json:"loop,omitempty" bson:"loop,omitempty"`
}

// Section records where one section was placed and which primitive ran it.
type Section struct {
	Kind      string  `json:"kind" bson:"kind"`
	Group     string  `json:"group" bson:"group"`
	Primitive string  `json:"primitive" bson:"primitive"`
	X         float64 `json:"x" bson:"x"`
	Y         float64 `json:"y" bson:"y"`
	Width     float64 `json:"width" bson:"width"`
	Height    float64 `json:"height" bson:"height"`
	Nodes     int     `json:"nodes" bson:"nodes"`
	Edges     int     `json:"edges" bson:"edges"`
}

// FromResult flattens a layout result. Nodes and edges follow section order,
// so the output is stable for a given input.
func FromResult(res *layout.Result) Diagram {
	d := Diagram{
		Width:  res.BoundingBox.Width,
		Height: res.BoundingBox.Height,
		Nodes:  make([]Node, 0, len(res.Nodes)),
		Edges:  make([]Edge, 0, len(res.Edges)),
	}
	for _, s := range res.Sections {
		bb := s.Options.BoundingBox
		d.Sections = append(d.Sections, Section{
			Kind:      string(s.Kind),
			Group:     s.Group,
			Primitive: s.Options.Name,
			X:         bb.X1,
			Y:         bb.Y1,
			Width:     bb.W,
			Height:    bb.H,
			Nodes:     len(s.Nodes),
			Edges:     len(s.Edges),
		})
		for _, n := range s.Nodes {
			d.Nodes = append(d.Nodes, fromInfo(n))
		}
	}
	for _, e := range res.Edges {
		d.Edges = append(d.Edges, Edge{Source: e.Edge.Source, Target: e.Edge.Target, Loop: e.IsLoop})
	}
	return d
}

func fromInfo(n *layout.NodeInfo) Node {
	out := Node{
		UID:   n.UID,
		Type:  n.Type,
		Label: n.Label,
		QName: n.QName,
		Info:  n.Info,
		X:     n.X,
		Y:     n.Y,
	}
	for _, p := range n.Pods {
		out.Pods = append(out.Pods, p.UID)
	}
	for _, s := range n.Services {
		out.Services = append(out.Services, s.UID)
	}
	if n.Node != nil && n.Node.Dragged != nil {
		out.Dragged = true
	}
	return out
}

// Node returns the diagram node with the given UID.
func (d *Diagram) Node(uid string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.UID == uid {
			return n, true
		}
	}
	return Node{}, false
}

// Validate checks that every edge connects two diagram nodes.
func (d *Diagram) Validate() error {
	uids := make(map[string]struct{}, len(d.Nodes))
	for _, n := range d.Nodes {
		uids[n.UID] = struct{}{}
	}
	for _, e := range d.Edges {
		if _, ok := uids[e.Source]; !ok {
			return fmt.Errorf("%w: %q", ErrDanglingEdge, e.Source)
		}
		if _, ok := uids[e.Target]; !ok {
			return fmt.Errorf("%w: %q", ErrDanglingEdge, e.Target)
		}
	}
	return nil
}

// Marshal serializes a Diagram to pretty-printed JSON bytes.
func Marshal(d Diagram) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Unmarshal deserializes and validates a Diagram.
func Unmarshal(data []byte) (Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return Diagram{}, fmt.Errorf("unmarshal diagram: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Diagram{}, err
	}
	return d, nil
}

// WriteFile writes a Diagram to a JSON file.
func WriteFile(d Diagram, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads a Diagram from a JSON file.
func ReadFile(path string) (Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Diagram{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
