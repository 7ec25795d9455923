package layout

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/kubetopo/pkg/observability"
	"github.com/matzehuels/kubetopo/pkg/topology"
)

// Placement is what a layout primitive computed for one section.
type Placement struct {
	// Positions maps node UID to the node's center.
	Positions map[string]topology.Point

	// Loops is parallel to the section's Edges and flags self loops.
	Loops []bool
}

// Primitive lays out a single section. Implementations treat the section's
// Options as a declarative contract and must not modify the section.
type Primitive interface {
	Run(ctx context.Context, s *Section) (Placement, error)
}

// PrimitiveFunc adapts a function to the Primitive interface.
type PrimitiveFunc func(ctx context.Context, s *Section) (Placement, error)

// Run calls f(ctx, s).
func (f PrimitiveFunc) Run(ctx context.Context, s *Section) (Placement, error) { return f(ctx, s) }

// DetectLoops flags every self loop among the section's edges.
func DetectLoops(s *Section) []bool {
	loops := make([]bool, len(s.Edges))
	for i, e := range s.Edges {
		loops[i] = e.Edge.IsLoop()
	}
	return loops
}

func (e *Engine) primitive(s *Section) Primitive {
	if s.Kind == KindForce && e.force != nil {
		return e.force
	}
	return e.grid
}

// runSections runs every section concurrently and joins them before writing
// anything back, so positions appear all at once or not at all.
func (e *Engine) runSections(ctx context.Context, sections []*Section) error {
	hooks := observability.Layout()
	placements := make([]Placement, len(sections))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxParallel)
	for i, s := range sections {
		g.Go(func() error {
			start := time.Now()
			p, err := e.primitive(s).Run(gctx, s)
			hooks.OnSectionComplete(gctx, string(s.Kind), len(s.Nodes), time.Since(start), err)
			if err != nil {
				return fmt.Errorf("section %d (%s %s): %w", i, s.Kind, s.Group, err)
			}
			e.logger.Debug("section laid out", "index", i, "kind", s.Kind, "group", s.Group,
				"nodes", len(s.Nodes), "edges", len(s.Edges), "duration", time.Since(start))
			placements[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, s := range sections {
		apply(s, placements[i])
	}
	return nil
}

func apply(s *Section, p Placement) {
	for _, n := range s.Nodes {
		if pos, ok := p.Positions[n.UID]; ok {
			n.X, n.Y = pos.X, pos.Y
		}
	}
	for i, edge := range s.Edges {
		if i < len(p.Loops) {
			edge.IsLoop = p.Loops[i]
		}
	}
}

// reconcileDragged lets a user's manual placement win over computed positions.
func reconcileDragged(nodes []*topology.Node, r *Result) {
	for _, n := range nodes {
		if n.Dragged == nil {
			continue
		}
		if info, ok := r.Nodes[n.UID]; ok {
			info.X, info.Y = n.Dragged.X, n.Dragged.Y
		}
	}
}
