package layout

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kubetopo/pkg/observability"
	"github.com/matzehuels/kubetopo/pkg/topology"
)

// Engine lays out topology graphs. It holds no per-pass state, so one Engine
// may run many passes concurrently as long as they do not share a Plan.
type Engine struct {
	cfg    Config
	namer  *namer
	force  Primitive
	grid   Primitive
	logger *log.Logger
}

// New creates an engine. force lays out sections with edges; when nil those
// sections fall back to the grid primitive. A nil logger uses log.Default().
func New(cfg Config, force Primitive, logger *log.Logger) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n, err := newNamer(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{cfg: cfg, namer: n, force: force, grid: GridPrimitive{}, logger: logger}, nil
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Plan is a sized and positioned set of sections whose nodes have no
// coordinates yet. A Plan can be run once.
type Plan struct {
	// BoundingBox is the full canvas the sections tile.
	BoundingBox topology.BoundingBox

	// Sections lists force sections first, then grid sections.
	Sections []*Section

	nodes  []*topology.Node
	result *Result
}

// Plan groups, partitions, builds and sizes sections for nodes and edges.
// Input nodes and edges are not modified; edges with an endpoint missing from
// the surviving node set are dropped.
func (e *Engine) Plan(nodes []*topology.Node, edges []topology.Edge) *Plan {
	g := e.groupNodes(nodes)
	order := e.sectionOrder(g)
	kept := e.partition(g, order, edges)
	force, grid, edgeInfos := e.buildSections(g, order)
	bbox := e.planSections(force, grid)

	e.logger.Debug("planned layout",
		"nodes", len(nodes),
		"surviving", len(g.infos),
		"edges", len(kept),
		"force_sections", len(force),
		"grid_sections", len(grid))

	sections := append(force, grid...)
	return &Plan{
		BoundingBox: bbox,
		Sections:    sections,
		nodes:       nodes,
		result: &Result{
			BoundingBox: bbox,
			Nodes:       g.infos,
			Edges:       edgeInfos,
			Sections:    sections,
		},
	}
}

// PlanGraph is Plan over a graph's nodes and edges.
func (e *Engine) PlanGraph(g *topology.Graph) *Plan {
	return e.Plan(g.Pointers(), g.Edges)
}

// Run lays out every section of p and returns the positioned result once all
// sections finished. Dragged positions override computed ones.
// There is no built-in deadline; bound ctx to bound the call.
func (e *Engine) Run(ctx context.Context, p *Plan) (*Result, error) {
	start := time.Now()
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, len(p.nodes), len(p.Sections))

	if err := e.runSections(ctx, p.Sections); err != nil {
		hooks.OnLayoutComplete(ctx, time.Since(start), err)
		return nil, fmt.Errorf("run sections: %w", err)
	}
	reconcileDragged(p.nodes, p.result)

	hooks.OnLayoutComplete(ctx, time.Since(start), nil)
	e.logger.Debug("layout complete", "sections", len(p.Sections), "duration", time.Since(start))
	return p.result, nil
}

// Layout returns the canvas bounding box immediately and lays out nodes in
// the background. onComplete is called exactly once, with the result or with
// the first section error.
func (e *Engine) Layout(ctx context.Context, nodes []*topology.Node, edges []topology.Edge, onComplete func(*Result, error)) topology.BoundingBox {
	p := e.Plan(nodes, edges)
	go func() {
		onComplete(e.Run(ctx, p))
	}()
	return p.BoundingBox
}
