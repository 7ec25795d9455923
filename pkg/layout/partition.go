package layout

import (
	"maps"
	"slices"

	"github.com/samber/lo"

	"github.com/matzehuels/kubetopo/pkg/topology"
)

// component is one connected sub-graph: its nodes in discovery order and the
// edges that belong to it. Its edges are a superset of the traversal: cycle
// closers and self loops between claimed nodes are kept alongside the edges
// that discovered a node.
type component struct {
	nodes []*topology.Node
	edges []*topology.Edge
}

type link struct {
	peer string
	edge *topology.Edge
}

// partitioner splits type groups into connected components and unconnected
// singletons. Claimed nodes are shared across all groups of one pass.
type partitioner struct {
	all     map[string]*topology.Node
	sources map[string][]link // target -> its sources
	targets map[string][]link // source -> its targets
	linked  map[string]bool   // touched by any surviving edge
	claimed map[string]*component
	walked  map[*topology.Edge]bool
}

// sectionOrder returns the group types in partitioning order: the configured
// precedence first, then any other present type in lexical order.
func (e *Engine) sectionOrder(g *grouping) []string {
	order := lo.Filter(e.cfg.TypeOrder, func(t string, _ int) bool {
		_, ok := g.groups[t]
		return ok
	})
	order = lo.Uniq(order)
	for _, t := range slices.Sorted(maps.Keys(g.groups)) {
		if !slices.Contains(order, t) {
			order = append(order, t)
		}
	}
	return order
}

// partition fills connected and unconnected on every group and returns the
// edges whose endpoints both survived grouping, in input order.
func (e *Engine) partition(g *grouping, order []string, edges []topology.Edge) []*topology.Edge {
	p := &partitioner{
		all:     g.all,
		sources: make(map[string][]link),
		targets: make(map[string][]link),
		linked:  make(map[string]bool),
		claimed: make(map[string]*component),
		walked:  make(map[*topology.Edge]bool),
	}

	var kept []*topology.Edge
	for i := range edges {
		edge := &edges[i]
		if edge.Source == "" || edge.Target == "" {
			continue
		}
		if _, ok := g.all[edge.Source]; !ok {
			continue
		}
		if _, ok := g.all[edge.Target]; !ok {
			continue
		}
		kept = append(kept, edge)
		p.sources[edge.Target] = append(p.sources[edge.Target], link{peer: edge.Source, edge: edge})
		p.targets[edge.Source] = append(p.targets[edge.Source], link{peer: edge.Target, edge: edge})
		p.linked[edge.Source] = true
		p.linked[edge.Target] = true
	}

	for _, typ := range order {
		grp := g.groups[typ]
		grp.connected = nil
		grp.unconnected = nil
		for _, node := range grp.nodes {
			switch {
			case !p.linked[node.UID]:
				grp.unconnected = append(grp.unconnected, node)
			case p.claimed[node.UID] == nil:
				c := &component{}
				p.walk(node.UID, c)
				grp.connected = append(grp.connected, c)
			}
		}
	}

	// Edges the walk did not traverse (cycle closers, self loops) still
	// belong to the component of their endpoints.
	for _, edge := range kept {
		if p.walked[edge] {
			continue
		}
		if c := p.claimed[edge.Source]; c != nil {
			c.edges = append(c.edges, edge)
		}
	}
	return kept
}

// frame is one suspended visit of the depth-first walk: which adjacency list
// it is scanning (sources, then targets) and how far it got.
type frame struct {
	uid   string
	phase int
	next  int
}

// walk claims every node reachable from start, following edges in both
// directions, sources before targets, in adjacency insertion order. It uses
// an explicit stack so long chains cannot exhaust the goroutine stack.
func (p *partitioner) walk(start string, c *component) {
	var stack []*frame
	visit := func(uid string) {
		p.claimed[uid] = c
		c.nodes = append(c.nodes, p.all[uid])
		stack = append(stack, &frame{uid: uid})
	}

	visit(start)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		l, ok := p.advance(f)
		if !ok {
			stack = stack[:len(stack)-1]
			continue
		}
		if p.claimed[l.peer] != nil {
			continue
		}
		c.edges = append(c.edges, l.edge)
		p.walked[l.edge] = true
		visit(l.peer)
	}
}

func (p *partitioner) advance(f *frame) (link, bool) {
	for f.phase < 2 {
		adj := p.sources[f.uid]
		if f.phase == 1 {
			adj = p.targets[f.uid]
		}
		if f.next < len(adj) {
			l := adj[f.next]
			f.next++
			return l, true
		}
		f.phase++
		f.next = 0
	}
	return link{}, false
}
