package layout

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/matzehuels/kubetopo/pkg/topology"
)

// group is the transient set of nodes sharing a normalized type.
type group struct {
	typ         string
	nodes       []*topology.Node
	connected   []*component
	unconnected []*topology.Node
}

// grouping is the Grouper's output: type groups over the surviving nodes.
type grouping struct {
	groups map[string]*group
	all    map[string]*topology.Node
	infos  map[string]*NodeInfo
}

func (g *grouping) group(typ string) *group {
	grp, ok := g.groups[typ]
	if !ok {
		grp = &group{typ: typ}
		g.groups[typ] = grp
	}
	return grp
}

// groupNodes classifies nodes by type, folds pods and services into their
// owning controllers and moves service-fronted controllers into the service
// group.
func (e *Engine) groupNodes(nodes []*topology.Node) *grouping {
	g := &grouping{
		groups: make(map[string]*group),
		all:    make(map[string]*topology.Node, len(nodes)),
		infos:  make(map[string]*NodeInfo, len(nodes)),
	}
	controllers := make(map[string]*topology.Node)

	for _, node := range nodes {
		g.all[node.UID] = node
		typ := node.Type
		if lo.Contains(e.cfg.ControllerTypes, typ) {
			typ = topology.TypeController
		}

		info := &NodeInfo{
			UID:   node.UID,
			Type:  node.Type,
			Label: e.namer.label(node.Name),
			Node:  node,
		}
		switch typ {
		case topology.TypeController:
			info.QName = node.Namespace + "/" + node.Name
			info.Pods = []*topology.Node{}
			info.Services = []*topology.Node{}
			controllers[info.QName] = node
		case topology.TypePod, topology.TypeService:
			info.QName = e.namer.qname(node, typ)
		}
		g.infos[node.UID] = info

		grp := g.group(typ)
		grp.nodes = append(grp.nodes, node)
	}

	ctrl, ok := g.groups[topology.TypeController]
	if !ok {
		return g
	}

	if pods, ok := g.groups[topology.TypePod]; ok {
		g.absorb(pods, controllers, func(c *NodeInfo, n *topology.Node) {
			c.Pods = append(c.Pods, n)
		})
	}

	var fronted []string
	if services, ok := g.groups[topology.TypeService]; ok {
		fronted = g.absorb(services, controllers, func(c *NodeInfo, n *topology.Node) {
			c.Services = append(c.Services, n)
		})
	}

	for _, c := range ctrl.nodes {
		info := g.infos[c.UID]
		if len(info.Pods) > 0 {
			info.Info = fmt.Sprintf("%s of %d pods", c.Type, len(info.Pods))
		}
	}

	// Controllers fronted by a service render as services.
	for _, qname := range fronted {
		i := slices.IndexFunc(ctrl.nodes, func(n *topology.Node) bool {
			return g.infos[n.UID].QName == qname
		})
		if i == -1 {
			continue
		}
		c := ctrl.nodes[i]
		ctrl.nodes = slices.Delete(ctrl.nodes, i, i+1)
		g.infos[c.UID].Type = topology.TypeService
		svc := g.group(topology.TypeService)
		svc.nodes = append(svc.nodes, c)
	}

	return g
}

// absorb moves every node of grp whose qname matches a controller into that
// controller, scanning from the back. It returns the matched qnames in scan order.
func (g *grouping) absorb(grp *group, controllers map[string]*topology.Node, add func(*NodeInfo, *topology.Node)) []string {
	var matched []string
	for i := len(grp.nodes) - 1; i >= 0; i-- {
		n := grp.nodes[i]
		info, ok := g.infos[n.UID]
		if !ok {
			continue
		}
		c, ok := controllers[info.QName]
		if !ok {
			continue
		}
		add(g.infos[c.UID], n)
		grp.nodes = slices.Delete(grp.nodes, i, i+1)
		delete(g.all, n.UID)
		delete(g.infos, n.UID)
		matched = append(matched, info.QName)
	}
	return matched
}
