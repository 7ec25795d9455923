// Package layout computes readable 2D layouts for Kubernetes topology diagrams.
//
// # Pipeline
//
// A layout pass runs five stages:
//
//	nodes/edges → group → partition → sections → plan → run → positions
//
//   - Group: nodes are bucketed by type. Deployments, daemonsets, statefulsets
//     and cronjobs collapse into the "controller" group. Pods and services
//     whose qualified name (namespace/name minus generated suffixes) matches
//     a controller are folded into it and vanish from the diagram. A
//     controller that absorbed a service is shown as a service.
//   - Partition: in type precedence order, each group is split into connected
//     components (walking edges both ways) and unconnected nodes.
//   - Sections: every component becomes a force section, every group's
//     unconnected nodes one grid section.
//   - Plan: sections are sized from their node count and tiled; force
//     sections on the top row, grid sections below, the narrower row centered.
//   - Run: every section goes through a [Primitive] concurrently. Positions
//     are written only after all sections finished.
//
// # Side table
//
// Input nodes are never mutated. Derived data (labels, absorbed pods,
// positions) lives in the [Result] of the pass, keyed by node UID.
//
// # Usage
//
//	eng, _ := layout.New(layout.DefaultConfig(), fdp.New(), logger)
//	plan := eng.PlanGraph(g)
//	res, err := eng.Run(ctx, plan)
//	info, _ := res.Node("c1")
//	fmt.Println(info.X, info.Y)
//
// Or with the callback contract, which returns the canvas box right away:
//
//	bbox := eng.Layout(ctx, nodes, edges, func(res *layout.Result, err error) { ... })
package layout
