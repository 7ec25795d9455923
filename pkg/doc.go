// Package pkg provides the libraries behind kubetopo, a layout engine for
// Kubernetes topology graphs.
//
// # Overview
//
// A topology graph holds hosts, services, workloads, pods and containers
// with the relations between them. kubetopo folds pods into the controllers
// that own them, services into the workloads they front, and places the rest:
// connected parts with a force-directed primitive, isolated nodes on grids.
//
//	topology.Graph (JSON)
//	       ↓
//	  [layout] group → partition → plan → run sections in parallel
//	       ↓
//	  [diagram] positioned nodes, edges and section summaries
//	       ↓
//	  [render] SVG / PNG / PDF via Graphviz
//
// # Packages
//
// [topology] - input model: nodes, edges, resource types, JSON I/O.
//
// [layout] - the engine: grouping, connectivity partitioning, section
// geometry and the concurrent runner. [layout/fdp] is the Graphviz fdp force
// primitive.
//
// [diagram] - the serializable result of a layout pass.
//
// [render] - Graphviz drawing of diagrams and SVG conversion.
//
// [pipeline] - layout and render with caching, shared by the CLI and the
// HTTP API in [server].
//
// [cache] - file, Redis and MongoDB caches behind one interface.
//
// [observability] - hooks for layout, cache and HTTP events, with a
// Prometheus implementation.
//
// [errors] - coded errors and input validation.
//
// [topology]: github.com/matzehuels/kubetopo/pkg/topology
// [layout]: github.com/matzehuels/kubetopo/pkg/layout
// [layout/fdp]: github.com/matzehuels/kubetopo/pkg/layout/fdp
// [diagram]: github.com/matzehuels/kubetopo/pkg/diagram
// [render]: github.com/matzehuels/kubetopo/pkg/render
// [pipeline]: github.com/matzehuels/kubetopo/pkg/pipeline
// [server]: github.com/matzehuels/kubetopo/pkg/server
// [cache]: github.com/matzehuels/kubetopo/pkg/cache
// [observability]: github.com/matzehuels/kubetopo/pkg/observability
// [errors]: github.com/matzehuels/kubetopo/pkg/errors
package pkg
