// Package diagram defines the serialized form of a finished layout.
//
// A [Diagram] is what leaves the process: the CLI writes it to disk, the
// HTTP server returns it, the cache stores it, and the node-link renderer
// draws it. It is a flat copy of a [layout.Result] with UIDs instead of
// pointers:
//
//	res, err := engine.Run(ctx, engine.PlanGraph(g))
//	d := diagram.FromResult(res)
//	err = diagram.WriteFile(d, "layout.json")
package diagram
