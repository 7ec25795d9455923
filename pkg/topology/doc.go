// Package topology defines the resource graph consumed by the layout engine.
//
// A [Graph] is a flat list of Kubernetes resource [Node] values and directed
// [Edge] relations between them, as produced by the upstream search service.
// Nodes are identified by UID; edges reference nodes by UID and may dangle
// (the layout engine drops them).
//
// # Serialization
//
// Graphs are exchanged as JSON:
//
//	{
//	  "nodes": [{"uid": "c1", "type": "deployment", "name": "web", "namespace": "ns"}],
//	  "edges": [{"source": "c1", "target": "s1"}]
//	}
//
// Use [ReadGraphFile], [ReadGraph] or [UnmarshalGraph] to decode, and
// [WriteGraphFile], [WriteGraph] or [MarshalGraph] to encode.
package topology
