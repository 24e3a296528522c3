// Package dag provides a directed graph organized into rows for the
// layered (Sugiyama-style) hierarchical layout.
//
// # Overview
//
// The hierarchical layout assigns every character to a rank and orders the
// characters within each rank to reduce edge crossings. This package holds
// the graph structure those steps operate on. Node IDs are the character
// IDs; synthetic dummy nodes inserted for long edges use negative IDs.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: 1, Row: 0})
//	g.AddNode(dag.Node{ID: 2, Row: 1})
//	g.AddEdge(dag.Edge{From: 1, To: 2})
//
// Query the structure with [DAG.Children], [DAG.Parents] and
// [DAG.NodesInRow]. [DAG.Validate] checks that every edge connects
// consecutive rows and that the graph is acyclic, which is what the ordering
// step in package transform expects.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count inversions with a
// Fenwick tree in O(E log V), cheap enough to evaluate an ordering after
// every barycentric sweep.
//
// # Determinism
//
// Nodes are always visited in insertion order, never map order, so a layout
// of the same input is reproducible.
//
// # Concurrency
//
// DAG is not safe for concurrent use.
package dag
