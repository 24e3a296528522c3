package transform

import "github.com/matzehuels/relgraph/pkg/dag"

// BreakCycles makes g acyclic and returns the number of edges it changed.
//
// Self-loops are removed. Every remaining back edge found by a depth-first
// search is reversed rather than dropped, so both characters of a mutual
// relation (A→B and B→A) still end up on different ranks. Reversed edges are
// flagged with [dag.Edge.Reversed].
//
// The search starts from sources in insertion order, then from any node
// still unvisited (nodes that only sit on cycles), which keeps the result
// deterministic for a given input order.
func BreakCycles(g *dag.DAG) int {
	changed := removeSelfLoops(g)

	const (
		white = iota
		gray
		black
	)

	color := make(map[int64]int, g.NodeCount())
	var backEdges [][2]int64

	var dfs func(node int64)
	dfs = func(node int64) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]int64{node, child})
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, e := range backEdges {
		if g.ReverseEdge(e[0], e[1]) {
			changed++
		}
	}
	return changed
}

func removeSelfLoops(g *dag.DAG) int {
	removed := 0
	for _, e := range g.Edges() {
		if e.From == e.To {
			g.RemoveEdge(e.From, e.To)
			removed++
		}
	}
	return removed
}
