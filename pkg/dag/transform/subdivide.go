package transform

import "github.com/matzehuels/relgraph/pkg/dag"

// Subdivide replaces every edge spanning more than one rank with a chain of
// dummy nodes, one per intermediate rank, and returns the number of dummies
// added. Afterwards every edge connects consecutive ranks, which is what
// crossing reduction needs.
//
//	Before: 1 (rank 0) → 4 (rank 3)
//	After:  1 → -1 → -2 → 4
//
// Dummy IDs are negative and count down from -1. Character IDs are always
// positive, so the two never collide. A reversed edge keeps its flag on the
// last link of its chain.
func Subdivide(g *dag.DAG) int {
	next := int64(-1)
	for _, n := range g.Nodes() {
		if n.ID <= next {
			next = n.ID - 1
		}
	}

	added := 0
	for _, e := range g.Edges() {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		if !srcOK || !dstOK || dst.Row <= src.Row+1 {
			continue
		}

		g.RemoveEdge(e.From, e.To)
		prev := src.ID
		for row := src.Row + 1; row < dst.Row; row++ {
			id := next
			next--
			if err := g.AddNode(dag.Node{ID: id, Row: row, Kind: dag.NodeKindDummy}); err != nil {
				panic(err)
			}
			if err := g.AddEdge(dag.Edge{From: prev, To: id}); err != nil {
				panic(err)
			}
			prev = id
			added++
		}
		if err := g.AddEdge(dag.Edge{From: prev, To: dst.ID, Reversed: e.Reversed}); err != nil {
			panic(err)
		}
	}
	return added
}
