package transform

import "github.com/matzehuels/relgraph/pkg/dag"

// AssignLayers assigns every node to a rank using the longest-path method:
// sources sit on rank 0 and every other node sits one rank below its deepest
// parent. Existing row assignments are overwritten and the deepest rank is
// returned.
//
// The traversal is Kahn's topological sort, so it assumes an acyclic graph.
// Nodes on a cycle never reach in-degree zero and stay on rank 0; run
// [BreakCycles] first.
func AssignLayers(g *dag.DAG) int {
	nodes := g.Nodes()
	inDegree := make(map[int64]int, len(nodes))
	rows := make(map[int64]int, len(nodes))
	queue := make([]int64, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		rows[n.ID] = 0
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	deepest := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
				deepest = max(deepest, row)
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRows(rows)
	return deepest
}
