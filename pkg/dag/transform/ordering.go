package transform

import (
	"slices"

	"github.com/matzehuels/relgraph/pkg/dag"
)

// DefaultPasses is the number of down/up barycenter sweep pairs used when
// [OrderRows] is called with passes <= 0.
const DefaultPasses = 12

// OrderRows orders the nodes within each row to reduce edge crossings and
// returns the best ordering found, keyed by row.
//
// The starting order is insertion order. Each pass sweeps down (sorting a
// row by the mean position of its parents in the row above) and then up
// (by the mean position of its children in the row below). Nodes with no
// neighbors in the reference row keep their current position as their key.
// After each sweep the ordering is scored with [dag.CountCrossings] and the
// lowest-scoring one is kept. Sorting is stable, so ties never depend on
// map order.
func OrderRows(g *dag.DAG, passes int) map[int][]int64 {
	if passes <= 0 {
		passes = DefaultPasses
	}

	rows := g.RowIDs()
	orders := make(map[int][]int64, len(rows))
	for _, r := range rows {
		orders[r] = dag.NodeIDs(g.NodesInRow(r))
	}
	if len(rows) < 2 {
		return orders
	}

	best := cloneOrders(orders)
	bestScore := dag.CountCrossings(g, orders)

	consider := func() bool {
		score := dag.CountCrossings(g, orders)
		if score < bestScore {
			best, bestScore = cloneOrders(orders), score
		}
		return bestScore == 0
	}

	for range passes {
		if bestScore == 0 {
			break
		}
		for i := 1; i < len(rows); i++ {
			sortByBarycenter(orders[rows[i]], orders[rows[i-1]], g.Parents)
		}
		if consider() {
			break
		}
		for i := len(rows) - 2; i >= 0; i-- {
			sortByBarycenter(orders[rows[i]], orders[rows[i+1]], g.Children)
		}
		if consider() {
			break
		}
	}
	return best
}

func sortByBarycenter(row, ref []int64, neighbors func(int64) []int64) {
	refPos := dag.PosMap(ref)
	key := make(map[int64]float64, len(row))
	for i, id := range row {
		sum, n := 0.0, 0
		for _, nb := range neighbors(id) {
			if p, ok := refPos[nb]; ok {
				sum += float64(p)
				n++
			}
		}
		if n == 0 {
			key[id] = float64(i)
			continue
		}
		key[id] = sum / float64(n)
	}
	slices.SortStableFunc(row, func(a, b int64) int {
		ka, kb := key[a], key[b]
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
}

func cloneOrders(orders map[int][]int64) map[int][]int64 {
	out := make(map[int][]int64, len(orders))
	for r, ids := range orders {
		out[r] = slices.Clone(ids)
	}
	return out
}
