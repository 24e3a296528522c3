package layout

import (
	"github.com/matzehuels/relgraph/pkg/dag"
	"github.com/matzehuels/relgraph/pkg/dag/transform"
	"github.com/matzehuels/relgraph/pkg/graph"
)

// Hierarchical layout geometry, in canvas units.
const (
	NodeWidth  = 140.0
	NodeHeight = 160.0
	RankSep    = 150.0
	NodeSep    = 100.0

	// dummySep separates a dummy (edge bend point) from its row neighbours.
	dummySep = 20.0
)

// AnchorOffset converts a node centre into the corner-anchored position
// the renderer expects for a NodeWidth x NodeHeight footprint.
var AnchorOffset = graph.Point{X: -NodeWidth / 2, Y: -NodeHeight / 2}

func hierarchicalLayout(nodes []graph.Node, edges []graph.Edge, opts Options) []graph.PositionedNode {
	if opts.Engine == EngineGraphviz {
		out, err := graphvizLayout(nodes, edges, opts)
		if err == nil {
			return out
		}
		opts.Logger.Warn("graphviz layout failed, using native engine", "err", err)
	}
	return nativeLayout(nodes, edges, opts)
}

// nativeLayout is a Sugiyama pipeline: reverse back edges, rank by longest
// path, subdivide long edges, reduce crossings with barycentric sweeps and
// then pack every rank into a centred row.
func nativeLayout(nodes []graph.Node, edges []graph.Edge, opts Options) []graph.PositionedNode {
	if len(nodes) == 1 {
		return place(nodes, func(int) graph.Point { return graph.Point{} })
	}

	g := dag.New()
	for _, n := range nodes {
		_ = g.AddNode(dag.Node{ID: n.ID})
	}
	for _, e := range edges {
		_ = g.AddEdge(dag.Edge{From: e.SourceID, To: e.TargetID})
	}

	reversed := transform.BreakCycles(g)
	depth := transform.AssignLayers(g)
	dummies := transform.Subdivide(g)
	orders := transform.OrderRows(g, 0)
	opts.Logger.Debug("hierarchical layout ranked",
		"ranks", depth+1, "reversed", reversed, "dummies", dummies,
		"crossings", dag.CountCrossings(g, orders))

	centres := packRows(g, orders, opts.RankDir)
	return place(nodes, func(i int) graph.Point {
		c := centres[nodes[i].ID]
		return graph.Point{X: c.X + AnchorOffset.X, Y: c.Y + AnchorOffset.Y}
	})
}

// packRows assigns centre coordinates. Along a rank, real nodes take their
// footprint and are NodeSep apart; dummies take no space. Each rank is
// centred on the widest one.
func packRows(g *dag.DAG, orders map[int][]int64, dir RankDir) map[int64]graph.Point {
	along, across := NodeWidth, NodeHeight
	if dir == LeftToRight {
		along, across = NodeHeight, NodeWidth
	}

	size := func(id int64) float64 {
		if n, ok := g.Node(id); ok && n.IsDummy() {
			return 0
		}
		return along
	}
	gap := func(a, b int64) float64 {
		if size(a) == 0 || size(b) == 0 {
			return dummySep
		}
		return NodeSep
	}
	extent := func(ids []int64) float64 {
		w := 0.0
		for i, id := range ids {
			w += size(id)
			if i > 0 {
				w += gap(ids[i-1], id)
			}
		}
		return w
	}

	rows := g.RowIDs()
	widest := 0.0
	for _, r := range rows {
		widest = max(widest, extent(orders[r]))
	}

	centres := make(map[int64]graph.Point, g.NodeCount())
	for _, r := range rows {
		ids := orders[r]
		rank := across/2 + float64(r)*(across+RankSep)
		cursor := (widest - extent(ids)) / 2
		for i, id := range ids {
			if i > 0 {
				cursor += gap(ids[i-1], id)
			}
			mid := cursor + size(id)/2
			cursor += size(id)
			if dir == LeftToRight {
				centres[id] = graph.Point{X: rank, Y: mid}
			} else {
				centres[id] = graph.Point{X: mid, Y: rank}
			}
		}
	}
	return centres
}
