package layout

import (
	"math"

	"github.com/matzehuels/relgraph/pkg/graph"
)

// circularLayout places node i of n at angle i*2π/n - π/2 on a circle of
// radius min(w,h)/3 around the canvas centre, so the first node sits at
// twelve o'clock and the rest follow clockwise in screen coordinates.
func circularLayout(nodes []graph.Node, opts Options) []graph.PositionedNode {
	cx, cy := opts.Width/2, opts.Height/2
	r := math.Min(opts.Width, opts.Height) / 3
	step := 2 * math.Pi / float64(len(nodes))

	return place(nodes, func(i int) graph.Point {
		theta := float64(i)*step - math.Pi/2
		return graph.Point{X: cx + r*math.Cos(theta), Y: cy + r*math.Sin(theta)}
	})
}
