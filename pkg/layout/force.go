package layout

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/relgraph/pkg/graph"
)

// Force simulation parameters. The integration scheme follows d3-force:
// alpha cools from 1 towards 0 over ForceTicks steps, velocities decay by
// velocityDecay each tick.
const (
	ForceTicks      = 300
	LinkDistance    = 150.0
	ChargeStrength  = -300.0
	CollideDistance = 80.0

	alphaMin      = 0.001
	velocityDecay = 0.4
	distanceMin2  = 1.0
)

var alphaDecay = 1 - math.Pow(alphaMin, 1.0/ForceTicks)

type body struct {
	x, y   float64
	vx, vy float64
}

type link struct {
	s, t     int
	strength float64
	bias     float64
}

type simulation struct {
	bodies []body
	links  []link
	cx, cy float64
	alpha  float64
	rng    *rand.Rand
}

// forceLayout runs a fixed-length spring/repulsion simulation.
//
// Each tick applies, in order, the link spring, the many-body charge, the
// centering shift and the collision constraint. Charge and collision are
// computed pairwise, so a tick costs O(n²).
func forceLayout(nodes []graph.Node, edges []graph.Edge, opts Options) []graph.PositionedNode {
	cx, cy := opts.Width/2, opts.Height/2
	if len(nodes) == 1 {
		return place(nodes, func(int) graph.Point { return graph.Point{X: cx, Y: cy} })
	}

	sim := newSimulation(nodes, edges, opts)
	for range ForceTicks {
		sim.tick()
	}
	opts.Logger.Debug("force layout converged", "nodes", len(nodes), "links", len(sim.links), "alpha", sim.alpha)

	return place(nodes, func(i int) graph.Point {
		return graph.Point{X: sim.bodies[i].x, Y: sim.bodies[i].y}
	})
}

func newSimulation(nodes []graph.Node, edges []graph.Edge, opts Options) *simulation {
	sim := &simulation{
		bodies: make([]body, len(nodes)),
		cx:     opts.Width / 2,
		cy:     opts.Height / 2,
		alpha:  1,
		rng:    rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
	}

	seeded := 0
	for i, n := range nodes {
		if p, ok := opts.Prior[n.ID]; ok {
			sim.bodies[i] = body{x: p.X, y: p.Y}
			seeded++
			continue
		}
		sim.bodies[i] = body{x: sim.rng.Float64() * opts.Width, y: sim.rng.Float64() * opts.Height}
	}
	if seeded > 0 {
		opts.Logger.Debug("force layout reseeded", "prior", seeded, "random", len(nodes)-seeded)
	}

	_, pairs := indexEdges(nodes, edges)
	count := make([]int, len(nodes))
	for _, p := range pairs {
		if p[0] == p[1] {
			continue
		}
		count[p[0]]++
		count[p[1]]++
	}
	for _, p := range pairs {
		if p[0] == p[1] {
			continue
		}
		cs, ct := count[p[0]], count[p[1]]
		sim.links = append(sim.links, link{
			s:        p[0],
			t:        p[1],
			strength: 1 / float64(min(cs, ct)),
			bias:     float64(cs) / float64(cs+ct),
		})
	}
	return sim
}

func (s *simulation) tick() {
	s.alpha += -s.alpha * alphaDecay
	s.applyLinks()
	s.applyCharge()
	s.applyCenter()
	s.applyCollide()
	for i := range s.bodies {
		b := &s.bodies[i]
		b.vx *= 1 - velocityDecay
		b.vy *= 1 - velocityDecay
		b.x += b.vx
		b.y += b.vy
	}
}

func (s *simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

func (s *simulation) applyLinks() {
	for _, l := range s.links {
		src, tgt := &s.bodies[l.s], &s.bodies[l.t]
		x := tgt.x + tgt.vx - src.x - src.vx
		if x == 0 {
			x = s.jiggle()
		}
		y := tgt.y + tgt.vy - src.y - src.vy
		if y == 0 {
			y = s.jiggle()
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - LinkDistance) / d * s.alpha * l.strength
		x, y = x*k, y*k
		tgt.vx -= x * l.bias
		tgt.vy -= y * l.bias
		src.vx += x * (1 - l.bias)
		src.vy += y * (1 - l.bias)
	}
}

func (s *simulation) applyCharge() {
	for i := range s.bodies {
		bi := &s.bodies[i]
		for j := range s.bodies {
			if i == j {
				continue
			}
			bj := &s.bodies[j]
			x, y := bj.x-bi.x, bj.y-bi.y
			if x == 0 {
				x = s.jiggle()
			}
			if y == 0 {
				y = s.jiggle()
			}
			l := x*x + y*y
			if l < distanceMin2 {
				l = math.Sqrt(distanceMin2 * l)
			}
			w := ChargeStrength * s.alpha / l
			bi.vx += x * w
			bi.vy += y * w
		}
	}
}

func (s *simulation) applyCenter() {
	var sx, sy float64
	for _, b := range s.bodies {
		sx += b.x
		sy += b.y
	}
	n := float64(len(s.bodies))
	sx, sy = sx/n-s.cx, sy/n-s.cy
	for i := range s.bodies {
		s.bodies[i].x -= sx
		s.bodies[i].y -= sy
	}
}

func (s *simulation) applyCollide() {
	const r = CollideDistance
	for i := range s.bodies {
		bi := &s.bodies[i]
		xi, yi := bi.x+bi.vx, bi.y+bi.vy
		for j := i + 1; j < len(s.bodies); j++ {
			bj := &s.bodies[j]
			x, y := xi-(bj.x+bj.vx), yi-(bj.y+bj.vy)
			l := x*x + y*y
			if l >= r*r {
				continue
			}
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			l = math.Sqrt(l)
			k := (r - l) / l
			x, y = x*k*0.5, y*k*0.5
			bi.vx += x
			bi.vy += y
			bj.vx -= x
			bj.vy -= y
		}
	}
}
