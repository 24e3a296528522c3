// Package filter narrows a relationship graph by relation kind and strength.
//
// The engine keeps an edge when its kind is selected and its strength lies
// in the inclusive range, then keeps only the characters touched by at
// least one surviving edge. Isolated characters never reach layout.
//
//	res := filter.Graph(nodes, edges, graph.AllKinds(), filter.DefaultRange())
//	for _, n := range res.Nodes {
//	    fmt.Println(n.Label, n.Degree)
//	}
//
// Output order always follows input order so that seeded layouts stay
// reproducible across re-renders with unchanged filters.
package filter

import (
	"fmt"

	"github.com/matzehuels/relgraph/pkg/graph"
)

// Strength bounds of the relation scale.
const (
	MinStrength = 0
	MaxStrength = 10
)

// Range is an inclusive strength interval.
type Range struct {
	Min int `json:"min" toml:"min"`
	Max int `json:"max" toml:"max"`
}

// DefaultRange returns the full strength scale [0, 10].
func DefaultRange() Range { return Range{Min: MinStrength, Max: MaxStrength} }

// Contains reports whether s lies within the range.
func (r Range) Contains(s int) bool { return s >= r.Min && s <= r.Max }

// Valid reports whether the range is ordered and within the strength scale.
func (r Range) Valid() bool {
	return r.Min <= r.Max && r.Min >= MinStrength && r.Max <= MaxStrength
}

// Widen reports whether r includes every strength o includes.
func (r Range) Widen(o Range) bool { return r.Min <= o.Min && r.Max >= o.Max }

func (r Range) String() string { return fmt.Sprintf("[%d,%d]", r.Min, r.Max) }

// Result is the filtered graph.
type Result struct {
	Nodes []graph.Node
	Edges []graph.Edge
}

// Empty reports whether no character survived.
func (r Result) Empty() bool { return len(r.Nodes) == 0 }

// Graph filters edges by kind and strength and derives the surviving node
// set with per-node degrees.
//
// Edges referencing a character missing from nodes are dropped, so callers
// downstream can rely on referential integrity. Inputs are not modified.
func Graph(nodes []graph.Node, edges []graph.Edge, kinds graph.KindSet, strength Range) Result {
	known := make(map[int64]struct{}, len(nodes))
	for _, n := range nodes {
		known[n.ID] = struct{}{}
	}

	degree := make(map[int64]int, len(nodes))
	kept := make([]graph.Edge, 0, len(edges))
	for _, e := range edges {
		if !Keep(e, kinds, strength) {
			continue
		}
		if _, ok := known[e.SourceID]; !ok {
			continue
		}
		if _, ok := known[e.TargetID]; !ok {
			continue
		}
		kept = append(kept, e)
		degree[e.SourceID]++
		degree[e.TargetID]++
	}

	out := make([]graph.Node, 0, len(degree))
	for _, n := range nodes {
		d, ok := degree[n.ID]
		if !ok {
			continue
		}
		n.Degree = d
		out = append(out, n)
		// Duplicate IDs in the input keep their first occurrence only.
		delete(degree, n.ID)
	}

	return Result{Nodes: out, Edges: kept}
}

// Keep reports whether a single edge passes the kind and strength criteria.
func Keep(e graph.Edge, kinds graph.KindSet, strength Range) bool {
	return kinds.Has(e.Kind) && strength.Contains(e.Strength)
}
