package layout

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relgraph/pkg/graph"
)

// Kind selects a layout algorithm.
type Kind string

const (
	Force        Kind = "force"
	Hierarchical Kind = "hierarchical"
	Circular     Kind = "circular"
)

// Kinds lists the supported layout kinds in display order.
var Kinds = []Kind{Force, Hierarchical, Circular}

// ErrUnknownKind is returned by [ParseKind] for names outside [Kinds].
var ErrUnknownKind = errors.New("unknown layout kind")

// ParseKind resolves a layout name, ignoring case and surrounding space.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case Force, Hierarchical, Circular:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Next returns the kind after k in [Kinds], wrapping around. Unknown kinds
// map to [Force].
func (k Kind) Next() Kind {
	for i, c := range Kinds {
		if c == k {
			return Kinds[(i+1)%len(Kinds)]
		}
	}
	return Force
}

// RankDir is the direction ranks advance in the hierarchical layout.
type RankDir string

const (
	TopToBottom RankDir = "TB"
	LeftToRight RankDir = "LR"
)

// ParseRankDir resolves "TB" or "LR" (any case). The empty string means
// [TopToBottom].
func ParseRankDir(s string) (RankDir, error) {
	switch RankDir(strings.ToUpper(strings.TrimSpace(s))) {
	case "", TopToBottom:
		return TopToBottom, nil
	case LeftToRight:
		return LeftToRight, nil
	}
	return "", fmt.Errorf("unknown rank direction %q (want TB or LR)", s)
}

// Engine selects the implementation behind the hierarchical layout.
type Engine string

const (
	EngineNative   Engine = "native"
	EngineGraphviz Engine = "graphviz"
)

// ParseEngine resolves an engine name. The empty string means
// [EngineNative].
func ParseEngine(s string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(s))) {
	case "", EngineNative:
		return EngineNative, nil
	case EngineGraphviz:
		return EngineGraphviz, nil
	}
	return "", fmt.Errorf("unknown hierarchical engine %q (want native or graphviz)", s)
}

const (
	DefaultWidth  = 1200.0
	DefaultHeight = 800.0
)

// Options configures [Compute]. Zero fields take their defaults.
type Options struct {
	Width   float64
	Height  float64
	RankDir RankDir
	Engine  Engine

	// Seed drives every random choice of the force layout. Equal seeds and
	// equal inputs give equal positions.
	Seed uint64

	// Prior holds positions from an earlier force run. Nodes found here
	// start where they were instead of at a random point.
	Prior map[int64]graph.Point

	Logger *log.Logger
}

// DefaultOptions returns a 1200x800 canvas, top-to-bottom ranks and the
// native hierarchical engine.
func DefaultOptions() Options {
	return Options{
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		RankDir: TopToBottom,
		Engine:  EngineNative,
	}
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.RankDir == "" {
		o.RankDir = TopToBottom
	}
	if o.Engine == "" {
		o.Engine = EngineNative
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Compute positions nodes with the layout named by kind.
//
// Edges whose endpoints are not both in nodes are ignored. Empty input
// gives an empty, non-nil slice for every kind. An unknown kind returns
// the nodes unplaced (nil positions) and never fails. The output keeps the
// order of nodes.
func Compute(nodes []graph.Node, edges []graph.Edge, kind Kind, opts Options) []graph.PositionedNode {
	if len(nodes) == 0 {
		return []graph.PositionedNode{}
	}
	opts = opts.withDefaults()

	switch kind {
	case Force:
		return forceLayout(nodes, edges, opts)
	case Hierarchical:
		return hierarchicalLayout(nodes, edges, opts)
	case Circular:
		return circularLayout(nodes, opts)
	}
	opts.Logger.Warn("unknown layout kind, leaving nodes unplaced", "kind", kind)
	return graph.Unplaced(nodes)
}

func place(nodes []graph.Node, at func(i int) graph.Point) []graph.PositionedNode {
	out := make([]graph.PositionedNode, len(nodes))
	for i, n := range nodes {
		p := at(i)
		out[i] = graph.PositionedNode{Node: n, Position: &p}
	}
	return out
}

// indexEdges resolves edges to node indices, dropping dangling references.
func indexEdges(nodes []graph.Node, edges []graph.Edge) (map[int64]int, [][2]int) {
	index := make(map[int64]int, len(nodes))
	for i, n := range nodes {
		if _, dup := index[n.ID]; !dup {
			index[n.ID] = i
		}
	}
	links := make([][2]int, 0, len(edges))
	for _, e := range edges {
		s, okS := index[e.SourceID]
		t, okT := index[e.TargetID]
		if okS && okT {
			links = append(links, [2]int{s, t})
		}
	}
	return index, links
}
