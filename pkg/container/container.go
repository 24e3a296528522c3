// Package container turns a dataset plus the current filter and layout
// selection into a positioned graph and hands it to a rendering surface.
//
// A [Container] owns the raw characters and relations. Every time the data
// or the [store.State] changes it deduplicates and filters the graph, and
// when the filtered graph or the layout kind differs from the last run it
// schedules a fresh layout. The surface first sees a [Computing] view, then
// the [Ready] result. A filter that matches nothing presents [Empty] at
// once without scheduling anything.
//
// Each layout run carries a request ID. A run that completes after a newer
// request was issued is discarded, so the surface only ever shows the most
// recent selection.
package container

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relgraph/pkg/filter"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/observability"
	"github.com/matzehuels/relgraph/pkg/store"
)

// Status describes what a [View] holds.
type Status string

const (
	Idle      Status = "idle"
	Computing Status = "computing"
	Empty     Status = "empty"
	Ready     Status = "ready"
)

// View is one presentation of the graph. Nodes carry positions only when
// Status is Ready.
type View struct {
	Status  Status
	Layout  layout.Kind
	Nodes   []graph.PositionedNode
	Edges   []graph.Edge
	Request uint64
	Elapsed time.Duration
}

// Surface receives views. Present is called from the goroutine that caused
// the change or from the scheduler, never concurrently.
type Surface interface {
	Present(View)
}

// SurfaceFunc adapts a function to [Surface].
type SurfaceFunc func(View)

func (f SurfaceFunc) Present(v View) { f(v) }

// Handlers receive clicks on entities of the current view.
type Handlers struct {
	OnNodeClick func(id int64)
	OnEdgeClick func(id string)
}

// Option configures a Container.
type Option func(*Container)

// WithScheduler sets where layouts run. The default is [Immediate].
func WithScheduler(s Scheduler) Option { return func(c *Container) { c.sched = s } }

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option { return func(c *Container) { c.logger = l } }

// WithHandlers sets the click handlers.
func WithHandlers(h Handlers) Option { return func(c *Container) { c.handlers = h } }

// WithLayoutOptions sets the canvas and layout parameters. Prior positions
// are managed by the container and any Prior given here is ignored.
func WithLayoutOptions(o layout.Options) Option { return func(c *Container) { c.layoutOpts = o } }

// WithReference sets the character relations are deduplicated against.
// Zero deduplicates every bidirectional pair.
func WithReference(id int64) Option { return func(c *Container) { c.ref = id } }

// WithGlobalDedupe collapses every bidirectional pair, not only those
// touching the reference character.
func WithGlobalDedupe(on bool) Option { return func(c *Container) { c.globalDedupe = on } }

type filterKey struct {
	revision uint64
	kinds    graph.KindSet
	strength filter.Range
	ref      int64
}

// Container orchestrates filtering and layout for one graph view. It is
// safe for concurrent use.
type Container struct {
	surface      Surface
	sched        Scheduler
	logger       *log.Logger
	handlers     Handlers
	layoutOpts   layout.Options
	globalDedupe bool

	mu       sync.Mutex
	ref      int64
	nodes    []graph.Node
	edges    []graph.Edge
	revision uint64
	state    store.State

	memoKey   filterKey
	memoValid bool
	filtered  filter.Result
	graphGen  uint64

	laidGen  uint64
	laidKind layout.Kind
	laid     bool

	latest uint64
	view   View
	prior  map[int64]graph.Point

	presentMu sync.Mutex
	presented uint64
}

// New creates a container presenting to surface, starting from
// [store.Default].
func New(surface Surface, opts ...Option) *Container {
	c := &Container{
		surface: surface,
		sched:   Immediate{},
		state:   store.Default(),
		view:    View{Status: Idle},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	if c.surface == nil {
		c.surface = SurfaceFunc(func(View) {})
	}
	c.view.Layout = c.state.Layout
	return c
}

// SetData replaces the dataset. Invalid records are dropped and reported.
func (c *Container) SetData(ds graph.Dataset) graph.Report {
	nodes, edges, report := graph.FromDataset(ds)
	if report.Dropped() > 0 {
		c.logger.Warn("dropped invalid records",
			"characters", report.DroppedCharacters, "relations", report.DroppedRelations)
	}
	c.SetGraph(nodes, edges)
	return report
}

// SetGraph replaces the dataset with already converted nodes and edges.
// The slices are not modified.
func (c *Container) SetGraph(nodes []graph.Node, edges []graph.Edge) {
	c.mu.Lock()
	c.nodes, c.edges = nodes, edges
	c.revision++
	c.prior = nil
	c.mu.Unlock()
	c.refresh()
}

// SetReference changes the deduplication reference character.
func (c *Container) SetReference(id int64) {
	c.mu.Lock()
	c.ref = id
	c.mu.Unlock()
	c.refresh()
}

// Apply switches to state s.
func (c *Container) Apply(s store.State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.refresh()
}

// Bind applies the store's current state and follows every later change
// until the returned function is called.
func (c *Container) Bind(s *store.Store) (unbind func()) {
	unbind = s.Subscribe(c.Apply)
	c.Apply(s.State())
	return unbind
}

// View returns the most recent view.
func (c *Container) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Status returns the status of the most recent view.
func (c *Container) Status() Status { return c.View().Status }

// ClickNode forwards a click to OnNodeClick when id is in the current
// view. It reports whether a handler ran.
func (c *Container) ClickNode(id int64) bool {
	c.mu.Lock()
	found := slices.ContainsFunc(c.view.Nodes, func(n graph.PositionedNode) bool { return n.ID == id })
	h := c.handlers.OnNodeClick
	c.mu.Unlock()
	if !found || h == nil {
		return false
	}
	h(id)
	return true
}

// ClickEdge forwards a click to OnEdgeClick when id is in the current
// view. It reports whether a handler ran.
func (c *Container) ClickEdge(id string) bool {
	c.mu.Lock()
	found := slices.ContainsFunc(c.view.Edges, func(e graph.Edge) bool { return e.ID == id })
	h := c.handlers.OnEdgeClick
	c.mu.Unlock()
	if !found || h == nil {
		return false
	}
	h(id)
	return true
}

func (c *Container) refresh() {
	c.mu.Lock()
	if c.revision == 0 {
		c.mu.Unlock()
		return
	}
	c.refilterLocked()

	kind := c.state.Layout
	if c.laid && c.laidGen == c.graphGen && c.laidKind == kind {
		c.mu.Unlock()
		return
	}
	c.laid, c.laidGen, c.laidKind = true, c.graphGen, kind
	c.latest++
	id := c.latest
	result := c.filtered

	if result.Empty() {
		v := View{Status: Empty, Layout: kind, Request: id}
		c.view = v
		c.mu.Unlock()
		c.logger.Debug("no matching data", "request", id)
		c.present(v)
		return
	}

	opts := c.layoutOpts
	opts.Logger = c.logger
	opts.Prior = nil
	if kind == layout.Force {
		opts.Prior = c.prior
	}
	v := View{
		Status:  Computing,
		Layout:  kind,
		Nodes:   graph.Unplaced(result.Nodes),
		Edges:   result.Edges,
		Request: id,
	}
	c.view = v
	c.mu.Unlock()

	c.present(v)
	c.sched.Schedule(func() { c.run(id, kind, result, opts) })
}

func (c *Container) refilterLocked() {
	key := filterKey{revision: c.revision, kinds: c.state.Kinds, strength: c.state.Strength, ref: c.ref}
	if c.memoValid && c.memoKey == key {
		return
	}

	edges := graph.Canonicalize(c.edges, c.ref, c.globalDedupe)
	next := filter.Graph(c.nodes, edges, c.state.Kinds, c.state.Strength)

	sameGraph := c.memoValid && c.memoKey.revision == key.revision &&
		slices.Equal(next.Nodes, c.filtered.Nodes) && slices.Equal(next.Edges, c.filtered.Edges)
	c.memoKey, c.memoValid = key, true
	if sameGraph {
		return
	}
	c.filtered = next
	c.graphGen++
	c.logger.Debug("filtered graph",
		"nodes", len(next.Nodes), "edges", len(next.Edges),
		"kinds", c.state.Kinds, "strength", c.state.Strength)
}

func (c *Container) run(id uint64, kind layout.Kind, result filter.Result, opts layout.Options) {
	ctx := context.Background()
	if c.stale(id) {
		observability.Layout().OnLayoutComplete(ctx, string(kind), len(result.Nodes), 0, true)
		return
	}

	observability.Layout().OnLayoutStart(ctx, string(kind), len(result.Nodes))
	start := time.Now()
	positioned := layout.Compute(result.Nodes, result.Edges, kind, opts)
	elapsed := time.Since(start)

	c.mu.Lock()
	if id != c.latest {
		c.mu.Unlock()
		c.logger.Debug("discarding stale layout", "request", id, "kind", kind)
		observability.Layout().OnLayoutComplete(ctx, string(kind), len(result.Nodes), elapsed, true)
		return
	}
	v := View{
		Status:  Ready,
		Layout:  kind,
		Nodes:   positioned,
		Edges:   result.Edges,
		Request: id,
		Elapsed: elapsed,
	}
	c.view = v
	if kind == layout.Force {
		c.prior = graph.Positions(positioned)
	}
	c.mu.Unlock()

	c.logger.Debug("layout ready", "request", id, "kind", kind, "nodes", len(positioned), "elapsed", elapsed)
	observability.Layout().OnLayoutComplete(ctx, string(kind), len(result.Nodes), elapsed, false)
	c.present(v)
}

func (c *Container) stale(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return id != c.latest
}

// present forwards v unless a newer request was already shown.
func (c *Container) present(v View) {
	c.presentMu.Lock()
	defer c.presentMu.Unlock()
	if v.Request < c.presented {
		return
	}
	c.presented = v.Request
	c.surface.Present(v)
}
