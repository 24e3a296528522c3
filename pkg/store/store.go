// Package store holds the filter and layout selection for a graph view.
//
// [State] is an immutable value and [Reduce] is the only way to derive a
// new one, so any consumer can keep a State without copying. [Store] wraps
// a State for concurrent readers and notifies subscribers after every
// change.
package store

import (
	"sync"

	"github.com/matzehuels/relgraph/pkg/filter"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
)

// State is the current selection. Copy it freely; nothing aliases.
type State struct {
	Kinds    graph.KindSet
	Strength filter.Range
	Layout   layout.Kind
}

// Default returns every relation kind, strength [0,10] and the force layout.
func Default() State {
	return State{
		Kinds:    graph.AllKinds(),
		Strength: filter.DefaultRange(),
		Layout:   layout.Force,
	}
}

// Action is an input to [Reduce].
type Action interface{ apply(State) State }

// ToggleRelationKind adds Kind to the selection if absent and removes it
// otherwise.
type ToggleRelationKind struct{ Kind graph.Kind }

// SetStrengthRange replaces the strength range. Invalid ranges are
// ignored.
type SetStrengthRange struct{ Range filter.Range }

// SetLayoutKind replaces the layout kind.
type SetLayoutKind struct{ Kind layout.Kind }

// ResetFilters restores the default kinds and strength range. The layout
// kind is kept.
type ResetFilters struct{}

func (a ToggleRelationKind) apply(s State) State {
	s.Kinds = s.Kinds.Toggle(a.Kind)
	return s
}

func (a SetStrengthRange) apply(s State) State {
	if a.Range.Valid() {
		s.Strength = a.Range
	}
	return s
}

func (a SetLayoutKind) apply(s State) State {
	s.Layout = a.Kind
	return s
}

func (ResetFilters) apply(s State) State {
	d := Default()
	s.Kinds, s.Strength = d.Kinds, d.Strength
	return s
}

// Reduce returns the state after applying a. It has no side effects. A nil
// action returns s unchanged.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

// Listener receives the new state after each effective change.
type Listener func(State)

// Store is a concurrency-safe holder for a [State].
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// New returns a store holding initial.
func New(initial State) *Store {
	return &Store{state: initial, listeners: make(map[int]Listener)}
}

// NewDefault returns a store holding [Default].
func NewDefault() *Store { return New(Default()) }

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch reduces the current state with a and, if it changed, notifies
// subscribers with the new state. Listeners run on the caller's goroutine
// after the lock is released, so they may read or dispatch.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, a)
	s.state = next
	var notify []Listener
	if next != prev {
		notify = make([]Listener, 0, len(s.listeners))
		for id := 0; id < s.nextID; id++ {
			if l, ok := s.listeners[id]; ok {
				notify = append(notify, l)
			}
		}
	}
	s.mu.Unlock()

	for _, l := range notify {
		l(next)
	}
	return next
}

// Subscribe registers l and returns a function that removes it. Listeners
// are called in subscription order.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) ToggleRelationKind(k graph.Kind) State {
	return s.Dispatch(ToggleRelationKind{Kind: k})
}

func (s *Store) SetStrengthRange(r filter.Range) State {
	return s.Dispatch(SetStrengthRange{Range: r})
}

func (s *Store) SetLayoutKind(k layout.Kind) State {
	return s.Dispatch(SetLayoutKind{Kind: k})
}

func (s *Store) ResetFilters() State {
	return s.Dispatch(ResetFilters{})
}
