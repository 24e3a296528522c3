package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestAddNode_Duplicate(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{ID: 1}); err != nil {
		t.Fatalf("AddNode() error: %v", err)
	}
	if err := g.AddNode(Node{ID: 1}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode() duplicate error = %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddEdge_UnknownEndpoints(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: 1})
	if err := g.AddEdge(Edge{From: 9, To: 1}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge() error = %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: 1, To: 9}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge() error = %v, want ErrUnknownTargetNode", err)
	}
}

func TestNodes_InsertionOrder(t *testing.T) {
	g := New()
	ids := []int64{42, 7, 19, 3, 100}
	for _, id := range ids {
		_ = g.AddNode(Node{ID: id})
	}
	if got := NodeIDs(g.Nodes()); !slices.Equal(got, ids) {
		t.Errorf("Nodes() = %v, want %v", got, ids)
	}
}

func TestReverseEdge(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: 1})
	_ = g.AddNode(Node{ID: 2})
	_ = g.AddEdge(Edge{From: 1, To: 2})

	if !g.ReverseEdge(1, 2) {
		t.Fatal("ReverseEdge() = false")
	}
	edges := g.Edges()
	if len(edges) != 1 || edges[0].From != 2 || edges[0].To != 1 || !edges[0].Reversed {
		t.Errorf("Edges() = %+v, want reversed 2->1", edges)
	}
	if len(g.Children(1)) != 0 || !slices.Equal(g.Children(2), []int64{1}) {
		t.Errorf("adjacency not updated: children(1)=%v children(2)=%v", g.Children(1), g.Children(2))
	}
	if g.ReverseEdge(1, 2) {
		t.Error("ReverseEdge() of missing edge = true")
	}
}

func TestSetRows(t *testing.T) {
	g := New()
	for _, id := range []int64{1, 2, 3} {
		_ = g.AddNode(Node{ID: id})
	}
	g.SetRows(map[int64]int{2: 1, 3: 1})

	if got := NodeIDs(g.NodesInRow(1)); !slices.Equal(got, []int64{2, 3}) {
		t.Errorf("NodesInRow(1) = %v, want [2 3]", got)
	}
	if g.MaxRow() != 1 {
		t.Errorf("MaxRow() = %d, want 1", g.MaxRow())
	}
}

func TestValidate(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: 1, Row: 0})
	_ = g.AddNode(Node{ID: 2, Row: 2})
	_ = g.AddEdge(Edge{From: 1, To: 2})
	if err := g.Validate(); !errors.Is(err, ErrNonConsecutiveRows) {
		t.Errorf("Validate() = %v, want ErrNonConsecutiveRows", err)
	}

	c := New()
	_ = c.AddNode(Node{ID: 1})
	_ = c.AddNode(Node{ID: 2})
	_ = c.AddEdge(Edge{From: 1, To: 2})
	_ = c.AddEdge(Edge{From: 2, To: 1})
	if !c.HasCycle() {
		t.Error("HasCycle() = false for a 2-cycle")
	}
}

func TestCountCrossings(t *testing.T) {
	// Row 0: 1 2, row 1: 3 4, row 2: 5 6, all edges crossing once per layer.
	g := New()
	for id, row := range map[int64]int{1: 0, 2: 0, 3: 1, 4: 1, 5: 2, 6: 2} {
		_ = g.AddNode(Node{ID: id, Row: row})
	}
	_ = g.AddEdge(Edge{From: 1, To: 4})
	_ = g.AddEdge(Edge{From: 2, To: 3})
	_ = g.AddEdge(Edge{From: 3, To: 6})
	_ = g.AddEdge(Edge{From: 4, To: 5})

	orders := map[int][]int64{0: {1, 2}, 1: {3, 4}, 2: {5, 6}}
	if got := CountCrossings(g, orders); got != 2 {
		t.Errorf("CountCrossings() = %d, want 2", got)
	}
	orders[1] = []int64{4, 3}
	if got := CountCrossings(g, orders); got != 0 {
		t.Errorf("CountCrossings() after swap = %d, want 0", got)
	}
}
