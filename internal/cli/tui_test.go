package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/relgraph/pkg/container"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/pipeline"
)

// newTestExplorer builds a model on the immediate scheduler, so every
// key press has produced its final view once drain returns.
func newTestExplorer(t *testing.T) *exploreModel {
	t.Helper()
	ds := sampleDataset()
	opts := pipeline.Options{Dataset: &ds, Layout: "circular"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	m := newExploreModel(ds, &opts, "saga")
	t.Cleanup(m.close)
	drain(m)
	return m
}

func drain(m *exploreModel) {
	select {
	case v := <-m.feed.ch:
		m.Update(viewMsg(v))
	default:
	}
}

func press(m *exploreModel, keys ...tea.KeyMsg) {
	for _, k := range keys {
		m.Update(k)
		drain(m)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestExplore_InitialView(t *testing.T) {
	m := newTestExplorer(t)
	if m.view.Status != container.Ready || m.view.Layout != layout.Circular {
		t.Fatalf("status %q layout %q", m.view.Status, m.view.Layout)
	}
	if len(m.view.Nodes) != 3 || len(m.view.Edges) != 3 {
		t.Errorf("got %d nodes, %d edges", len(m.view.Nodes), len(m.view.Edges))
	}
	out := m.View()
	for _, want := range []string{"relgraph explore", "saga", "circular", "Alice"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestExplore_ToggleKind(t *testing.T) {
	m := newTestExplorer(t)
	press(m, runes("2")) // friend

	if m.store.State().Kinds.Has(graph.KindFriend) {
		t.Fatal("friend still selected")
	}
	for _, e := range m.view.Edges {
		if e.Kind == graph.KindFriend {
			t.Error("friend edge still shown")
		}
	}

	press(m, runes("2"))
	if !m.store.State().Kinds.Has(graph.KindFriend) || len(m.view.Edges) != 3 {
		t.Errorf("toggling back gave %d edges", len(m.view.Edges))
	}
}

func TestExplore_StrengthEmptiesView(t *testing.T) {
	m := newTestExplorer(t)
	for range 9 {
		press(m, runes("+"))
	}
	if got := m.store.State().Strength.Min; got != 9 {
		t.Fatalf("min = %d, want 9", got)
	}
	if m.view.Status != container.Empty {
		t.Fatalf("status = %q, want empty", m.view.Status)
	}
	if !strings.Contains(m.View(), "no matching data") {
		t.Error("empty view does not say so")
	}

	// Min can not pass max.
	press(m, runes("["), runes("["))
	if s := m.store.State().Strength; s.Min > s.Max {
		t.Errorf("invalid range %s accepted", s)
	}

	press(m, runes("r"))
	if m.view.Status != container.Ready || len(m.view.Edges) != 3 {
		t.Errorf("reset gave status %q with %d edges", m.view.Status, len(m.view.Edges))
	}
}

func TestExplore_SwitchLayout(t *testing.T) {
	m := newTestExplorer(t)
	press(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.store.State().Layout != layout.Force || m.view.Layout != layout.Force {
		t.Errorf("layout = %q/%q, want force", m.store.State().Layout, m.view.Layout)
	}
	for _, n := range m.view.Nodes {
		if !n.Placed() {
			t.Errorf("node %d unplaced", n.ID)
		}
	}
}

func TestExplore_SelectNode(t *testing.T) {
	m := newTestExplorer(t)
	press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})

	want := m.view.Nodes[1]
	if m.selected != want.ID {
		t.Fatalf("selected = %d, want %d", m.selected, want.ID)
	}
	details := m.details()
	if !strings.Contains(details, want.Label) || strings.Count(details, "\n") != 1+want.Degree {
		t.Errorf("details = %q", details)
	}

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.selected != 0 {
		t.Error("second click should clear the selection")
	}
}

func TestExplore_Quit(t *testing.T) {
	m := newTestExplorer(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestViewFeed_KeepsLatest(t *testing.T) {
	f := newViewFeed()
	f.Present(container.View{Request: 1})
	f.Present(container.View{Request: 2})
	f.Present(container.View{Request: 3})

	msg := f.next()()
	if v := container.View(msg.(viewMsg)); v.Request != 3 {
		t.Errorf("request = %d, want 3", v.Request)
	}
	select {
	case v := <-f.ch:
		t.Errorf("stale view %d left in feed", v.Request)
	default:
	}
}
