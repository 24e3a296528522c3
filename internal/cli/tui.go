package cli

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/relgraph/pkg/container"
	"github.com/matzehuels/relgraph/pkg/filter"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/store"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	canvasStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

const (
	defaultCanvasWidth  = 72
	defaultCanvasHeight = 18
	listRows            = 10
)

// =============================================================================
// viewFeed - Container Surface
// =============================================================================

// viewMsg carries a container view into the bubbletea loop.
type viewMsg container.View

// viewFeed is the container surface of the explorer. It keeps only the
// latest view, so a slow terminal never blocks the layout scheduler.
type viewFeed struct {
	ch chan container.View
}

func newViewFeed() viewFeed {
	return viewFeed{ch: make(chan container.View, 1)}
}

// Present replaces any undelivered view with v.
func (f viewFeed) Present(v container.View) {
	for {
		select {
		case f.ch <- v:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

func (f viewFeed) next() tea.Cmd {
	return func() tea.Msg { return viewMsg(<-f.ch) }
}

// =============================================================================
// exploreModel - Interactive Graph Explorer
// =============================================================================

// exploreModel is the bubbletea model of relgraph explore. Key presses
// dispatch store actions; the bound container reacts and presents new views
// through feed.
type exploreModel struct {
	title  string
	store  *store.Store
	ctr    *container.Container
	feed   viewFeed
	report graph.Report
	unbind func()

	view     container.View
	cursor   int
	selected int64
	width    int
	height   int
}

func (m *exploreModel) Init() tea.Cmd {
	return m.feed.next()
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.view = container.View(msg)
		m.cursor = min(m.cursor, max(len(m.view.Nodes)-1, 0))
		return m, m.feed.next()
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	}
	return m, nil
}

func (m *exploreModel) handleKey(key string) tea.Cmd {
	s := m.store.State()
	switch key {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "1", "2", "3", "4", "5", "6", "7", "8":
		m.store.ToggleRelationKind(graph.Vocabulary[key[0]-'1'])
	case "+", "=":
		m.store.SetStrengthRange(filter.Range{Min: s.Strength.Min + 1, Max: s.Strength.Max})
	case "-", "_":
		m.store.SetStrengthRange(filter.Range{Min: s.Strength.Min - 1, Max: s.Strength.Max})
	case "]":
		m.store.SetStrengthRange(filter.Range{Min: s.Strength.Min, Max: s.Strength.Max + 1})
	case "[":
		m.store.SetStrengthRange(filter.Range{Min: s.Strength.Min, Max: s.Strength.Max - 1})
	case "tab", "l":
		m.store.SetLayoutKind(s.Layout.Next())
	case "r":
		m.store.ResetFilters()
		m.selected = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.view.Nodes)-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.cursor < len(m.view.Nodes) {
			m.ctr.ClickNode(m.view.Nodes[m.cursor].ID)
		}
	}
	return nil
}

// onNodeClick is the container's node click handler.
func (m *exploreModel) onNodeClick(id int64) {
	if m.selected == id {
		m.selected = 0
		return
	}
	m.selected = id
}

func (m *exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("relgraph explore") + "  " + StyleDim.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.filterBar())
	b.WriteString("\n\n")

	switch m.view.Status {
	case container.Idle:
		b.WriteString(StyleDim.Render("waiting for data"))
	case container.Computing:
		b.WriteString(styleIconSpinner.Render("⠿") + " " + StyleDim.Render(fmt.Sprintf("computing %s layout...", m.view.Layout)))
	case container.Empty:
		b.WriteString(StyleWarning.Render("no matching data"))
		b.WriteString("\n")
		b.WriteString(StyleDim.Render("widen the strength range or enable more kinds (r resets)"))
	case container.Ready:
		b.WriteString(canvasStyle.Render(m.canvas()))
		b.WriteString("\n")
		b.WriteString(StyleDim.Render(fmt.Sprintf("%s · %d characters · %d relations · %s",
			m.view.Layout, len(m.view.Nodes), len(m.view.Edges), m.view.Elapsed.Round(time.Millisecond))))
		b.WriteString("\n\n")
		b.WriteString(m.nodeList())
		if d := m.details(); d != "" {
			b.WriteString("\n")
			b.WriteString(d)
		}
	}

	if n := m.report.Dropped(); n > 0 {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(fmt.Sprintf("%d invalid records dropped", n)))
	}
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render("1-8 kinds  +/- min  [/] max  tab layout  ↑/↓ move  ⏎ select  r reset  q quit"))
	b.WriteString("\n")
	return b.String()
}

// filterBar shows every kind with its key, the strength range and the
// layout kind.
func (m *exploreModel) filterBar() string {
	s := m.store.State()
	parts := make([]string, 0, len(graph.Vocabulary))
	for i, k := range graph.Vocabulary {
		label := fmt.Sprintf("%d %s", i+1, k)
		if s.Kinds.Has(k) {
			parts = append(parts, kindStyle(k).Bold(true).Render(label))
		} else {
			parts = append(parts, listDimStyle.Strikethrough(true).Render(label))
		}
	}
	return strings.Join(parts, "  ") + "\n" +
		StyleDim.Render("strength ") + StyleValue.Render(s.Strength.String()) +
		StyleDim.Render("  layout ") + StyleHighlight.Render(string(s.Layout))
}

// canvas plots every placed node onto a character grid scaled to the
// bounding box of the layout.
func (m *exploreModel) canvas() string {
	w, h := defaultCanvasWidth, defaultCanvasHeight
	if m.width > 10 {
		w = m.width - 4
	}
	if m.height > 30 {
		h = m.height - 24
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range m.view.Nodes {
		if !n.Placed() {
			continue
		}
		minX, maxX = math.Min(minX, n.Position.X), math.Max(maxX, n.Position.X)
		minY, maxY = math.Min(minY, n.Position.Y), math.Max(maxY, n.Position.Y)
	}

	grid := make([][]string, h)
	for i := range grid {
		grid[i] = slices.Repeat([]string{" "}, w)
	}
	scale := func(v, lo, hi float64, size int) int {
		if hi <= lo {
			return size / 2
		}
		return int(math.Round((v - lo) / (hi - lo) * float64(size-1)))
	}

	for i, n := range m.view.Nodes {
		if !n.Placed() {
			continue
		}
		label := []rune(n.Label)
		if len(label) > 3 {
			label = label[:3]
		}
		row := scale(n.Position.Y, minY, maxY, h)
		col := min(scale(n.Position.X, minX, maxX, w), w-len(label))
		style := listNormalStyle
		switch {
		case n.ID == m.selected:
			style = StyleSuccess.Bold(true)
		case i == m.cursor:
			style = listSelectedStyle
		}
		for j, r := range label {
			grid[row][col+j] = style.Render(string(r))
		}
	}

	lines := make([]string, h)
	for i, row := range grid {
		lines[i] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}

// nodeList shows a window of nodes around the cursor.
func (m *exploreModel) nodeList() string {
	start := max(0, min(m.cursor-listRows/2, len(m.view.Nodes)-listRows))
	end := min(start+listRows, len(m.view.Nodes))

	var b strings.Builder
	for i := start; i < end; i++ {
		n := m.view.Nodes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-24s %s", cursor, n.Label, StyleDim.Render(fmt.Sprintf("%d relations", n.Degree)))
		switch {
		case n.ID == m.selected:
			b.WriteString(StyleSuccess.Bold(true).Render(line))
		case i == m.cursor:
			b.WriteString(listSelectedStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.cursor+1, len(m.view.Nodes)), len(m.view.Nodes))))
	return b.String()
}

// details lists the visible relations of the selected character, strongest
// first.
func (m *exploreModel) details() string {
	if m.selected == 0 {
		return ""
	}
	names := make(map[int64]string, len(m.view.Nodes))
	for _, n := range m.view.Nodes {
		names[n.ID] = n.Label
	}
	name, ok := names[m.selected]
	if !ok {
		return ""
	}

	var edges []graph.Edge
	for _, e := range m.view.Edges {
		if e.Touches(m.selected) {
			edges = append(edges, e)
		}
	}
	slices.SortStableFunc(edges, func(a, b graph.Edge) int { return cmp.Compare(b.Strength, a.Strength) })

	var b strings.Builder
	b.WriteString(StyleTitle.Render(name))
	b.WriteString("\n")
	for _, e := range edges {
		arrow := iconArrow
		switch {
		case e.Bidirectional:
			arrow = "↔"
		case e.TargetID == m.selected:
			arrow = "←"
		}
		b.WriteString(fmt.Sprintf("  %s %-20s %s %s\n", arrow, names[e.Other(m.selected)],
			kindStyle(e.Kind).Render(string(e.Kind)), StyleDim.Render(fmt.Sprintf("%d", e.Strength))))
	}
	return b.String()
}
