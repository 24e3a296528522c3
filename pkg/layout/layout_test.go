package layout

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/relgraph/pkg/graph"
)

const eps = 0.01

func nodes(ids ...int64) []graph.Node {
	out := make([]graph.Node, len(ids))
	for i, id := range ids {
		out[i] = graph.Node{ID: id, Label: string(rune('A' + i))}
	}
	return out
}

func edge(s, t int64) graph.Edge {
	return graph.Edge{SourceID: s, TargetID: t, Kind: graph.KindFriend, Strength: 5}
}

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func dist(a, b graph.Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

func TestCompute_EmptyInput(t *testing.T) {
	for _, k := range append(Kinds, Kind("spiral")) {
		got := Compute(nil, nil, k, Options{})
		if got == nil || len(got) != 0 {
			t.Errorf("Compute(nil, %q) = %v, want empty non-nil slice", k, got)
		}
	}
}

func TestCompute_UnknownKind(t *testing.T) {
	in := nodes(1, 2)
	got := Compute(in, []graph.Edge{edge(1, 2)}, Kind("spiral"), Options{})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for i, n := range got {
		if n.Placed() {
			t.Errorf("node %d placed at %v, want nil position", n.ID, *n.Position)
		}
		if n.Node != in[i] {
			t.Errorf("node %d changed: %+v", i, n.Node)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		err  bool
	}{
		{"force", Force, false},
		{" Hierarchical ", Hierarchical, false},
		{"CIRCULAR", Circular, false},
		{"grid", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseKind(%q) error = %v, want error %v", tt.in, err, tt.err)
		}
		if err != nil && !errors.Is(err, ErrUnknownKind) {
			t.Errorf("ParseKind(%q) error = %v, want ErrUnknownKind", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKind_Next(t *testing.T) {
	if Force.Next() != Hierarchical || Hierarchical.Next() != Circular || Circular.Next() != Force {
		t.Error("Next() does not cycle force -> hierarchical -> circular")
	}
	if Kind("x").Next() != Force {
		t.Error("unknown Next() != Force")
	}
}

func TestParseRankDirAndEngine(t *testing.T) {
	if d, err := ParseRankDir("lr"); err != nil || d != LeftToRight {
		t.Errorf("ParseRankDir(lr) = %q, %v", d, err)
	}
	if d, err := ParseRankDir(""); err != nil || d != TopToBottom {
		t.Errorf("ParseRankDir('') = %q, %v", d, err)
	}
	if _, err := ParseRankDir("BT"); err == nil {
		t.Error("ParseRankDir(BT) succeeded")
	}
	if e, err := ParseEngine("GraphViz"); err != nil || e != EngineGraphviz {
		t.Errorf("ParseEngine(GraphViz) = %q, %v", e, err)
	}
	if _, err := ParseEngine("elk"); err == nil {
		t.Error("ParseEngine(elk) succeeded")
	}
}

func TestCircular_Triangle(t *testing.T) {
	got := Compute(nodes(1, 2, 3), nil, Circular, Options{Width: 1200, Height: 800})
	want := []graph.Point{{X: 600, Y: 133.333}, {X: 830.940, Y: 533.333}, {X: 369.060, Y: 533.333}}
	for i, w := range want {
		p := got[i].Position
		if p == nil || !near(p.X, w.X) || !near(p.Y, w.Y) {
			t.Errorf("node %d at %v, want %v", i, p, w)
		}
	}

	// Angles -90°, 30°, 150° around the centre.
	for i, deg := range []float64{-90, 30, 150} {
		p := got[i].Position
		a := math.Atan2(p.Y-400, p.X-600) * 180 / math.Pi
		if !near(a, deg) {
			t.Errorf("node %d angle = %.3f, want %.0f", i, a, deg)
		}
	}
}

func TestCircular_Deterministic(t *testing.T) {
	in := nodes(1, 2, 3, 4, 5, 6, 7)
	a := Compute(in, nil, Circular, Options{})
	b := Compute(in, nil, Circular, Options{})
	for i := range a {
		if *a[i].Position != *b[i].Position {
			t.Errorf("node %d: %v then %v", i, *a[i].Position, *b[i].Position)
		}
	}
}

func TestForce_SingleNodeAtCentre(t *testing.T) {
	got := Compute(nodes(7), nil, Force, Options{Width: 1000, Height: 600})
	if p := got[0].Position; p == nil || p.X != 500 || p.Y != 300 {
		t.Errorf("position = %v, want (500,300)", p)
	}
}

func TestForce_Reproducible(t *testing.T) {
	in := nodes(1, 2, 3, 4, 5)
	edges := []graph.Edge{edge(1, 2), edge(2, 3), edge(3, 4), edge(4, 5), edge(5, 1), edge(1, 3)}

	a := Compute(in, edges, Force, Options{Seed: 42})
	b := Compute(in, edges, Force, Options{Seed: 42})
	c := Compute(in, edges, Force, Options{Seed: 43})

	same := true
	for i := range a {
		if *a[i].Position != *b[i].Position {
			t.Errorf("seed 42 node %d: %v then %v", i, *a[i].Position, *b[i].Position)
		}
		if *a[i].Position != *c[i].Position {
			same = false
		}
		if math.IsNaN(a[i].Position.X) || math.IsNaN(a[i].Position.Y) {
			t.Errorf("node %d has NaN position", i)
		}
	}
	if same {
		t.Error("different seeds gave identical layouts")
	}
}

func TestForce_LinkedPairSettlesNearRestLength(t *testing.T) {
	got := Compute(nodes(1, 2), []graph.Edge{edge(1, 2)}, Force, Options{Seed: 1})
	d := dist(*got[0].Position, *got[1].Position)
	if d < 120 || d > 250 {
		t.Errorf("distance = %.1f, want roughly %v", d, LinkDistance)
	}
}

func TestForce_NodesDoNotCollapse(t *testing.T) {
	in := nodes(1, 2, 3, 4, 5, 6)
	got := Compute(in, nil, Force, Options{Seed: 9})
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			if d := dist(*got[i].Position, *got[j].Position); d < CollideDistance/2 {
				t.Errorf("nodes %d and %d only %.1f apart", i, j, d)
			}
		}
	}
}

func TestForce_PriorPositionsSeed(t *testing.T) {
	in := nodes(1, 2)
	edges := []graph.Edge{edge(1, 2)}
	prior := map[int64]graph.Point{1: {X: 550, Y: 380}, 2: {X: 650, Y: 420}}

	a := Compute(in, edges, Force, Options{Seed: 1, Prior: prior})
	b := Compute(in, edges, Force, Options{Seed: 2, Prior: prior})
	for i := range a {
		if dist(*a[i].Position, *b[i].Position) > 1 {
			t.Errorf("node %d depends on seed despite prior: %v vs %v", i, *a[i].Position, *b[i].Position)
		}
	}
}

func TestHierarchical_TwoCycle(t *testing.T) {
	in := nodes(1, 2)
	edges := []graph.Edge{edge(1, 2), edge(2, 1)}

	got := Compute(in, edges, Hierarchical, Options{})
	a, b := *got[0].Position, *got[1].Position
	if a == b {
		t.Fatalf("both nodes at %v", a)
	}
	if math.Abs(a.Y-b.Y) < NodeHeight && math.Abs(a.X-b.X) < NodeWidth {
		t.Errorf("footprints overlap: %v and %v", a, b)
	}
	if a != (graph.Point{X: 0, Y: 0}) || b != (graph.Point{X: 0, Y: NodeHeight + RankSep}) {
		t.Errorf("positions = %v, %v", a, b)
	}
}

func TestHierarchical_RowsCentred(t *testing.T) {
	in := nodes(1, 2, 3)
	edges := []graph.Edge{edge(1, 2), edge(1, 3)}

	got := Compute(in, edges, Hierarchical, Options{})
	want := []graph.Point{{X: 120, Y: 0}, {X: 0, Y: 310}, {X: 240, Y: 310}}
	for i, w := range want {
		if *got[i].Position != w {
			t.Errorf("node %d at %v, want %v", i, *got[i].Position, w)
		}
	}
}

func TestHierarchical_LeftToRight(t *testing.T) {
	in := nodes(1, 2)
	got := Compute(in, []graph.Edge{edge(1, 2)}, Hierarchical, Options{RankDir: LeftToRight})
	a, b := *got[0].Position, *got[1].Position
	if a.Y != b.Y {
		t.Errorf("LR ranks not aligned on y: %v, %v", a, b)
	}
	if b.X-a.X != NodeWidth+RankSep {
		t.Errorf("LR rank spacing = %v, want %v", b.X-a.X, NodeWidth+RankSep)
	}
}

func TestHierarchical_LongEdgeAndSelfLoop(t *testing.T) {
	in := nodes(1, 2, 3, 4)
	edges := []graph.Edge{edge(1, 2), edge(2, 3), edge(3, 4), edge(1, 4), edge(4, 4)}
	got := Compute(in, edges, Hierarchical, Options{})
	seen := make(map[graph.Point]int64)
	for _, n := range got {
		if !n.Placed() {
			t.Fatalf("node %d unplaced", n.ID)
		}
		if other, dup := seen[*n.Position]; dup {
			t.Errorf("nodes %d and %d share %v", other, n.ID, *n.Position)
		}
		seen[*n.Position] = n.ID
	}
}

func TestParsePlain(t *testing.T) {
	out := []byte(`graph 1 3.5 6.5
node 1 0.97222 5.3889 1.9444 2.2222 "" solid box black lightgrey
node 2 0.97222 1.1111 1.9444 2.2222 "" solid box black lightgrey
edge 1 2 4 0.97 4.2 0.97 3.9 0.97 3.6 0.97 3.3 solid black
stop
`)
	got, err := parsePlain(out)
	if err != nil {
		t.Fatalf("parsePlain() error: %v", err)
	}
	if p := got[1]; !near(p.X, 70) || !near(p.Y, 80) {
		t.Errorf("node 1 = %v, want (70,80)", p)
	}
	if p := got[2]; !near(p.X, 70) || !near(p.Y, 388) {
		t.Errorf("node 2 = %v, want (70,388)", p)
	}

	if _, err := parsePlain([]byte("node x 1 2\n")); err == nil {
		t.Error("parsePlain() accepted a non-numeric node name")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(nodes(1, 2), []graph.Edge{edge(1, 2), edge(1, 9)}, LeftToRight)
	for _, want := range []string{"rankdir=LR", `"1" -> "2"`, "fixedsize=true"} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"9"`) {
		t.Errorf("ToDOT() kept dangling edge:\n%s", dot)
	}
}
