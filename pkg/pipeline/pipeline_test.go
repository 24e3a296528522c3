package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/filter"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/source"
)

func triangle() *graph.Dataset {
	return &graph.Dataset{
		Characters: []graph.Character{
			{ID: 1, Name: "Alice"},
			{ID: 2, Name: "Bob"},
			{ID: 3, Name: "Carol"},
			{ID: 4, Name: "Loner"},
		},
		Relations: []graph.Relation{
			{ID: 10, SourceCharacterID: 1, TargetCharacterID: 2, RelationType: "friend", Strength: 5, IsBidirectional: true},
			{ID: 11, SourceCharacterID: 2, TargetCharacterID: 1, RelationType: "friend", Strength: 5, IsBidirectional: true},
			{ID: 12, SourceCharacterID: 2, TargetCharacterID: 3, RelationType: "enemy", Strength: 8},
			{ID: 13, SourceCharacterID: 3, TargetCharacterID: 1, RelationType: "mentor", Strength: 2},
		},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Project: "saga"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.LayoutKind() != DefaultLayout {
		t.Errorf("layout = %q, want %q", opts.LayoutKind(), DefaultLayout)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed should be %d, got %d", DefaultSeed, opts.Seed)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("Formats should be [json], got %v", opts.Formats)
	}
	lopts := opts.LayoutOptions()
	if lopts.Width != layout.DefaultWidth || lopts.Height != layout.DefaultHeight {
		t.Errorf("canvas = %vx%v", lopts.Width, lopts.Height)
	}
	if lopts.RankDir != layout.TopToBottom || lopts.Engine != layout.EngineNative {
		t.Errorf("rankdir %q engine %q", lopts.RankDir, lopts.Engine)
	}
}

func TestOptionsValidate(t *testing.T) {
	inverted := filter.Range{Min: 7, Max: 3}
	tests := []struct {
		name string
		opts Options
		want errors.Code
	}{
		{"no input", Options{}, errors.ErrCodeInvalidInput},
		{"both inputs", Options{Project: "saga", Dataset: triangle()}, errors.ErrCodeInvalidInput},
		{"unknown layout", Options{Project: "saga", Layout: "spiral"}, errors.ErrCodeInvalidLayout},
		{"bad rankdir", Options{Project: "saga", RankDir: "BT"}, errors.ErrCodeInvalidInput},
		{"bad engine", Options{Project: "saga", Engine: "elk"}, errors.ErrCodeInvalidInput},
		{"bad kind", Options{Project: "saga", Kinds: []string{"nemesis"}}, errors.ErrCodeInvalidInput},
		{"inverted range", Options{Project: "saga", Strength: &inverted}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Project: "saga", Formats: []string{"gif"}}, errors.ErrCodeInvalidInput},
		{"negative width", Options{Project: "saga", Width: -5}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("code = %q, want %q (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Project: "saga", Layout: "Circular"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	first := opts.Describe()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Describe() != first {
		t.Errorf("Describe changed: %q -> %q", first, opts.Describe())
	}
	if opts.LayoutKind() != layout.Circular {
		t.Errorf("layout = %q", opts.LayoutKind())
	}
}

func TestExecute_Triangle(t *testing.T) {
	r := NewRunner(nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Dataset:   triangle(),
		Layout:    "circular",
		Reference: 1,
		Formats:   []string{FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if _, err := uuid.Parse(res.RunID); err != nil {
		t.Errorf("RunID %q: %v", res.RunID, err)
	}
	l := res.Layout
	if l.Status != graph.StatusReady || l.Kind != "circular" {
		t.Errorf("layout status %q kind %q", l.Status, l.Kind)
	}
	// Loner has no relation and the duplicate friend record collapses.
	if len(l.Nodes) != 3 || len(l.Edges) != 3 {
		t.Fatalf("got %d nodes, %d edges; want 3, 3", len(l.Nodes), len(l.Edges))
	}
	for _, n := range l.Nodes {
		if !n.Placed() {
			t.Errorf("node %d unplaced", n.ID)
		}
	}
	if res.Stats.Characters != 4 || res.Stats.Relations != 4 || res.Stats.NodeCount != 3 {
		t.Errorf("stats = %+v", res.Stats)
	}

	decoded, err := graph.UnmarshalLayout(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(decoded.Nodes) != 3 {
		t.Errorf("json artifact has %d nodes", len(decoded.Nodes))
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), `"2" -> "3"`) {
		t.Errorf("dot artifact missing edge:\n%s", res.Artifacts[FormatDOT])
	}
}

func TestExecute_NoReferenceCollapsesEveryPair(t *testing.T) {
	res, err := NewRunner(nil, nil).Execute(context.Background(), Options{Dataset: triangle()})
	if err != nil {
		t.Fatal(err)
	}
	// Loner is dropped; the two friend records become one edge.
	if len(res.Layout.Nodes) != 3 || len(res.Layout.Edges) != 3 {
		t.Fatalf("got %d nodes, %d edges; want 3, 3", len(res.Layout.Nodes), len(res.Layout.Edges))
	}
	pairs := make(map[[2]int64]int)
	for _, e := range res.Layout.Edges {
		if e.Bidirectional {
			pairs[[2]int64{min(e.SourceID, e.TargetID), max(e.SourceID, e.TargetID)}]++
		}
	}
	for pair, n := range pairs {
		if n != 1 {
			t.Errorf("pair %v surfaced %d times, want once", pair, n)
		}
	}
}

func TestExecute_StrengthFilterEmpty(t *testing.T) {
	res, err := NewRunner(nil, nil).Execute(context.Background(), Options{
		Dataset:  triangle(),
		Strength: &filter.Range{Min: 9, Max: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Layout.Status != graph.StatusEmpty || len(res.Layout.Nodes) != 0 {
		t.Errorf("layout = %+v, want empty", res.Layout)
	}
	if res.Layout.Nodes == nil {
		t.Error("empty layout should carry a non-nil node slice")
	}
}

func TestExecute_KindFilter(t *testing.T) {
	res, err := NewRunner(nil, nil).Execute(context.Background(), Options{
		Dataset: triangle(),
		Kinds:   []string{"enemy"},
		Layout:  "hierarchical",
	})
	if err != nil {
		t.Fatal(err)
	}
	pos := graph.Positions(res.Layout.Nodes)
	if len(pos) != 2 {
		t.Fatalf("positions = %v", pos)
	}
	if pos[2].Y >= pos[3].Y {
		t.Errorf("source rank %v should be above target rank %v", pos[2].Y, pos[3].Y)
	}
}

func TestExecute_DropsMalformedRecords(t *testing.T) {
	ds := triangle()
	ds.Characters = append(ds.Characters, graph.Character{ID: 0, Name: "nobody"})
	ds.Relations = append(ds.Relations, graph.Relation{SourceCharacterID: 1, TargetCharacterID: 2, RelationType: "friend", Strength: 42})

	res, err := NewRunner(nil, nil).Execute(context.Background(), Options{Dataset: ds})
	if err != nil {
		t.Fatal(err)
	}
	if res.Report.DroppedCharacters != 1 || res.Report.DroppedRelations != 1 {
		t.Errorf("report = %+v", res.Report)
	}
}

func TestExecute_Source(t *testing.T) {
	dir := t.TempDir()
	if err := graph.WriteDatasetFile(*triangle(), filepath.Join(dir, "saga.json")); err != nil {
		t.Fatal(err)
	}
	r := NewRunner(source.NewFile(dir), nil)

	res, err := r.Execute(context.Background(), Options{Project: "saga", Layout: "force"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Layout.Nodes) != 3 {
		t.Errorf("nodes = %d", len(res.Layout.Nodes))
	}

	_, err = r.Execute(context.Background(), Options{Project: "missing"})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing project: %v", err)
	}
}

func TestExecute_NoSource(t *testing.T) {
	_, err := NewRunner(nil, nil).Execute(context.Background(), Options{Project: "saga"})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}
