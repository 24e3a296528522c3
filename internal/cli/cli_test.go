package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/config"
	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/pipeline"
)

func sampleDataset() graph.Dataset {
	return graph.Dataset{
		Characters: []graph.Character{
			{ID: 1, Name: "Alice"},
			{ID: 2, Name: "Bob"},
			{ID: 3, Name: "Carol"},
		},
		Relations: []graph.Relation{
			{ID: 10, SourceCharacterID: 1, TargetCharacterID: 2, RelationType: "friend", Strength: 5, IsBidirectional: true},
			{ID: 11, SourceCharacterID: 2, TargetCharacterID: 3, RelationType: "enemy", Strength: 8},
			{ID: 12, SourceCharacterID: 3, TargetCharacterID: 1, RelationType: "mentor", Strength: 2},
		},
	}
}

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "saga.json")
	if err := graph.WriteDatasetFile(sampleDataset(), path); err != nil {
		t.Fatal(err)
	}
	return path
}

// newTestCLI returns a CLI reading a config file that does not exist.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	c := New(io.Discard, LogInfo)
	c.ConfigPath = filepath.Join(t.TempDir(), "config.toml")
	return c
}

func execute(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRootCommand(t *testing.T) {
	root := newTestCLI(t).RootCommand()
	if root.Use != appName {
		t.Errorf("Use = %q, want %q", root.Use, appName)
	}
	want := []string{"layout", "render", "serve", "explore", "cache", "config", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestLayoutCommand(t *testing.T) {
	path := writeDataset(t)
	out := filepath.Join(t.TempDir(), "out.layout.json")

	err := execute(t, newTestCLI(t), "layout", path,
		"--layout", "circular", "--kinds", "friend,enemy", "--ref", "1", "-o", out)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}

	l, err := graph.ReadLayoutFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if l.Kind != "circular" || l.Status != graph.StatusReady {
		t.Errorf("kind %q status %q", l.Kind, l.Status)
	}
	if len(l.Nodes) != 3 || len(l.Edges) != 2 {
		t.Errorf("got %d nodes, %d edges, want 3 and 2", len(l.Nodes), len(l.Edges))
	}
	for _, e := range l.Edges {
		if e.Kind == graph.KindMentor {
			t.Errorf("mentor edge survived the kind filter")
		}
	}
}

func TestLayoutCommand_DefaultOutput(t *testing.T) {
	path := writeDataset(t)
	if err := execute(t, newTestCLI(t), "layout", path, "--min", "9"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	l, err := graph.ReadLayoutFile(strings.TrimSuffix(path, ".json") + ".layout.json")
	if err != nil {
		t.Fatal(err)
	}
	if !l.IsEmpty() {
		t.Errorf("layout with min strength 9 should be empty, got %d nodes", len(l.Nodes))
	}
}

func TestLayoutCommand_Errors(t *testing.T) {
	path := writeDataset(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown layout", []string{"layout", path, "--layout", "spiral"}, errors.ErrCodeInvalidLayout},
		{"unknown kind", []string{"layout", path, "--kinds", "nemesis"}, errors.ErrCodeInvalidInput},
		{"inverted range", []string{"layout", path, "--min", "8", "--max", "2"}, errors.ErrCodeInvalidInput},
		{"missing project", []string{"layout", "nowhere"}, errors.ErrCodeNotFound},
		{"bad project name", []string{"layout", "../etc"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, newTestCLI(t), tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLayoutCommand_ConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	ds := filepath.Join(dir, "saga.json")
	if err := graph.WriteDatasetFile(sampleDataset(), ds); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Layout.Kind = "hierarchical"
	cfg.Source.Dir = dir
	cfgPath := filepath.Join(dir, "config.toml")
	if err := config.Save(cfg, cfgPath); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	c.ConfigPath = cfgPath
	out := filepath.Join(dir, "project.layout.json")
	// "saga" resolves through the file source of the config.
	if err := execute(t, c, "layout", "saga", "--no-cache", "-o", out); err != nil {
		t.Fatalf("layout: %v", err)
	}
	l, err := graph.ReadLayoutFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if l.Kind != "hierarchical" {
		t.Errorf("kind = %q, want the configured hierarchical", l.Kind)
	}
}

func TestRenderCommand_DOT(t *testing.T) {
	path := writeDataset(t)
	c := newTestCLI(t)
	if err := execute(t, c, "layout", path, "--layout", "circular"); err != nil {
		t.Fatal(err)
	}
	layoutPath := strings.TrimSuffix(path, ".json") + ".layout.json"

	if err := execute(t, c, "render", layoutPath, "-f", "dot", "--detailed"); err != nil {
		t.Fatalf("render: %v", err)
	}
	dot, err := os.ReadFile(strings.TrimSuffix(path, ".json") + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"digraph", "Alice", `label="friend"`} {
		if !bytes.Contains(dot, []byte(want)) {
			t.Errorf("dot output missing %q", want)
		}
	}
}

func TestRenderCommand_InvalidFormat(t *testing.T) {
	err := execute(t, newTestCLI(t), "render", "x.layout.json", "-f", "gif")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestRenderPath(t *testing.T) {
	tests := []struct {
		input, output, format string
		multi                 bool
		want                  string
	}{
		{"saga.layout.json", "", "svg", false, "saga.svg"},
		{"saga.layout.json", "", "png", true, "saga.png"},
		{"saga.json", "", "dot", false, "saga.dot"},
		{"saga.layout.json", "out.svg", "svg", false, "out.svg"},
		{"saga.layout.json", "out", "pdf", true, "out.pdf"},
	}
	for _, tt := range tests {
		if got := renderPath(tt.input, tt.output, tt.format, tt.multi); got != tt.want {
			t.Errorf("renderPath(%q, %q, %q, %v) = %q, want %q", tt.input, tt.output, tt.format, tt.multi, got, tt.want)
		}
	}
}

func TestResolveInput(t *testing.T) {
	path := writeDataset(t)

	in, err := resolveInput(path)
	if err != nil {
		t.Fatal(err)
	}
	if in.Dataset == nil || len(in.Dataset.Characters) != 3 || in.Project != "" {
		t.Errorf("file input = %+v", in)
	}
	if in.base() != strings.TrimSuffix(path, ".json") {
		t.Errorf("base = %q", in.base())
	}

	in, err = resolveInput("saga")
	if err != nil {
		t.Fatal(err)
	}
	if in.Project != "saga" || in.Dataset != nil || in.base() != "saga" {
		t.Errorf("project input = %+v", in)
	}
}

func TestDefaultOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Filter.Kinds = []string{"friend"}
	cfg.Filter.MinStrength = 3
	cfg.Filter.Reference = 7

	opts := defaultOptions(cfg)
	if opts.Layout != "force" || opts.Reference != 7 || opts.Width != cfg.Layout.Width {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Strength == nil || opts.Strength.Min != 3 || opts.Strength.Max != 10 {
		t.Errorf("Strength = %v", opts.Strength)
	}
	opts.Kinds[0] = "enemy"
	if cfg.Filter.Kinds[0] != "friend" {
		t.Error("defaultOptions aliases the config kinds")
	}
}

func TestLayoutFlags_OnlyChangedOverride(t *testing.T) {
	var flags layoutFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)
	if err := cmd.ParseFlags([]string{"--max", "6", "--seed", "7"}); err != nil {
		t.Fatal(err)
	}

	opts := pipeline.Options{Layout: "circular", Reference: 4}
	flags.apply(cmd, &opts)
	if opts.Layout != "circular" || opts.Reference != 4 {
		t.Errorf("unchanged flags overrode options: %+v", opts)
	}
	if opts.Seed != 7 || opts.Strength == nil || opts.Strength.Min != 0 || opts.Strength.Max != 6 {
		t.Errorf("changed flags not applied: seed %d strength %v", opts.Seed, opts.Strength)
	}
}

func TestParseList(t *testing.T) {
	got := parseList(" friend, ,enemy ,")
	if len(got) != 2 || got[0] != "friend" || got[1] != "enemy" {
		t.Errorf("parseList = %q", got)
	}
	if parseList("") != nil {
		t.Error("empty input should give nil")
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		root := newTestCLI(t).RootCommand()
		var buf bytes.Buffer
		root.SetOut(&buf)
		root.SetArgs([]string{"completion", shell})
		if err := root.Execute(); err != nil {
			t.Fatalf("%s: %v", shell, err)
		}
		if !strings.Contains(buf.String(), appName) {
			t.Errorf("%s script does not mention %s", shell, appName)
		}
	}
}
