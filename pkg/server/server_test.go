package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/pipeline"
	"github.com/matzehuels/relgraph/pkg/source"
)

func dataset() graph.Dataset {
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

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	if err := graph.WriteDatasetFile(dataset(), filepath.Join(dir, "saga.json")); err != nil {
		t.Fatal(err)
	}
	s := New(pipeline.NewRunner(source.NewFile(dir), nil), nil, Options{
		Defaults: pipeline.Options{Layout: "circular"},
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestPostLayout(t *testing.T) {
	srv := newTestServer(t)
	ds := dataset()
	reqBody, _ := json.Marshal(pipeline.Options{Dataset: &ds, Kinds: []string{"friend", "enemy"}})

	resp, err := http.Post(srv.URL+"/api/v1/layout", "application/json", bytes.NewReader(reqBody))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[Response](t, resp)
	if body.RunID == "" {
		t.Error("missing run id")
	}
	if body.Layout.Kind != "circular" || body.Layout.Status != graph.StatusReady {
		t.Errorf("layout kind %q status %q", body.Layout.Kind, body.Layout.Status)
	}
	if len(body.Layout.Nodes) != 3 || len(body.Layout.Edges) != 2 {
		t.Errorf("got %d nodes, %d edges", len(body.Layout.Nodes), len(body.Layout.Edges))
	}
}

func TestPostLayout_BadRequests(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed", `{"dataset":`, "INVALID_INPUT"},
		{"unknown field", `{"dataset":{"characters":[],"relations":[]},"colour":"red"}`, "INVALID_INPUT"},
		{"no dataset", `{"layout":"force"}`, "INVALID_INPUT"},
		{"unknown layout", `{"dataset":{"characters":[],"relations":[]},"layout":"spiral"}`, "INVALID_LAYOUT"},
		{"binary format", `{"dataset":{"characters":[],"relations":[]},"formats":["png"]}`, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/v1/layout", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			body := decode[errorBody](t, resp)
			if body.Error.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.code)
			}
		})
	}
}

func TestGetProjectGraph(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/v1/projects/saga/graph?layout=hierarchical&min=3&ref=1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[Response](t, resp)
	// The mentor edge has strength 2 and falls outside [3,10].
	if body.Layout.Kind != "hierarchical" || len(body.Layout.Edges) != 2 {
		t.Errorf("kind %q, %d edges", body.Layout.Kind, len(body.Layout.Edges))
	}
}

func TestGetProjectGraph_Empty(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/v1/projects/saga/graph?kinds=lover")
	if err != nil {
		t.Fatal(err)
	}
	body := decode[Response](t, resp)
	if body.Layout.Status != graph.StatusEmpty || len(body.Layout.Nodes) != 0 {
		t.Errorf("layout = %+v, want empty", body.Layout)
	}
}

func TestGetProjectGraph_Errors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/projects/missing/graph", http.StatusNotFound},
		{"/api/v1/projects/saga/graph?min=abc", http.StatusBadRequest},
		{"/api/v1/projects/saga/graph?min=8&max=2", http.StatusBadRequest},
		{"/api/v1/projects/saga/graph?kinds=nemesis", http.StatusBadRequest},
		{"/api/v1/projects/saga/graph?rankdir=diagonal", http.StatusBadRequest},
		{"/api/v1/nothing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestApplyQuery(t *testing.T) {
	opts := pipeline.Options{Layout: "force"}
	q := map[string][]string{
		"layout":   {"circular"},
		"kinds":    {"friend, enemy", "mentor"},
		"max":      {"7"},
		"ref":      {"3"},
		"width":    {"640"},
		"seed":     {"99"},
		"detailed": {"true"},
		"global":   {"1"},
	}
	if err := applyQuery(&opts, q); err != nil {
		t.Fatal(err)
	}
	if opts.Layout != "circular" || opts.Reference != 3 || opts.Width != 640 || opts.Seed != 99 || !opts.Detailed || !opts.GlobalDedupe {
		t.Errorf("opts = %+v", opts)
	}
	if len(opts.Kinds) != 3 || opts.Kinds[2] != "mentor" {
		t.Errorf("Kinds = %v", opts.Kinds)
	}
	if opts.Strength == nil || opts.Strength.Min != 0 || opts.Strength.Max != 7 {
		t.Errorf("Strength = %v", opts.Strength)
	}
}
