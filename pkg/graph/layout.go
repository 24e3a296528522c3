package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// Layout statuses.
const (
	StatusReady = "ready"
	StatusEmpty = "empty" // No character matched the filters
)

// =============================================================================
// Layout - Positioned Graph Serialization
// =============================================================================

// Layout is the serialization format for a positioned graph handed to a
// rendering surface.
type Layout struct {
	Kind   string  `json:"layout"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Status string  `json:"status"`

	Nodes []PositionedNode `json:"nodes"`
	Edges []Edge           `json:"edges"`
}

// IsEmpty reports whether no character survived filtering.
func (l *Layout) IsEmpty() bool { return l.Status == StatusEmpty || len(l.Nodes) == 0 }

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	if l.Nodes == nil {
		l.Nodes = []PositionedNode{}
	}
	if l.Edges == nil {
		l.Edges = []Edge{}
	}
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout and checks that
// edges only reference nodes present in the layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Status == "" {
		l.Status = StatusReady
		if len(l.Nodes) == 0 {
			l.Status = StatusEmpty
		}
	}

	ids := make(map[int64]struct{}, len(l.Nodes))
	for _, n := range l.Nodes {
		ids[n.ID] = struct{}{}
	}
	for _, e := range l.Edges {
		if _, ok := ids[e.SourceID]; !ok {
			return Layout{}, fmt.Errorf("edge %s: unknown source %d", e.ID, e.SourceID)
		}
		if _, ok := ids[e.TargetID]; !ok {
			return Layout{}, fmt.Errorf("edge %s: unknown target %d", e.ID, e.TargetID)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
