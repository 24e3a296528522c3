package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/filter"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/observability"
	"github.com/matzehuels/relgraph/pkg/render"
	"github.com/matzehuels/relgraph/pkg/source"
)

// Runner encapsulates pipeline execution.
// Both CLI and API use this to avoid duplicating the stage logic.
//
// The Runner is stateless except for the source and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Source source.Source
	Logger *log.Logger
}

// NewRunner creates a runner loading projects from src.
// src may be nil when every run carries an inline dataset.
func NewRunner(src source.Source, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{Source: src, Logger: logger}
}

// Execute runs the complete load → prepare → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	logger := opts.Logger.With("run", result.RunID[:8])

	// Stage 1: Load
	loadStart := time.Now()
	ds, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Characters = len(ds.Characters)
	result.Stats.Relations = len(ds.Relations)

	logger.Debug("loaded dataset",
		"characters", len(ds.Characters),
		"relations", len(ds.Relations),
		"duration", result.Stats.LoadTime)

	// Stage 2: Prepare
	filterStart := time.Now()
	res, report := Prepare(ds, opts)
	result.Report = report
	result.Stats.FilterTime = time.Since(filterStart)
	result.Stats.NodeCount = len(res.Nodes)
	result.Stats.EdgeCount = len(res.Edges)
	if report.Dropped() > 0 {
		logger.Warn("dropped malformed records",
			"characters", report.DroppedCharacters,
			"relations", report.DroppedRelations)
	}

	logger.Debug("filtered graph", "filter", opts.Describe(), "nodes", len(res.Nodes), "edges", len(res.Edges))

	// Stage 3: Layout
	layoutStart := time.Now()
	result.Layout = r.Layout(ctx, res, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)

	logger.Info("computed layout",
		"layout", opts.LayoutKind(),
		"status", result.Layout.Status,
		"nodes", len(result.Layout.Nodes),
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, err := Render(ctx, result.Layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load returns the inline dataset or fetches the project from the source.
func (r *Runner) Load(ctx context.Context, opts Options) (graph.Dataset, error) {
	if opts.Dataset != nil {
		return *opts.Dataset, nil
	}
	if r.Source == nil {
		return graph.Dataset{}, errors.New(errors.ErrCodeInvalidConfig, "no source configured for project %q", opts.Project)
	}
	return r.Source.Load(ctx, opts.Project)
}

// Prepare converts the dataset, deduplicates relations and applies the
// filter. Options must already be validated.
func Prepare(ds graph.Dataset, opts Options) (filter.Result, graph.Report) {
	nodes, edges, report := graph.FromDataset(ds)
	edges = graph.Canonicalize(edges, opts.Reference, opts.GlobalDedupe)
	return filter.Graph(nodes, edges, opts.kindSet, opts.strength), report
}

// Layout positions a filtered graph. An empty graph yields an empty
// layout without running any algorithm.
func (r *Runner) Layout(ctx context.Context, res filter.Result, opts Options) graph.Layout {
	lopts := opts.LayoutOptions()
	out := graph.Layout{
		Kind:   string(opts.LayoutKind()),
		Width:  lopts.Width,
		Height: lopts.Height,
		Status: graph.StatusEmpty,
		Nodes:  []graph.PositionedNode{},
		Edges:  []graph.Edge{},
	}
	if res.Empty() {
		return out
	}

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, out.Kind, len(res.Nodes))
	start := time.Now()
	out.Nodes = layout.Compute(res.Nodes, res.Edges, opts.LayoutKind(), lopts)
	hooks.OnLayoutComplete(ctx, out.Kind, len(res.Nodes), time.Since(start), false)

	out.Edges = res.Edges
	out.Status = graph.StatusReady
	return out
}

// Render encodes l in every requested format.
func Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	var svg []byte

	for _, format := range opts.Formats {
		if _, done := artifacts[format]; done {
			continue
		}
		if format != FormatJSON && dot == "" {
			dot = render.ToDOT(l, render.Options{Detailed: opts.Detailed})
		}

		var data []byte
		var err error
		switch format {
		case FormatJSON:
			data, err = graph.MarshalLayout(l)
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			if svg == nil {
				svg, err = render.RenderSVG(ctx, dot)
			}
			data = svg
		case FormatPNG:
			data, err = render.RenderPNG(ctx, dot)
		case FormatPDF:
			if svg == nil {
				if svg, err = render.RenderSVG(ctx, dot); err != nil {
					break
				}
			}
			data, err = render.ToPDF(ctx, svg)
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// Close releases resources held by the source when it has any.
func (r *Runner) Close(ctx context.Context) error {
	if c, ok := r.Source.(interface{ Close(context.Context) error }); ok {
		return c.Close(ctx)
	}
	return nil
}
