// Package pipeline runs the load → filter → layout → render flow once.
//
// The [container] package keeps a live view in sync with a changing filter
// state. The CLI and the HTTP API need a single answer per request, and
// this package gives them one with the same semantics: deduplicate around
// the reference character, filter, then lay out.
//
// # Architecture
//
// A run consists of four stages:
//
//  1. Load: Fetch the raw dataset from a [source.Source], or take it inline
//  2. Prepare: Validate records, convert, deduplicate and filter
//  3. Layout: Compute positions with [layout.Compute]
//  4. Render: Encode the layout in the requested formats (json, svg, png, dot)
//
// # Usage
//
//	runner := pipeline.NewRunner(src, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Project: "saga",
//	    Layout:  "hierarchical",
//	    Formats: []string{"json", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// [container]: github.com/matzehuels/relgraph/pkg/container
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/filter"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultSeed is the default random seed for reproducibility.
const DefaultSeed = uint64(42)

// DefaultLayout is the layout used when none is requested.
const DefaultLayout = layout.Force

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options: exactly one of Project and Dataset.
	Project string         `json:"project,omitempty"`
	Dataset *graph.Dataset `json:"dataset,omitempty"`

	// Filter options
	Kinds        []string      `json:"kinds,omitempty"`    // empty selects all kinds
	Strength     *filter.Range `json:"strength,omitempty"` // nil means [0,10]
	Reference    int64         `json:"reference,omitempty"`
	GlobalDedupe bool          `json:"global_dedupe,omitempty"`

	// Layout options
	Layout  string  `json:"layout,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	RankDir string  `json:"rank_direction,omitempty"`
	Engine  string  `json:"engine,omitempty"`
	Seed    uint64  `json:"seed,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	kind     layout.Kind
	kindSet  graph.KindSet
	rankDir  layout.RankDir
	engine   layout.Engine
	strength filter.Range

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and API responses.
	RunID string

	// Layout is the positioned, filtered graph.
	Layout graph.Layout

	// Report lists the records dropped during conversion.
	Report graph.Report

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
// Durations serialize as nanoseconds.
type Stats struct {
	Characters int           `json:"characters"` // raw records loaded
	Relations  int           `json:"relations"`
	NodeCount  int           `json:"node_count"` // after filtering
	EdgeCount  int           `json:"edge_count"`
	LoadTime   time.Duration `json:"load_time"`
	FilterTime time.Duration `json:"filter_time"`
	LayoutTime time.Duration `json:"layout_time"`
	RenderTime time.Duration `json:"render_time"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, svg, png, pdf, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateKinds checks that every name belongs to the relation vocabulary.
func ValidateKinds(kinds []string) error {
	for _, k := range kinds {
		if !graph.Kind(strings.ToLower(strings.TrimSpace(k))).Known() {
			return errors.New(errors.ErrCodeInvalidInput, "invalid relation kind: %q", k)
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and resolves every default.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Project == "" && o.Dataset == nil {
		return errors.New(errors.ErrCodeInvalidInput, "project or dataset is required")
	}
	if o.Project != "" && o.Dataset != nil {
		return errors.New(errors.ErrCodeInvalidInput, "project and dataset are mutually exclusive")
	}

	if o.Layout == "" {
		o.Layout = string(DefaultLayout)
	}
	kind, err := layout.ParseKind(o.Layout)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidLayout, err, "layout %q", o.Layout)
	}
	o.kind = kind

	if o.rankDir, err = layout.ParseRankDir(o.RankDir); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "rank direction")
	}
	if o.engine, err = layout.ParseEngine(o.Engine); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "engine")
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size must not be negative")
	}

	if err := ValidateKinds(o.Kinds); err != nil {
		return err
	}
	o.kindSet = graph.AllKinds()
	if len(o.Kinds) > 0 {
		o.kindSet = graph.ParseKindSet(strings.Join(o.Kinds, ","))
	}

	o.strength = filter.DefaultRange()
	if o.Strength != nil {
		if !o.Strength.Valid() {
			return errors.New(errors.ErrCodeInvalidInput, "invalid strength range %s", o.Strength)
		}
		o.strength = *o.Strength
	}
	if o.Reference < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "reference must not be negative")
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutKind returns the resolved layout kind. Valid after
// [Options.ValidateAndSetDefaults].
func (o *Options) LayoutKind() layout.Kind { return o.kind }

// LayoutOptions converts the layout fields for [layout.Compute].
func (o *Options) LayoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	if o.Width > 0 {
		opts.Width = o.Width
	}
	if o.Height > 0 {
		opts.Height = o.Height
	}
	opts.RankDir = o.rankDir
	opts.Engine = o.engine
	opts.Seed = o.Seed
	opts.Logger = o.Logger
	return opts
}

// Describe summarizes the filter for log lines.
func (o *Options) Describe() string {
	return fmt.Sprintf("layout=%s kinds=%s strength=%s ref=%d", o.kind, o.kindSet, o.strength, o.Reference)
}
