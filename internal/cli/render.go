package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/pipeline"
)

// renderCommand creates the render command for drawing saved layouts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output   string
		formats  string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render a layout to SVG, PNG, PDF or DOT",
		Long: `Render a layout produced by 'relgraph layout'.

Every character is pinned at its computed position and graphviz only routes
the edges. Edge color follows the relation kind and edge width the
strength. PDF output requires rsvg-convert on the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], parseList(formats), output, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or base name with several formats (default: <input>.<format>)")
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatSVG, "comma-separated output formats: svg, png, pdf, dot")
	cmd.Flags().BoolVarP(&detailed, "detailed", "d", false, "label edges with their relation kind")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, formats []string, output string, detailed bool) error {
	if len(formats) == 0 {
		formats = []string{pipeline.FormatSVG}
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	l, err := graph.ReadLayoutFile(path)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", path, err)
	}
	if l.IsEmpty() {
		printWarning("Layout is empty, rendering a blank canvas")
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	artifacts, err := pipeline.Render(ctx, l, pipeline.Options{Formats: formats, Detailed: detailed})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("rendered", "formats", strings.Join(formats, ","))

	printSuccess("Rendered %s layout", l.Kind)
	for _, format := range formats {
		dst := renderPath(path, output, format, len(formats) > 1)
		if err := os.WriteFile(dst, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dst, err)
		}
		printFile(dst)
	}
	printStats(len(l.Nodes), len(l.Edges), graph.Report{})
	return nil
}

// renderPath picks the file for one format. A single format writes to
// output verbatim; several formats use output as a base name.
func renderPath(input, output, format string, multi bool) string {
	if output != "" && !multi {
		return output
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, ".json")
		base = strings.TrimSuffix(base, ".layout")
	}
	return base + "." + format
}
