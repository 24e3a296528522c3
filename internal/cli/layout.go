package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/filter"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/pipeline"
)

// layoutFlags holds the filter and layout flags shared by layout and
// explore. Only flags set on the command line override the config file.
type layoutFlags struct {
	layout       string
	kinds        string
	min, max     int
	ref          int64
	globalDedupe bool
	width        float64
	height       float64
	rankDir      string
	engine       string
	seed         uint64
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.layout, "layout", "l", "", "layout: force (default), hierarchical, circular")
	fs.StringVarP(&f.kinds, "kinds", "k", "", "comma-separated relation kinds to keep (default: all)")
	fs.IntVar(&f.min, "min", filter.MinStrength, "minimum relation strength")
	fs.IntVar(&f.max, "max", filter.MaxStrength, "maximum relation strength")
	fs.Int64Var(&f.ref, "ref", 0, "reference character ID scoping bidirectional deduplication (0 collapses every pair)")
	fs.BoolVar(&f.globalDedupe, "global-dedupe", false, "collapse every bidirectional pair")
	fs.Float64Var(&f.width, "width", 0, "canvas width")
	fs.Float64Var(&f.height, "height", 0, "canvas height")
	fs.StringVar(&f.rankDir, "rankdir", "", "hierarchical rank direction: TB, LR")
	fs.StringVar(&f.engine, "engine", "", "hierarchical engine: native, graphviz")
	fs.Uint64Var(&f.seed, "seed", 0, "random seed for the force layout")
}

// apply overlays the flags the user set on opts.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("layout") {
		opts.Layout = f.layout
	}
	if changed("kinds") {
		opts.Kinds = parseList(f.kinds)
	}
	if changed("min") || changed("max") {
		rng := filter.DefaultRange()
		if opts.Strength != nil {
			rng = *opts.Strength
		}
		if changed("min") {
			rng.Min = f.min
		}
		if changed("max") {
			rng.Max = f.max
		}
		opts.Strength = &rng
	}
	if changed("ref") {
		opts.Reference = f.ref
	}
	if changed("global-dedupe") {
		opts.GlobalDedupe = f.globalDedupe
	}
	if changed("width") {
		opts.Width = f.width
	}
	if changed("height") {
		opts.Height = f.height
	}
	if changed("rankdir") {
		opts.RankDir = f.rankDir
	}
	if changed("engine") {
		opts.Engine = f.engine
	}
	if changed("seed") {
		opts.Seed = f.seed
	}
}

// layoutCommand creates the layout command for computing positioned graphs.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   layoutFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout [dataset.json | project]",
		Short: "Compute a layout from a dataset or a project",
		Long: `Compute a layout from a dataset or a project.

The argument is read as a dataset file when one exists at that path, and as
a project of the configured source otherwise. Relations are deduplicated
around the reference character, filtered by kind and strength, and laid
out. The result is written to <input>.layout.json and can be rendered with
'relgraph render'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := defaultOptions(cfg)
			flags.apply(cmd, &opts)
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the dataset cache")

	return cmd
}

// runLayout loads the input, computes the layout, and writes it.
func (c *CLI) runLayout(ctx context.Context, arg string, opts pipeline.Options, output string, noCache bool) error {
	in, err := resolveInput(arg)
	if err != nil {
		return err
	}
	opts.Project, opts.Dataset = in.Project, in.Dataset
	opts.Formats = []string{pipeline.FormatJSON}
	opts.Logger = c.Logger

	runner := pipeline.NewRunner(nil, c.Logger)
	if in.Project != "" {
		cfg, err := c.loadConfig()
		if err != nil {
			return err
		}
		src, err := c.newSource(ctx, cfg, noCache)
		if err != nil {
			return fmt.Errorf("open source: %w", err)
		}
		runner.Source = src
	}
	defer runner.Close(context.WithoutCancel(ctx))

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	prog.done("layout computed", "run", res.RunID, "layout", res.Layout.Kind)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = in.base() + ".layout.json"
	}
	if err := graph.WriteLayoutFile(res.Layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	if res.Layout.IsEmpty() {
		printWarning("No relation matched the filters")
	} else {
		printSuccess("Layout complete")
	}
	printFile(outputPath)
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.Report)
	printReport(res.Report)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}
