package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/container"
	"github.com/matzehuels/relgraph/pkg/filter"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/pipeline"
	"github.com/matzehuels/relgraph/pkg/store"
)

// exploreCommand creates the interactive explorer command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		flags   layoutFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "explore [dataset.json | project]",
		Short: "Browse a relationship graph interactively",
		Long: `Browse a relationship graph interactively in the terminal.

Number keys 1-8 toggle relation kinds, +/- and [/] move the bounds of the
strength range, tab switches the layout and r resets the filters. Move
through the characters with the arrow keys and press enter to show the
relations of one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := defaultOptions(cfg)
			flags.apply(cmd, &opts)
			return c.runExplore(cmd.Context(), args[0], opts, noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the dataset cache")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, arg string, opts pipeline.Options, noCache bool) error {
	in, err := resolveInput(arg)
	if err != nil {
		return err
	}

	ds := in.Dataset
	if ds == nil {
		cfg, err := c.loadConfig()
		if err != nil {
			return err
		}
		src, err := c.newSource(ctx, cfg, noCache)
		if err != nil {
			return fmt.Errorf("open source: %w", err)
		}
		runner := pipeline.NewRunner(src, c.Logger)
		defer runner.Close(context.WithoutCancel(ctx))

		spinner := newSpinnerWithContext(ctx, "Loading "+in.Project+"...")
		spinner.Start()
		loaded, err := runner.Load(ctx, pipeline.Options{Project: in.Project})
		spinner.Stop()
		if err != nil {
			return err
		}
		ds = &loaded
	}

	opts.Dataset, opts.Project = ds, ""
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	sched := container.NewFrameScheduler(0)
	defer sched.Close()

	// The TUI owns the terminal; log lines would tear the screen.
	m := newExploreModel(*ds, &opts, arg, container.WithScheduler(sched), container.WithLogger(log.New(io.Discard)))
	defer m.close()

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// initialState converts validated options into the store's first state.
func initialState(opts *pipeline.Options) store.State {
	s := store.State{
		Kinds:    graph.AllKinds(),
		Strength: filter.DefaultRange(),
		Layout:   opts.LayoutKind(),
	}
	if len(opts.Kinds) > 0 {
		s.Kinds = graph.ParseKindSet(strings.Join(opts.Kinds, ","))
	}
	if opts.Strength != nil {
		s.Strength = *opts.Strength
	}
	return s
}

// newExploreModel wires a store and a container around ds. opts must be
// validated.
func newExploreModel(ds graph.Dataset, opts *pipeline.Options, title string, extra ...container.Option) *exploreModel {
	m := &exploreModel{
		title: title,
		store: store.New(initialState(opts)),
		feed:  newViewFeed(),
	}
	copts := []container.Option{
		container.WithLayoutOptions(opts.LayoutOptions()),
		container.WithReference(opts.Reference),
		container.WithGlobalDedupe(opts.GlobalDedupe),
		container.WithHandlers(container.Handlers{OnNodeClick: m.onNodeClick}),
	}
	m.ctr = container.New(m.feed, append(copts, extra...)...)
	m.unbind = m.ctr.Bind(m.store)
	m.report = m.ctr.SetData(ds)
	return m
}

func (m *exploreModel) close() {
	if m.unbind != nil {
		m.unbind()
	}
}
