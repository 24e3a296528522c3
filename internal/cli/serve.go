package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/pipeline"
	"github.com/matzehuels/relgraph/pkg/server"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP layout API",
		Long: `Run the HTTP layout API.

Routes:
  GET  /health
  POST /api/v1/layout                     inline dataset and options
  GET  /api/v1/projects/{project}/graph   project from the configured source

The [layout] and [filter] sections of the config file are the defaults of
every request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			ctx := cmd.Context()

			src, err := c.newSource(ctx, cfg, noCache)
			if err != nil {
				return fmt.Errorf("open source: %w", err)
			}
			runner := pipeline.NewRunner(src, c.Logger)
			defer runner.Close(context.WithoutCancel(ctx))

			srv := server.New(runner, c.Logger, server.Options{
				Addr:         cfg.Server.Addr,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				Defaults:     defaultOptions(cfg),
			})
			printInfo("Serving %s projects on %s", src.Name(), StyleHighlight.Render(cfg.Server.Addr))
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: [server] addr, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the dataset cache")

	return cmd
}
