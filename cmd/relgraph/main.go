// Command relgraph lays out, renders and serves character relationship
// graphs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/internal/cli"
	"github.com/matzehuels/relgraph/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	cancel()
	os.Exit(errors.ExitCode(err))
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	next := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if next == nil {
			return nil
		}
		return next(cmd, args)
	}

	err := root.ExecuteContext(ctx)
	if err != nil && errors.ExitCode(err) != 130 {
		if code := errors.GetCode(err); code != "" {
			c.Logger.Error(errors.UserMessage(err), "code", code)
		} else {
			c.Logger.Error(err)
		}
	}
	return err
}
