// Package cli implements the relgraph command-line interface.
//
// The CLI lays out relationship graphs from dataset files or configured
// project sources, renders saved layouts, serves the HTTP API and runs an
// interactive terminal explorer. It is built on cobra, and all status
// output goes through lipgloss styles and a charmbracelet/log logger.
//
// # Commands
//
//   - layout: Compute a layout from a dataset file or a project
//   - render: Render a saved layout to SVG, PNG, PDF or DOT
//   - serve: Run the HTTP API
//   - explore: Browse a dataset interactively in the terminal
//   - cache: Manage the dataset cache
//   - config: Show or initialize the configuration file
//
// # Configuration
//
// Every command reads $XDG_CONFIG_HOME/relgraph/config.toml (or the file
// named by --config). Flags override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with timestamps formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the completion of an operation with its elapsed duration.
// It is not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Laid out 42 characters (1.234s)".
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))...)
}
