package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/buildinfo"
	"github.com/matzehuels/relgraph/pkg/cache"
	"github.com/matzehuels/relgraph/pkg/config"
	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/filter"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/pipeline"
	"github.com/matzehuels/relgraph/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "relgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location.
	ConfigPath string

	cfg *config.Config
}

// New creates a new CLI instance logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the source, cache
// and HTTP hooks report to the logger as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		registerDebugHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "relgraph lays out character relationship graphs",
		Long:          `relgraph turns characters and their typed, weighted relations into positioned graphs using force-directed, hierarchical or circular layouts, and renders them as SVG, PNG, PDF or DOT.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", c.ConfigPath, "config file (default: $XDG_CONFIG_HOME/relgraph/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig loads the configuration file once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path, err := c.configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "path", path, "source", cfg.Source.Kind, "cache", cfg.Cache.Backend)
	c.cfg = cfg
	return cfg, nil
}

func (c *CLI) configPath() (string, error) {
	if c.ConfigPath != "" {
		return c.ConfigPath, nil
	}
	return config.Path()
}

// defaultOptions seeds pipeline options from the configuration.
func defaultOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Kinds:        append([]string(nil), cfg.Filter.Kinds...),
		Strength:     &filter.Range{Min: cfg.Filter.MinStrength, Max: cfg.Filter.MaxStrength},
		Reference:    cfg.Filter.Reference,
		GlobalDedupe: cfg.Filter.GlobalDedupe,
		Layout:       cfg.Layout.Kind,
		Width:        cfg.Layout.Width,
		Height:       cfg.Layout.Height,
		RankDir:      cfg.Layout.RankDirection,
		Engine:       cfg.Layout.Engine,
		Seed:         cfg.Layout.Seed,
	}
}

// =============================================================================
// Source & Cache Factories
// =============================================================================

// newSource builds the configured project source. Remote sources are
// wrapped with the dataset cache unless noCache is set.
func (c *CLI) newSource(ctx context.Context, cfg *config.Config, noCache bool) (source.Source, error) {
	var src source.Source
	switch cfg.Source.Kind {
	case "http":
		h, err := source.NewHTTP(cfg.Source.BaseURL, cfg.Source.Token)
		if err != nil {
			return nil, err
		}
		src = h
	case "mongo":
		m, err := source.NewMongo(ctx, source.MongoOptions{
			URI:      cfg.Source.MongoURI,
			Database: cfg.Source.MongoDatabase,
		})
		if err != nil {
			return nil, err
		}
		src = m
	default:
		return source.NewFile(cfg.Source.Dir), nil
	}

	if noCache || cfg.Cache.Backend == "none" {
		return src, nil
	}
	cc, err := newCache(ctx, cfg)
	if err != nil {
		closeSource(ctx, src)
		return nil, err
	}
	cached := source.NewCached(src, cc)
	cached.Logger = c.Logger
	if cfg.Cache.TTL > 0 {
		cached.TTL = cfg.Cache.TTL
	}
	if cfg.Cache.Prefix != "" && cfg.Cache.Backend == "file" {
		cached.Keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Prefix)
	}
	c.Logger.Debug("dataset cache enabled", "backend", cfg.Cache.Backend, "ttl", cached.TTL)
	return cached, nil
}

// newCache opens the configured cache backend.
func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   cfg.Cache.Prefix,
		})
	case "file":
		dir, err := cacheDir(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return cache.NewNullCache(), nil
	}
}

func closeSource(ctx context.Context, src source.Source) {
	if closer, ok := src.(interface{ Close(context.Context) error }); ok {
		_ = closer.Close(ctx)
	}
}

// =============================================================================
// Input Resolution
// =============================================================================

// input is a positional argument naming either a dataset file or a
// project of the configured source.
type input struct {
	Path    string
	Project string
	Dataset *graph.Dataset
}

// resolveInput reads arg as a dataset file when one exists at that path
// and treats it as a project name otherwise.
func resolveInput(arg string) (input, error) {
	info, err := os.Stat(arg)
	if err == nil && !info.IsDir() {
		ds, err := source.LoadFile(arg)
		if err != nil {
			return input{}, err
		}
		return input{Path: arg, Dataset: &ds}, nil
	}
	if err := errors.ValidateProjectName(arg); err != nil {
		return input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "%q is neither a dataset file nor a project name", arg)
	}
	return input{Project: arg}, nil
}

// base returns the output path stem for in.
func (in input) base() string {
	if in.Path == "" {
		return in.Project
	}
	return strings.TrimSuffix(in.Path, filepath.Ext(in.Path))
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the XDG default
// (~/.cache/relgraph/).
func cacheDir(cfg *config.Config) (string, error) {
	if cfg != nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// parseList splits a comma-separated flag value, dropping blanks.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
