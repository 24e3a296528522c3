// Package config loads relgraph settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/relgraph/config.toml (falling back to
// ~/.config/relgraph/config.toml). Missing files and missing keys take the
// values of [Default]; CLI flags override whatever the file sets.
//
//	[layout]
//	kind = "hierarchical"
//	rank_direction = "LR"
//
//	[source]
//	kind = "http"
//	base_url = "https://api.example.com"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "6h"
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/filter"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/store"
)

// Config holds relgraph configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Filter FilterConfig `toml:"filter"`
	Source SourceConfig `toml:"source"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig holds the defaults of [layout.Options].
type LayoutConfig struct {
	Kind          string  `toml:"kind" validate:"oneof=force hierarchical circular"`
	Width         float64 `toml:"width" validate:"gt=0"`
	Height        float64 `toml:"height" validate:"gt=0"`
	RankDirection string  `toml:"rank_direction" validate:"oneof=TB LR tb lr"`
	Engine        string  `toml:"engine" validate:"oneof=native graphviz"`
	Seed          uint64  `toml:"seed"`
}

// FilterConfig holds the initial filter state.
type FilterConfig struct {
	// Kinds lists the selected relation kinds; empty selects all.
	Kinds        []string `toml:"kinds"`
	MinStrength  int      `toml:"min_strength" validate:"min=0,max=10"`
	MaxStrength  int      `toml:"max_strength" validate:"min=0,max=10,gtefield=MinStrength"`
	Reference    int64    `toml:"reference" validate:"min=0"`
	GlobalDedupe bool     `toml:"global_dedupe"`
}

// SourceConfig selects where project datasets come from.
type SourceConfig struct {
	Kind          string `toml:"kind" validate:"oneof=file http mongo"`
	Dir           string `toml:"dir" validate:"required_if=Kind file"`
	BaseURL       string `toml:"base_url" validate:"required_if=Kind http,omitempty,url"`
	Token         string `toml:"token"`
	MongoURI      string `toml:"mongo_uri" validate:"required_if=Kind mongo"`
	MongoDatabase string `toml:"mongo_database" validate:"required_if=Kind mongo"`
}

// CacheConfig selects the dataset cache backend.
type CacheConfig struct {
	Backend       string        `toml:"backend" validate:"oneof=none file redis"`
	Dir           string        `toml:"dir"`
	TTL           time.Duration `toml:"ttl" validate:"min=0"`
	Prefix        string        `toml:"prefix"`
	RedisAddr     string        `toml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db" validate:"min=0"`
}

// ServerConfig configures relgraph serve.
type ServerConfig struct {
	Addr         string        `toml:"addr" validate:"required"`
	ReadTimeout  time.Duration `toml:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration `toml:"write_timeout" validate:"min=0"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Kind:          string(layout.Force),
			Width:         layout.DefaultWidth,
			Height:        layout.DefaultHeight,
			RankDirection: string(layout.TopToBottom),
			Engine:        string(layout.EngineNative),
		},
		Filter: FilterConfig{
			MinStrength: filter.MinStrength,
			MaxStrength: filter.MaxStrength,
		},
		Source: SourceConfig{Kind: "file", Dir: "."},
		Cache:  CacheConfig{Backend: "file", TTL: 24 * time.Hour},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}
}

// Dir returns the relgraph config directory.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "relgraph"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "relgraph"), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads path over [Default] and validates the result. A missing file
// is not an error. An empty path means [Path].
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	cfg := Default()
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := Decode(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode parses TOML data into cfg and validates it. Keys the file does
// not mention keep their current values.
func Decode(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section. The error names the first offending
// field.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.New(errors.ErrCodeInvalidConfig, "invalid %s: failed %q check (value %v)",
				fe.Namespace(), fe.Tag(), fe.Value())
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "validate config")
	}
	for _, k := range c.Filter.Kinds {
		if !graph.Kind(strings.ToLower(strings.TrimSpace(k))).Known() {
			return errors.New(errors.ErrCodeInvalidConfig, "invalid filter kind %q", k)
		}
	}
	return nil
}

// LayoutKind returns the configured layout kind.
func (c *Config) LayoutKind() layout.Kind {
	k, err := layout.ParseKind(c.Layout.Kind)
	if err != nil {
		return layout.Force
	}
	return k
}

// LayoutOptions converts the [layout] section. Prior and Logger are left
// for the caller.
func (c *Config) LayoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	opts.Width = c.Layout.Width
	opts.Height = c.Layout.Height
	if dir, err := layout.ParseRankDir(c.Layout.RankDirection); err == nil {
		opts.RankDir = dir
	}
	if eng, err := layout.ParseEngine(c.Layout.Engine); err == nil {
		opts.Engine = eng
	}
	opts.Seed = c.Layout.Seed
	return opts
}

// Kinds returns the configured kind selection.
func (c *Config) Kinds() graph.KindSet {
	if len(c.Filter.Kinds) == 0 {
		return graph.AllKinds()
	}
	return graph.ParseKindSet(strings.Join(c.Filter.Kinds, ","))
}

// State returns the initial store state described by the file.
func (c *Config) State() store.State {
	return store.State{
		Kinds:    c.Kinds(),
		Strength: filter.Range{Min: c.Filter.MinStrength, Max: c.Filter.MaxStrength},
		Layout:   c.LayoutKind(),
	}
}
