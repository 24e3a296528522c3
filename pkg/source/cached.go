package source

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relgraph/pkg/cache"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/observability"
)

// DefaultCacheTTL is how long a cached dataset stays fresh.
const DefaultCacheTTL = 24 * time.Hour

// Cached serves datasets from Cache and falls back to Inner on a miss.
// Cache failures are logged and never fail a load.
type Cached struct {
	Inner  Source
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger
}

// NewCached wraps inner with c using the default key layout and TTL.
func NewCached(inner Source, c cache.Cache) *Cached {
	return &Cached{
		Inner:  inner,
		Cache:  c,
		Keyer:  cache.NewDefaultKeyer(),
		TTL:    DefaultCacheTTL,
		Logger: log.New(io.Discard),
	}
}

func (c *Cached) Name() string { return c.Inner.Name() }

func (c *Cached) Load(ctx context.Context, project string) (graph.Dataset, error) {
	logger := c.logger()
	key := c.keyer().DatasetKey(scopeOf(c.Inner), project)
	hooks := observability.Cache()

	if data, hit, err := c.Cache.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "project", project, "error", err)
	} else if hit {
		if ds, err := graph.UnmarshalDataset(data); err == nil {
			hooks.OnCacheHit(ctx, "dataset")
			logger.Debug("dataset cache hit", "source", c.Inner.Name(), "project", project)
			return ds, nil
		}
		logger.Warn("discarding corrupt cache entry", "project", project)
		_ = c.Cache.Delete(ctx, key)
	}
	hooks.OnCacheMiss(ctx, "dataset")

	ds, err := c.Inner.Load(ctx, project)
	if err != nil {
		return graph.Dataset{}, err
	}

	data, err := graph.MarshalDataset(ds)
	if err != nil {
		logger.Warn("encode dataset for cache", "project", project, "error", err)
		return ds, nil
	}
	if err := c.Cache.Set(ctx, key, data, c.TTL); err != nil {
		logger.Warn("cache write failed", "project", project, "error", err)
		return ds, nil
	}
	hooks.OnCacheSet(ctx, "dataset", len(data))
	return ds, nil
}

// Invalidate drops the cached dataset of project.
func (c *Cached) Invalidate(ctx context.Context, project string) error {
	return c.Cache.Delete(ctx, c.keyer().DatasetKey(scopeOf(c.Inner), project))
}

// Close closes the cache and, when it holds resources, the inner source.
func (c *Cached) Close(ctx context.Context) error {
	var innerErr error
	if closer, ok := c.Inner.(interface{ Close(context.Context) error }); ok {
		innerErr = closer.Close(ctx)
	}
	if err := c.Cache.Close(); err != nil {
		return err
	}
	return innerErr
}

func (c *Cached) keyer() cache.Keyer {
	if c.Keyer == nil {
		return cache.NewDefaultKeyer()
	}
	return c.Keyer
}

func (c *Cached) logger() *log.Logger {
	if c.Logger == nil {
		return log.New(io.Discard)
	}
	return c.Logger
}

var _ Source = (*Cached)(nil)
