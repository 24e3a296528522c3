// Package source loads the raw characters and relations of a project.
//
// A [Source] returns a [graph.Dataset] exactly as the backend stores it;
// validation and conversion happen later in [graph.FromDataset]. Available
// backends:
//
//   - [File]: a directory of <project>.json files
//   - [HTTP]: the upstream REST API (characters and relations fetched
//     concurrently, transient failures retried)
//   - [Mongo]: the characters and relations collections of a database
//
// [Cached] wraps any of them with a [cache.Cache].
//
// Errors carry [errors.Code] values: NOT_FOUND for unknown projects,
// INVALID_INPUT for bad names or undecodable data and NETWORK_ERROR for
// backend failures.
package source

import (
	"context"
	"time"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/observability"
)

// Source loads a project's dataset.
type Source interface {
	// Name identifies the backend in logs.
	Name() string
	Load(ctx context.Context, project string) (graph.Dataset, error)
}

// Scoped is implemented by sources whose datasets depend on where they read
// from. [Cached] keys entries by the scope, so two HTTP sources with
// different base URLs never share an entry.
type Scoped interface {
	Scope() string
}

// scopeOf returns the cache scope of src, falling back to its name.
func scopeOf(src Source) string {
	if s, ok := src.(Scoped); ok {
		return s.Scope()
	}
	return src.Name()
}

// observe validates project, reports the load to the source hooks and
// runs fn.
func observe(ctx context.Context, name, project string, fn func() (graph.Dataset, error)) (graph.Dataset, error) {
	if err := errors.ValidateProjectName(project); err != nil {
		return graph.Dataset{}, err
	}
	hooks := observability.Source()
	hooks.OnLoadStart(ctx, name, project)
	start := time.Now()
	ds, err := fn()
	hooks.OnLoadComplete(ctx, name, project, len(ds.Characters)+len(ds.Relations), time.Since(start), err)
	return ds, err
}
