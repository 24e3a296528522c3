// Package pkg provides the core libraries for relgraph.
//
// # Overview
//
// relgraph turns characters and their typed, weighted relations into a
// positioned node-link diagram. The pkg directory is organized into:
//
//  1. [graph] - Entity model, raw dataset contract, deduplication and JSON files
//  2. [filter] - Kind and strength filtering
//  3. [dag] and [dag/transform] - Layered graph and the Sugiyama stages
//  4. [layout] - Force, hierarchical and circular layouts
//  5. [store] and [container] - Filter state and the layout orchestrator
//  6. [source], [cache] and [config] - Dataset loading, caching and configuration
//  7. [pipeline], [render] and [server] - One-shot runs, SVG output and the HTTP API
//
// # Architecture
//
// The typical data flow:
//
//	File / HTTP / MongoDB
//	         ↓
//	    [source] package (raw characters and relations)
//	         ↓
//	    [graph] package (validate, convert, dedupe)
//	         ↓
//	    [filter] package (kinds, strength range)
//	         ↓
//	    [layout] package (positions)
//	         ↓
//	    JSON layout / SVG / interactive surface
//
// # Quick Start
//
//	ds, _ := source.LoadFile("saga.json")
//	nodes, edges, _ := graph.FromDataset(ds)
//	edges = graph.Dedupe(edges, 1)
//	res := filter.Graph(nodes, edges, graph.AllKinds(), filter.DefaultRange())
//	positioned := layout.Compute(res.Nodes, res.Edges, layout.Circular, layout.DefaultOptions())
//
// An interactive surface drives the same steps through a [container.Container]
// bound to a [store.Store]; the CLI and server use [pipeline.Runner].
//
// [graph]: github.com/matzehuels/relgraph/pkg/graph
// [filter]: github.com/matzehuels/relgraph/pkg/filter
// [dag]: github.com/matzehuels/relgraph/pkg/dag
// [dag/transform]: github.com/matzehuels/relgraph/pkg/dag/transform
// [layout]: github.com/matzehuels/relgraph/pkg/layout
// [store]: github.com/matzehuels/relgraph/pkg/store
// [store.Store]: github.com/matzehuels/relgraph/pkg/store#Store
// [container]: github.com/matzehuels/relgraph/pkg/container
// [container.Container]: github.com/matzehuels/relgraph/pkg/container#Container
// [source]: github.com/matzehuels/relgraph/pkg/source
// [cache]: github.com/matzehuels/relgraph/pkg/cache
// [config]: github.com/matzehuels/relgraph/pkg/config
// [pipeline]: github.com/matzehuels/relgraph/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/relgraph/pkg/pipeline#Runner
// [render]: github.com/matzehuels/relgraph/pkg/render
// [server]: github.com/matzehuels/relgraph/pkg/server
package pkg
