// Package graph defines the relationship graph data model and its
// serialization formats.
//
// # Core Types
//
//   - [Node], [Edge]: characters and typed, weighted relations
//   - [Kind], [KindSet]: the fixed relation vocabulary and immutable sets of it
//   - [PositionedNode], [Point]: layout output
//   - [Character], [Relation], [Dataset]: raw records from the upstream API
//   - [Layout]: positioned graph handed to a rendering surface
//
// # Input Conversion
//
// [FromDataset] validates raw records and converts them into nodes and
// edges. Malformed records are dropped, never fatal:
//
//	nodes, edges, report := graph.FromDataset(ds)
//	if report.Dropped() > 0 {
//	    logger.Warn("dropped records", "count", report.Dropped())
//	}
//
// # Deduplication
//
// A bidirectional relation is usually stored as two directed records.
// [Dedupe] collapses them into one canonical edge relative to a reference
// character:
//
//	edges = graph.Dedupe(edges, focusedCharacterID)
//
// # Serialization
//
// Datasets and layouts are JSON:
//
//	{
//	  "characters": [{"id": 1, "name": "Ada"}],
//	  "relations":  [{"source_character_id": 1, "target_character_id": 2,
//	                  "relation_type": "friend", "strength": 5}]
//	}
//
// # Concurrency
//
// All values are plain data. Functions never mutate their inputs and are
// safe for concurrent use.
package graph
