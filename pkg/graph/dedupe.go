package graph

import "fmt"

// Dedupe collapses bidirectional relations stored as two directed records
// into one canonical edge, seen from the perspective of the reference node.
//
// For every edge incident to referenceID the pair key is the sorted pair
// (referenceID, other endpoint). The first bidirectional edge for a key is
// kept and later ones are dropped. Non-bidirectional edges are always kept,
// since their direction is meaningful to the renderer.
//
// Only edges touching the reference participate: pairs not involving it
// are returned unchanged, so Dedupe never performs global deduplication.
// Use [DedupeAll] when that is what the caller wants.
//
// The input slice is not modified and the output preserves input order.
func Dedupe(edges []Edge, referenceID int64) []Edge {
	out := make([]Edge, 0, len(edges))
	seen := make(map[string]struct{})
	for _, e := range edges {
		if !e.Bidirectional || !e.Touches(referenceID) {
			out = append(out, e)
			continue
		}
		key := pairKey(referenceID, e.Other(referenceID))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

// DedupeAll applies the Dedupe rule to every bidirectional pair in the
// graph, keying each edge by its own sorted endpoints.
func DedupeAll(edges []Edge) []Edge {
	out := make([]Edge, 0, len(edges))
	seen := make(map[string]struct{})
	for _, e := range edges {
		if !e.Bidirectional {
			out = append(out, e)
			continue
		}
		key := pairKey(e.SourceID, e.TargetID)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Canonicalize picks the dedup rule for a graph view. A reference character
// scopes deduplication to its own pairs unless global is set; without one
// every bidirectional pair is collapsed, so each surfaced pair has a single
// canonical edge.
func Canonicalize(edges []Edge, referenceID int64, global bool) []Edge {
	if global || referenceID == 0 {
		return DedupeAll(edges)
	}
	return Dedupe(edges, referenceID)
}

func pairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d-%d", a, b)
}
