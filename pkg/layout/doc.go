// Package layout computes node positions for a filtered relationship graph.
//
// Three algorithms are available through [Compute]:
//
//   - [Force]: a d3-force style simulation with a link spring (rest length
//     [LinkDistance]), pairwise charge ([ChargeStrength]), a centering shift
//     and a collision constraint ([CollideDistance]). It runs exactly
//     [ForceTicks] ticks. Randomness comes only from [Options.Seed], and
//     [Options.Prior] lets a re-layout start from earlier positions.
//   - [Hierarchical]: layered placement with [NodeWidth] x [NodeHeight]
//     footprints, [RankSep] between ranks and [NodeSep] between neighbours.
//     Cycles are broken by reversing back edges, so mutual relations never
//     fail. [EngineGraphviz] delegates placement to Graphviz dot and falls
//     back to the native engine on error.
//   - [Circular]: node i of n at angle i*2π/n - π/2 on a circle of radius
//     min(width, height)/3.
//
// Hierarchical positions are node centres shifted by [AnchorOffset]; force
// and circular positions are centres.
//
// Empty input always yields an empty slice and an unknown [Kind] yields
// unplaced nodes, so callers never handle an error from Compute.
//
// The charge and collision terms are O(n²) per tick. Graphs beyond a few
// hundred nodes are better served by the circular or hierarchical layout.
package layout
