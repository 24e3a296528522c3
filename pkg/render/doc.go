// Package render draws positioned relationship graphs.
//
// Positions come from [layout.Compute]; this package never moves a node.
// [ToDOT] emits Graphviz DOT with every character pinned at its layout
// position (pos="x,y!") and edges colored by relation kind, weighted by
// strength. [RenderSVG] and [RenderPNG] then run Graphviz neato in
// process through go-graphviz, which only routes the edges.
//
//	dot := render.ToDOT(l, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [ToPDF] converts an SVG with the external rsvg-convert tool.
//
// Hierarchical layouts carry corner anchors rather than centres; [Centres]
// undoes the shift so every layout kind renders centred on its positions.
package render
