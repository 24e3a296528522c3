package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
)

const pointsPerInch = 72.0

// Box size of a rendered character, in points.
const (
	BoxWidth  = 120.0
	BoxHeight = 48.0
)

// KindColors maps relation kinds to edge colors.
var KindColors = map[graph.Kind]string{
	graph.KindFamily:    "#2e7d32",
	graph.KindFriend:    "#1565c0",
	graph.KindEnemy:     "#c62828",
	graph.KindLover:     "#ad1457",
	graph.KindColleague: "#6d4c41",
	graph.KindMentor:    "#6a1b9a",
	graph.KindRival:     "#ef6c00",
	graph.KindOther:     "#757575",
}

// Options configures rendering.
type Options struct {
	// Detailed adds the category under each name and the relation kind on
	// each edge.
	Detailed bool
}

// ToDOT converts a positioned graph into DOT with every node pinned at
// its layout position. Unplaced nodes and edges touching them are
// skipped.
func ToDOT(l graph.Layout, opts Options) string {
	centres := Centres(l)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  overlap=true;\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, fixedsize=true, width=%.4f, height=%.4f];\n",
		BoxWidth/pointsPerInch, BoxHeight/pointsPerInch)
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		c, ok := centres[n.ID]
		if !ok {
			continue
		}
		label := n.Label
		if opts.Detailed && n.Category != "" {
			label += "\n" + n.Category
		}
		// Graphviz has a bottom-left origin.
		fmt.Fprintf(&buf, "  \"%d\" [label=%q, pos=\"%.4f,%.4f!\"];\n",
			n.ID, label, c.X/pointsPerInch, (l.Height-c.Y)/pointsPerInch)
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		_, okS := centres[e.SourceID]
		_, okT := centres[e.TargetID]
		if !okS || !okT {
			continue
		}
		fmt.Fprintf(&buf, "  \"%d\" -> \"%d\" [%s];\n", e.SourceID, e.TargetID, strings.Join(edgeAttrs(e, opts), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeAttrs(e graph.Edge, opts Options) []string {
	color, ok := KindColors[e.Kind]
	if !ok {
		color = KindColors[graph.KindOther]
	}
	attrs := []string{
		fmt.Sprintf("id=%q", e.ID),
		fmt.Sprintf("color=%q", color),
		fmt.Sprintf("penwidth=%.2f", 1+float64(e.Strength)/3),
	}
	if e.Bidirectional {
		attrs = append(attrs, "dir=both")
	}
	if opts.Detailed {
		attrs = append(attrs, fmt.Sprintf("label=%q", string(e.Kind)), fmt.Sprintf("fontcolor=%q", color))
	}
	return attrs
}

// Centres returns the centre of every placed node. Hierarchical layouts
// store corner anchors, which are shifted back by [layout.AnchorOffset].
func Centres(l graph.Layout) map[int64]graph.Point {
	out := graph.Positions(l.Nodes)
	if layout.Kind(l.Kind) != layout.Hierarchical {
		return out
	}
	for id, p := range out {
		out[id] = graph.Point{X: p.X - layout.AnchorOffset.X, Y: p.Y - layout.AnchorOffset.Y}
	}
	return out
}

// RenderSVG renders DOT with pinned positions to SVG using Graphviz neato.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT with pinned positions to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element with one carrying
// only the viewBox and matching pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
