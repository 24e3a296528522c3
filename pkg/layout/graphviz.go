package layout

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/relgraph/pkg/graph"
)

// Graphviz works in inches; canvas units are points.
const pointsPerInch = 72.0

// ToDOT emits the hierarchical layout problem as a DOT digraph with fixed
// size boxes and the same separations as the native engine.
func ToDOT(nodes []graph.Node, edges []graph.Edge, dir RankDir) string {
	if dir == "" {
		dir = TopToBottom
	}
	index, links := indexEdges(nodes, edges)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	fmt.Fprintf(&buf, "  nodesep=%.4f;\n", NodeSep/pointsPerInch)
	fmt.Fprintf(&buf, "  ranksep=\"%.4f equally\";\n", RankSep/pointsPerInch)
	fmt.Fprintf(&buf, "  node [shape=box, fixedsize=true, label=\"\", width=%.4f, height=%.4f];\n",
		NodeWidth/pointsPerInch, NodeHeight/pointsPerInch)
	buf.WriteString("\n")

	for i, n := range nodes {
		if index[n.ID] == i {
			fmt.Fprintf(&buf, "  \"%d\";\n", n.ID)
		}
	}
	buf.WriteString("\n")
	for _, l := range links {
		fmt.Fprintf(&buf, "  \"%d\" -> \"%d\";\n", nodes[l[0]].ID, nodes[l[1]].ID)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func graphvizLayout(nodes []graph.Node, edges []graph.Edge, opts Options) ([]graph.PositionedNode, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(ToDOT(nodes, edges, opts.RankDir)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.Format("plain"), &buf); err != nil {
		return nil, fmt.Errorf("render plain: %w", err)
	}

	centres, err := parsePlain(buf.Bytes())
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if _, ok := centres[n.ID]; !ok {
			return nil, fmt.Errorf("graphviz output missing node %d", n.ID)
		}
	}
	return place(nodes, func(i int) graph.Point {
		c := centres[nodes[i].ID]
		return graph.Point{X: c.X + AnchorOffset.X, Y: c.Y + AnchorOffset.Y}
	}), nil
}

// parsePlain reads node centres from Graphviz "plain" output, converting
// inches with a bottom-left origin into points with a top-left origin.
//
//	graph scale width height
//	node name x y width height label style shape color fillcolor
func parsePlain(out []byte) (map[int64]graph.Point, error) {
	centres := make(map[int64]graph.Point)
	height := 0.0

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return nil, fmt.Errorf("malformed graph line %q", sc.Text())
			}
			h, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, fmt.Errorf("graph height: %w", err)
			}
			height = h
		case "node":
			if len(fields) < 4 {
				return nil, fmt.Errorf("malformed node line %q", sc.Text())
			}
			id, err := strconv.ParseInt(strings.Trim(fields[1], `"`), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("node name %q: %w", fields[1], err)
			}
			x, errX := strconv.ParseFloat(fields[2], 64)
			y, errY := strconv.ParseFloat(fields[3], 64)
			if errX != nil || errY != nil {
				return nil, fmt.Errorf("node %d position %q %q", id, fields[2], fields[3])
			}
			centres[id] = graph.Point{X: x * pointsPerInch, Y: (height - y) * pointsPerInch}
		case "stop":
			return centres, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return centres, nil
}
