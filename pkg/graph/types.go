package graph

// =============================================================================
// Node - Character Vertex
// =============================================================================

// Node is a character rendered as a graph vertex.
type Node struct {
	ID       int64  `json:"id" bson:"id"`
	Label    string `json:"label" bson:"label"`
	Category string `json:"category,omitempty" bson:"category,omitempty"` // Visual grouping only

	// Degree is the number of surviving edges touching this node. It is
	// populated by the filter engine and zero everywhere else.
	Degree int `json:"degree" bson:"degree"`
}

// =============================================================================
// Edge - Typed Relation
// =============================================================================

// Edge is a relation rendered as a graph connection.
//
// For non-bidirectional edges the order matters: SourceID is the character
// holding the relation description.
type Edge struct {
	ID            string `json:"id" bson:"id"`
	SourceID      int64  `json:"source_id" bson:"source_id"`
	TargetID      int64  `json:"target_id" bson:"target_id"`
	Kind          Kind   `json:"kind" bson:"kind"`
	Strength      int    `json:"strength" bson:"strength"` // 0-10, drives visual weight
	Bidirectional bool   `json:"bidirectional" bson:"bidirectional"`
	Description   string `json:"description,omitempty" bson:"description,omitempty"`
	Timeline      string `json:"timeline,omitempty" bson:"timeline,omitempty"`
}

// Touches reports whether id is one of the edge endpoints.
func (e Edge) Touches(id int64) bool { return e.SourceID == id || e.TargetID == id }

// Other returns the endpoint opposite to id. For an edge not touching id it
// returns the source.
func (e Edge) Other(id int64) int64 {
	if e.SourceID == id {
		return e.TargetID
	}
	return e.SourceID
}

// =============================================================================
// Positions
// =============================================================================

// Point is a position in the abstract canvas coordinate space.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// PositionedNode is a node after layout. Position is nil when no layout
// was computed for it (unknown layout kind).
type PositionedNode struct {
	Node
	Position *Point `json:"position,omitempty" bson:"position,omitempty"`
}

// Placed reports whether a position was computed for the node.
func (n PositionedNode) Placed() bool { return n.Position != nil }

// Unplaced wraps nodes without assigning positions.
func Unplaced(nodes []Node) []PositionedNode {
	out := make([]PositionedNode, len(nodes))
	for i, n := range nodes {
		out[i] = PositionedNode{Node: n}
	}
	return out
}

// Positions returns the computed positions keyed by node ID, skipping
// unplaced nodes.
func Positions(nodes []PositionedNode) map[int64]Point {
	m := make(map[int64]Point, len(nodes))
	for _, n := range nodes {
		if n.Position != nil {
			m[n.ID] = *n.Position
		}
	}
	return m
}
