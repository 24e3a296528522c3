package graph_test

import (
	"fmt"

	"github.com/matzehuels/relgraph/pkg/graph"
)

func ExampleDedupe() {
	// One bidirectional family tie stored as two directed records.
	edges := []graph.Edge{
		{ID: "1", SourceID: 1, TargetID: 2, Kind: graph.KindFriend, Strength: 5},
		{ID: "2", SourceID: 2, TargetID: 3, Kind: graph.KindFamily, Strength: 8, Bidirectional: true},
		{ID: "3", SourceID: 3, TargetID: 2, Kind: graph.KindFamily, Strength: 8, Bidirectional: true},
	}

	for _, e := range graph.Dedupe(edges, 2) {
		fmt.Printf("%s: %d -> %d (%s)\n", e.ID, e.SourceID, e.TargetID, e.Kind)
	}
	// Output:
	// 1: 1 -> 2 (friend)
	// 2: 2 -> 3 (family)
}

func ExampleFromDataset() {
	ds := graph.Dataset{
		Characters: []graph.Character{{ID: 1, Name: "Ada"}, {ID: 2, Name: "Brin"}},
		Relations: []graph.Relation{
			{ID: 7, SourceCharacterID: 1, TargetCharacterID: 2, RelationType: "Mentor", Strength: 6},
			{ID: 8, SourceCharacterID: 1, TargetCharacterID: 2, RelationType: "rival", Strength: 42},
		},
	}

	nodes, edges, report := graph.FromDataset(ds)
	fmt.Println("nodes:", len(nodes))
	fmt.Println("edges:", len(edges), edges[0].Kind)
	fmt.Println("dropped:", report.Dropped())
	// Output:
	// nodes: 2
	// edges: 1 mentor
	// dropped: 1
}
