package graph

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// =============================================================================
// Raw Records - Input Contract
// =============================================================================

// Character is a raw character record as served by the upstream API.
type Character struct {
	ID        int64  `json:"id" bson:"id" validate:"required,gt=0"`
	Name      string `json:"name" bson:"name" validate:"required"`
	Category  string `json:"category,omitempty" bson:"category,omitempty"`
	ProjectID string `json:"project_id,omitempty" bson:"project_id,omitempty"`
}

// Relation is a raw relation record as served by the upstream API.
// ID is optional; records without one get a synthesized edge ID.
type Relation struct {
	ID                int64  `json:"id,omitempty" bson:"id,omitempty"`
	SourceCharacterID int64  `json:"source_character_id" bson:"source_character_id" validate:"required,gt=0"`
	TargetCharacterID int64  `json:"target_character_id" bson:"target_character_id" validate:"required,gt=0"`
	RelationType      string `json:"relation_type" bson:"relation_type" validate:"required"`
	Strength          int    `json:"strength" bson:"strength" validate:"min=0,max=10"`
	IsBidirectional   bool   `json:"is_bidirectional" bson:"is_bidirectional"`
	Description       string `json:"description,omitempty" bson:"description,omitempty"`
	Timeline          string `json:"timeline,omitempty" bson:"timeline,omitempty"`
	ProjectID         string `json:"project_id,omitempty" bson:"project_id,omitempty"`
}

// Dataset is one snapshot of raw characters and relations.
type Dataset struct {
	Characters []Character `json:"characters" bson:"characters"`
	Relations  []Relation  `json:"relations" bson:"relations"`
}

// Report describes the records dropped while converting a [Dataset].
type Report struct {
	DroppedCharacters int      `json:"dropped_characters"`
	DroppedRelations  int      `json:"dropped_relations"`
	Problems          []string `json:"problems,omitempty"`
}

// Dropped returns the total number of rejected records.
func (r Report) Dropped() int { return r.DroppedCharacters + r.DroppedRelations }

var validate = validator.New()

// edgeNamespace scopes synthesized edge IDs.
var edgeNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("relgraph/edge"))

// FromDataset converts raw records into graph nodes and edges.
//
// Malformed records are dropped and described in the returned Report:
// characters without an ID or name, duplicate character IDs, relations
// missing an endpoint or a type, and strengths outside [0,10]. Dangling
// references to unknown characters are left for the filter engine.
func FromDataset(ds Dataset) ([]Node, []Edge, Report) {
	var rep Report
	nodes := make([]Node, 0, len(ds.Characters))
	seen := make(map[int64]struct{}, len(ds.Characters))

	for i, c := range ds.Characters {
		if err := validate.Struct(c); err != nil {
			rep.DroppedCharacters++
			rep.Problems = append(rep.Problems, fmt.Sprintf("character #%d: %s", i, describe(err)))
			continue
		}
		if _, dup := seen[c.ID]; dup {
			rep.DroppedCharacters++
			rep.Problems = append(rep.Problems, fmt.Sprintf("character #%d: duplicate id %d", i, c.ID))
			continue
		}
		seen[c.ID] = struct{}{}
		nodes = append(nodes, Node{ID: c.ID, Label: c.Name, Category: c.Category})
	}

	edges := make([]Edge, 0, len(ds.Relations))
	occurrences := make(map[string]int)
	for i, r := range ds.Relations {
		if err := validate.Struct(r); err != nil {
			rep.DroppedRelations++
			rep.Problems = append(rep.Problems, fmt.Sprintf("relation #%d: %s", i, describe(err)))
			continue
		}
		e := edgeFromRelation(r)
		if r.ID == 0 {
			base := SynthesizeEdgeID(e.SourceID, e.TargetID, e.Kind, 0)
			e.ID = SynthesizeEdgeID(e.SourceID, e.TargetID, e.Kind, occurrences[base])
			occurrences[base]++
		}
		edges = append(edges, e)
	}

	return nodes, edges, rep
}

func edgeFromRelation(r Relation) Edge {
	return Edge{
		ID:            strconv.FormatInt(r.ID, 10),
		SourceID:      r.SourceCharacterID,
		TargetID:      r.TargetCharacterID,
		Kind:          ParseKind(r.RelationType),
		Strength:      r.Strength,
		Bidirectional: r.IsBidirectional,
		Description:   r.Description,
		Timeline:      r.Timeline,
	}
}

// SynthesizeEdgeID derives a stable edge ID from its endpoints and kind.
// n numbers repeated relations with the same endpoints and kind in input
// order; the first one is 0.
func SynthesizeEdgeID(source, target int64, kind Kind, n int) string {
	name := fmt.Sprintf("%d-%d-%s", source, target, kind)
	if n > 0 {
		name += "#" + strconv.Itoa(n)
	}
	return uuid.NewSHA1(edgeNamespace, []byte(name)).String()
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
