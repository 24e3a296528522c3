package graph

import (
	"slices"
	"strings"
)

// Kind is a relation category from the fixed vocabulary.
type Kind string

// Relation kinds.
const (
	KindFamily    Kind = "family"
	KindFriend    Kind = "friend"
	KindEnemy     Kind = "enemy"
	KindLover     Kind = "lover"
	KindColleague Kind = "colleague"
	KindMentor    Kind = "mentor"
	KindRival     Kind = "rival"
	KindOther     Kind = "other"
)

// Vocabulary lists every relation kind in display order.
var Vocabulary = []Kind{
	KindFamily,
	KindFriend,
	KindEnemy,
	KindLover,
	KindColleague,
	KindMentor,
	KindRival,
	KindOther,
}

// ParseKind maps a relation type string onto the vocabulary. Matching is
// case-insensitive; anything unrecognized is KindOther.
func ParseKind(s string) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k.Known() {
		return k
	}
	return KindOther
}

// Known reports whether k is part of the vocabulary.
func (k Kind) Known() bool { return k.bit() != 0 }

func (k Kind) bit() uint16 {
	if i := slices.Index(Vocabulary, k); i >= 0 {
		return 1 << i
	}
	return 0
}

// KindSet is an immutable set of relation kinds. The zero value is empty.
type KindSet struct {
	bits uint16
}

// AllKinds returns a set containing the full vocabulary.
func AllKinds() KindSet {
	return NewKindSet(Vocabulary...)
}

// NewKindSet returns a set of the given kinds. Unknown kinds are ignored.
func NewKindSet(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s.bits |= k.bit()
	}
	return s
}

// Has reports whether k is in the set.
func (s KindSet) Has(k Kind) bool {
	b := k.bit()
	return b != 0 && s.bits&b != 0
}

// With returns a copy of s including k.
func (s KindSet) With(k Kind) KindSet { return KindSet{bits: s.bits | k.bit()} }

// Without returns a copy of s excluding k.
func (s KindSet) Without(k Kind) KindSet { return KindSet{bits: s.bits &^ k.bit()} }

// Toggle adds k if absent and removes it if present.
func (s KindSet) Toggle(k Kind) KindSet {
	if s.Has(k) {
		return s.Without(k)
	}
	return s.With(k)
}

// Len returns the number of kinds in the set.
func (s KindSet) Len() int {
	n := 0
	for b := s.bits; b != 0; b &= b - 1 {
		n++
	}
	return n
}

// Kinds returns the members in vocabulary order.
func (s KindSet) Kinds() []Kind {
	out := make([]Kind, 0, s.Len())
	for _, k := range Vocabulary {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// String returns the members joined by commas.
func (s KindSet) String() string {
	parts := make([]string, 0, s.Len())
	for _, k := range s.Kinds() {
		parts = append(parts, string(k))
	}
	return strings.Join(parts, ",")
}

// ParseKindSet parses a comma-separated list of kinds. An empty string is
// the empty set. Entries are matched with [ParseKind].
func ParseKindSet(s string) KindSet {
	var set KindSet
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		set = set.With(ParseKind(part))
	}
	return set
}
