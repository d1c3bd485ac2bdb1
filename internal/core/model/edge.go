package model

import "sort"

// Pair is an unordered pair of two distinct identifiers stored in canonical
// orientation: A < B lexicographically.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// NewPair canonicalises x and y. ok is false when x == y, since neither
// parcels nor owners are ever related to themselves.
func NewPair(x, y string) (p Pair, ok bool) {
	switch {
	case x < y:
		return Pair{A: x, B: y}, true
	case y < x:
		return Pair{A: y, B: x}, true
	default:
		return Pair{}, false
	}
}

// Key is the canonical "A-B" string form, for display and logs. It is not
// unique when ids contain '-': compare Pair values instead.
func (p Pair) Key() string {
	return PairKey(p.A, p.B)
}

// Slice returns the pair as a two-element list, the shape the write
// queries UNWIND over.
func (p Pair) Slice() []string {
	return []string{p.A, p.B}
}

// PairKey joins two already-oriented ids.
func PairKey(a, b string) string {
	return a + "-" + b
}

// AdjacencyEdge connects two parcels whose geometries touch or intersect.
type AdjacencyEdge = Pair

// NeighborEdge connects two owners holding adjacent parcels.
type NeighborEdge = Pair

// PairSet is a set of canonical pairs.
type PairSet map[Pair]struct{}

func NewPairSet(pairs ...Pair) PairSet {
	s := make(PairSet, len(pairs))
	for _, p := range pairs {
		s.Add(p)
	}
	return s
}

func (s PairSet) Has(p Pair) bool {
	_, ok := s[p]
	return ok
}

func (s PairSet) Add(p Pair) {
	s[p] = struct{}{}
}

// SortPairs orders pairs by (A, B).
func SortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
}

// PairParams converts pairs into an UNWIND parameter list.
func PairParams(pairs []Pair) []interface{} {
	out := make([]interface{}, len(pairs))
	for i, p := range pairs {
		out[i] = p.Slice()
	}
	return out
}
