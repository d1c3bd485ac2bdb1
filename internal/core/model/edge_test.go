package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPair_Canonical(t *testing.T) {
	ab, ok := NewPair("A", "B")
	assert.True(t, ok)
	ba, ok := NewPair("B", "A")
	assert.True(t, ok)

	assert.Equal(t, ab, ba)
	assert.Equal(t, "A-B", ab.Key())
	assert.Equal(t, "A-B", ba.Key())
}

func TestNewPair_Lexicographic(t *testing.T) {
	// string order, not numeric order
	p, ok := NewPair("10", "9")
	assert.True(t, ok)
	assert.Equal(t, "10-9", p.Key())
}

func TestNewPair_SelfRejected(t *testing.T) {
	_, ok := NewPair("A", "A")
	assert.False(t, ok)
}

func TestSortPairsAndParams(t *testing.T) {
	pairs := []Pair{{A: "B", B: "C"}, {A: "A", B: "C"}, {A: "A", B: "B"}}
	SortPairs(pairs)
	assert.Equal(t, []Pair{{A: "A", B: "B"}, {A: "A", B: "C"}, {A: "B", B: "C"}}, pairs)

	params := PairParams(pairs[:1])
	assert.Equal(t, []interface{}{[]string{"A", "B"}}, params)
}

func TestParcelProperties(t *testing.T) {
	p := Parcel{
		ID:       "1",
		Owner:    "O1",
		Geometry: "POLYGON((0 0,1 0,1 1,0 0))",
		Attributes: Attributes{
			ParID: "p1", ParNum: "n1", ShapeLength: "4", ShapeArea: "1",
			Freguesia: "Arco da Calheta", Municipio: "Calheta", Ilha: "Ilha da Madeira",
		},
	}
	props := p.Properties()
	assert.Equal(t, "1", props["id"])
	assert.Equal(t, "O1", props["owner"])
	assert.Equal(t, "Calheta", props["municipio"])
	assert.Len(t, props, 10)
}

func TestIDSet(t *testing.T) {
	s := NewIDSet("a", "b")
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))
	s.Add("c")
	assert.True(t, s.Has("c"))
}
