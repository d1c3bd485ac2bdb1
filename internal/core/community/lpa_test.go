package community

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/parcelgraph/internal/core/model"
)

func triangle(a, b, c string) []model.Pair {
	return []model.Pair{{A: a, B: b}, {A: b, B: c}, {A: a, B: c}}
}

func TestLPA_DisconnectedComponents(t *testing.T) {
	nodes := []string{"1", "2", "3", "4", "5", "6"}
	edges := append(triangle("1", "2", "3"), triangle("4", "5", "6")...)

	communities := NewLabelPropagationDetector().Detect(nodes, edges)
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", "6"}}, communities)
}

func TestLPA_BridgeNode(t *testing.T) {
	// Two triangles joined by 3-4. Each side has more internal weight than
	// the bridge, so they stay apart.
	nodes := []string{"1", "2", "3", "4", "5", "6"}
	edges := append(triangle("1", "2", "3"), triangle("4", "5", "6")...)
	edges = append(edges, model.Pair{A: "3", B: "4"})

	communities := NewLabelPropagationDetector().Detect(nodes, edges)
	assert.Len(t, communities, 2)
}

func TestLPA_LargeClique(t *testing.T) {
	nodes := []string{"1", "2", "3", "4", "5"}
	var edges []model.Pair
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			edges = append(edges, model.Pair{A: nodes[i], B: nodes[j]})
		}
	}

	communities := NewLabelPropagationDetector().Detect(nodes, edges)
	assert.Len(t, communities, 1)
	assert.Len(t, communities[0], 5)
}

func TestLPA_Empty(t *testing.T) {
	assert.Nil(t, NewLabelPropagationDetector().Detect(nil, nil))
}

func TestOwnerCommunities(t *testing.T) {
	neighbors := []model.Pair{
		{A: "O1", B: "O2"},
		{A: "O1", B: "O2"},
		{A: "O3", B: "O4"},
	}
	assert.Equal(t, [][]string{{"O1", "O2"}, {"O3", "O4"}}, OwnerCommunities(neighbors))
}
