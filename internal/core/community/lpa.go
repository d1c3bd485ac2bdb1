package community

import (
	"sort"

	"github.com/agenthands/parcelgraph/internal/core/model"
)

// LabelPropagationDetector implements community detection using Label Propagation Algorithm (LPA).
// Parallel edges count as a stronger connection.
type LabelPropagationDetector struct {
	MaxIterations int
}

func NewLabelPropagationDetector() *LabelPropagationDetector {
	return &LabelPropagationDetector{
		MaxIterations: 20,
	}
}

func (d *LabelPropagationDetector) Detect(nodes []string, edges []model.Pair) [][]string {
	if len(nodes) == 0 {
		return nil
	}

	known := model.NewIDSet(nodes...)
	adj := make(map[string]map[string]int, len(nodes))
	labels := make(map[string]string, len(nodes))
	for _, n := range nodes {
		adj[n] = make(map[string]int)
		labels[n] = n
	}
	for _, e := range edges {
		if !known.Has(e.A) || !known.Has(e.B) {
			continue
		}
		adj[e.A][e.B]++
		adj[e.B][e.A]++
	}

	for iter := 0; iter < d.MaxIterations; iter++ {
		changed := 0
		for _, u := range nodes {
			neighbors := adj[u]
			if len(neighbors) == 0 {
				continue
			}

			counts := make(map[string]int)
			maxCount := 0
			for v, weight := range neighbors {
				l := labels[v]
				counts[l] += weight
				if counts[l] > maxCount {
					maxCount = counts[l]
				}
			}

			// Ties keep the current label if it is among them, otherwise the
			// lexicographically largest wins.
			if counts[labels[u]] == maxCount {
				continue
			}
			var candidates []string
			for l, c := range counts {
				if c == maxCount {
					candidates = append(candidates, l)
				}
			}
			sort.Strings(candidates)
			labels[u] = candidates[len(candidates)-1]
			changed++
		}
		if changed == 0 {
			break
		}
	}

	clusters := make(map[string][]string)
	for _, n := range nodes {
		clusters[labels[n]] = append(clusters[labels[n]], n)
	}

	var communities [][]string
	for _, c := range clusters {
		if len(c) >= 2 {
			communities = append(communities, c)
		}
	}
	return normalize(communities)
}

// OwnerCommunities runs label propagation over the owner-neighbor graph.
func OwnerCommunities(neighbors []model.NeighborEdge) [][]string {
	seen := model.NewIDSet()
	var owners []string
	for _, e := range neighbors {
		for _, o := range []string{e.A, e.B} {
			if !seen.Has(o) {
				seen.Add(o)
				owners = append(owners, o)
			}
		}
	}
	sort.Strings(owners)
	return NewLabelPropagationDetector().Detect(owners, neighbors)
}
