// Package community groups graph nodes: connected components for contiguous
// holdings and label propagation for owner communities.
package community

import (
	"sort"

	"github.com/agenthands/parcelgraph/internal/core/model"
)

type CommunityDetector interface {
	Detect(nodes []string, edges []model.Pair) [][]string
}

// SimpleDetector returns connected components of two or more nodes.
type SimpleDetector struct{}

func NewSimpleDetector() *SimpleDetector {
	return &SimpleDetector{}
}

func (d *SimpleDetector) Detect(nodes []string, edges []model.Pair) [][]string {
	adj := adjacency(nodes, edges)

	visited := make(map[string]bool)
	var components [][]string
	for _, n := range nodes {
		if visited[n] {
			continue
		}
		var component []string
		d.dfs(n, adj, visited, &component)
		if len(component) >= 2 {
			components = append(components, component)
		}
	}
	return normalize(components)
}

func (d *SimpleDetector) dfs(u string, adj map[string][]string, visited map[string]bool, component *[]string) {
	visited[u] = true
	*component = append(*component, u)
	for _, v := range adj[u] {
		if !visited[v] {
			d.dfs(v, adj, visited, component)
		}
	}
}

// Holdings returns, per owner, the groups of that owner's parcels connected
// through adjacency edges between parcels of the same owner.
func Holdings(parcels []model.Parcel, edges []model.AdjacencyEdge) []model.Holding {
	byOwner := make(map[string][]string)
	ownerOf := make(map[string]string, len(parcels))
	for _, p := range parcels {
		byOwner[p.Owner] = append(byOwner[p.Owner], p.ID)
		ownerOf[p.ID] = p.Owner
	}

	sameOwner := make(map[string][]model.Pair)
	for _, e := range edges {
		if o := ownerOf[e.A]; o == ownerOf[e.B] {
			sameOwner[o] = append(sameOwner[o], e)
		}
	}

	owners := make([]string, 0, len(sameOwner))
	for o := range sameOwner {
		owners = append(owners, o)
	}
	sort.Strings(owners)

	detector := NewSimpleDetector()
	var holdings []model.Holding
	for _, o := range owners {
		for _, c := range detector.Detect(byOwner[o], sameOwner[o]) {
			holdings = append(holdings, model.Holding{Owner: o, Parcels: c})
		}
	}
	return holdings
}

func adjacency(nodes []string, edges []model.Pair) map[string][]string {
	known := model.NewIDSet(nodes...)
	adj := make(map[string][]string)
	for _, e := range edges {
		if !known.Has(e.A) || !known.Has(e.B) {
			continue
		}
		adj[e.A] = append(adj[e.A], e.B)
		adj[e.B] = append(adj[e.B], e.A)
	}
	return adj
}

// normalize sorts members and then groups by their first member.
func normalize(groups [][]string) [][]string {
	for _, g := range groups {
		sort.Strings(g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}
