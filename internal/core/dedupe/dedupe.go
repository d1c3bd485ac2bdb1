// Package dedupe diffs the candidate graph of a batch against the store
// baseline and projects parcel adjacency onto owners.
package dedupe

import (
	"sort"

	"github.com/agenthands/parcelgraph/internal/core/model"
)

// Baseline is the store state read at the start of a run. It is not
// updated while the run writes.
type Baseline struct {
	Parcels   model.IDSet
	Owners    model.IDSet
	Adjacency model.PairSet
}

type Deduplicator struct {
	baseline Baseline
}

func NewDeduplicator(b Baseline) *Deduplicator {
	if b.Parcels == nil {
		b.Parcels = model.NewIDSet()
	}
	if b.Owners == nil {
		b.Owners = model.NewIDSet()
	}
	if b.Adjacency == nil {
		b.Adjacency = model.NewPairSet()
	}
	return &Deduplicator{baseline: b}
}

// NovelParcels keeps the parcels whose id is not in the store, in input
// order. Stored parcels are never rewritten.
func (d *Deduplicator) NovelParcels(parcels []model.Parcel) []model.Parcel {
	var out []model.Parcel
	for _, p := range parcels {
		if !d.baseline.Parcels.Has(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// NovelOwners lists, sorted, the owners of novel parcels missing from the
// store. It is used for reporting; the parcel write merges owners itself.
func (d *Deduplicator) NovelOwners(novel []model.Parcel) []string {
	seen := model.NewIDSet()
	var out []string
	for _, p := range novel {
		if d.baseline.Owners.Has(p.Owner) || seen.Has(p.Owner) {
			continue
		}
		seen.Add(p.Owner)
		out = append(out, p.Owner)
	}
	sort.Strings(out)
	return out
}

// NovelEdges drops candidates already stored, compared as canonical pairs.
func (d *Deduplicator) NovelEdges(candidates []model.AdjacencyEdge) []model.AdjacencyEdge {
	var out []model.AdjacencyEdge
	for _, e := range candidates {
		if !d.baseline.Adjacency.Has(e) {
			out = append(out, e)
		}
	}
	return out
}

// ProjectOwners maps each edge to the pair of its parcels' owners, one
// projection per edge. Repeats are kept; the writer's merge collapses them.
// Edges between parcels of the same owner project to nothing.
func ProjectOwners(edges []model.AdjacencyEdge, ownerOf map[string]string) []model.NeighborEdge {
	var out []model.NeighborEdge
	for _, e := range edges {
		oa, okA := ownerOf[e.A]
		ob, okB := ownerOf[e.B]
		if !okA || !okB {
			continue
		}
		if p, ok := model.NewPair(oa, ob); ok {
			out = append(out, p)
		}
	}
	return out
}
