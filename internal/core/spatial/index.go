// Package spatial is a bulk-loaded bounding-box index over parcel geometries.
package spatial

import (
	"fmt"
	"sort"

	"github.com/twpayne/go-geos"
)

// DefaultNodeCapacity is the STR-tree fan-out used when none is configured.
const DefaultNodeCapacity = 10

// Entry ties a parsed geometry back to the parcel it came from.
type Entry struct {
	ParcelID string
	Geom     *geos.Geom
}

// Index answers envelope-overlap queries. Results are candidates only; the
// exact predicate is left to the caller.
type Index struct {
	tree    *geos.STRtree
	entries []Entry
}

// Build bulk-loads entries. Entries without a geometry are skipped. An empty
// entry list yields an index whose queries return nothing.
func Build(ctx *geos.Context, nodeCapacity int, entries []Entry) (*Index, error) {
	if nodeCapacity < 2 {
		nodeCapacity = DefaultNodeCapacity
	}

	idx := &Index{entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		if e.Geom != nil {
			idx.entries = append(idx.entries, e)
		}
	}
	if len(idx.entries) == 0 {
		return idx, nil
	}

	idx.tree = ctx.NewSTRtree(nodeCapacity)
	for i, e := range idx.entries {
		if err := idx.tree.Insert(e.Geom, i); err != nil {
			idx.tree.Destroy()
			return nil, fmt.Errorf("failed to index parcel %s: %w", e.ParcelID, err)
		}
	}
	return idx, nil
}

// Query returns the entries whose bounding box overlaps g's envelope, in
// insertion order.
func (idx *Index) Query(g *geos.Geom) []Entry {
	if idx == nil || idx.tree == nil || g == nil {
		return nil
	}

	var positions []int
	idx.tree.Query(g, func(v any) {
		if i, ok := v.(int); ok {
			positions = append(positions, i)
		}
	})
	sort.Ints(positions)

	out := make([]Entry, len(positions))
	for j, i := range positions {
		out[j] = idx.entries[i]
	}
	return out
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Destroy releases the underlying tree. The indexed geometries are owned by
// the caller and stay valid.
func (idx *Index) Destroy() {
	if idx != nil && idx.tree != nil {
		idx.tree.Destroy()
		idx.tree = nil
	}
}
