// Package graphstore reads the diff baseline from the graph store and writes
// novel parcels and relationships to it.
package graphstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/parcelgraph/internal/core/model"
	"github.com/agenthands/parcelgraph/internal/driver"
)

type Reader struct {
	driver driver.GraphDriver
}

func NewReader(d driver.GraphDriver) *Reader {
	return &Reader{driver: d}
}

func (r *Reader) ExistingParcelIDs(ctx context.Context) (model.IDSet, error) {
	return r.ids(ctx, driver.ExistingParcelIDsQuery, "parcel")
}

func (r *Reader) ExistingOwnerIDs(ctx context.Context) (model.IDSet, error) {
	return r.ids(ctx, driver.ExistingOwnerIDsQuery, "owner")
}

// ExistingAdjacencyPairs returns every stored adjacency as a canonical
// pair, whichever directions happen to be present.
func (r *Reader) ExistingAdjacencyPairs(ctx context.Context) (model.PairSet, error) {
	res, err := r.driver.ExecuteQuery(ctx, driver.ExistingAdjacencyPairsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read adjacency pairs: %w", err)
	}

	pairs := make(model.PairSet, len(res.Records))
	for _, rec := range res.Records {
		a, okA := stringValue(rec, "a")
		b, okB := stringValue(rec, "b")
		if !okA || !okB {
			continue
		}
		if p, ok := model.NewPair(a, b); ok {
			pairs.Add(p)
		}
	}
	return pairs, nil
}

// Stats counts nodes and directed relationships.
func (r *Reader) Stats(ctx context.Context) (model.StoreStats, error) {
	var s model.StoreStats
	targets := []struct {
		query string
		dst   *int64
	}{
		{driver.CountParcelsQuery, &s.Parcels},
		{driver.CountOwnersQuery, &s.Owners},
		{driver.CountAdjacencyQuery, &s.Adjacency},
		{driver.CountNeighborsQuery, &s.Neighbors},
	}
	for _, t := range targets {
		res, err := r.driver.ExecuteQuery(ctx, t.query, nil)
		if err != nil {
			return s, fmt.Errorf("failed to read store stats: %w", err)
		}
		if len(res.Records) == 0 {
			continue
		}
		if v, ok := res.Records[0].Get("count"); ok {
			if n, ok := v.(int64); ok {
				*t.dst = n
			}
		}
	}
	return s, nil
}

func (r *Reader) ids(ctx context.Context, query, kind string) (model.IDSet, error) {
	res, err := r.driver.ExecuteQuery(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s ids: %w", kind, err)
	}

	set := make(model.IDSet, len(res.Records))
	for _, rec := range res.Records {
		if id, ok := stringValue(rec, "id"); ok {
			set.Add(id)
		}
	}
	return set, nil
}

// stringValue tolerates ids stored as numbers by older loaders.
func stringValue(rec *neo4j.Record, key string) (string, bool) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	default:
		return fmt.Sprint(t), true
	}
}
