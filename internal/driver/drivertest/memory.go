// Package drivertest provides an in-memory GraphDriver that understands the
// queries in package driver, for tests that need a store with state.
package drivertest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/parcelgraph/internal/driver"
)

// Counters reports write counts. Only the methods the writer reads are
// implemented.
type Counters struct {
	neo4j.Counters
	Nodes int
	Rels  int
}

func (c Counters) NodesCreated() int         { return c.Nodes }
func (c Counters) RelationshipsCreated() int { return c.Rels }

type Summary struct {
	neo4j.ResultSummary
	C Counters
}

func (s Summary) Counters() neo4j.Counters { return s.C }

// BuildIndicesStatement is recorded in Queries for each BuildIndices call.
const BuildIndicesStatement = "drivertest: build indices"

// relSep joins the endpoints of a directed relationship key.
const relSep = "\x00"

// MemoryStore is a small property graph keyed by id. It is safe for
// concurrent use so it can sit behind an HTTP server in tests.
type MemoryStore struct {
	mu sync.Mutex

	Parcels   map[string]map[string]interface{}
	Owners    map[string]struct{}
	Owns      map[string]string // parcel id -> owner id
	// Directed relationships keyed by source and target id.
	Adjacent  map[string]struct{}
	Neighbors map[string]struct{}

	// FailOn makes a query return the mapped error.
	FailOn map[string]error
	// Queries records every executed statement in order.
	Queries []string
	Closed  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Parcels:   make(map[string]map[string]interface{}),
		Owners:    make(map[string]struct{}),
		Owns:      make(map[string]string),
		Adjacent:  make(map[string]struct{}),
		Neighbors: make(map[string]struct{}),
		FailOn:    make(map[string]error),
	}
}

// Opener hands out the store itself for every run.
func (m *MemoryStore) Opener() driver.Opener {
	return func(ctx context.Context) (driver.GraphDriver, error) {
		return m, nil
	}
}

// Writes counts executed write statements.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, q := range m.Queries {
		switch q {
		case driver.CreateParcelsQuery, driver.CreateAdjacencyQuery, driver.CreateOwnerNeighborsQuery, BuildIndicesStatement:
			n++
		}
	}
	return n
}

// HasAdjacent reports a directed ADJACENT_TO relationship from a to b.
func (m *MemoryStore) HasAdjacent(a, b string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Adjacent[a+relSep+b]
	return ok
}

// HasNeighbor reports a directed NEIGHBOR_OF relationship from a to b.
func (m *MemoryStore) HasNeighbor(a, b string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Neighbors[a+relSep+b]
	return ok
}

func (m *MemoryStore) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed++
	return nil
}

// BuildIndices records the call; schema statements are writes.
func (m *MemoryStore) BuildIndices(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, BuildIndicesStatement)
	return m.FailOn[BuildIndicesStatement]
}

func (m *MemoryStore) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Queries = append(m.Queries, query)
	if err := m.FailOn[query]; err != nil {
		return neo4j.EagerResult{}, err
	}

	switch query {
	case driver.ExistingParcelIDsQuery:
		return idRecords(m.parcelIDs()), nil
	case driver.ExistingOwnerIDsQuery:
		return idRecords(sortedKeys(m.Owners)), nil
	case driver.ExistingAdjacencyPairsQuery:
		res := neo4j.EagerResult{Keys: []string{"a", "b"}}
		for _, k := range sortedKeys(m.Adjacent) {
			a, b, _ := strings.Cut(k, relSep)
			res.Records = append(res.Records, &neo4j.Record{Keys: res.Keys, Values: []any{a, b}})
		}
		return res, nil
	case driver.CreateParcelsQuery:
		return m.createParcels(params)
	case driver.CreateAdjacencyQuery:
		return m.mergePairs(params, m.Adjacent, true)
	case driver.CreateOwnerNeighborsQuery:
		return m.mergePairs(params, m.Neighbors, false)
	case driver.CountParcelsQuery:
		return countRecord(len(m.Parcels)), nil
	case driver.CountOwnersQuery:
		return countRecord(len(m.Owners)), nil
	case driver.CountAdjacencyQuery:
		return countRecord(len(m.Adjacent)), nil
	case driver.CountNeighborsQuery:
		return countRecord(len(m.Neighbors)), nil
	}
	return neo4j.EagerResult{}, fmt.Errorf("drivertest: unsupported query %q", query)
}

func (m *MemoryStore) parcelIDs() []string {
	ids := make([]string, 0, len(m.Parcels))
	for id := range m.Parcels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *MemoryStore) createParcels(params map[string]interface{}) (neo4j.EagerResult, error) {
	rows, _ := params["parcels"].([]interface{})
	var c Counters
	for _, r := range rows {
		row, ok := r.(map[string]interface{})
		if !ok {
			return neo4j.EagerResult{}, fmt.Errorf("drivertest: bad parcel row %T", r)
		}
		id, _ := row["id"].(string)
		if _, exists := m.Parcels[id]; exists {
			return neo4j.EagerResult{}, fmt.Errorf("drivertest: parcel %s already exists", id)
		}
		m.Parcels[id] = row
		c.Nodes++

		owner, _ := row["owner"].(string)
		if _, ok := m.Owners[owner]; !ok {
			m.Owners[owner] = struct{}{}
			c.Nodes++
		}
		m.Owns[id] = owner
		c.Rels++
	}
	return neo4j.EagerResult{Summary: Summary{C: c}}, nil
}

func (m *MemoryStore) mergePairs(params map[string]interface{}, rels map[string]struct{}, parcels bool) (neo4j.EagerResult, error) {
	pairs, _ := params["pairs"].([]interface{})
	var c Counters
	for _, p := range pairs {
		pair, ok := p.([]string)
		if !ok || len(pair) != 2 {
			return neo4j.EagerResult{}, fmt.Errorf("drivertest: bad pair %v", p)
		}
		a, b := pair[0], pair[1]
		if parcels {
			// MATCH semantics: missing endpoints produce no rows.
			if _, ok := m.Parcels[a]; !ok {
				continue
			}
			if _, ok := m.Parcels[b]; !ok {
				continue
			}
		} else {
			for _, id := range pair {
				if _, ok := m.Owners[id]; !ok {
					m.Owners[id] = struct{}{}
					c.Nodes++
				}
			}
		}
		for _, k := range []string{a + relSep + b, b + relSep + a} {
			if _, ok := rels[k]; !ok {
				rels[k] = struct{}{}
				c.Rels++
			}
		}
	}
	return neo4j.EagerResult{Summary: Summary{C: c}}, nil
}

func idRecords(ids []string) neo4j.EagerResult {
	res := neo4j.EagerResult{Keys: []string{"id"}}
	for _, id := range ids {
		res.Records = append(res.Records, &neo4j.Record{Keys: res.Keys, Values: []any{id}})
	}
	return res
}

func countRecord(n int) neo4j.EagerResult {
	keys := []string{"count"}
	return neo4j.EagerResult{
		Keys:    keys,
		Records: []*neo4j.Record{{Keys: keys, Values: []any{int64(n)}}},
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
