package model

import "time"

// GeometryFailure describes a record whose geometry could not be resolved.
type GeometryFailure struct {
	ParcelID string `json:"parcel_id"`
	Reason   string `json:"reason"`
}

// DetectionStats summarises one adjacency detection pass.
type DetectionStats struct {
	Parcels          int               `json:"parcels"`
	Parsed           int               `json:"parsed"`
	Failures         []GeometryFailure `json:"failures,omitempty"`
	CandidatesTested int               `json:"candidates_tested"`
	Edges            int               `json:"edges"`
}

// Holding is a set of parcels of one owner connected through adjacency.
type Holding struct {
	Owner   string   `json:"owner"`
	Parcels []string `json:"parcels"`
}

// Analysis holds read-only graph statistics computed from the input batch.
type Analysis struct {
	Holdings         []Holding  `json:"holdings,omitempty"`
	OwnerCommunities [][]string `json:"owner_communities,omitempty"`
}

// SyncReport is the outcome of one run. It is returned even when the run
// fails so callers know what was confirmed written.
type SyncReport struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	Records  int `json:"records"`
	Rejected int `json:"rejected"`
	Parcels  int `json:"parcels"`

	Detection DetectionStats `json:"detection"`

	NovelParcels       int `json:"novel_parcels"`
	NovelOwners        int `json:"novel_owners"`
	NovelEdges         int `json:"novel_edges"`
	NeighborCandidates int `json:"neighbor_candidates"`

	ParcelsCreated   int `json:"parcels_created"`
	OwnersCreated    int `json:"owners_created"`
	AdjacencyCreated int `json:"adjacency_created"`
	NeighborsCreated int `json:"neighbors_created"`
	WriteOperations  int `json:"write_operations"`

	Analysis *Analysis `json:"analysis,omitempty"`
}

// StoreStats are node and relationship counts in the graph store.
type StoreStats struct {
	Parcels   int64 `json:"parcels"`
	Owners    int64 `json:"owners"`
	Adjacency int64 `json:"adjacency"`
	Neighbors int64 `json:"neighbors"`
}
