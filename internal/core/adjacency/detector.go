// Package adjacency finds parcel pairs whose geometries are in contact.
package adjacency

import (
	"fmt"

	"github.com/agenthands/parcelgraph/internal/core/geometry"
	"github.com/agenthands/parcelgraph/internal/core/model"
	"github.com/agenthands/parcelgraph/internal/core/spatial"
	"github.com/agenthands/parcelgraph/internal/logging"
)

type Config struct {
	Contiguity   geometry.Contiguity
	NodeCapacity int
}

// Result is the candidate edge set of one batch, canonical and sorted, not
// yet compared against the store.
type Result struct {
	Edges []model.AdjacencyEdge
	Stats model.DetectionStats
}

type Detector struct {
	cfg    Config
	logger logging.Logger
}

func NewDetector(cfg Config, logger logging.Logger) *Detector {
	if cfg.Contiguity == "" {
		cfg.Contiguity = geometry.Rook
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Detector{cfg: cfg, logger: logger.Named("adjacency")}
}

// Detect parses every geometry once, indexes the parsed ones and tests each
// parcel against its bounding-box candidates. Parcels whose geometry does
// not resolve are reported in Stats.Failures and take part in no edge.
func (d *Detector) Detect(parcels []model.Parcel) (*Result, error) {
	res := &Result{Stats: model.DetectionStats{Parcels: len(parcels)}}

	resolver := geometry.NewResolver()
	entries := make([]spatial.Entry, 0, len(parcels))
	for _, p := range parcels {
		r := resolver.Resolve(p.Geometry)
		if !r.OK() {
			res.Stats.Failures = append(res.Stats.Failures, model.GeometryFailure{
				ParcelID: p.ID,
				Reason:   r.Err.Error(),
			})
			d.logger.Warn("geometry not resolved",
				logging.String("parcel_id", p.ID),
				logging.Err(r.Err))
			continue
		}
		entries = append(entries, spatial.Entry{ParcelID: p.ID, Geom: r.Geom})
	}
	res.Stats.Parsed = len(entries)

	idx, err := spatial.Build(resolver.Context(), d.cfg.NodeCapacity, entries)
	if err != nil {
		return res, fmt.Errorf("failed to build spatial index: %w", err)
	}
	defer idx.Destroy()

	seen := make(model.PairSet)
	for _, e := range entries {
		for _, c := range idx.Query(e.Geom) {
			if c.ParcelID == e.ParcelID {
				continue
			}
			pair, ok := model.NewPair(e.ParcelID, c.ParcelID)
			if !ok || seen.Has(pair) {
				continue
			}
			res.Stats.CandidatesTested++

			adjacent, err := geometry.Adjacent(e.Geom, c.Geom, d.cfg.Contiguity)
			if err != nil {
				d.logger.Warn("adjacency test failed",
					logging.String("pair", pair.Key()),
					logging.Err(err))
				continue
			}
			// Both orientations canonicalise to the same pair, so it is
			// tested and emitted at most once.
			seen.Add(pair)
			if adjacent {
				res.Edges = append(res.Edges, pair)
			}
		}
	}

	model.SortPairs(res.Edges)
	res.Stats.Edges = len(res.Edges)
	d.logger.Debug("adjacency detection finished",
		logging.Int("parcels", res.Stats.Parcels),
		logging.Int("parsed", res.Stats.Parsed),
		logging.Int("candidates_tested", res.Stats.CandidatesTested),
		logging.Int("edges", res.Stats.Edges))
	return res, nil
}
