package graphstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/parcelgraph/internal/core/model"
	"github.com/agenthands/parcelgraph/internal/driver"
	"github.com/agenthands/parcelgraph/internal/logging"
)

const DefaultBatchSize = 500

// WriteCounts are the confirmed effects of committed chunks only.
type WriteCounts struct {
	Items         int
	Nodes         int
	Relationships int
	Operations    int
}

func (c *WriteCounts) add(o WriteCounts) {
	c.Items += o.Items
	c.Nodes += o.Nodes
	c.Relationships += o.Relationships
	c.Operations += o.Operations
}

// Writer sends chunks of at most batchSize items, one transaction each.
type Writer struct {
	driver    driver.GraphDriver
	batchSize int
	logger    logging.Logger
}

func NewWriter(d driver.GraphDriver, batchSize int, logger logging.Logger) *Writer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Writer{driver: d, batchSize: batchSize, logger: logger.Named("graphstore")}
}

// CreateParcels creates one node per parcel and merges its owner and the
// OWNS relationship. Parcels must not exist yet.
func (w *Writer) CreateParcels(ctx context.Context, parcels []model.Parcel) (WriteCounts, error) {
	rows := make([]interface{}, len(parcels))
	for i, p := range parcels {
		rows[i] = p.Properties()
	}
	return w.write(ctx, driver.CreateParcelsQuery, "parcels", rows)
}

// CreateAdjacency merges ADJACENT_TO in both directions for every pair.
func (w *Writer) CreateAdjacency(ctx context.Context, pairs []model.AdjacencyEdge) (WriteCounts, error) {
	return w.write(ctx, driver.CreateAdjacencyQuery, "pairs", model.PairParams(pairs))
}

// CreateOwnerNeighbors merges NEIGHBOR_OF in both directions. Repeated pairs
// collapse to one relationship per direction.
func (w *Writer) CreateOwnerNeighbors(ctx context.Context, pairs []model.NeighborEdge) (WriteCounts, error) {
	return w.write(ctx, driver.CreateOwnerNeighborsQuery, "pairs", model.PairParams(pairs))
}

func (w *Writer) write(ctx context.Context, query, param string, items []interface{}) (WriteCounts, error) {
	var total WriteCounts
	for start := 0; start < len(items); start += w.batchSize {
		end := start + w.batchSize
		if end > len(items) {
			end = len(items)
		}

		res, err := w.driver.ExecuteQuery(ctx, query, map[string]interface{}{param: items[start:end]})
		if err != nil {
			return total, fmt.Errorf("failed to write chunk %d-%d: %w", start, end, err)
		}

		chunk := countsOf(res)
		chunk.Items = end - start
		chunk.Operations = 1
		total.add(chunk)

		w.logger.Debug("chunk written",
			logging.String("param", param),
			logging.Int("items", chunk.Items),
			logging.Int("nodes_created", chunk.Nodes),
			logging.Int("relationships_created", chunk.Relationships))
	}
	return total, nil
}

func countsOf(res neo4j.EagerResult) WriteCounts {
	if res.Summary == nil {
		return WriteCounts{}
	}
	c := res.Summary.Counters()
	if c == nil {
		return WriteCounts{}
	}
	return WriteCounts{Nodes: c.NodesCreated(), Relationships: c.RelationshipsCreated()}
}
