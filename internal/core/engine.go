package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/parcelgraph/internal/config"
	"github.com/agenthands/parcelgraph/internal/core/adjacency"
	"github.com/agenthands/parcelgraph/internal/core/community"
	"github.com/agenthands/parcelgraph/internal/core/dedupe"
	"github.com/agenthands/parcelgraph/internal/core/geometry"
	"github.com/agenthands/parcelgraph/internal/core/graphstore"
	"github.com/agenthands/parcelgraph/internal/core/model"
	"github.com/agenthands/parcelgraph/internal/driver"
	"github.com/agenthands/parcelgraph/internal/logging"
	"github.com/agenthands/parcelgraph/internal/metrics"
)

type Options struct {
	Contiguity   geometry.Contiguity
	NodeCapacity int
	BatchSize    int
	// Analyze adds contiguous holdings and owner communities to reports.
	Analyze bool
	// BuildSchema applies the id constraints before the first write of a
	// sync that has something to write.
	BuildSchema bool
}

func OptionsFromConfig(c config.SyncConfig) (Options, error) {
	mode, err := geometry.ParseContiguity(c.Contiguity)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Contiguity:   mode,
		NodeCapacity: c.IndexNodeCapacity,
		BatchSize:    c.BatchSize,
		Analyze:      c.Analyze,
		BuildSchema:  c.BuildSchema,
	}, nil
}

// Engine runs detection and incremental synchronization. A store handle is
// opened per run and closed when the run ends.
type Engine struct {
	open     driver.Opener
	opts     Options
	detector *adjacency.Detector
	logger   logging.Logger
	metrics  *metrics.Metrics
}

func NewEngine(open driver.Opener, opts Options, logger logging.Logger, m *metrics.Metrics) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if m == nil {
		m = metrics.New(false)
	}
	return &Engine{
		open: open,
		opts: opts,
		detector: adjacency.NewDetector(adjacency.Config{
			Contiguity:   opts.Contiguity,
			NodeCapacity: opts.NodeCapacity,
		}, logger),
		logger:  logger,
		metrics: m,
	}
}

func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// DetectReport is the result of a dry run: no store access.
type DetectReport struct {
	Records   int                   `json:"records"`
	Rejected  int                   `json:"rejected"`
	Parcels   int                   `json:"parcels"`
	Detection model.DetectionStats  `json:"detection"`
	Edges     []model.AdjacencyEdge `json:"edges"`
	Neighbors []model.NeighborEdge  `json:"neighbors"`
	Analysis  *model.Analysis       `json:"analysis,omitempty"`
}

// CheckReport lists the records whose geometry does not resolve.
type CheckReport struct {
	Records  int                     `json:"records"`
	Valid    int                     `json:"valid"`
	Failures []model.GeometryFailure `json:"failures"`
}

func (e *Engine) Check(records []model.Parcel) CheckReport {
	r := geometry.NewResolver()
	report := CheckReport{Records: len(records), Failures: []model.GeometryFailure{}}
	for _, p := range records {
		res := r.Resolve(p.Geometry)
		if res.OK() {
			report.Valid++
			continue
		}
		report.Failures = append(report.Failures, model.GeometryFailure{ParcelID: p.ID, Reason: res.Err.Error()})
	}
	return report
}

// Detect computes candidate edges and their owner projection without
// touching the store.
func (e *Engine) Detect(records []model.Parcel) (*DetectReport, error) {
	log := e.logger.With(logging.String("run_id", uuid.New().String()))
	report := &DetectReport{Records: len(records)}

	parcels, rejected, err := e.prepare(log, records)
	report.Rejected = rejected
	if err != nil {
		return report, err
	}
	report.Parcels = len(parcels)

	det, err := e.detector.Detect(parcels)
	if err != nil {
		return report, err
	}
	report.Detection = det.Stats
	report.Edges = det.Edges
	report.Neighbors = dedupe.ProjectOwners(det.Edges, ownersOf(parcels))
	if e.opts.Analyze {
		report.Analysis = analyze(parcels, det.Edges)
	}
	return report, nil
}

// Sync writes the novel part of the batch. The report is returned on every
// path; on failure err is a *SyncError wrapping one of the sentinels.
func (e *Engine) Sync(ctx context.Context, records []model.Parcel) (report *model.SyncReport, err error) {
	report = &model.SyncReport{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Records:   len(records),
	}
	log := e.logger.With(logging.String("run_id", report.RunID))

	defer func() {
		report.Duration = time.Since(report.StartedAt)
		status := metrics.StatusSuccess
		if err != nil {
			status = metrics.StatusFailure
			log.Error("sync failed", logging.Err(err))
		} else {
			log.Info("sync finished",
				logging.Int("parcels_created", report.ParcelsCreated),
				logging.Int("owners_created", report.OwnersCreated),
				logging.Int("adjacency_created", report.AdjacencyCreated),
				logging.Int("neighbors_created", report.NeighborsCreated),
				logging.Duration("duration", report.Duration))
		}
		e.metrics.ObserveRun(status, report.Duration)
	}()

	parcels, rejected, err := e.prepare(log, records)
	report.Rejected = rejected
	if err != nil {
		return report, &SyncError{Stage: StageValidate, Report: report, Err: err}
	}
	report.Parcels = len(parcels)

	det, err := e.detector.Detect(parcels)
	if err != nil {
		return report, &SyncError{Stage: StageDetect, Report: report, Err: err}
	}
	report.Detection = det.Stats
	e.metrics.GeometryFailures.Add(float64(len(det.Stats.Failures)))
	e.metrics.CandidateEdges.Set(float64(len(det.Edges)))
	if e.opts.Analyze {
		report.Analysis = analyze(parcels, det.Edges)
	}

	opened := false
	err = driver.WithStore(ctx, e.open, func(d driver.GraphDriver) error {
		opened = true
		return e.write(ctx, log, d, parcels, det.Edges, report)
	})

	var syncErr *SyncError
	switch {
	case err == nil:
	case errors.As(err, &syncErr):
		return report, syncErr
	case !opened:
		return report, &SyncError{Stage: StageConnect, Report: report, Err: fmt.Errorf("%w: %w", ErrStoreRead, err)}
	default:
		// Everything was committed; only the handle failed to close.
		log.Warn("failed to close store handle", logging.Err(err))
		err = nil
	}
	return report, nil
}

func (e *Engine) write(ctx context.Context, log logging.Logger, d driver.GraphDriver, parcels []model.Parcel, candidates []model.AdjacencyEdge, report *model.SyncReport) error {
	baseline, err := readBaseline(ctx, graphstore.NewReader(d))
	if err != nil {
		return &SyncError{Stage: StageRead, Report: report, Err: fmt.Errorf("%w: %w", ErrStoreRead, err)}
	}

	dd := dedupe.NewDeduplicator(baseline)
	novelParcels := dd.NovelParcels(parcels)
	novelEdges := dd.NovelEdges(candidates)
	neighbors := dedupe.ProjectOwners(novelEdges, ownersOf(parcels))

	report.NovelParcels = len(novelParcels)
	report.NovelOwners = len(dd.NovelOwners(novelParcels))
	report.NovelEdges = len(novelEdges)
	report.NeighborCandidates = len(neighbors)

	log.Info("diff computed",
		logging.Int("existing_parcels", len(baseline.Parcels)),
		logging.Int("existing_adjacency", len(baseline.Adjacency)),
		logging.Int("novel_parcels", report.NovelParcels),
		logging.Int("novel_owners", report.NovelOwners),
		logging.Int("novel_edges", report.NovelEdges),
		logging.Int("neighbor_candidates", report.NeighborCandidates))

	if len(novelParcels) == 0 && len(novelEdges) == 0 {
		log.Info("store already up to date")
		return nil
	}

	if e.opts.BuildSchema {
		if err := d.BuildIndices(ctx); err != nil {
			log.Warn("failed to build schema", logging.Err(err))
		}
	}

	w := graphstore.NewWriter(d, e.opts.BatchSize, log)

	counts, err := w.CreateParcels(ctx, novelParcels)
	e.recordParcels(report, counts)
	if err != nil {
		return &SyncError{Stage: StageNodes, Report: report, Err: fmt.Errorf("%w: %w", ErrStoreWrite, err)}
	}

	counts, err = w.CreateAdjacency(ctx, novelEdges)
	report.AdjacencyCreated += counts.Relationships
	report.WriteOperations += counts.Operations
	e.metrics.RelsCreated.WithLabelValues(metrics.KindAdjacency).Add(float64(counts.Relationships))
	if err != nil {
		return &SyncError{Stage: StageEdges, Report: report, Err: fmt.Errorf("%w: %w", ErrStoreWrite, err)}
	}

	counts, err = w.CreateOwnerNeighbors(ctx, neighbors)
	report.NeighborsCreated += counts.Relationships
	report.WriteOperations += counts.Operations
	e.metrics.RelsCreated.WithLabelValues(metrics.KindNeighbor).Add(float64(counts.Relationships))
	if err != nil {
		return &SyncError{Stage: StageEdges, Report: report, Err: fmt.Errorf("%w: %w", ErrStoreWrite, err)}
	}
	return nil
}

// recordParcels splits the node count of the parcel pass: every confirmed
// row created one parcel, any further node is a merged-in owner.
func (e *Engine) recordParcels(report *model.SyncReport, c graphstore.WriteCounts) {
	owners := c.Nodes - c.Items
	if owners < 0 {
		owners = 0
	}
	report.ParcelsCreated += c.Items
	report.OwnersCreated += owners
	report.WriteOperations += c.Operations
	e.metrics.NodesCreated.WithLabelValues(metrics.KindParcel).Add(float64(c.Items))
	e.metrics.NodesCreated.WithLabelValues(metrics.KindOwner).Add(float64(owners))
}

// Stats reads node and relationship counts from the store.
func (e *Engine) Stats(ctx context.Context) (model.StoreStats, error) {
	var stats model.StoreStats
	err := driver.WithStore(ctx, e.open, func(d driver.GraphDriver) error {
		var err error
		stats, err = graphstore.NewReader(d).Stats(ctx)
		return err
	})
	return stats, err
}

// Health opens and closes a store handle; opening verifies connectivity.
func (e *Engine) Health(ctx context.Context) error {
	return driver.WithStore(ctx, e.open, func(driver.GraphDriver) error { return nil })
}

func (e *Engine) BuildSchema(ctx context.Context) error {
	return driver.WithStore(ctx, e.open, func(d driver.GraphDriver) error {
		return d.BuildIndices(ctx)
	})
}

// prepare drops records with a blank id or owner and resolves duplicate ids
// by keeping the last record at the position of the first.
func (e *Engine) prepare(log logging.Logger, records []model.Parcel) ([]model.Parcel, int, error) {
	index := make(map[string]int, len(records))
	parcels := make([]model.Parcel, 0, len(records))
	rejected := 0

	for i, r := range records {
		if strings.TrimSpace(r.ID) == "" {
			rejected++
			log.Warn("record rejected: empty id", logging.Int("position", i))
			continue
		}
		if strings.TrimSpace(r.Owner) == "" {
			rejected++
			log.Warn("record rejected: empty owner", logging.String("parcel_id", r.ID))
			continue
		}
		if pos, dup := index[r.ID]; dup {
			log.Warn("duplicate parcel id, last record wins", logging.String("parcel_id", r.ID))
			parcels[pos] = r
			continue
		}
		index[r.ID] = len(parcels)
		parcels = append(parcels, r)
	}

	e.metrics.RejectedRecords.Add(float64(rejected))
	if len(parcels) == 0 {
		return nil, rejected, ErrNoValidRecords
	}
	return parcels, rejected, nil
}

func readBaseline(ctx context.Context, r *graphstore.Reader) (dedupe.Baseline, error) {
	var (
		b   dedupe.Baseline
		err error
	)
	if b.Parcels, err = r.ExistingParcelIDs(ctx); err != nil {
		return b, err
	}
	if b.Owners, err = r.ExistingOwnerIDs(ctx); err != nil {
		return b, err
	}
	if b.Adjacency, err = r.ExistingAdjacencyPairs(ctx); err != nil {
		return b, err
	}
	return b, nil
}

func ownersOf(parcels []model.Parcel) map[string]string {
	m := make(map[string]string, len(parcels))
	for _, p := range parcels {
		m[p.ID] = p.Owner
	}
	return m
}

func analyze(parcels []model.Parcel, edges []model.AdjacencyEdge) *model.Analysis {
	return &model.Analysis{
		Holdings:         community.Holdings(parcels, edges),
		OwnerCommunities: community.OwnerCommunities(dedupe.ProjectOwners(edges, ownersOf(parcels))),
	}
}
