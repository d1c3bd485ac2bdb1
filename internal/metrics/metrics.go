// Package metrics holds the Prometheus collectors of sync runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parcelgraph"

// Run outcomes.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Node and relationship kinds.
const (
	KindParcel    = "parcel"
	KindOwner     = "owner"
	KindAdjacency = "adjacency"
	KindNeighbor  = "neighbor"
)

type Metrics struct {
	registry *prometheus.Registry

	Runs             *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	GeometryFailures prometheus.Counter
	RejectedRecords  prometheus.Counter
	NodesCreated     *prometheus.CounterVec
	RelsCreated      *prometheus.CounterVec
	CandidateEdges   prometheus.Gauge
}

// New registers every collector on a fresh registry. withRuntime adds the
// Go and process collectors, which tests usually leave out.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
		)
	}

	m := &Metrics{
		registry: reg,
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Sync runs by outcome.",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_run_duration_seconds",
			Help:      "Wall time of sync runs.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		GeometryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geometry_failures_total",
			Help:      "Parcels whose geometry could not be resolved.",
		}),
		RejectedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_records_total",
			Help:      "Input records rejected before detection.",
		}),
		NodesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_created_total",
			Help:      "Nodes created in the graph store.",
		}, []string{"kind"}),
		RelsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relationships_created_total",
			Help:      "Relationships created in the graph store.",
		}, []string{"kind"}),
		CandidateEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "candidate_edges",
			Help:      "Adjacency edges detected in the last run, before the store diff.",
		}),
	}

	reg.MustRegister(
		m.Runs,
		m.RunDuration,
		m.GeometryFailures,
		m.RejectedRecords,
		m.NodesCreated,
		m.RelsCreated,
		m.CandidateEdges,
	)
	return m
}

// ObserveRun records the outcome and duration of one run.
func (m *Metrics) ObserveRun(status string, d time.Duration) {
	m.Runs.WithLabelValues(status).Inc()
	m.RunDuration.Observe(d.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
