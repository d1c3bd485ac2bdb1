package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRun(t *testing.T) {
	m := New(false)
	m.ObserveRun(StatusSuccess, 2*time.Second)
	m.ObserveRun(StatusFailure, time.Second)
	m.ObserveRun(StatusSuccess, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Runs.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(StatusFailure)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RunDuration))
}

func TestCounters(t *testing.T) {
	m := New(false)
	m.NodesCreated.WithLabelValues(KindParcel).Add(3)
	m.RelsCreated.WithLabelValues(KindAdjacency).Add(4)
	m.GeometryFailures.Inc()
	m.CandidateEdges.Set(2)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.NodesCreated.WithLabelValues(KindParcel)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RelsCreated.WithLabelValues(KindAdjacency)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GeometryFailures))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CandidateEdges))
}

func TestHandler(t *testing.T) {
	m := New(true)
	m.RejectedRecords.Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "parcelgraph_rejected_records_total 1")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
