package observability

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics(testLogger)

	m.RecordRun("completed", 4)
	m.RecordRun("failed", 0)
	m.RecordSearch("web", 5)
	m.RecordSearch("news", 3)
	m.RecordSearchError("news")
	m.RecordExtraction("primary")
	m.RecordExtraction("fallback")
	m.RecordExtractionFailure()
	m.RecordSummary("direct")
	m.RecordSummary("fallback")
	m.ObserveStage("search", 1500*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("completed")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.searchResults.WithLabelValues("web")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractionFailures))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap["runs_total"])
	assert.Equal(t, int64(1), snap["runs_failed"])
	assert.Equal(t, int64(4), snap["articles_total"])
	assert.Equal(t, int64(1), snap["fallback_summaries"])
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics(testLogger)
	m.RecordRun("completed", 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `aggregator_runs_total{status="completed"} 1`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRun("completed", 1)
	m.RecordSearch("web", 1)
	m.RecordSummary("direct")
	m.ObserveStage("report", time.Second)
	assert.Empty(t, m.Snapshot())
}
