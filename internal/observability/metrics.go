package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks pipeline activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	runs               *prometheus.CounterVec
	searchResults      *prometheus.CounterVec
	searchErrors       *prometheus.CounterVec
	extractions        *prometheus.CounterVec
	extractionFailures prometheus.Counter
	summaries          *prometheus.CounterVec
	stageDuration      *prometheus.HistogramVec

	// Totals kept alongside the collectors for the dashboard cards.
	runsTotal     atomic.Int64
	runsFailed    atomic.Int64
	articlesTotal atomic.Int64
	fallbacks     atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates collectors on a private registry.
func NewMetrics(logger *slog.Logger) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregator_runs_total",
			Help: "Pipeline runs by final status",
		}, []string{"status"}),
		searchResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregator_search_results_total",
			Help: "Search results returned per vertical",
		}, []string{"vertical"}),
		searchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregator_search_errors_total",
			Help: "Failed search provider calls per vertical",
		}, []string{"vertical"}),
		extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregator_extractions_total",
			Help: "Articles extracted per strategy",
		}, []string{"method"}),
		extractionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "aggregator_extraction_failures_total",
			Help: "URLs where every extraction strategy failed",
		}),
		summaries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregator_summaries_total",
			Help: "Article summaries per summarization method",
		}, []string{"method"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aggregator_stage_duration_seconds",
			Help:    "Duration of each pipeline stage",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),
		logger: logger.With("component", "metrics"),
	}
}

// RecordRun counts a finished run.
func (m *Metrics) RecordRun(status string, articles int) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
	m.runsTotal.Add(1)
	if status == "failed" {
		m.runsFailed.Add(1)
	}
	m.articlesTotal.Add(int64(articles))
}

// RecordSearch counts results from one vertical.
func (m *Metrics) RecordSearch(vertical string, results int) {
	if m == nil {
		return
	}
	m.searchResults.WithLabelValues(vertical).Add(float64(results))
}

// RecordSearchError counts a failed provider call.
func (m *Metrics) RecordSearchError(vertical string) {
	if m == nil {
		return
	}
	m.searchErrors.WithLabelValues(vertical).Inc()
}

// RecordExtraction counts an extracted article by strategy.
func (m *Metrics) RecordExtraction(method string) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(method).Inc()
}

// RecordExtractionFailure counts a URL that yielded no article.
func (m *Metrics) RecordExtractionFailure() {
	if m == nil {
		return
	}
	m.extractionFailures.Inc()
}

// RecordSummary counts a summary by method.
func (m *Metrics) RecordSummary(method string) {
	if m == nil {
		return
	}
	m.summaries.WithLabelValues(method).Inc()
	if method == "fallback" {
		m.fallbacks.Add(1)
	}
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// StartServer serves /metrics on addr until ctx is done.
func (m *Metrics) StartServer(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	m.logger.Info("metrics server starting", "addr", addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
}

// Snapshot returns the headline totals as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	return map[string]int64{
		"runs_total":         m.runsTotal.Load(),
		"runs_failed":        m.runsFailed.Load(),
		"articles_total":     m.articlesTotal.Load(),
		"fallback_summaries": m.fallbacks.Load(),
	}
}
