package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/knowledge-aggregator/internal/ai"
	"github.com/IshaanNene/knowledge-aggregator/internal/config"
	"github.com/IshaanNene/knowledge-aggregator/internal/observability"
	"github.com/IshaanNene/knowledge-aggregator/internal/report"
	"github.com/IshaanNene/knowledge-aggregator/internal/storage"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]types.SearchResult
	calls   int
	limits  []int
}

func (s *fakeSearcher) SearchCombined(_ context.Context, query string, limit int) []types.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.limits = append(s.limits, limit)
	if query == "boom" {
		panic("provider exploded")
	}
	return s.results[query]
}

type fakeExtractor struct {
	failing   map[string]bool
	requested []string
}

func (e *fakeExtractor) ExtractMany(_ context.Context, urls []string) []types.Article {
	e.requested = append(e.requested, urls...)
	var out []types.Article
	for i, u := range urls {
		if e.failing[u] {
			continue
		}
		out = append(out, types.Article{
			Title:       fmt.Sprintf("Article %d", i+1),
			URL:         u,
			Text:        fmt.Sprintf("Finding number %d is notable. It was confirmed by a second study. Further work is planned. More text follows.", i+1),
			Authors:     types.Unknown,
			PublishDate: types.Unknown,
			Method:      types.MethodPrimary,
		})
	}
	return out
}

type recordingObserver struct {
	events []string
}

func (o *recordingObserver) StageStarted(_ string, stage Stage) {
	o.events = append(o.events, "start:"+string(stage))
}

func (o *recordingObserver) StageFinished(_ string, stage Stage, count int) {
	o.events = append(o.events, fmt.Sprintf("done:%s:%d", stage, count))
}

func webResults(n int) []types.SearchResult {
	out := make([]types.SearchResult, n)
	for i := range out {
		out[i] = types.SearchResult{
			Title:    fmt.Sprintf("Result %d", i+1),
			URL:      fmt.Sprintf("https://example.com/%d", i+1),
			Vertical: types.VerticalWeb,
		}
	}
	return out
}

type fixture struct {
	agg      *Aggregator
	cfg      *config.Config
	searcher *fakeSearcher
	history  *storage.JSONLStore
	metrics  *observability.Metrics
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.AI.Mode = "offline"
	cfg.Output.Dir = filepath.Join(t.TempDir(), "output")
	if mutate != nil {
		mutate(cfg)
	}

	history, err := storage.NewJSONLStore(filepath.Join(t.TempDir(), "history.jsonl"), testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })

	searcher := &fakeSearcher{results: map[string][]types.SearchResult{}}
	metrics := observability.NewMetrics(testLogger)
	agg := New(Deps{
		Config:    cfg,
		Search:    searcher,
		Extractor: &fakeExtractor{failing: map[string]bool{}},
		Engine:    ai.NewOffline(cfg.Summarizer, testLogger),
		Writer:    report.NewWriter(cfg.Output.Dir, testLogger),
		History:   history,
		Metrics:   metrics,
		Now:       func() time.Time { return fixedNow },
		Logger:    testLogger,
	})
	return &fixture{agg: agg, cfg: cfg, searcher: searcher, history: history, metrics: metrics}
}

func TestProcessTopicNoResults(t *testing.T) {
	fx := newFixture(t, nil)

	res, err := fx.agg.ProcessTopic(context.Background(), "obscure topic", Options{})
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, res.Status)
	assert.Equal(t, 0, res.TotalArticles)
	assert.Equal(t, 0, res.SearchResultsCount)
	require.NotNil(t, res.Report)
	assert.Equal(t, ai.NoContentInsights, res.Report.FinalInsights)
	assert.Empty(t, res.Report.Articles)
	assert.FileExists(t, res.ReportPath)
	assert.FileExists(t, res.JSONPath)
	assert.Equal(t, []int{fx.cfg.Search.MaxResults}, fx.searcher.limits)
}

func TestProcessTopicHealthcareScenario(t *testing.T) {
	fx := newFixture(t, nil)
	fx.searcher.results["AI in healthcare"] = webResults(10)
	fx.agg.extractor = &fakeExtractor{failing: map[string]bool{
		"https://example.com/2": true,
		"https://example.com/5": true,
		"https://example.com/9": true,
	}}

	obs := &recordingObserver{}
	res, err := fx.agg.ProcessTopic(context.Background(), "AI in healthcare", Options{MaxResults: 10, Observer: obs})
	require.NoError(t, err)

	assert.Equal(t, types.StatusCompleted, res.Status)
	assert.Equal(t, 10, res.SearchResultsCount)
	assert.Equal(t, 7, res.ScrapedArticlesCount)
	assert.LessOrEqual(t, res.TotalArticles, 7)
	assert.Equal(t, len(res.Report.Articles), res.TotalArticles)
	for _, a := range res.Report.Articles {
		assert.NotEmpty(t, a.Summary)
		assert.Equal(t, types.SummaryFallback, a.SummarizationMethod)
	}
	assert.Contains(t, res.QuickSummary, "Articles Processed: 7")
	assert.Equal(t, filepath.Join(fx.cfg.Output.Dir, "AI-in-healthcare_20250601_093000.md"), res.ReportPath)

	raw, err := os.ReadFile(res.JSONPath)
	require.NoError(t, err)
	var decoded types.TopicReport
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, *res.Report, decoded)

	assert.Equal(t, []string{
		"start:search", "done:search:10",
		"start:extract", "done:extract:7",
		"start:summarize", "done:summarize:7",
		"start:report", "done:report:2",
	}, obs.events)

	recs, err := fx.history.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, res.ID, recs[0].ID)
	assert.Equal(t, int64(1), fx.metrics.Snapshot()["runs_total"])
}

func TestProcessTopicMissingCredentials(t *testing.T) {
	fx := newFixture(t, func(cfg *config.Config) {
		cfg.AI.Mode = "hosted"
		cfg.AI.APIKey = ""
		cfg.AI.Endpoint = ""
	})

	res, err := fx.agg.ProcessTopic(context.Background(), "anything", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingCredentials)
	assert.Contains(t, err.Error(), "AZURE_OPENAI_API_KEY")
	assert.Equal(t, 0, fx.searcher.calls)
	require.NotNil(t, res)
	assert.True(t, res.Failed())
}

func TestProcessTopicEmptyTopic(t *testing.T) {
	fx := newFixture(t, nil)
	_, err := fx.agg.ProcessTopic(context.Background(), "   ", Options{})
	assert.ErrorIs(t, err, types.ErrEmptyTopic)
	assert.Equal(t, 0, fx.searcher.calls)
}

func TestProcessTopicPersistError(t *testing.T) {
	fx := newFixture(t, nil)
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	fx.agg.writer = report.NewWriter(blocker, testLogger)

	res, err := fx.agg.ProcessTopic(context.Background(), "topic", Options{})
	require.Error(t, err)
	var se *types.StorageError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, types.StatusFailed, res.Status)
}

func TestProcessTopicsContinuesAfterFailures(t *testing.T) {
	fx := newFixture(t, nil)
	fx.searcher.results["good"] = webResults(2)

	results := fx.agg.ProcessTopics(context.Background(), []string{"good", "  ", "boom"}, Options{})
	require.Len(t, results, 3)

	assert.Equal(t, types.StatusCompleted, results[0].Status)
	assert.Equal(t, 2, results[0].TotalArticles)

	assert.Equal(t, types.StatusFailed, results[1].Status)
	assert.Contains(t, results[1].Error, types.ErrEmptyTopic.Error())

	assert.Equal(t, types.StatusFailed, results[2].Status)
	assert.Contains(t, results[2].Error, "panic")
	assert.Equal(t, "boom", results[2].Topic)

	recs, err := fx.history.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestStatus(t *testing.T) {
	fx := newFixture(t, nil)
	st := fx.agg.Status()
	assert.True(t, st.ConfigValid)
	assert.Equal(t, "offline", st.Components.Engine)
	assert.Equal(t, "jsonl", st.Components.History)
	assert.False(t, st.AI.APIKeyConfigured)
	assert.Equal(t, "2023-12-01-preview", st.AI.APIVersion)

	fx.cfg.AI.Mode = "hosted"
	fx.cfg.AI.APIKey = ""
	st = fx.agg.Status()
	assert.False(t, st.ConfigValid)
	assert.True(t, strings.Contains(st.ConfigError, "credentials"))
}

type checkedEngine struct {
	*ai.Offline
	err error
}

func (e checkedEngine) HealthCheck(context.Context) error { return e.err }

func TestCheckModel(t *testing.T) {
	fx := newFixture(t, nil)
	assert.Equal(t, ModelNotChecked, fx.agg.CheckModel(context.Background()))
	assert.Zero(t, fx.searcher.calls, "health check must not search")

	fx.agg.engine = checkedEngine{Offline: ai.NewOffline(fx.cfg.Summarizer, testLogger)}
	assert.Equal(t, ModelReachable, fx.agg.CheckModel(context.Background()))

	fx.agg.engine = checkedEngine{
		Offline: ai.NewOffline(fx.cfg.Summarizer, testLogger),
		err:     errors.New("401 unauthorized"),
	}
	got := fx.agg.CheckModel(context.Background())
	assert.True(t, strings.HasPrefix(got, "unreachable: "))
	assert.Contains(t, got, "401 unauthorized")
}

func TestProcessTopicSkipsDuplicateURLsBeforeExtraction(t *testing.T) {
	fx := newFixture(t, nil)
	fx.searcher.results["overlap"] = []types.SearchResult{
		{Title: "web a", URL: "https://example.com/a", Vertical: types.VerticalWeb},
		{Title: "web b", URL: "https://example.com/b", Vertical: types.VerticalWeb},
		{Title: "news a", URL: "https://example.com/a/", Vertical: types.VerticalNews},
		{Title: "news c", URL: "https://example.com/c", Vertical: types.VerticalNews},
	}
	ex := &fakeExtractor{failing: map[string]bool{}}
	fx.agg.extractor = ex

	res, err := fx.agg.ProcessTopic(context.Background(), "overlap", Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}, ex.requested)
	assert.Equal(t, 4, res.SearchResultsCount)
	assert.Equal(t, 3, res.TotalArticles)
}
