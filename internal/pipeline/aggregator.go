// Package pipeline runs a topic through search, extraction, summarization
// and reporting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/IshaanNene/knowledge-aggregator/internal/ai"
	"github.com/IshaanNene/knowledge-aggregator/internal/config"
	"github.com/IshaanNene/knowledge-aggregator/internal/observability"
	"github.com/IshaanNene/knowledge-aggregator/internal/report"
	"github.com/IshaanNene/knowledge-aggregator/internal/storage"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// Searcher finds candidate pages for a topic.
type Searcher interface {
	SearchCombined(ctx context.Context, query string, limit int) []types.SearchResult
}

// ArticleExtractor turns URLs into articles, skipping failures.
type ArticleExtractor interface {
	ExtractMany(ctx context.Context, urls []string) []types.Article
}

// Deps are the components an Aggregator is built from. History, Metrics,
// Cleanup and Now are optional.
type Deps struct {
	Config    *config.Config
	Search    Searcher
	Extractor ArticleExtractor
	Engine    ai.Engine
	Writer    *report.Writer
	History   storage.RunStore
	Metrics   *observability.Metrics
	Cleanup   func(*slog.Logger) *Chain
	Now       func() time.Time
	Logger    *slog.Logger

	// Closers are released by Close, in order.
	Closers []io.Closer
}

// Options tune a single run.
type Options struct {
	// MaxResults overrides search.max_results when positive.
	MaxResults int

	// OutputFilename overrides the Markdown report name.
	OutputFilename string

	Observer Observer
}

// Aggregator is the pipeline orchestrator.
type Aggregator struct {
	cfg       *config.Config
	search    Searcher
	extractor ArticleExtractor
	engine    ai.Engine
	writer    *report.Writer
	history   storage.RunStore
	metrics   *observability.Metrics
	cleanup   func(*slog.Logger) *Chain
	now       func() time.Time
	closers   []io.Closer
	logger    *slog.Logger
}

// New creates an Aggregator from deps.
func New(deps Deps) *Aggregator {
	a := &Aggregator{
		cfg:       deps.Config,
		search:    deps.Search,
		extractor: deps.Extractor,
		engine:    deps.Engine,
		writer:    deps.Writer,
		history:   deps.History,
		metrics:   deps.Metrics,
		cleanup:   deps.Cleanup,
		now:       deps.Now,
		closers:   deps.Closers,
		logger:    deps.Logger.With("component", "aggregator"),
	}
	if a.history == nil {
		a.history = storage.Nop{}
	}
	if a.cleanup == nil {
		a.cleanup = DefaultChain
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// ValidateConfig checks that a hosted run has the credentials it needs.
// Offline mode needs none.
func (a *Aggregator) ValidateConfig() error {
	return a.cfg.CheckCredentials()
}

// ProcessTopic runs the full pipeline for one topic. A topic with no search
// results still completes, with placeholder insights. On error the returned
// result is the failure record; only configuration and persistence errors
// (and recovered panics) are returned.
func (a *Aggregator) ProcessTopic(ctx context.Context, topic string, opts Options) (res *types.RunResult, err error) {
	started := a.now()
	id := uuid.NewString()
	topic = strings.TrimSpace(topic)

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("run panicked", "topic", topic, "panic", r)
			err = fmt.Errorf("panic while processing %q: %v", topic, r)
		}
		if err != nil {
			res = &types.RunResult{
				ID:         id,
				Topic:      topic,
				Status:     types.StatusFailed,
				Error:      err.Error(),
				StartedAt:  started,
				FinishedAt: a.now(),
			}
		}
		a.record(ctx, res)
	}()

	if topic == "" {
		return nil, types.ErrEmptyTopic
	}
	if err := a.ValidateConfig(); err != nil {
		return nil, err
	}
	return a.run(ctx, id, topic, opts, started)
}

func (a *Aggregator) run(ctx context.Context, id, topic string, opts Options, started time.Time) (*types.RunResult, error) {
	obs := opts.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	limit := opts.MaxResults
	if limit <= 0 {
		limit = a.cfg.Search.MaxResults
	}
	log := a.logger.With("run_id", id, "topic", topic)
	log.Info("processing topic", "max_results", limit, "engine", a.engine.Name())

	var results []types.SearchResult
	a.stage(obs, topic, StageSearch, func() int {
		results = a.search.SearchCombined(ctx, topic, limit)
		return len(results)
	})
	log.Info("search complete", "results", len(results))

	var articles []types.Article
	chain := a.cleanup(a.logger)
	a.stage(obs, topic, StageExtract, func() int {
		articles = chain.Apply(a.extractor.ExtractMany(ctx, resultURLs(results)))
		return len(articles)
	})
	log.Info("extraction complete", "articles", len(articles), "attempted", len(results), "cleanup_steps", chain.Len())

	var (
		summarized []types.SummarizedArticle
		insights   string
	)
	a.stage(obs, topic, StageSummarize, func() int {
		if len(articles) == 0 {
			log.Warn("no articles extracted, skipping summarization")
			insights = ai.NoContentInsights
			return 0
		}
		summarized = a.engine.SummarizeBatch(ctx, articles)
		for _, s := range summarized {
			a.metrics.RecordSummary(string(s.SummarizationMethod))
		}
		insights = a.engine.SynthesizeInsights(ctx, topic, summarized)
		return len(summarized)
	})

	rep := types.NewTopicReport(topic, summarized, insights, a.now())

	var (
		paths report.Paths
		err   error
	)
	a.stage(obs, topic, StageReport, func() int {
		paths, err = a.writer.Persist(rep, opts.OutputFilename)
		if err != nil {
			return 0
		}
		return 2
	})
	if err != nil {
		return nil, fmt.Errorf("persist report for %q: %w", topic, err)
	}

	res := &types.RunResult{
		ID:                   id,
		Topic:                topic,
		Status:               types.StatusCompleted,
		ReportPath:           paths.Markdown,
		JSONPath:             paths.JSON,
		TotalArticles:        rep.TotalArticles,
		SearchResultsCount:   len(results),
		ScrapedArticlesCount: len(articles),
		QuickSummary:         report.QuickSummary(rep, a.writer.Dir()),
		Report:               rep,
		StartedAt:            started,
		FinishedAt:           a.now(),
	}
	log.Info("topic processed",
		"articles", res.TotalArticles,
		"report", res.ReportPath,
		"duration", res.FinishedAt.Sub(started),
	)
	return res, nil
}

// ProcessTopics runs topics one after another. A failing topic becomes a
// failure record and the batch continues.
func (a *Aggregator) ProcessTopics(ctx context.Context, topics []string, opts Options) []*types.RunResult {
	results := make([]*types.RunResult, 0, len(topics))
	for i, topic := range topics {
		a.logger.Info("batch progress", "index", i+1, "total", len(topics), "topic", topic)
		res, err := a.ProcessTopic(ctx, topic, opts)
		if err != nil {
			a.logger.Error("topic failed", "topic", topic, "error", err)
		}
		results = append(results, res)
	}
	return results
}

// Close releases the fetcher and history store.
func (a *Aggregator) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// History returns the run history store.
func (a *Aggregator) History() storage.RunStore { return a.history }

// OutputDir returns the report directory.
func (a *Aggregator) OutputDir() string { return a.writer.Dir() }

func (a *Aggregator) stage(obs Observer, topic string, stage Stage, fn func() int) {
	obs.StageStarted(topic, stage)
	start := time.Now()
	count := fn()
	a.metrics.ObserveStage(string(stage), time.Since(start))
	obs.StageFinished(topic, stage, count)
}

func (a *Aggregator) record(ctx context.Context, res *types.RunResult) {
	if res == nil {
		return
	}
	a.metrics.RecordRun(res.Status, res.TotalArticles)
	if err := a.history.Save(ctx, storage.RecordFromResult(res)); err != nil {
		a.logger.Warn("failed to record run history", "backend", a.history.Name(), "error", err)
	}
}

// resultURLs lists the URLs to extract, skipping blanks and pages already
// listed by the other vertical.
func resultURLs(results []types.SearchResult) []string {
	urls := make([]string, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		u := strings.TrimSpace(r.URL)
		if u == "" || seen[urlKey(u)] {
			continue
		}
		seen[urlKey(u)] = true
		urls = append(urls, u)
	}
	return urls
}
