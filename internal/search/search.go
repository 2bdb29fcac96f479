// Package search queries the web and news verticals for a topic.
package search

import (
	"context"
	"log/slog"

	"github.com/IshaanNene/knowledge-aggregator/internal/observability"
	"github.com/IshaanNene/knowledge-aggregator/internal/pacing"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// Provider is a single search index.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error)
}

// Engine fans a topic out to the web and news providers. Every provider
// call first passes the pacing gate, and provider errors degrade to an
// empty result set.
type Engine struct {
	web          Provider
	news         Provider
	gate         pacing.Gate
	defaultLimit int
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewEngine creates a search Engine. Either provider may be nil.
func NewEngine(web, news Provider, gate pacing.Gate, defaultLimit int, metrics *observability.Metrics, logger *slog.Logger) *Engine {
	if gate == nil {
		gate = pacing.None
	}
	return &Engine{
		web:          web,
		news:         news,
		gate:         gate,
		defaultLimit: defaultLimit,
		metrics:      metrics,
		logger:       logger.With("component", "search"),
	}
}

// Search queries the web vertical.
func (e *Engine) Search(ctx context.Context, query string, limit int) []types.SearchResult {
	return e.query(ctx, e.web, types.VerticalWeb, query, e.limit(limit))
}

// SearchNews queries the news vertical.
func (e *Engine) SearchNews(ctx context.Context, query string, limit int) []types.SearchResult {
	return e.query(ctx, e.news, types.VerticalNews, query, e.limit(limit))
}

// SearchCombined splits limit between the verticals, news taking the
// remainder on odd limits, and returns web results followed by news results.
func (e *Engine) SearchCombined(ctx context.Context, query string, limit int) []types.SearchResult {
	limit = e.limit(limit)
	webLimit := limit / 2
	newsLimit := limit - webLimit

	web := e.query(ctx, e.web, types.VerticalWeb, query, webLimit)
	news := e.query(ctx, e.news, types.VerticalNews, query, newsLimit)

	results := make([]types.SearchResult, 0, len(web)+len(news))
	results = append(results, web...)
	results = append(results, news...)

	e.logger.Info("combined search complete",
		"query", query,
		"web", len(web),
		"news", len(news),
	)
	return results
}

func (e *Engine) limit(n int) int {
	if n > 0 {
		return n
	}
	if e.defaultLimit > 0 {
		return e.defaultLimit
	}
	return 10
}

func (e *Engine) query(ctx context.Context, p Provider, vertical types.Vertical, query string, limit int) []types.SearchResult {
	if p == nil || limit <= 0 {
		return []types.SearchResult{}
	}
	if err := e.gate.Wait(ctx); err != nil {
		e.logger.Warn("search aborted while pacing", "vertical", vertical, "error", err)
		return []types.SearchResult{}
	}

	results, err := p.Search(ctx, query, limit)
	if err != nil {
		e.metrics.RecordSearchError(string(vertical))
		e.logger.Error("search failed",
			"provider", p.Name(),
			"vertical", vertical,
			"query", query,
			"error", err,
		)
		return []types.SearchResult{}
	}

	if len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Vertical = vertical
	}

	e.metrics.RecordSearch(string(vertical), len(results))
	e.logger.Debug("search complete",
		"provider", p.Name(),
		"vertical", vertical,
		"results", len(results),
	)
	return results
}
