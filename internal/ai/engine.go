package ai

import (
	"context"
	"log/slog"

	"github.com/IshaanNene/knowledge-aggregator/internal/config"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// Engine summarizes articles and synthesizes cross-article insights.
// Implementations never fail: degraded output replaces errors.
type Engine interface {
	Name() string
	SummarizeArticle(ctx context.Context, article types.Article) types.SummarizedArticle
	SummarizeBatch(ctx context.Context, articles []types.Article) []types.SummarizedArticle
	SynthesizeInsights(ctx context.Context, topic string, articles []types.SummarizedArticle) string
}

// HealthChecker is implemented by engines and clients that talk to a
// remote model.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewEngine picks the engine variant once. The offline engine is used when
// ai.mode is offline or the hosted model has no credentials.
func NewEngine(cfg *config.Config, logger *slog.Logger) (Engine, error) {
	offline := NewOffline(cfg.Summarizer, logger)
	if cfg.Offline() {
		logger.Info("summarization running offline", "reason", "ai.mode=offline")
		return offline, nil
	}
	if !cfg.HasCredentials() {
		logger.Warn("summarization running offline", "reason", "missing credentials", "missing", cfg.MissingCredentials())
		return offline, nil
	}

	client, err := NewLLMClient(LLMConfigFrom(cfg), logger)
	if err != nil {
		return nil, err
	}
	return NewHosted(client, cfg.Summarizer, offline, logger), nil
}

// summarizeEach applies fn to every article with text, keeping order.
func summarizeEach(ctx context.Context, articles []types.Article, logger *slog.Logger, fn func(context.Context, types.Article) types.SummarizedArticle) []types.SummarizedArticle {
	out := make([]types.SummarizedArticle, 0, len(articles))
	for i, a := range articles {
		if isBlank(a.Text) {
			logger.Warn("skipping article without text", "title", a.Title, "url", a.URL)
			continue
		}
		logger.Info("summarizing article", "index", i+1, "total", len(articles), "title", a.Title)
		out = append(out, fn(ctx, a))
	}
	return out
}
