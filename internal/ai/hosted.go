package ai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/IshaanNene/knowledge-aggregator/internal/config"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// Hosted summarizes with a language model. Any failed call falls back to
// the offline engine for that article only.
type Hosted struct {
	llm       Generator
	splitter  *Splitter
	chunkSize int
	fallback  *Offline
	logger    *slog.Logger
}

// NewHosted creates the hosted engine.
func NewHosted(llm Generator, cfg config.SummarizerConfig, fallback *Offline, logger *slog.Logger) *Hosted {
	return &Hosted{
		llm:       llm,
		splitter:  NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		chunkSize: cfg.ChunkSize,
		fallback:  fallback,
		logger:    logger.With("component", "hosted_summarizer"),
	}
}

// Name returns "hosted".
func (h *Hosted) Name() string { return "hosted" }

// HealthCheck confirms the model answers a short prompt.
func (h *Hosted) HealthCheck(ctx context.Context) error {
	if hc, ok := h.llm.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	_, err := h.llm.Generate(ctx, healthPrompt)
	return err
}

// SummarizeArticle summarizes short text in one call and long text by
// map-reduce over chunks.
func (h *Hosted) SummarizeArticle(ctx context.Context, a types.Article) types.SummarizedArticle {
	var (
		summary string
		method  types.SummarizationMethod
		err     error
	)
	if runeLen(a.Text) <= h.chunkSize {
		method = types.SummaryDirect
		summary, err = h.llm.Generate(ctx, buildSummaryPrompt(a, a.Text))
		if err != nil {
			err = &types.SummarizeError{Title: a.Title, Stage: "direct", Err: err}
		}
	} else {
		method = types.SummaryChunked
		summary, err = h.mapReduce(ctx, a)
	}

	summary = strings.TrimSpace(summary)
	if err != nil || summary == "" {
		h.logger.Error("summarization failed, using fallback", "title", a.Title, "error", err)
		return h.fallback.SummarizeArticle(ctx, a)
	}

	return types.SummarizedArticle{
		Article:             a,
		Summary:             summary,
		SummarizationMethod: method,
	}
}

func (h *Hosted) mapReduce(ctx context.Context, a types.Article) (string, error) {
	chunks := h.splitter.Split(a.Text)
	h.logger.Debug("map-reduce summarization", "title", a.Title, "chunks", len(chunks))

	partials := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		s, err := h.llm.Generate(ctx, buildChunkPrompt(chunk))
		if err != nil {
			return "", &types.SummarizeError{Title: a.Title, Stage: "map", Err: err}
		}
		partials = append(partials, strings.TrimSpace(s))
	}

	combined, err := h.llm.Generate(ctx, buildChunkPrompt(strings.Join(partials, "\n\n")))
	if err != nil {
		return "", &types.SummarizeError{Title: a.Title, Stage: "reduce", Err: err}
	}
	return combined, nil
}

// SummarizeBatch summarizes every article with text, preserving order.
func (h *Hosted) SummarizeBatch(ctx context.Context, articles []types.Article) []types.SummarizedArticle {
	return summarizeEach(ctx, articles, h.logger, h.SummarizeArticle)
}

// SynthesizeInsights asks the model for cross-article insights.
func (h *Hosted) SynthesizeInsights(ctx context.Context, topic string, articles []types.SummarizedArticle) string {
	if len(articles) == 0 {
		return NoContentInsights
	}
	insights, err := h.llm.Generate(ctx, buildInsightsPrompt(topic, articles))
	insights = strings.TrimSpace(insights)
	if err != nil || insights == "" {
		h.logger.Error("insights generation failed, using fallback", "topic", topic, "error", err)
		return h.fallback.SynthesizeInsights(ctx, topic, articles)
	}
	return insights
}
