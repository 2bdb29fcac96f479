package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/IshaanNene/knowledge-aggregator/internal/config"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// unavailableSummary is used when an article has no sentences at all.
const unavailableSummary = "Summary unavailable."

// Offline is the deterministic engine. It never touches the network.
type Offline struct {
	sentences int
	maxLength int
	maxTitles int
	logger    *slog.Logger
}

// NewOffline creates the offline engine.
func NewOffline(cfg config.SummarizerConfig, logger *slog.Logger) *Offline {
	return &Offline{
		sentences: max(cfg.FallbackSentences, 1),
		maxLength: cfg.MaxSummaryLength,
		maxTitles: max(cfg.MaxInsightTitles, 1),
		logger:    logger.With("component", "offline_summarizer"),
	}
}

// Name returns "offline".
func (o *Offline) Name() string { return "offline" }

// SummarizeArticle returns the leading sentences of the article.
func (o *Offline) SummarizeArticle(_ context.Context, a types.Article) types.SummarizedArticle {
	return types.SummarizedArticle{
		Article:             a,
		Summary:             o.Summarize(a.Text),
		SummarizationMethod: types.SummaryFallback,
	}
}

// SummarizeBatch summarizes every article with text, preserving order.
func (o *Offline) SummarizeBatch(ctx context.Context, articles []types.Article) []types.SummarizedArticle {
	return summarizeEach(ctx, articles, o.logger, o.SummarizeArticle)
}

// SynthesizeInsights lists up to the first few titles and the total count.
func (o *Offline) SynthesizeInsights(_ context.Context, topic string, articles []types.SummarizedArticle) string {
	if len(articles) == 0 {
		return NoContentInsights
	}

	var b strings.Builder
	noun := "articles"
	if len(articles) == 1 {
		noun = "article"
	}
	fmt.Fprintf(&b, "Analyzed %d %s on %q.\n\nKey articles:\n", len(articles), noun, topic)
	for i, a := range articles {
		if i == o.maxTitles {
			fmt.Fprintf(&b, "- ...and %d more\n", len(articles)-o.maxTitles)
			break
		}
		fmt.Fprintf(&b, "- %s\n", a.Title)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Summarize returns the first few sentences of text, capped at the
// configured summary length. The result is never empty.
func (o *Offline) Summarize(text string) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return unavailableSummary
	}
	if len(sentences) > o.sentences {
		sentences = sentences[:o.sentences]
	}
	return capRunes(strings.Join(sentences, " "), o.maxLength)
}

// splitSentences breaks text at '.', '!' or '?' followed by whitespace.
// Trailing text without terminal punctuation counts as a sentence.
func splitSentences(text string) []string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	var (
		out   []string
		start int
	)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func capRunes(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
