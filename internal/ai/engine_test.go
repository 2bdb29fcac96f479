package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/knowledge-aggregator/internal/config"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func testSummarizerConfig() config.SummarizerConfig {
	return config.DefaultConfig().Summarizer
}

func TestOfflineSummarize(t *testing.T) {
	o := NewOffline(testSummarizerConfig(), testLogger)

	assert.Equal(t, "One. Two! Three?", o.Summarize("One. Two! Three? Four."))
	assert.Equal(t, "no punctuation here", o.Summarize("no   punctuation\nhere"))
	assert.Equal(t, "Version 2.0 shipped.", o.Summarize("Version 2.0 shipped."))
	assert.Equal(t, unavailableSummary, o.Summarize("  \n "))
}

func TestOfflineSummarizeCapsLength(t *testing.T) {
	cfg := testSummarizerConfig()
	cfg.MaxSummaryLength = 10
	o := NewOffline(cfg, testLogger)

	got := o.Summarize("One. Two three four five six.")
	assert.Equal(t, "One. Tw...", got)
	assert.LessOrEqual(t, len([]rune(got)), 10)
}

func TestOfflineIsDeterministic(t *testing.T) {
	o := NewOffline(testSummarizerConfig(), testLogger)
	a := types.Article{Title: "T", URL: "https://example.com", Text: "First sentence. Second sentence. Third. Fourth."}

	first := o.SummarizeArticle(context.Background(), a)
	second := o.SummarizeArticle(context.Background(), a)
	assert.Equal(t, first, second)
	assert.Equal(t, types.SummaryFallback, first.SummarizationMethod)
	assert.Equal(t, a, first.Article)
}

func TestOfflineInsights(t *testing.T) {
	o := NewOffline(testSummarizerConfig(), testLogger)
	ctx := context.Background()

	assert.Equal(t, NoContentInsights, o.SynthesizeInsights(ctx, "x", nil))

	var articles []types.SummarizedArticle
	for i := 1; i <= 7; i++ {
		articles = append(articles, types.SummarizedArticle{Article: types.Article{Title: fmt.Sprintf("title-%d", i)}})
	}
	got := o.SynthesizeInsights(ctx, "AI in healthcare", articles)
	assert.True(t, strings.HasPrefix(got, `Analyzed 7 articles on "AI in healthcare".`))
	for i := 1; i <= 5; i++ {
		assert.Contains(t, got, fmt.Sprintf("- title-%d", i))
	}
	assert.NotContains(t, got, "title-6")
	assert.Contains(t, got, "and 2 more")

	one := o.SynthesizeInsights(ctx, "solo", articles[:1])
	assert.True(t, strings.HasPrefix(one, `Analyzed 1 article on "solo".`))
}

func TestSummarizeBatchSkipsBlankAndKeepsOrder(t *testing.T) {
	o := NewOffline(testSummarizerConfig(), testLogger)
	in := []types.Article{
		{Title: "a", Text: "Alpha."},
		{Title: "blank", Text: " \n\t"},
		{Title: "b", Text: "Beta."},
	}
	out := o.SummarizeBatch(context.Background(), in)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Title)
	assert.Equal(t, "b", out[1].Title)
}

func newTestHosted(gen Generator, cfg config.SummarizerConfig) *Hosted {
	return NewHosted(gen, cfg, NewOffline(cfg, testLogger), testLogger)
}

func TestHostedDirect(t *testing.T) {
	gen := &fakeGenerator{reply: "  A model summary.  "}
	h := newTestHosted(gen, testSummarizerConfig())
	a := types.Article{Title: "Short", URL: "https://example.com/s", Text: "Some short text."}

	got := h.SummarizeArticle(context.Background(), a)
	assert.Equal(t, "A model summary.", got.Summary)
	assert.Equal(t, types.SummaryDirect, got.SummarizationMethod)
	require.Equal(t, 1, gen.calls())
	assert.Contains(t, gen.prompts[0], "Article Title: Short")
	assert.Contains(t, gen.prompts[0], "URL: https://example.com/s")
	assert.Contains(t, gen.prompts[0], "Some short text.")
}

func TestHostedChunked(t *testing.T) {
	cfg := testSummarizerConfig()
	cfg.ChunkSize = 50
	cfg.ChunkOverlap = 10
	gen := &fakeGenerator{reply: "partial"}
	h := newTestHosted(gen, cfg)

	text := strings.Repeat("lorem ipsum dolor sit amet ", 20)
	chunks := NewSplitter(50, 10).Split(text)
	require.Greater(t, len(chunks), 1)

	got := h.SummarizeArticle(context.Background(), types.Article{Title: "Long", Text: text})
	assert.Equal(t, types.SummaryChunked, got.SummarizationMethod)
	assert.Equal(t, "partial", got.Summary)
	assert.Equal(t, len(chunks)+1, gen.calls())
	assert.Contains(t, gen.prompts[len(gen.prompts)-1], "partial\n\npartial")
}

func TestHostedHealthCheckWithPlainGenerator(t *testing.T) {
	cfg := testSummarizerConfig()
	gen := &fakeGenerator{reply: "OK"}
	h := NewHosted(gen, cfg, NewOffline(cfg, testLogger), testLogger)

	require.NoError(t, h.HealthCheck(context.Background()))
	assert.Equal(t, []string{healthPrompt}, gen.prompts)

	gen.err = errors.New("quota exceeded")
	assert.ErrorContains(t, h.HealthCheck(context.Background()), "quota exceeded")
}

func TestHostedFallsBackOnError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rate limited")}
	cfg := testSummarizerConfig()
	h := newTestHosted(gen, cfg)
	a := types.Article{Title: "T", Text: "First. Second. Third. Fourth."}

	got := h.SummarizeArticle(context.Background(), a)
	assert.Equal(t, types.SummaryFallback, got.SummarizationMethod)
	assert.Equal(t, "First. Second. Third.", got.Summary)

	insights := h.SynthesizeInsights(context.Background(), "topic", []types.SummarizedArticle{got})
	assert.True(t, strings.HasPrefix(insights, `Analyzed 1 article on "topic".`))
}

func TestHostedFallsBackOnEmptyReply(t *testing.T) {
	gen := &fakeGenerator{reply: "   "}
	h := newTestHosted(gen, testSummarizerConfig())

	got := h.SummarizeArticle(context.Background(), types.Article{Title: "T", Text: "Only sentence."})
	assert.Equal(t, types.SummaryFallback, got.SummarizationMethod)
	assert.Equal(t, "Only sentence.", got.Summary)
}

func TestHostedInsights(t *testing.T) {
	gen := &fakeGenerator{reply: "- insight"}
	h := newTestHosted(gen, testSummarizerConfig())
	ctx := context.Background()

	assert.Equal(t, NoContentInsights, h.SynthesizeInsights(ctx, "x", nil))
	assert.Equal(t, 0, gen.calls())

	got := h.SynthesizeInsights(ctx, "quantum", []types.SummarizedArticle{
		{Article: types.Article{Title: "Q1", URL: "https://q/1"}, Summary: "s1"},
		{Article: types.Article{Title: "Q2", URL: "https://q/2"}, Summary: "s2"},
	})
	assert.Equal(t, "- insight", got)
	require.Equal(t, 1, gen.calls())
	assert.Contains(t, gen.prompts[0], `about "quantum"`)
	assert.Contains(t, gen.prompts[0], "Article: Q1\nSource: https://q/1\nSummary: s1\n\nArticle: Q2")
}

func TestNewEngineSelectsVariant(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AI.APIKey = ""
	cfg.AI.Endpoint = ""
	e, err := NewEngine(cfg, testLogger)
	require.NoError(t, err)
	assert.Equal(t, "offline", e.Name())

	cfg.AI.APIKey = "key"
	cfg.AI.Endpoint = "https://example.openai.azure.com"
	e, err = NewEngine(cfg, testLogger)
	require.NoError(t, err)
	assert.Equal(t, "hosted", e.Name())

	cfg.AI.Mode = "offline"
	e, err = NewEngine(cfg, testLogger)
	require.NoError(t, err)
	assert.Equal(t, "offline", e.Name())
}
