package pipeline

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/IshaanNene/knowledge-aggregator/internal/ai"
	"github.com/IshaanNene/knowledge-aggregator/internal/config"
	"github.com/IshaanNene/knowledge-aggregator/internal/extract"
	"github.com/IshaanNene/knowledge-aggregator/internal/fetcher"
	"github.com/IshaanNene/knowledge-aggregator/internal/observability"
	"github.com/IshaanNene/knowledge-aggregator/internal/pacing"
	"github.com/IshaanNene/knowledge-aggregator/internal/report"
	"github.com/IshaanNene/knowledge-aggregator/internal/search"
	"github.com/IshaanNene/knowledge-aggregator/internal/storage"
)

// NewFromConfig wires the production components: one shared fetcher, the
// DuckDuckGo web and news-feed providers, readability with a selector
// fallback, the engine chosen by ai.mode, and the configured history
// backend. A history backend that cannot be opened is logged and skipped.
func NewFromConfig(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*Aggregator, error) {
	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	web := search.NewDuckDuckGo(f, cfg.Search.WebURL, cfg.Search.Region, cfg.Search.SafeSearch, cfg.Search.Timeout)
	news := search.NewNewsFeed(f, cfg.Search.NewsURL, cfg.Search.Timeout)
	searcher := search.NewEngine(web, news, pacing.Interval(cfg.Search.Pacing), cfg.Search.MaxResults, metrics, logger)

	bounds := extract.Bounds{Min: cfg.Scraper.MinContentLength, Max: cfg.Scraper.MaxContentLength}
	extractor := extract.NewExtractor(
		extract.NewReadability(f, bounds),
		extract.NewSelectors(f, bounds),
		pacing.Interval(cfg.Scraper.Delay),
		metrics,
		logger,
	)

	engine, err := ai.NewEngine(cfg, logger)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create summarization engine: %w", err)
	}

	history, err := storage.Open(cfg, logger)
	if err != nil {
		logger.Warn("run history disabled", "type", cfg.History.Type, "error", err)
		history = storage.Nop{}
	}

	return New(Deps{
		Config:    cfg,
		Search:    searcher,
		Extractor: extractor,
		Engine:    engine,
		Writer:    report.NewWriter(cfg.Output.Dir, logger),
		History:   history,
		Metrics:   metrics,
		Logger:    logger,
		Closers:   []io.Closer{f, history},
	}), nil
}
