// Package extract turns article URLs into normalized text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IshaanNene/knowledge-aggregator/internal/observability"
	"github.com/IshaanNene/knowledge-aggregator/internal/pacing"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// Strategy is one way of extracting an article from a URL.
type Strategy interface {
	Method() types.ExtractionMethod
	Extract(ctx context.Context, url string) (*types.Article, error)
}

// Bounds is the accepted content length window, in characters.
type Bounds struct {
	Min int
	Max int
}

// Extractor tries the primary strategy, then the fallback.
type Extractor struct {
	primary  Strategy
	fallback Strategy
	gate     pacing.Gate
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewExtractor creates an Extractor. gate spaces consecutive URLs in
// ExtractMany; nil means no delay.
func NewExtractor(primary, fallback Strategy, gate pacing.Gate, metrics *observability.Metrics, logger *slog.Logger) *Extractor {
	if gate == nil {
		gate = pacing.None
	}
	return &Extractor{
		primary:  primary,
		fallback: fallback,
		gate:     gate,
		metrics:  metrics,
		logger:   logger.With("component", "extractor"),
	}
}

// Extract returns the article at url, or an error when both strategies fail.
func (e *Extractor) Extract(ctx context.Context, url string) (*types.Article, error) {
	var errs []error
	for _, s := range []Strategy{e.primary, e.fallback} {
		if s == nil {
			continue
		}
		art, err := s.Extract(ctx, url)
		if err == nil && art != nil && strings.TrimSpace(art.Text) != "" {
			art.Method = s.Method()
			e.metrics.RecordExtraction(string(art.Method))
			e.logger.Debug("extracted article",
				"url", url,
				"method", art.Method,
				"chars", len([]rune(art.Text)),
			)
			return art, nil
		}
		if err == nil {
			err = &types.ExtractError{URL: url, Method: s.Method(), Err: types.ErrContentTooShort}
		}
		e.logger.Debug("extraction strategy failed", "url", url, "method", s.Method(), "error", err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}

	e.metrics.RecordExtractionFailure()
	if len(errs) == 0 {
		return nil, fmt.Errorf("extract %s: no strategies configured", url)
	}
	return nil, errors.Join(errs...)
}

// ExtractMany extracts each URL in order, skipping failures and blank URLs,
// and waits on the gate between consecutive URLs.
func (e *Extractor) ExtractMany(ctx context.Context, urls []string) []types.Article {
	articles := make([]types.Article, 0, len(urls))
	first := true
	for i, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		if !first {
			if err := e.gate.Wait(ctx); err != nil {
				e.logger.Warn("extraction stopped", "remaining", len(urls)-i, "error", err)
				break
			}
		}
		first = false

		e.logger.Info("scraping", "index", i+1, "total", len(urls), "url", url)
		art, err := e.Extract(ctx, url)
		if err != nil {
			e.logger.Warn("skipping url", "url", url, "error", err)
			continue
		}
		articles = append(articles, *art)
	}

	e.logger.Info("extraction complete", "requested", len(urls), "extracted", len(articles))
	return articles
}
