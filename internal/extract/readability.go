package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/IshaanNene/knowledge-aggregator/internal/fetcher"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// Readability is the primary strategy: it isolates the main body with
// go-readability and reads byline and date from page metadata.
type Readability struct {
	fetcher fetcher.Fetcher
	bounds  Bounds
}

// NewReadability creates the primary extraction strategy.
func NewReadability(f fetcher.Fetcher, bounds Bounds) *Readability {
	return &Readability{fetcher: f, bounds: bounds}
}

// Method returns MethodPrimary.
func (r *Readability) Method() types.ExtractionMethod { return types.MethodPrimary }

// Extract downloads and parses rawURL.
func (r *Readability) Extract(ctx context.Context, rawURL string) (*types.Article, error) {
	resp, err := fetcher.Get(ctx, r.fetcher, rawURL, "article", 0)
	if err != nil {
		return nil, &types.ExtractError{URL: rawURL, Method: r.Method(), Err: err}
	}
	if len(resp.Body) == 0 {
		return nil, &types.ExtractError{URL: rawURL, Method: r.Method(), Err: types.ErrEmptyResponse}
	}

	pageURL, err := url.Parse(resp.FinalURL)
	if err != nil || resp.FinalURL == "" {
		pageURL = resp.Request.URL
	}

	parsed, err := readability.FromReader(bytes.NewReader(resp.Body), pageURL)
	if err != nil {
		return nil, &types.ExtractError{URL: rawURL, Method: r.Method(), Err: fmt.Errorf("readability: %w", err)}
	}

	text, ok := bound(normalizeLines(parsed.TextContent), r.bounds.Min, r.bounds.Max)
	if !ok {
		return nil, &types.ExtractError{URL: rawURL, Method: r.Method(), Err: types.ErrContentTooShort}
	}

	md := ReadMetadata(resp.Body)

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		title = md.Title
	}
	if title == "" {
		title = "No title"
	}

	authors := md.Authors
	if len(authors) == 0 && strings.TrimSpace(parsed.Byline) != "" {
		authors = []string{strings.TrimSpace(parsed.Byline)}
	}

	return &types.Article{
		Title:       title,
		URL:         rawURL,
		Text:        text,
		Authors:     orUnknown(strings.Join(authors, ", ")),
		PublishDate: orUnknown(md.PublishDate),
		Method:      types.MethodPrimary,
	}, nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return types.Unknown
	}
	return s
}
