package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/knowledge-aggregator/internal/fetcher"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// DuckDuckGo scrapes the DuckDuckGo HTML endpoint for web results.
type DuckDuckGo struct {
	fetcher    fetcher.Fetcher
	baseURL    string
	region     string
	safeSearch string
	timeout    time.Duration
}

// NewDuckDuckGo creates the web search provider. A zero timeout leaves the
// fetcher's default in place.
func NewDuckDuckGo(f fetcher.Fetcher, baseURL, region, safeSearch string, timeout time.Duration) *DuckDuckGo {
	return &DuckDuckGo{
		fetcher:    f,
		baseURL:    baseURL,
		region:     region,
		safeSearch: safeSearch,
		timeout:    timeout,
	}
}

// Name returns the provider name.
func (d *DuckDuckGo) Name() string { return "duckduckgo" }

// Search returns up to limit organic results, skipping ads.
func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	u, err := url.Parse(d.baseURL)
	if err != nil {
		return nil, &types.SearchError{Provider: d.Name(), Query: query, Err: err}
	}
	q := u.Query()
	q.Set("q", query)
	if d.region != "" {
		q.Set("kl", d.region)
	}
	if kp := safeSearchParam(d.safeSearch); kp != "" {
		q.Set("kp", kp)
	}
	u.RawQuery = q.Encode()

	resp, err := fetcher.Get(ctx, d.fetcher, u.String(), "search", d.timeout)
	if err != nil {
		return nil, &types.SearchError{Provider: d.Name(), Query: query, Err: err}
	}
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.SearchError{Provider: d.Name(), Query: query, Err: fmt.Errorf("parse results: %w", err)}
	}

	var results []types.SearchResult
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		target := resolveResultURL(u, href)
		if target == "" {
			return true
		}
		results = append(results, types.SearchResult{
			Title:   strings.TrimSpace(link.Text()),
			URL:     target,
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
		return len(results) < limit
	})

	return results, nil
}

// resolveResultURL turns a result href into the destination URL,
// unwrapping DuckDuckGo's /l/?uddg= redirect.
func resolveResultURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if strings.Contains(abs.Host, "duckduckgo.com") {
		if target := abs.Query().Get("uddg"); target != "" {
			return target
		}
		return ""
	}
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}

func safeSearchParam(level string) string {
	switch strings.ToLower(level) {
	case "strict", "on":
		return "1"
	case "moderate":
		return "-1"
	case "off":
		return "-2"
	default:
		return ""
	}
}
