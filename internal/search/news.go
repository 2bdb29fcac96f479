package search

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/IshaanNene/knowledge-aggregator/internal/fetcher"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// NewsFeed searches a news index that answers queries with an RSS feed.
// The URL template carries a single %s for the escaped query.
type NewsFeed struct {
	fetcher  fetcher.Fetcher
	template string
	parser   *gofeed.Parser
	timeout  time.Duration
}

// NewNewsFeed creates the news search provider.
func NewNewsFeed(f fetcher.Fetcher, template string, timeout time.Duration) *NewsFeed {
	return &NewsFeed{
		fetcher:  f,
		template: template,
		parser:   gofeed.NewParser(),
		timeout:  timeout,
	}
}

// Name returns the provider name.
func (n *NewsFeed) Name() string { return "newsfeed" }

// Search returns up to limit news items.
func (n *NewsFeed) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	feedURL := fmt.Sprintf(n.template, url.QueryEscape(query))

	resp, err := fetcher.Get(ctx, n.fetcher, feedURL, "news", n.timeout)
	if err != nil {
		return nil, &types.SearchError{Provider: n.Name(), Query: query, Err: err}
	}
	feed, err := n.parser.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &types.SearchError{Provider: n.Name(), Query: query, Err: fmt.Errorf("parse feed: %w", err)}
	}

	results := make([]types.SearchResult, 0, min(limit, len(feed.Items)))
	for _, item := range feed.Items {
		if len(results) >= limit {
			break
		}
		link := unwrapNewsLink(item.Link)
		if link == "" {
			continue
		}
		results = append(results, types.SearchResult{
			Title:   strings.TrimSpace(item.Title),
			URL:     link,
			Snippet: plainText(item.Description),
			Date:    itemDate(item),
			Source:  itemSource(item, link),
		})
	}
	return results, nil
}

// unwrapNewsLink follows click-tracking links that carry the article in a
// url= query parameter.
func unwrapNewsLink(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return ""
	}
	if target := u.Query().Get("url"); target != "" {
		if t, err := url.Parse(target); err == nil && t.Host != "" {
			return t.String()
		}
	}
	return u.String()
}

func itemDate(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format("2006-01-02T15:04:05Z")
	}
	return item.Published
}

// itemSource prefers the feed's source extension, then the author, then
// the article host.
func itemSource(item *gofeed.Item, link string) string {
	for _, ns := range item.Extensions {
		if src, ok := ns["Source"]; ok && len(src) > 0 && src[0].Value != "" {
			return strings.TrimSpace(src[0].Value)
		}
	}
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	if u, err := url.Parse(link); err == nil {
		return strings.TrimPrefix(u.Hostname(), "www.")
	}
	return ""
}

func plainText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
