package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/knowledge-aggregator/internal/fetcher"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// ContentSelectors are tried in order; the first match is the article body.
var ContentSelectors = []string{
	"article",
	"main",
	".content",
	".post-content",
	".entry-content",
	".article-content",
	".story-body",
}

const strippedElements = "script, style, nav, footer, header"

// Selectors is the fallback strategy: a plain fetch with tag-based
// content selection.
type Selectors struct {
	fetcher fetcher.Fetcher
	bounds  Bounds
}

// NewSelectors creates the fallback extraction strategy.
func NewSelectors(f fetcher.Fetcher, bounds Bounds) *Selectors {
	return &Selectors{fetcher: f, bounds: bounds}
}

// Method returns MethodFallback.
func (s *Selectors) Method() types.ExtractionMethod { return types.MethodFallback }

// Extract downloads rawURL and selects the main content container.
func (s *Selectors) Extract(ctx context.Context, rawURL string) (*types.Article, error) {
	resp, err := fetcher.Get(ctx, s.fetcher, rawURL, "article", 0)
	if err != nil {
		return nil, &types.ExtractError{URL: rawURL, Method: s.Method(), Err: err}
	}
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ExtractError{URL: rawURL, Method: s.Method(), Err: err}
	}

	art, err := s.fromDocument(doc)
	if err != nil {
		return nil, &types.ExtractError{URL: rawURL, Method: s.Method(), Err: err}
	}
	art.URL = rawURL
	return art, nil
}

func (s *Selectors) fromDocument(doc *goquery.Document) (*types.Article, error) {
	doc.Find(strippedElements).Remove()

	title := NormalizeWhitespace(doc.Find("title").First().Text())
	if title == "" {
		title = "No title"
	}

	container := selectContent(doc)
	if container == nil {
		return nil, types.ErrNoContent
	}

	text, ok := bound(joinText(container), s.bounds.Min, s.bounds.Max)
	if !ok {
		return nil, types.ErrContentTooShort
	}

	return &types.Article{
		Title:       title,
		Text:        text,
		Authors:     types.Unknown,
		PublishDate: types.Unknown,
		Method:      types.MethodFallback,
	}, nil
}

func selectContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range ContentSelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	if body := doc.Find("body").First(); body.Length() > 0 {
		return body
	}
	return nil
}

// joinText gathers every text node under sel separated by spaces, then
// collapses whitespace.
func joinText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		collectText(n, &b)
	}
	return NormalizeWhitespace(b.String())
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
