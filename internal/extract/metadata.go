package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Metadata holds byline and date information read from page markup.
type Metadata struct {
	Title       string
	Authors     []string
	PublishDate string
}

var authorXPaths = []string{
	`//meta[@name="author"]/@content`,
	`//meta[@property="article:author"]/@content`,
	`//meta[@name="parsely-author"]/@content`,
	`//*[@rel="author"]`,
	`//*[@itemprop="author"]//*[@itemprop="name"]`,
}

var dateXPaths = []string{
	`//meta[@property="article:published_time"]/@content`,
	`//meta[@name="pubdate"]/@content`,
	`//meta[@name="publish-date"]/@content`,
	`//meta[@name="date"]/@content`,
	`//*[@itemprop="datePublished"]/@content`,
	`//time[@datetime]/@datetime`,
}

// ReadMetadata collects title, authors and publish date. JSON-LD wins over
// OpenGraph and meta tags, which win over inline markup.
func ReadMetadata(body []byte) Metadata {
	var md Metadata

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body))); err == nil {
		md = fromJSONLD(doc)
		if md.Title == "" {
			md.Title = firstAttr(doc, `meta[property="og:title"]`, "content")
		}
		if md.Title == "" {
			md.Title = strings.TrimSpace(doc.Find("title").First().Text())
		}
	}

	root, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return md
	}
	if len(md.Authors) == 0 {
		md.Authors = queryAll(root, authorXPaths)
	}
	if md.PublishDate == "" {
		if dates := queryFirst(root, dateXPaths); dates != "" {
			md.PublishDate = dates
		}
	}
	return md
}

// fromJSONLD reads the first Article-like JSON-LD object.
func fromJSONLD(doc *goquery.Document) Metadata {
	var md Metadata
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}
		for _, obj := range decodeJSONLD(raw) {
			if !isArticleType(obj["@type"]) {
				continue
			}
			if s, ok := obj["headline"].(string); ok {
				md.Title = strings.TrimSpace(s)
			}
			md.Authors = authorNames(obj["author"])
			if s, ok := obj["datePublished"].(string); ok {
				md.PublishDate = strings.TrimSpace(s)
			}
			return false
		}
		return true
	})
	return md
}

func decodeJSONLD(raw string) []map[string]any {
	var single map[string]any
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		if graph, ok := single["@graph"].([]any); ok {
			return toObjects(graph)
		}
		return []map[string]any{single}
	}
	var many []any
	if err := json.Unmarshal([]byte(raw), &many); err == nil {
		return toObjects(many)
	}
	return nil
}

func toObjects(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func isArticleType(v any) bool {
	check := func(s string) bool {
		return strings.HasSuffix(s, "Article") || s == "BlogPosting" || s == "Report"
	}
	switch t := v.(type) {
	case string:
		return check(t)
	case []any:
		for _, x := range t {
			if s, ok := x.(string); ok && check(s) {
				return true
			}
		}
	}
	return false
}

func authorNames(v any) []string {
	var names []string
	add := func(x any) {
		switch a := x.(type) {
		case string:
			if s := strings.TrimSpace(a); s != "" {
				names = append(names, s)
			}
		case map[string]any:
			if s, ok := a["name"].(string); ok && strings.TrimSpace(s) != "" {
				names = append(names, strings.TrimSpace(s))
			}
		}
	}
	if list, ok := v.([]any); ok {
		for _, x := range list {
			add(x)
		}
	} else {
		add(v)
	}
	return names
}

func firstAttr(doc *goquery.Document, selector, attr string) string {
	v, _ := doc.Find(selector).First().Attr(attr)
	return strings.TrimSpace(v)
}

// queryAll returns the distinct values matched by the first XPath
// expression that matches anything.
func queryAll(root *html.Node, exprs []string) []string {
	for _, expr := range exprs {
		nodes, err := htmlquery.QueryAll(root, expr)
		if err != nil || len(nodes) == 0 {
			continue
		}
		seen := make(map[string]bool)
		var values []string
		for _, n := range nodes {
			v := NormalizeWhitespace(htmlquery.InnerText(n))
			if v != "" && !seen[v] {
				seen[v] = true
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

func queryFirst(root *html.Node, exprs []string) string {
	if values := queryAll(root, exprs); len(values) > 0 {
		return values[0]
	}
	return ""
}
