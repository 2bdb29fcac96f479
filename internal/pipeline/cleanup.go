package pipeline

import (
	"html"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// Middleware processes an article and returns the (possibly modified)
// article. Return nil to drop it.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms an article. Return nil to drop the article.
	Process(a *types.Article) (*types.Article, error)
}

// Chain runs extracted articles through middleware before summarization.
type Chain struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// NewChain creates an empty Chain.
func NewChain(logger *slog.Logger) *Chain {
	return &Chain{logger: logger.With("component", "cleanup")}
}

// DefaultChain is the chain every run uses unless replaced.
func DefaultChain(logger *slog.Logger) *Chain {
	c := NewChain(logger)
	c.Use(&TrimMiddleware{})
	c.Use(NewHTMLSanitizeMiddleware())
	c.Use(NewDateNormalizeMiddleware(time.RFC3339))
	c.Use(&RequiredTextMiddleware{})
	c.Use(NewDedupMiddleware())
	return c
}

// Use adds a middleware to the chain.
func (c *Chain) Use(mw Middleware) {
	c.middlewares = append(c.middlewares, mw)
	c.logger.Debug("middleware added", "name", mw.Name(), "position", len(c.middlewares))
}

// Len returns the number of middleware in the chain.
func (c *Chain) Len() int {
	return len(c.middlewares)
}

// Process runs one article through every middleware in order.
func (c *Chain) Process(a *types.Article) (*types.Article, error) {
	current := a
	for _, mw := range c.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.ExtractError{URL: a.URL, Method: a.Method, Err: err}
		}
		if result == nil {
			c.logger.Debug("article dropped", "stage", mw.Name(), "url", a.URL)
			return nil, nil
		}
		current = result
	}
	return current, nil
}

// Apply processes every article, keeping order. Articles that error or are
// dropped are left out.
func (c *Chain) Apply(articles []types.Article) []types.Article {
	out := make([]types.Article, 0, len(articles))
	for i := range articles {
		a := articles[i]
		res, err := c.Process(&a)
		if err != nil {
			c.logger.Warn("article rejected", "url", a.URL, "error", err)
			continue
		}
		if res != nil {
			out = append(out, *res)
		}
	}
	return out
}

// TrimMiddleware trims whitespace from the text fields.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(a *types.Article) (*types.Article, error) {
	a.Title = strings.TrimSpace(a.Title)
	a.Authors = strings.TrimSpace(a.Authors)
	a.PublishDate = strings.TrimSpace(a.PublishDate)
	a.Text = strings.TrimSpace(a.Text)
	return a, nil
}

// HTMLSanitizeMiddleware strips stray markup and entities from the title
// and authors.
type HTMLSanitizeMiddleware struct {
	stripRe *regexp.Regexp
}

func NewHTMLSanitizeMiddleware() *HTMLSanitizeMiddleware {
	return &HTMLSanitizeMiddleware{
		stripRe: regexp.MustCompile(`<[^>]*>`),
	}
}

func (m *HTMLSanitizeMiddleware) Name() string { return "html_sanitize" }

func (m *HTMLSanitizeMiddleware) Process(a *types.Article) (*types.Article, error) {
	a.Title = m.clean(a.Title)
	a.Authors = m.clean(a.Authors)
	return a, nil
}

func (m *HTMLSanitizeMiddleware) clean(s string) string {
	if s == "" {
		return s
	}
	cleaned := m.stripRe.ReplaceAllString(s, "")
	cleaned = html.UnescapeString(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

// DateNormalizeMiddleware rewrites recognizable publish dates into one
// format. Unparseable dates are left as they are.
type DateNormalizeMiddleware struct {
	outFormat string
	inFormats []string
}

func NewDateNormalizeMiddleware(outFormat string) *DateNormalizeMiddleware {
	if outFormat == "" {
		outFormat = time.RFC3339
	}
	return &DateNormalizeMiddleware{
		outFormat: outFormat,
		inFormats: []string{
			time.RFC3339,
			time.RFC1123,
			time.RFC1123Z,
			time.RFC822,
			time.RFC822Z,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02",
			"January 2, 2006",
			"Jan 2, 2006",
			"2 January 2006",
			"2 Jan 2006",
			"Mon, 02 Jan 2006",
			"2006/01/02",
		},
	}
}

func (m *DateNormalizeMiddleware) Name() string { return "date_normalize" }

func (m *DateNormalizeMiddleware) Process(a *types.Article) (*types.Article, error) {
	s := strings.TrimSpace(a.PublishDate)
	if s == "" || s == types.Unknown {
		return a, nil
	}
	for _, format := range m.inFormats {
		if t, err := time.Parse(format, s); err == nil {
			a.PublishDate = t.Format(m.outFormat)
			break
		}
	}
	return a, nil
}

// RequiredTextMiddleware drops articles whose text is blank.
type RequiredTextMiddleware struct{}

func (m *RequiredTextMiddleware) Name() string { return "required_text" }

func (m *RequiredTextMiddleware) Process(a *types.Article) (*types.Article, error) {
	if strings.TrimSpace(a.Text) == "" {
		return nil, nil
	}
	return a, nil
}

// DedupMiddleware drops articles whose URL was already seen in this chain.
// Web and news results often point at the same page.
type DedupMiddleware struct {
	seen map[string]struct{}
}

func NewDedupMiddleware() *DedupMiddleware {
	return &DedupMiddleware{seen: make(map[string]struct{})}
}

func (m *DedupMiddleware) Name() string { return "dedup" }

func (m *DedupMiddleware) Process(a *types.Article) (*types.Article, error) {
	key := urlKey(a.URL)
	if _, exists := m.seen[key]; exists {
		return nil, nil
	}
	m.seen[key] = struct{}{}
	return a, nil
}

// urlKey is the identity two URLs share when they name the same page.
func urlKey(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}
