package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/knowledge-aggregator/internal/config"
	"github.com/IshaanNene/knowledge-aggregator/internal/fetcher"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type fakeStrategy struct {
	method types.ExtractionMethod
	fail   map[string]bool
	short  map[string]bool
	calls  atomic.Int32
}

func (f *fakeStrategy) Method() types.ExtractionMethod { return f.method }

func (f *fakeStrategy) Extract(_ context.Context, url string) (*types.Article, error) {
	f.calls.Add(1)
	if f.fail[url] {
		return nil, fmt.Errorf("%s failed for %s", f.method, url)
	}
	text := strings.Repeat("body ", 40)
	if f.short[url] {
		text = ""
	}
	return &types.Article{Title: "t " + url, URL: url, Text: text}, nil
}

type countingGate struct{ n atomic.Int32 }

func (g *countingGate) Wait(ctx context.Context) error {
	g.n.Add(1)
	return ctx.Err()
}

func TestExtractUsesFallbackWhenPrimaryFails(t *testing.T) {
	primary := &fakeStrategy{method: types.MethodPrimary, fail: map[string]bool{"u1": true}}
	fallback := &fakeStrategy{method: types.MethodFallback}
	e := NewExtractor(primary, fallback, nil, nil, testLogger)

	art, err := e.Extract(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, types.MethodFallback, art.Method)

	art, err = e.Extract(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, types.MethodPrimary, art.Method)
	assert.Equal(t, int32(1), fallback.calls.Load())
}

func TestExtractUsesFallbackWhenPrimaryEmpty(t *testing.T) {
	primary := &fakeStrategy{method: types.MethodPrimary, short: map[string]bool{"u1": true}}
	fallback := &fakeStrategy{method: types.MethodFallback}
	e := NewExtractor(primary, fallback, nil, nil, testLogger)

	art, err := e.Extract(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, types.MethodFallback, art.Method)
}

func TestExtractBothFail(t *testing.T) {
	fail := map[string]bool{"u1": true}
	e := NewExtractor(
		&fakeStrategy{method: types.MethodPrimary, fail: fail},
		&fakeStrategy{method: types.MethodFallback, fail: fail},
		nil, nil, testLogger,
	)
	art, err := e.Extract(context.Background(), "u1")
	assert.Nil(t, art)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary failed")
	assert.Contains(t, err.Error(), "fallback failed")
}

func TestExtractManySkipsFailuresAndPaces(t *testing.T) {
	fail := map[string]bool{"u2": true, "u4": true}
	gate := &countingGate{}
	e := NewExtractor(
		&fakeStrategy{method: types.MethodPrimary, fail: fail},
		&fakeStrategy{method: types.MethodFallback, fail: fail},
		gate, nil, testLogger,
	)

	arts := e.ExtractMany(context.Background(), []string{"u1", "u2", " ", "u3", "u4", "u5"})
	require.Len(t, arts, 3)
	assert.Equal(t, "u1", arts[0].URL)
	assert.Equal(t, "u3", arts[1].URL)
	assert.Equal(t, "u5", arts[2].URL)
	// one wait between each pair of the five non-blank URLs
	assert.Equal(t, int32(4), gate.n.Load())
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("é", 150)
	got := Truncate(long, 100)
	assert.Equal(t, 103, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, Ellipsis))
	assert.Equal(t, strings.Repeat("é", 100), strings.TrimSuffix(got, Ellipsis))

	assert.Equal(t, "short", Truncate("short", 100))
	assert.Equal(t, strings.Repeat("a", 100), Truncate(strings.Repeat("a", 100), 100))
}

func TestBound(t *testing.T) {
	_, ok := bound("tiny", 100, 1000)
	assert.False(t, ok)

	text, ok := bound(strings.Repeat("x", 12000), 100, 10000)
	require.True(t, ok)
	assert.Len(t, text, 10003)
}

const fallbackPage = `<html><head><title> Fallback   Title </title><script>var x = 1;</script></head>
<body>
<header>Site header</header>
<nav>Home | About</nav>
<div class="content">
  <p>First paragraph of the story about clinical models.</p>
  <p>Second paragraph <b>with bold</b> text and more detail about outcomes in hospitals.</p>
  <style>.x{}</style>
</div>
<footer>Copyright</footer>
</body></html>`

const bodyOnlyPage = `<html><head><title>Body page</title></head>
<body><div><p>Nothing but a body here, yet it is long enough to pass the minimum length check of the extractor.</p></div>
<footer>foot</footer></body></html>`

func newFetcher(t *testing.T) fetcher.Fetcher {
	t.Helper()
	f, err := fetcher.NewHTTPFetcher(config.DefaultConfig(), testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestSelectorsStrategy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/content":
			w.Write([]byte(fallbackPage))
		case "/body":
			w.Write([]byte(bodyOnlyPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := NewSelectors(newFetcher(t), Bounds{Min: 50, Max: 10000})

	art, err := s.Extract(context.Background(), srv.URL+"/content")
	require.NoError(t, err)
	assert.Equal(t, "Fallback Title", art.Title)
	assert.Equal(t, "First paragraph of the story about clinical models. Second paragraph with bold text and more detail about outcomes in hospitals.", art.Text)
	assert.NotContains(t, art.Text, "Home")
	assert.NotContains(t, art.Text, "Copyright")
	assert.Equal(t, types.Unknown, art.Authors)
	assert.Equal(t, types.Unknown, art.PublishDate)
	assert.Equal(t, types.MethodFallback, art.Method)
	assert.Equal(t, srv.URL+"/content", art.URL)

	art, err = s.Extract(context.Background(), srv.URL+"/body")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(art.Text, "Nothing but a body here"))
	assert.NotContains(t, art.Text, "foot")

	_, err = s.Extract(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	var ee *types.ExtractError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, types.MethodFallback, ee.Method)
}

func TestSelectorsRejectsShortContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><article>too short</article></body></html>`))
	}))
	defer srv.Close()

	s := NewSelectors(newFetcher(t), Bounds{Min: 100, Max: 10000})
	_, err := s.Extract(context.Background(), srv.URL)
	assert.ErrorIs(t, err, types.ErrContentTooShort)
}

var articlePage = `<!DOCTYPE html>
<html><head>
<title>AI Reads Scans Faster | Health Desk</title>
<meta name="author" content="Jordan Lee">
<meta property="article:published_time" content="2025-09-30T08:00:00Z">
</head>
<body>
<nav><a href="/">Home</a> <a href="/tech">Tech</a></nav>
<article>
<h1>AI Reads Scans Faster</h1>
` + strings.Repeat(`<p>Radiology departments are testing machine learning systems that flag urgent findings, and early results suggest shorter waits for patients, fewer missed fractures, and more time for clinicians to review difficult cases with colleagues.</p>
`, 6) + `</article>
<footer>Contact us</footer>
</body></html>`

func TestReadabilityStrategy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	r := NewReadability(newFetcher(t), Bounds{Min: 100, Max: 500})
	art, err := r.Extract(context.Background(), srv.URL+"/story")
	require.NoError(t, err)

	assert.Equal(t, types.MethodPrimary, art.Method)
	assert.NotEmpty(t, art.Title)
	assert.NotEqual(t, "No title", art.Title)
	assert.Contains(t, art.Text, "Radiology departments are testing")
	assert.Equal(t, 503, utf8.RuneCountInString(art.Text))
	assert.Equal(t, "Jordan Lee", art.Authors)
	assert.Equal(t, "2025-09-30T08:00:00Z", art.PublishDate)
}

func TestReadMetadataJSONLD(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">{"@context":"https://schema.org","@graph":[
 {"@type":"WebSite","name":"Site"},
 {"@type":"NewsArticle","headline":"Graph Headline","datePublished":"2025-01-02",
  "author":[{"@type":"Person","name":"Ada"},{"@type":"Person","name":"Grace"}]}
]}</script>
<meta name="author" content="Ignored">
</head><body></body></html>`

	md := ReadMetadata([]byte(page))
	assert.Equal(t, "Graph Headline", md.Title)
	assert.Equal(t, []string{"Ada", "Grace"}, md.Authors)
	assert.Equal(t, "2025-01-02", md.PublishDate)
}

func TestReadMetadataMarkupFallback(t *testing.T) {
	page := `<html><head><title>Plain</title>
<meta property="og:title" content="OG Title"></head>
<body><span itemprop="author"><span itemprop="name">Sam Rivera</span></span>
<time datetime="2024-12-24">Dec 24</time></body></html>`

	md := ReadMetadata([]byte(page))
	assert.Equal(t, "OG Title", md.Title)
	assert.Equal(t, []string{"Sam Rivera"}, md.Authors)
	assert.Equal(t, "2024-12-24", md.PublishDate)
}
