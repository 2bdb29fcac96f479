package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/knowledge-aggregator/internal/config"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Scraper.Timeout = 5 * time.Second
	f, err := NewHTTPFetcher(cfg, testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestHTTPFetcherPlain(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><title>hi</title></html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	resp, err := Get(context.Background(), f, srv.URL, "article", 0)
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Contains(t, string(resp.Body), "<title>hi</title>")
	assert.Equal(t, config.DefaultConfig().Scraper.UserAgent, gotUA)
	assert.Equal(t, "article", resp.Request.Tag)
}

func TestHTTPFetcherDecodesGzipAndBrotli(t *testing.T) {
	payload := []byte("<p>compressed body</p>")

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write(payload)
	zw.Close()

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	bw.Write(payload)
	bw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gzip":
			w.Header().Set("Content-Encoding", "gzip")
			w.Write(gz.Bytes())
		case "/br":
			w.Header().Set("Content-Encoding", "br")
			w.Write(br.Bytes())
		}
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	for _, path := range []string{"/gzip", "/br"} {
		resp, err := Get(context.Background(), f, srv.URL+path, "article", 0)
		require.NoError(t, err, path)
		assert.Equal(t, payload, resp.Body, path)
	}
}

func TestHTTPFetcherErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	_, err := Get(context.Background(), f, srv.URL, "article", 0)
	require.Error(t, err)

	var fe *types.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}

func TestGetRejectsInvalidURL(t *testing.T) {
	f := newTestFetcher(t)
	_, err := Get(context.Background(), f, "mailto:someone@example.com", "article", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidURL)
}

func TestNewSelectsHTTP(t *testing.T) {
	f, err := New(config.DefaultConfig(), testLogger)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "http", f.Type())

	cfg := config.DefaultConfig()
	cfg.Fetcher.Type = "carrier-pigeon"
	_, err = New(cfg, testLogger)
	assert.Error(t, err)
}
