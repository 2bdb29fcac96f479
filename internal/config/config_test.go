package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.Equal(t, 2*time.Second, cfg.Search.Pacing)
	assert.Equal(t, 15*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, 10000, cfg.Scraper.MaxContentLength)
	assert.Equal(t, 100, cfg.Scraper.MinContentLength)
	assert.Equal(t, 4000, cfg.Summarizer.ChunkSize)
	assert.Equal(t, 200, cfg.Summarizer.ChunkOverlap)
	assert.Equal(t, 500, cfg.Summarizer.MaxSummaryLength)
	assert.Equal(t, "2023-12-01-preview", cfg.AI.APIVersion)
	assert.Equal(t, "gpt-35-turbo", cfg.AI.Deployment)
	assert.Equal(t, "output", cfg.Output.Dir)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"overlap >= chunk", func(c *Config) { c.Summarizer.ChunkOverlap = c.Summarizer.ChunkSize }},
		{"max <= min content", func(c *Config) { c.Scraper.MaxContentLength = c.Scraper.MinContentLength }},
		{"unknown provider", func(c *Config) { c.AI.Provider = "bard" }},
		{"unknown mode", func(c *Config) { c.AI.Mode = "maybe" }},
		{"bad endpoint", func(c *Config) { c.AI.Endpoint = "ftp://models" }},
		{"bad fetcher", func(c *Config) { c.Fetcher.Type = "curl" }},
		{"bad history", func(c *Config) { c.History.Type = "jsonl,redis" }},
		{"mongo without uri", func(c *Config) { c.History.Type = "mongodb" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }},
		{"news url without placeholder", func(c *Config) { c.Search.NewsURL = "https://news.example.com/rss" }},
		{"zero results", func(c *Config) { c.Search.MaxResults = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestHistoryTypes(t *testing.T) {
	assert.Equal(t, []string{"none"}, HistoryTypes(""))
	assert.Equal(t, []string{"jsonl", "sqlite"}, HistoryTypes(" JSONL, sqlite ,"))
}

func TestCredentials(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.HasCredentials())
	assert.ElementsMatch(t, []string{"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT"}, cfg.MissingCredentials())

	cfg.AI.APIKey = "key"
	cfg.AI.Endpoint = "https://example.openai.azure.com"
	assert.True(t, cfg.HasCredentials())
	assert.Empty(t, cfg.MissingCredentials())

	cfg = DefaultConfig()
	cfg.AI.Provider = "ollama"
	cfg.AI.Endpoint = "http://localhost:11434"
	assert.True(t, cfg.HasCredentials())
}

func TestCheckCredentials(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.CheckCredentials()
	require.ErrorIs(t, err, types.ErrMissingCredentials)
	assert.Contains(t, err.Error(), "AZURE_OPENAI_API_KEY")

	cfg.AI.Mode = "offline"
	assert.NoError(t, cfg.CheckCredentials())

	cfg = DefaultConfig()
	cfg.AI.Provider = "openai"
	cfg.AI.APIKey = "sk-test"
	assert.NoError(t, cfg.CheckCredentials())
}

func TestDefaultNewsURLCoversPastMonth(t *testing.T) {
	raw := fmt.Sprintf(DefaultConfig().Search.NewsURL, url.QueryEscape("AI in healthcare"))
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "AI in healthcare", u.Query().Get("q"))
	assert.Equal(t, `interval="9"`, u.Query().Get("qft"))
}

func TestLoadBindsAzureEnv(t *testing.T) {
	t.Setenv("AZURE_OPENAI_API_KEY", "secret")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-4o")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.AI.APIKey)
	assert.Equal(t, "https://example.openai.azure.com", cfg.AI.Endpoint)
	assert.Equal(t, "gpt-4o", cfg.AI.Deployment)
	assert.Equal(t, "2023-12-01-preview", cfg.AI.APIVersion)
	assert.True(t, cfg.HasCredentials())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aggregator.yaml")
	content := `
ai:
  mode: offline
search:
  max_results: 6
  pacing: 500ms
scraper:
  delay: 0s
output:
  dir: reports
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Offline())
	assert.Equal(t, 6, cfg.Search.MaxResults)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Pacing)
	assert.Equal(t, time.Duration(0), cfg.Scraper.Delay)
	assert.Equal(t, "reports", cfg.Output.Dir)
	// untouched sections keep their defaults
	assert.Equal(t, 4000, cfg.Summarizer.ChunkSize)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnsureOutputDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, cfg.EnsureOutputDir())
	info, err := os.Stat(cfg.Output.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
