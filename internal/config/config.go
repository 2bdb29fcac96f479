package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for the aggregator.
type Config struct {
	AI         AIConfig         `mapstructure:"ai"         yaml:"ai"`
	Search     SearchConfig     `mapstructure:"search"     yaml:"search"`
	Scraper    ScraperConfig    `mapstructure:"scraper"    yaml:"scraper"`
	Summarizer SummarizerConfig `mapstructure:"summarizer" yaml:"summarizer"`
	Fetcher    FetcherConfig    `mapstructure:"fetcher"    yaml:"fetcher"`
	Output     OutputConfig     `mapstructure:"output"     yaml:"output"`
	History    HistoryConfig    `mapstructure:"history"    yaml:"history"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"    yaml:"metrics"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"  yaml:"dashboard"`
}

// AIConfig controls the hosted language model.
type AIConfig struct {
	Provider    string        `mapstructure:"provider"    yaml:"provider"` // azure, openai, ollama
	Mode        string        `mapstructure:"mode"        yaml:"mode"`     // hosted, offline
	Endpoint    string        `mapstructure:"endpoint"    yaml:"endpoint"`
	APIKey      string        `mapstructure:"api_key"     yaml:"api_key"`
	APIVersion  string        `mapstructure:"api_version" yaml:"api_version"`
	Deployment  string        `mapstructure:"deployment"  yaml:"deployment"`
	Model       string        `mapstructure:"model"       yaml:"model"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"     yaml:"timeout"`
}

// SearchConfig controls the web and news search providers.
type SearchConfig struct {
	MaxResults int           `mapstructure:"max_results" yaml:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"     yaml:"timeout"`
	Pacing     time.Duration `mapstructure:"pacing"      yaml:"pacing"`
	Region     string        `mapstructure:"region"      yaml:"region"`
	SafeSearch string        `mapstructure:"safesearch"  yaml:"safesearch"`
	WebURL     string        `mapstructure:"web_url"     yaml:"web_url"`
	NewsURL    string        `mapstructure:"news_url"    yaml:"news_url"`
}

// ScraperConfig controls article extraction.
type ScraperConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"            yaml:"timeout"`
	Delay            time.Duration `mapstructure:"delay"              yaml:"delay"`
	MaxContentLength int           `mapstructure:"max_content_length" yaml:"max_content_length"`
	MinContentLength int           `mapstructure:"min_content_length" yaml:"min_content_length"`
	UserAgent        string        `mapstructure:"user_agent"         yaml:"user_agent"`
}

// SummarizerConfig controls chunking and fallback summaries.
type SummarizerConfig struct {
	ChunkSize         int `mapstructure:"chunk_size"          yaml:"chunk_size"`
	ChunkOverlap      int `mapstructure:"chunk_overlap"       yaml:"chunk_overlap"`
	MaxSummaryLength  int `mapstructure:"max_summary_length"  yaml:"max_summary_length"`
	FallbackSentences int `mapstructure:"fallback_sentences"  yaml:"fallback_sentences"`
	MaxInsightTitles  int `mapstructure:"max_insight_titles"  yaml:"max_insight_titles"`
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
}

// OutputConfig controls where reports are written.
type OutputConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// HistoryConfig controls the optional run history store.
type HistoryConfig struct {
	Type       string `mapstructure:"type"       yaml:"type"` // none, jsonl, sqlite, mongodb; comma-separated for several
	Path       string `mapstructure:"path"       yaml:"path"` // sqlite file; empty means the XDG data home
	MongoURI   string `mapstructure:"mongo_uri"  yaml:"mongo_uri"`
	Database   string `mapstructure:"database"   yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file"   yaml:"file"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr"    yaml:"addr"`
}

// DashboardConfig controls the web dashboard.
type DashboardConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider:    "azure",
			Mode:        "hosted",
			APIVersion:  "2023-12-01-preview",
			Deployment:  "gpt-35-turbo",
			Model:       "gpt-3.5-turbo",
			Temperature: 0.3,
			Timeout:     60 * time.Second,
		},
		Search: SearchConfig{
			MaxResults: 10,
			Timeout:    30 * time.Second,
			Pacing:     2 * time.Second,
			Region:     "wt-wt",
			SafeSearch: "moderate",
			WebURL:     "https://html.duckduckgo.com/html/",
			NewsURL:    "https://www.bing.com/news/search?q=%s&format=rss&qft=interval%%3d%%229%%22",
		},
		Scraper: ScraperConfig{
			Timeout:          15 * time.Second,
			Delay:            1 * time.Second,
			MaxContentLength: 10000,
			MinContentLength: 100,
			UserAgent:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		},
		Summarizer: SummarizerConfig{
			ChunkSize:         4000,
			ChunkOverlap:      200,
			MaxSummaryLength:  500,
			FallbackSentences: 3,
			MaxInsightTitles:  5,
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    20,
		},
		Output: OutputConfig{
			Dir: "output",
		},
		History: HistoryConfig{
			Type:       "none",
			Database:   "aggregator",
			Collection: "runs",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		Dashboard: DashboardConfig{
			Addr: ":8501",
		},
	}
}

// Offline reports whether the deterministic summarizer is forced.
func (c *Config) Offline() bool {
	return c.AI.Mode == "offline"
}

// HasCredentials reports whether the hosted model can be reached.
// Ollama runs locally and needs only an endpoint.
func (c *Config) HasCredentials() bool {
	if c.AI.Provider == "ollama" {
		return c.AI.Endpoint != ""
	}
	if c.AI.Provider == "openai" {
		return c.AI.APIKey != ""
	}
	return c.AI.APIKey != "" && c.AI.Endpoint != ""
}

// CheckCredentials fails with types.ErrMissingCredentials, naming the unset
// settings, when a hosted run could not reach its model. Offline mode needs
// nothing. It makes no network calls.
func (c *Config) CheckCredentials() error {
	if c.Offline() || c.HasCredentials() {
		return nil
	}
	return fmt.Errorf("%w: set %s", types.ErrMissingCredentials, strings.Join(c.MissingCredentials(), ", "))
}

// MissingCredentials lists the unset settings the hosted provider needs.
func (c *Config) MissingCredentials() []string {
	var missing []string
	switch c.AI.Provider {
	case "ollama":
		if c.AI.Endpoint == "" {
			missing = append(missing, "ai.endpoint")
		}
	case "openai":
		if c.AI.APIKey == "" {
			missing = append(missing, "ai.api_key")
		}
	default:
		if c.AI.APIKey == "" {
			missing = append(missing, "AZURE_OPENAI_API_KEY")
		}
		if c.AI.Endpoint == "" {
			missing = append(missing, "AZURE_OPENAI_ENDPOINT")
		}
	}
	return missing
}
