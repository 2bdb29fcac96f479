package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from .env, file, and environment.
// Priority (highest to lowest): CLI flags > env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("AGGREGATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("aggregator")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".aggregator"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// bindLegacyEnv maps the Azure OpenAI variable names onto config keys.
// The prefixed AGGREGATOR_* name is checked first.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"ai.api_key":     "AZURE_OPENAI_API_KEY",
		"ai.endpoint":    "AZURE_OPENAI_ENDPOINT",
		"ai.api_version": "AZURE_OPENAI_API_VERSION",
		"ai.deployment":  "AZURE_OPENAI_DEPLOYMENT_NAME",
	}
	for key, env := range bindings {
		prefixed := "AGGREGATOR_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}
	return nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("ai.provider", cfg.AI.Provider)
	v.SetDefault("ai.mode", cfg.AI.Mode)
	v.SetDefault("ai.endpoint", cfg.AI.Endpoint)
	v.SetDefault("ai.api_key", cfg.AI.APIKey)
	v.SetDefault("ai.api_version", cfg.AI.APIVersion)
	v.SetDefault("ai.deployment", cfg.AI.Deployment)
	v.SetDefault("ai.model", cfg.AI.Model)
	v.SetDefault("ai.temperature", cfg.AI.Temperature)
	v.SetDefault("ai.timeout", cfg.AI.Timeout)

	v.SetDefault("search.max_results", cfg.Search.MaxResults)
	v.SetDefault("search.timeout", cfg.Search.Timeout)
	v.SetDefault("search.pacing", cfg.Search.Pacing)
	v.SetDefault("search.region", cfg.Search.Region)
	v.SetDefault("search.safesearch", cfg.Search.SafeSearch)
	v.SetDefault("search.web_url", cfg.Search.WebURL)
	v.SetDefault("search.news_url", cfg.Search.NewsURL)

	v.SetDefault("scraper.timeout", cfg.Scraper.Timeout)
	v.SetDefault("scraper.delay", cfg.Scraper.Delay)
	v.SetDefault("scraper.max_content_length", cfg.Scraper.MaxContentLength)
	v.SetDefault("scraper.min_content_length", cfg.Scraper.MinContentLength)
	v.SetDefault("scraper.user_agent", cfg.Scraper.UserAgent)

	v.SetDefault("summarizer.chunk_size", cfg.Summarizer.ChunkSize)
	v.SetDefault("summarizer.chunk_overlap", cfg.Summarizer.ChunkOverlap)
	v.SetDefault("summarizer.max_summary_length", cfg.Summarizer.MaxSummaryLength)
	v.SetDefault("summarizer.fallback_sentences", cfg.Summarizer.FallbackSentences)
	v.SetDefault("summarizer.max_insight_titles", cfg.Summarizer.MaxInsightTitles)

	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.tls_insecure", cfg.Fetcher.TLSInsecure)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)

	v.SetDefault("output.dir", cfg.Output.Dir)

	v.SetDefault("history.type", cfg.History.Type)
	v.SetDefault("history.path", cfg.History.Path)
	v.SetDefault("history.mongo_uri", cfg.History.MongoURI)
	v.SetDefault("history.database", cfg.History.Database)
	v.SetDefault("history.collection", cfg.History.Collection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.file", cfg.Logging.File)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.addr", cfg.Metrics.Addr)

	v.SetDefault("dashboard.addr", cfg.Dashboard.Addr)
}

// EnsureOutputDir creates the report directory if it does not exist.
func (c *Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", c.Output.Dir, err)
	}
	return nil
}
