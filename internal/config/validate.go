package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	validProviders := map[string]bool{"azure": true, "openai": true, "ollama": true}
	if !validProviders[cfg.AI.Provider] {
		return fmt.Errorf("ai.provider must be azure/openai/ollama, got %q", cfg.AI.Provider)
	}
	if cfg.AI.Mode != "hosted" && cfg.AI.Mode != "offline" {
		return fmt.Errorf("ai.mode must be 'hosted' or 'offline', got %q", cfg.AI.Mode)
	}
	if cfg.AI.Endpoint != "" {
		if err := ValidateURL(cfg.AI.Endpoint); err != nil {
			return fmt.Errorf("ai.endpoint: %w", err)
		}
	}
	if cfg.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be > 0")
	}

	if cfg.Search.MaxResults < 1 {
		return fmt.Errorf("search.max_results must be >= 1, got %d", cfg.Search.MaxResults)
	}
	if cfg.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be > 0")
	}
	if cfg.Search.Pacing < 0 {
		return fmt.Errorf("search.pacing must be >= 0")
	}
	if !strings.Contains(cfg.Search.NewsURL, "%s") {
		return fmt.Errorf("search.news_url must contain a %%s query placeholder")
	}

	if cfg.Scraper.Timeout <= 0 {
		return fmt.Errorf("scraper.timeout must be > 0")
	}
	if cfg.Scraper.Delay < 0 {
		return fmt.Errorf("scraper.delay must be >= 0")
	}
	if cfg.Scraper.MinContentLength < 0 {
		return fmt.Errorf("scraper.min_content_length must be >= 0, got %d", cfg.Scraper.MinContentLength)
	}
	if cfg.Scraper.MaxContentLength <= cfg.Scraper.MinContentLength {
		return fmt.Errorf("scraper.max_content_length (%d) must exceed min_content_length (%d)",
			cfg.Scraper.MaxContentLength, cfg.Scraper.MinContentLength)
	}

	if cfg.Summarizer.ChunkSize < 1 {
		return fmt.Errorf("summarizer.chunk_size must be >= 1, got %d", cfg.Summarizer.ChunkSize)
	}
	if cfg.Summarizer.ChunkOverlap < 0 || cfg.Summarizer.ChunkOverlap >= cfg.Summarizer.ChunkSize {
		return fmt.Errorf("summarizer.chunk_overlap must be in [0, chunk_size), got %d", cfg.Summarizer.ChunkOverlap)
	}
	if cfg.Summarizer.MaxSummaryLength < 1 {
		return fmt.Errorf("summarizer.max_summary_length must be >= 1")
	}
	if cfg.Summarizer.FallbackSentences < 1 {
		return fmt.Errorf("summarizer.fallback_sentences must be >= 1")
	}

	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}

	if cfg.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}

	validHistory := map[string]bool{"none": true, "jsonl": true, "sqlite": true, "mongodb": true}
	for _, t := range HistoryTypes(cfg.History.Type) {
		if !validHistory[t] {
			return fmt.Errorf("history.type %q is not supported (valid: none, jsonl, sqlite, mongodb)", t)
		}
		if t == "mongodb" && cfg.History.MongoURI == "" {
			return fmt.Errorf("history.mongo_uri is required for mongodb history")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// HistoryTypes splits a comma-separated history.type value.
func HistoryTypes(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return []string{"none"}
	}
	return out
}

// ValidateURL checks if a URL string is an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
