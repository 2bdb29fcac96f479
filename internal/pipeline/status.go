package pipeline

import (
	"context"

	"github.com/IshaanNene/knowledge-aggregator/internal/ai"
	"github.com/IshaanNene/knowledge-aggregator/internal/config"
)

// Model health values reported by CheckModel.
const (
	ModelReachable  = "reachable"
	ModelNotChecked = "not checked (offline engine)"
)

// AIStatus describes the hosted-model settings without exposing secrets.
type AIStatus struct {
	Provider           string `json:"provider"            yaml:"provider"`
	Mode               string `json:"mode"                yaml:"mode"`
	EndpointConfigured bool   `json:"endpoint_configured" yaml:"endpoint_configured"`
	APIKeyConfigured   bool   `json:"api_key_configured"  yaml:"api_key_configured"`
	APIVersion         string `json:"api_version"         yaml:"api_version"`
	Deployment         string `json:"deployment"          yaml:"deployment"`
	Health             string `json:"health,omitempty"    yaml:"health,omitempty"`
}

// Components names the implementation behind each stage.
type Components struct {
	WebSearch  string `json:"web_search"  yaml:"web_search"`
	NewsSearch string `json:"news_search" yaml:"news_search"`
	Fetcher    string `json:"fetcher"     yaml:"fetcher"`
	Extraction string `json:"extraction"  yaml:"extraction"`
	Engine     string `json:"engine"      yaml:"engine"`
	History    string `json:"history"     yaml:"history"`
}

// SystemStatus is the snapshot shown by --status and the dashboard.
type SystemStatus struct {
	Version          string     `json:"version"            yaml:"version"`
	ConfigValid      bool       `json:"config_valid"       yaml:"config_valid"`
	ConfigError      string     `json:"config_error,omitempty" yaml:"config_error,omitempty"`
	AI               AIStatus   `json:"ai"                 yaml:"ai"`
	Components       Components `json:"components"         yaml:"components"`
	MaxResults       int        `json:"max_results"        yaml:"max_results"`
	OutputDir        string     `json:"output_dir"         yaml:"output_dir"`
	ChunkSize        int        `json:"chunk_size"         yaml:"chunk_size"`
	MaxContentLength int        `json:"max_content_length" yaml:"max_content_length"`
}

// Status reports the configuration and whether it passes validation.
func (a *Aggregator) Status() SystemStatus {
	cfg := a.cfg
	st := SystemStatus{
		Version:     config.Version,
		ConfigValid: true,
		AI: AIStatus{
			Provider:           cfg.AI.Provider,
			Mode:               cfg.AI.Mode,
			EndpointConfigured: cfg.AI.Endpoint != "",
			APIKeyConfigured:   cfg.AI.APIKey != "",
			APIVersion:         cfg.AI.APIVersion,
			Deployment:         cfg.AI.Deployment,
		},
		Components: Components{
			WebSearch:  "duckduckgo",
			NewsSearch: "newsfeed",
			Fetcher:    cfg.Fetcher.Type,
			Extraction: "readability + selectors",
			Engine:     a.engine.Name(),
			History:    a.history.Name(),
		},
		MaxResults:       cfg.Search.MaxResults,
		OutputDir:        cfg.Output.Dir,
		ChunkSize:        cfg.Summarizer.ChunkSize,
		MaxContentLength: cfg.Scraper.MaxContentLength,
	}

	if err := config.Validate(cfg); err != nil {
		st.ConfigValid = false
		st.ConfigError = err.Error()
	} else if err := a.ValidateConfig(); err != nil {
		st.ConfigValid = false
		st.ConfigError = err.Error()
	}
	return st
}

// CheckModel asks the hosted model for a short reply and describes the
// outcome. Runs never call it; only status output does.
func (a *Aggregator) CheckModel(ctx context.Context) string {
	hc, ok := a.engine.(ai.HealthChecker)
	if !ok {
		return ModelNotChecked
	}
	if err := hc.HealthCheck(ctx); err != nil {
		a.logger.Warn("model health check failed", "error", err)
		return "unreachable: " + err.Error()
	}
	return ModelReachable
}
