// Package ai summarizes articles with a hosted language model, or with a
// deterministic offline procedure when no model is available.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/IshaanNene/knowledge-aggregator/internal/config"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// LLMProvider specifies which LLM backend to use.
type LLMProvider string

const (
	ProviderAzure  LLMProvider = "azure"
	ProviderOpenAI LLMProvider = "openai"
	ProviderOllama LLMProvider = "ollama"
)

// LLMConfig configures the LLM integration.
type LLMConfig struct {
	Provider    LLMProvider
	Endpoint    string // e.g. "https://myres.openai.azure.com" or "http://localhost:11434"
	APIKey      string
	APIVersion  string // Azure only
	Deployment  string // Azure only
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// LLMConfigFrom maps the application config onto an LLMConfig.
func LLMConfigFrom(cfg *config.Config) LLMConfig {
	return LLMConfig{
		Provider:    LLMProvider(cfg.AI.Provider),
		Endpoint:    cfg.AI.Endpoint,
		APIKey:      cfg.AI.APIKey,
		APIVersion:  cfg.AI.APIVersion,
		Deployment:  cfg.AI.Deployment,
		Model:       cfg.AI.Model,
		MaxTokens:   cfg.Summarizer.MaxSummaryLength,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	}
}

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// LLMClient communicates with the configured model provider.
type LLMClient struct {
	cfg    LLMConfig
	chat   *openai.Client
	client *http.Client
	logger *slog.Logger
}

// NewLLMClient creates a new LLM client.
func NewLLMClient(cfg LLMConfig, logger *slog.Logger) (*LLMClient, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	c := &LLMClient{
		cfg:    cfg,
		client: httpClient,
		logger: logger.With("component", "llm_client", "provider", cfg.Provider),
	}

	switch cfg.Provider {
	case ProviderAzure:
		oc := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
		if cfg.APIVersion != "" {
			oc.APIVersion = cfg.APIVersion
		}
		deployment := cfg.Deployment
		oc.AzureModelMapperFunc = func(string) string { return deployment }
		oc.HTTPClient = httpClient
		c.chat = openai.NewClientWithConfig(oc)
	case ProviderOpenAI:
		oc := openai.DefaultConfig(cfg.APIKey)
		if cfg.Endpoint != "" {
			oc.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
		}
		oc.HTTPClient = httpClient
		c.chat = openai.NewClientWithConfig(oc)
	case ProviderOllama:
		if cfg.Endpoint == "" {
			c.cfg.Endpoint = "http://localhost:11434"
		}
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	return c, nil
}

// Generate sends a prompt to the LLM and returns the trimmed response.
func (c *LLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	var (
		out string
		err error
	)
	if c.cfg.Provider == ProviderOllama {
		out, err = c.generateOllama(ctx, prompt)
	} else {
		out, err = c.generateChat(ctx, prompt)
	}
	if err != nil {
		return "", err
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", types.ErrEmptyResponse
	}

	c.logger.Debug("completion received",
		"prompt_chars", len(prompt),
		"response_chars", len(out),
		"duration", time.Since(start),
	)
	return out, nil
}

func (c *LLMClient) generateChat(ctx context.Context, prompt string) (string, error) {
	model := c.cfg.Model
	if c.cfg.Provider == ProviderAzure {
		model = c.cfg.Deployment
	}

	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", c.cfg.Provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in %s response", c.cfg.Provider)
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *LLMClient) generateOllama(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  c.cfg.Model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": c.cfg.Temperature,
			"num_predict": c.cfg.MaxTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	endpoint := strings.TrimRight(c.cfg.Endpoint, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return result.Response, nil
}

// HealthCheck sends a tiny prompt to confirm the provider answers.
func (c *LLMClient) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	_, err := c.Generate(ctx, healthPrompt)
	return err
}
