package llm

import (
	"context"
	"time"

	"github.com/ppiankov/draftsmith/internal/model"
)

// Provider defines the interface for generation backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces one completion for the request
	Generate(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request is a single-turn generation request
type Request struct {
	// System is the system prompt (role instructions and fixed rules)
	System string

	// Prompt is the user message
	Prompt string

	// MaxTokens limits the response length (0 = provider config)
	MaxTokens int

	// JSON asks the backend for a JSON object when it supports a JSON mode
	JSON bool

	// Model overrides the configured model
	Model string
}

// Response contains the generated text
type Response struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "gemini", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (proxies, Ollama, test servers)
	BaseURL string

	// Timeout bounds each request
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// ConfigFromModel builds a provider config from application settings
func ConfigFromModel(name string, pc model.ProviderConfig, hc model.HTTPConfig) Config {
	return Config{
		Provider:   name,
		Model:      pc.Model,
		APIKey:     pc.APIKey,
		BaseURL:    pc.BaseURL,
		Timeout:    pc.Timeout,
		MaxTokens:  1024,
		HTTPProxy:  hc.HTTPProxy,
		HTTPSProxy: hc.HTTPSProxy,
		NoProxy:    hc.NoProxy,
	}
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return fallback
}

func maxTokens(req Request, cfg Config) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}
	return 1024
}

func modelName(req Request, cfg Config, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if cfg.Model != "" {
		return cfg.Model
	}
	return fallback
}
