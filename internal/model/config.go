package model

import (
	"strings"
	"time"
)

// Config is the full application configuration. It is loaded by the CLI
// from defaults, ~/.draftsmith/config.yaml, .env files and environment.
type Config struct {
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Search       SearchConfig       `yaml:"search" mapstructure:"search"`
	Encyclopedia EncyclopediaConfig `yaml:"encyclopedia" mapstructure:"encyclopedia"`
	Retrieval    RetrievalConfig    `yaml:"retrieval" mapstructure:"retrieval"`
	Verification VerificationConfig `yaml:"verification" mapstructure:"verification"`
	Generation   GenerationConfig   `yaml:"generation" mapstructure:"generation"`
	Authority    AuthorityConfig    `yaml:"authority" mapstructure:"authority"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	AgentConfig  AgentConfigFile    `yaml:"agent_config" mapstructure:"agent_config"`
}

// ProviderConfig configures one generation backend
type ProviderConfig struct {
	APIKey  string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Model   string        `yaml:"model,omitempty" mapstructure:"model"`
	BaseURL string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LLMConfig configures every generation backend
type LLMConfig struct {
	OpenAI    ProviderConfig `yaml:"openai" mapstructure:"openai"`
	Anthropic ProviderConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini    ProviderConfig `yaml:"gemini" mapstructure:"gemini"`
	Ollama    ProviderConfig `yaml:"ollama" mapstructure:"ollama"`
}

// SearchConfig configures the evidence search client
type SearchConfig struct {
	TavilyAPIKey      string        `yaml:"tavily_api_key,omitempty" mapstructure:"tavily_api_key"`
	TavilyBaseURL     string        `yaml:"tavily_base_url" mapstructure:"tavily_base_url"`
	SerperAPIKey      string        `yaml:"serper_api_key,omitempty" mapstructure:"serper_api_key"`
	SerperBaseURL     string        `yaml:"serper_base_url" mapstructure:"serper_base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	DefaultResults    int           `yaml:"default_results" mapstructure:"default_results"`
	CacheTTL          time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int           `yaml:"burst_size" mapstructure:"burst_size"`
}

// EncyclopediaConfig configures the Wikipedia client
type EncyclopediaConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// RetrievalConfig configures the retrieval context builder
type RetrievalConfig struct {
	SeedQueries     []string `yaml:"seed_queries" mapstructure:"seed_queries"`
	MaxSources      int      `yaml:"max_sources" mapstructure:"max_sources"`
	ResultsPerQuery int      `yaml:"results_per_query" mapstructure:"results_per_query"`
	PagesPerQuery   int      `yaml:"pages_per_query" mapstructure:"pages_per_query"`
}

// VerificationConfig configures claim verification
type VerificationConfig struct {
	MaxClaims       int `yaml:"max_claims" mapstructure:"max_claims"`
	ResultsPerClaim int `yaml:"results_per_claim" mapstructure:"results_per_claim"`
	MaxRounds       int `yaml:"max_rounds" mapstructure:"max_rounds"`
}

// GenerationConfig configures draft post-processing and token budgets
type GenerationConfig struct {
	MinDraftChars   int `yaml:"min_draft_chars" mapstructure:"min_draft_chars"`
	DraftMaxTokens  int `yaml:"draft_max_tokens" mapstructure:"draft_max_tokens"`
	IdeaMaxTokens   int `yaml:"idea_max_tokens" mapstructure:"idea_max_tokens"`
	ReviseMaxTokens int `yaml:"revise_max_tokens" mapstructure:"revise_max_tokens"`
}

// PathPattern maps a URL path regex to an authority tier
type PathPattern struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	Tier    string `yaml:"tier" mapstructure:"tier"`
}

// AuthorityConfig drives reference authority classification
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	PathPatterns     []PathPattern     `yaml:"path_patterns" mapstructure:"path_patterns"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
}

// HTTPConfig configures outbound reference checks
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ConcurrencyConfig bounds worker fan-out
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// LoggingConfig configures zap
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// AgentConfigFile locates the agent prompt file
type AgentConfigFile struct {
	Path     string        `yaml:"path" mapstructure:"path"`
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

const defaultUserAgent = "Draftsmith/0.1 (+https://github.com/ppiankov/draftsmith)"

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			OpenAI:    ProviderConfig{Model: "gpt-4o-mini", Timeout: 60 * time.Second},
			Anthropic: ProviderConfig{Model: "claude-3-5-haiku-20241022", Timeout: 60 * time.Second},
			Gemini:    ProviderConfig{Model: "gemini-2.0-flash", Timeout: 60 * time.Second},
			Ollama:    ProviderConfig{Timeout: 120 * time.Second},
		},
		Search: SearchConfig{
			TavilyBaseURL:     "https://api.tavily.com",
			SerperBaseURL:     "https://google.serper.dev",
			Timeout:           8 * time.Second,
			DefaultResults:    5,
			CacheTTL:          5 * time.Minute,
			RequestsPerSecond: 5.0,
			BurstSize:         5,
		},
		Encyclopedia: EncyclopediaConfig{
			Enabled:   true,
			BaseURL:   "https://en.wikipedia.org",
			UserAgent: defaultUserAgent,
			Timeout:   8 * time.Second,
		},
		Retrieval: RetrievalConfig{
			SeedQueries: []string{
				"little-known historical events documentary",
				"surprising science discoveries explained",
				"untold stories of famous inventions",
			},
			MaxSources:      12,
			ResultsPerQuery: 5,
			PagesPerQuery:   2,
		},
		Verification: VerificationConfig{
			MaxClaims:       8,
			ResultsPerClaim: 4,
			MaxRounds:       2,
		},
		Generation: GenerationConfig{
			MinDraftChars:   120,
			DraftMaxTokens:  4096,
			IdeaMaxTokens:   1024,
			ReviseMaxTokens: 1024,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"gov", "gov.uk", "gov.il", "europa.eu", "who.int", "un.org",
				"nih.gov", "nature.com", "science.org", "arxiv.org", "doi.org",
			},
			SecondaryDomains: []string{
				"wikipedia.org", "britannica.com", "bbc.co.uk", "bbc.com",
				"reuters.com", "apnews.com", "nytimes.com", "theguardian.com",
				"nationalgeographic.com", "smithsonianmag.com",
			},
			PathPatterns: []PathPattern{
				{Pattern: `(?i)/(legislation|statute|law)s?/`, Tier: "primary"},
				{Pattern: `(?i)/(journal|article|paper)s?/`, Tier: "secondary"},
			},
		},
		HTTP: HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: defaultUserAgent,
		},
		Concurrency: ConcurrencyConfig{Workers: 4},
		Server:      ServerConfig{Addr: ":8080"},
		Logging:     LoggingConfig{Level: "info", Format: "console"},
		AgentConfig: AgentConfigFile{CacheTTL: 60 * time.Second},
	}
}

// Redacted returns a copy safe for display, with secrets masked
func (c Config) Redacted() Config {
	c.LLM.OpenAI.APIKey = mask(c.LLM.OpenAI.APIKey)
	c.LLM.Anthropic.APIKey = mask(c.LLM.Anthropic.APIKey)
	c.LLM.Gemini.APIKey = mask(c.LLM.Gemini.APIKey)
	c.Search.TavilyAPIKey = mask(c.Search.TavilyAPIKey)
	c.Search.SerperAPIKey = mask(c.Search.SerperAPIKey)
	return c
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}
