package llm

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/model"
)

const defaultOllamaModel = "llama3.1:8b"

// Provider priority orders
var (
	// IdeaOrder is tried for idea generation and idea validation
	IdeaOrder = []string{model.ProviderAnthropic, model.ProviderOpenAI, model.ProviderGemini, model.ProviderOllama}

	// PrimaryOrder backs single-provider calls (claims, judgment, revision, editing)
	PrimaryOrder = []string{model.ProviderOpenAI, model.ProviderAnthropic, model.ProviderGemini, model.ProviderOllama}

	// DraftOrder lists the core draft providers; each gets a slot in a DraftSet
	DraftOrder = []string{model.ProviderOpenAI, model.ProviderGemini, model.ProviderAnthropic}
)

// Descriptor describes one backend: how to tell it is configured and
// which settings feed it.
type Descriptor struct {
	Name       string
	Configured func(model.LLMConfig) bool
	Settings   func(model.LLMConfig) model.ProviderConfig
}

var descriptors = []Descriptor{
	{
		Name:       model.ProviderOpenAI,
		Configured: func(c model.LLMConfig) bool { return c.OpenAI.APIKey != "" },
		Settings:   func(c model.LLMConfig) model.ProviderConfig { return c.OpenAI },
	},
	{
		Name:       model.ProviderAnthropic,
		Configured: func(c model.LLMConfig) bool { return c.Anthropic.APIKey != "" },
		Settings:   func(c model.LLMConfig) model.ProviderConfig { return c.Anthropic },
	},
	{
		Name:       model.ProviderGemini,
		Configured: func(c model.LLMConfig) bool { return c.Gemini.APIKey != "" },
		Settings:   func(c model.LLMConfig) model.ProviderConfig { return c.Gemini },
	},
	{
		// local daemon, only attempted when an address is set
		Name:       model.ProviderOllama,
		Configured: func(c model.LLMConfig) bool { return c.Ollama.BaseURL != "" },
		Settings:   func(c model.LLMConfig) model.ProviderConfig { return c.Ollama },
	},
}

// Descriptors returns the known backends in declaration order
func Descriptors() []Descriptor {
	return append([]Descriptor(nil), descriptors...)
}

// Select returns the configured provider names in the given priority order
func Select(cfg model.LLMConfig, order []string) []string {
	var names []string
	for _, name := range order {
		for _, d := range descriptors {
			if d.Name == name && d.Configured(cfg) {
				names = append(names, name)
			}
		}
	}
	return names
}

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case model.ProviderOpenAI:
		return NewOpenAIProvider(config)

	case model.ProviderAnthropic, "claude":
		return NewAnthropicProvider(config)

	case model.ProviderGemini, "google":
		return NewGeminiProvider(config)

	case model.ProviderOllama:
		if config.Model == "" {
			config.Model = defaultOllamaModel
		}
		return NewOllamaProvider(config)

	case "":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, gemini, ollama)", config.Provider)
	}
}

// Set holds the constructed providers by name
type Set struct {
	providers map[string]Provider
}

// NewSet builds every configured provider, wrapped with metrics and logging
func NewSet(cfg model.Config, logger *zap.Logger) (*Set, error) {
	set := &Set{providers: make(map[string]Provider)}
	for _, d := range descriptors {
		if !d.Configured(cfg.LLM) {
			continue
		}
		p, err := NewProvider(ConfigFromModel(d.Name, d.Settings(cfg.LLM), cfg.HTTP))
		if err != nil {
			return nil, fmt.Errorf("create %s provider: %w", d.Name, err)
		}
		set.providers[d.Name] = Instrument(p, logger)
	}
	return set, nil
}

// NewSetFromProviders builds a set from ready providers, keyed by Name()
func NewSetFromProviders(providers ...Provider) *Set {
	set := &Set{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if p != nil {
			set.providers[p.Name()] = p
		}
	}
	return set
}

// Get returns the named provider
func (s *Set) Get(name string) (Provider, bool) {
	if s == nil {
		return nil, false
	}
	p, ok := s.providers[name]
	return p, ok
}

// First returns the first available provider in order
func (s *Set) First(order ...string) (Provider, bool) {
	for _, name := range order {
		if p, ok := s.Get(name); ok {
			return p, true
		}
	}
	return nil, false
}

// Names returns the configured provider names, sorted
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of configured providers
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.providers)
}
