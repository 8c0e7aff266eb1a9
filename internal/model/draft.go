package model

import "strings"

// Generation provider names
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

// DraftSet collects one draft attempt per provider. A provider name
// appears in exactly one of the two maps.
type DraftSet struct {
	Drafts map[string]string `json:"drafts"`
	Errors map[string]string `json:"errors,omitempty"`
}

// NewDraftSet returns an empty set with both maps allocated
func NewDraftSet() DraftSet {
	return DraftSet{
		Drafts: make(map[string]string),
		Errors: make(map[string]string),
	}
}

// DraftRequest is the input for outline and draft generation
type DraftRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Outline            string   `json:"outline,omitempty"`
	ValidationWarnings []string `json:"validationWarnings,omitempty"`
}

// AgentConfig holds the operator-editable system prompts
type AgentConfig struct {
	Ideas   RoleConfig `json:"ideas" yaml:"ideas"`
	Writing RoleConfig `json:"writing" yaml:"writing"`
}

// RoleConfig is the prompt configuration for a single agent role
type RoleConfig struct {
	SystemPrompt string `json:"systemPrompt" yaml:"system_prompt"`
}

const defaultIdeasPrompt = `You are an ideas agent for feature articles and newsletters. Core principles:
1. Accuracy first. Suggest only real, documented, verifiable subjects. Never invent events, names or facts.
2. Self-check. Before suggesting an idea ask yourself whether you can point to a real source for it. If not, do not suggest it.
3. Range. Offer ideas from different angles (news, analysis, human story) so the choice is real.
4. Each idea has a short catchy title and a one or two sentence description: the angle, why it is interesting, where the information comes from.

Answer in JSON only: {"ideas": [{"title": "...", "description": "..."}]}.`

const defaultWritingPrompt = `You are a professional writing agent. Core principles:
1. Factual accuracy. Every fact, name, date and number must be real and documented. If you are unsure, mark it [needs checking] or leave it out.
2. Self-check. Before answering, go over every factual statement and ask whether you are sure it is true. If not, fix it, mark it, or delete it.
3. No invention. Never invent quotes, events, statistics or people. A short accurate article beats a long one with errors.
4. Style. Clear, focused, friendly and professional. No padding.

Return plain text only, no JSON.`

// DefaultAgentConfig returns the built-in prompts used when none are stored
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Ideas:   RoleConfig{SystemPrompt: defaultIdeasPrompt},
		Writing: RoleConfig{SystemPrompt: defaultWritingPrompt},
	}
}

// WithDefaults fills blank prompts from DefaultAgentConfig
func (c AgentConfig) WithDefaults() AgentConfig {
	def := DefaultAgentConfig()
	if strings.TrimSpace(c.Ideas.SystemPrompt) == "" {
		c.Ideas.SystemPrompt = def.Ideas.SystemPrompt
	}
	if strings.TrimSpace(c.Writing.SystemPrompt) == "" {
		c.Writing.SystemPrompt = def.Writing.SystemPrompt
	}
	return c
}
