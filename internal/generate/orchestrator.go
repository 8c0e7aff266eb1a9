// Package generate fans generation requests out to the configured model
// providers and post-processes what they return.
package generate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/apperr"
	"github.com/ppiankov/draftsmith/internal/llm"
	"github.com/ppiankov/draftsmith/internal/logging"
	"github.com/ppiankov/draftsmith/internal/model"
	"github.com/ppiankov/draftsmith/internal/score"
)

const outlineMaxTokens = 1024

// PromptSource supplies the operator-configured agent prompts
type PromptSource interface {
	Get(ctx context.Context) (model.AgentConfig, error)
}

// Orchestrator runs generation calls against a provider set
type Orchestrator struct {
	providers *llm.Set
	prompts   PromptSource
	cfg       model.GenerationConfig
	scorer    *score.Scorer
	logger    *zap.Logger
	newID     func() string
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithIDFunc replaces the idea id generator
func WithIDFunc(f func() string) Option {
	return func(o *Orchestrator) { o.newID = f }
}

// NewOrchestrator creates an orchestrator. A nil prompt source uses the
// built-in prompts.
func NewOrchestrator(providers *llm.Set, prompts PromptSource, cfg model.GenerationConfig, logger *zap.Logger, opts ...Option) *Orchestrator {
	def := model.DefaultConfig().Generation
	if cfg.MinDraftChars <= 0 {
		cfg.MinDraftChars = def.MinDraftChars
	}
	if cfg.DraftMaxTokens <= 0 {
		cfg.DraftMaxTokens = def.DraftMaxTokens
	}
	if cfg.IdeaMaxTokens <= 0 {
		cfg.IdeaMaxTokens = def.IdeaMaxTokens
	}
	if cfg.ReviseMaxTokens <= 0 {
		cfg.ReviseMaxTokens = def.ReviseMaxTokens
	}
	if providers == nil {
		providers = llm.NewSetFromProviders()
	}

	o := &Orchestrator{
		providers: providers,
		prompts:   prompts,
		cfg:       cfg,
		scorer:    score.NewScorer(),
		logger:    logging.Component(logger, "generate"),
		newID:     newIdeaID,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Providers returns the provider set
func (o *Orchestrator) Providers() *llm.Set {
	return o.providers
}

// Config returns the effective generation settings
func (o *Orchestrator) Config() model.GenerationConfig {
	return o.cfg
}

// HasProvider reports whether any generation provider is configured
func (o *Orchestrator) HasProvider() bool {
	return o.providers.Len() > 0
}

// Complete sends req to the first provider in order that answers with
// non-empty text, falling through on failure. order defaults to
// llm.PrimaryOrder.
func (o *Orchestrator) Complete(ctx context.Context, req llm.Request, order ...string) (string, error) {
	if len(order) == 0 {
		order = llm.PrimaryOrder
	}

	var errs []error
	tried := 0
	for _, name := range order {
		p, ok := o.providers.Get(name)
		if !ok {
			continue
		}
		tried++

		resp, err := p.Generate(ctx, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if resp == nil || resp.Text == "" {
			errs = append(errs, fmt.Errorf("%s: %w", name, apperr.ErrEmptyResponse))
			continue
		}
		return resp.Text, nil
	}

	if tried == 0 {
		return "", apperr.ErrNoProvider
	}
	joined := errors.Join(errs...)
	if allEmpty(errs) {
		return "", apperr.Wrap(apperr.ErrEmptyResponse, "complete", joined)
	}
	return "", apperr.Wrap(apperr.ErrAllProvidersFailed, "complete", joined)
}

func allEmpty(errs []error) bool {
	for _, err := range errs {
		if !errors.Is(err, apperr.ErrEmptyResponse) {
			return false
		}
	}
	return len(errs) > 0
}

// GenerateAll asks every draft provider for a draft concurrently. A
// failing provider only fills its own Errors slot; an unconfigured core
// provider gets the placeholder draft.
func (o *Orchestrator) GenerateAll(ctx context.Context, req model.DraftRequest) model.DraftSet {
	system := o.writingSystem(ctx)
	prompt := draftPrompt(req)

	names := append([]string(nil), llm.DraftOrder...)
	if _, ok := o.providers.Get(model.ProviderOllama); ok {
		names = append(names, model.ProviderOllama)
	}

	set := model.NewDraftSet()
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range names {
		p, ok := o.providers.Get(name)
		if !ok {
			set.Drafts[name] = PlaceholderDraft(req.Title)
			continue
		}

		wg.Add(1)
		go func(name string, p llm.Provider) {
			defer wg.Done()

			text, err := o.draftWith(ctx, p, system, prompt, req.Title)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.logger.Warn("draft failed", zap.String("provider", name), zap.Error(err))
				set.Errors[name] = err.Error()
				return
			}
			set.Drafts[name] = text
		}(name, p)
	}

	wg.Wait()

	o.logger.Info("drafts generated",
		zap.Int("drafts", len(set.Drafts)),
		zap.Int("errors", len(set.Errors)))
	return set
}

// GenerateOne drafts with a single provider; an empty name picks the
// primary one. An unconfigured provider yields the placeholder draft.
func (o *Orchestrator) GenerateOne(ctx context.Context, provider string, req model.DraftRequest) (string, error) {
	var p llm.Provider
	var ok bool
	if provider == "" {
		p, ok = o.providers.First(llm.PrimaryOrder...)
	} else {
		p, ok = o.providers.Get(provider)
	}
	if !ok {
		return PlaceholderDraft(req.Title), nil
	}
	return o.draftWith(ctx, p, o.writingSystem(ctx), draftPrompt(req), req.Title)
}

// GenerateOutline produces a short outline with the primary provider
func (o *Orchestrator) GenerateOutline(ctx context.Context, title, description string) (string, error) {
	if !o.HasProvider() {
		return PlaceholderOutline(title), nil
	}

	raw, err := o.Complete(ctx, llm.Request{
		System:    o.writingSystem(ctx),
		Prompt:    outlinePrompt(title, description),
		MaxTokens: outlineMaxTokens,
	})
	if errors.Is(err, apperr.ErrEmptyResponse) {
		return PlaceholderOutline(title), nil
	}
	if err != nil {
		return "", fmt.Errorf("generate outline: %w", err)
	}

	outline := StripPreamble(raw)
	if outline == "" {
		return PlaceholderOutline(title), nil
	}
	return outline, nil
}

// draftWith runs one provider. A panic inside the provider is returned as
// an error for that provider alone.
func (o *Orchestrator) draftWith(ctx context.Context, p llm.Provider, system, prompt, title string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", p.Name(), r)
		}
	}()

	resp, err := p.Generate(ctx, llm.Request{
		System:    system,
		Prompt:    prompt,
		MaxTokens: o.cfg.DraftMaxTokens,
	})
	if err != nil {
		return "", err
	}

	raw := ""
	if resp != nil {
		raw = resp.Text
	}
	text, substituted := finishDraft(raw, title, o.cfg.MinDraftChars)
	if substituted {
		o.logger.Warn("draft too short, using placeholder", zap.String("provider", p.Name()))
	}
	return text, nil
}

// agentConfig returns the configured prompts, or the defaults
func (o *Orchestrator) agentConfig(ctx context.Context) model.AgentConfig {
	if o.prompts == nil {
		return model.DefaultAgentConfig()
	}
	cfg, err := o.prompts.Get(ctx)
	if err != nil {
		o.logger.Warn("agent config unavailable, using defaults", zap.Error(err))
		return model.DefaultAgentConfig()
	}
	return cfg.WithDefaults()
}

func (o *Orchestrator) writingSystem(ctx context.Context) string {
	return fixedWritingRules + o.agentConfig(ctx).Writing.SystemPrompt
}

// WritingPrompt returns the writing agent prompt with the fixed rules applied
func (o *Orchestrator) WritingPrompt(ctx context.Context) string {
	return o.writingSystem(ctx)
}
