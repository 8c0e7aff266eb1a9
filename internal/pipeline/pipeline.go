// Package pipeline is the authoring service: ideas, outlines, drafts,
// verification and the editing helpers, each one call away for the CLI
// and the HTTP API.
package pipeline

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/agentconfig"
	"github.com/ppiankov/draftsmith/internal/encyclopedia"
	"github.com/ppiankov/draftsmith/internal/generate"
	"github.com/ppiankov/draftsmith/internal/llm"
	"github.com/ppiankov/draftsmith/internal/logging"
	"github.com/ppiankov/draftsmith/internal/model"
	"github.com/ppiankov/draftsmith/internal/retrieval"
	"github.com/ppiankov/draftsmith/internal/search"
	"github.com/ppiankov/draftsmith/internal/util"
	"github.com/ppiankov/draftsmith/internal/validate"
	"github.com/ppiankov/draftsmith/internal/verify"
)

// ContextBuilder gathers retrieval sources for idea generation
type ContextBuilder interface {
	Build(ctx context.Context) model.RetrievalContext
}

// ReferenceChecker probes reference links and tags their authority
type ReferenceChecker interface {
	Validate(ctx context.Context, refs []model.SourceReference) []model.SourceReference
}

// Status describes which backends are wired
type Status struct {
	Providers    []string `json:"providers" yaml:"providers"`
	Search       string   `json:"search" yaml:"search"`
	Encyclopedia bool     `json:"encyclopedia" yaml:"encyclopedia"`
}

// Deps are the components a Service runs on. Retrieval, References and
// Agents may be nil.
type Deps struct {
	Generator  *generate.Orchestrator
	Verifier   *verify.Verifier
	Retrieval  ContextBuilder
	References ReferenceChecker
	Agents     *agentconfig.Provider
	MaxRounds  int
	Status     Status
	Logger     *zap.Logger
}

// Service orchestrates the authoring workflow
type Service struct {
	gen       *generate.Orchestrator
	verifier  *verify.Verifier
	retrieval ContextBuilder
	refs      ReferenceChecker
	agents    *agentconfig.Provider
	maxRounds int
	status    Status
	logger    *zap.Logger
}

// NewService creates a service from ready components
func NewService(d Deps) *Service {
	if d.MaxRounds <= 0 {
		d.MaxRounds = model.DefaultConfig().Verification.MaxRounds
	}
	if d.Agents == nil {
		d.Agents = agentconfig.NewProvider("", 0, nil, d.Logger)
	}
	if d.Status.Providers == nil {
		d.Status.Providers = d.Generator.Providers().Names()
	}
	return &Service{
		gen:       d.Generator,
		verifier:  d.Verifier,
		retrieval: d.Retrieval,
		refs:      d.References,
		agents:    d.Agents,
		maxRounds: d.MaxRounds,
		status:    d.Status,
		logger:    logging.Component(d.Logger, "pipeline"),
	}
}

// New wires every component from configuration
func New(cfg model.Config, logger *zap.Logger) (*Service, error) {
	providers, err := llm.NewSet(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create providers: %w", err)
	}

	agents := agentconfig.NewProvider(cfg.AgentConfig.Path, cfg.AgentConfig.CacheTTL, nil, logger)
	gen := generate.NewOrchestrator(providers, agents, cfg.Generation, logger)

	searchHTTP := &http.Client{
		Timeout: cfg.Search.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
		},
	}
	searchClient := search.NewClient(search.SelectBackend(cfg.Search, searchHTTP), cfg.Search, search.WithLogger(logger))

	var searcher retrieval.Searcher
	if searchClient.Enabled() {
		searcher = searchClient
	}
	var wiki retrieval.Encyclopedia
	if cfg.Encyclopedia.Enabled {
		wiki = encyclopedia.NewClient(cfg.Encyclopedia, cfg.HTTP, logger)
	}

	return NewService(Deps{
		Generator:  gen,
		Verifier:   verify.NewVerifier(gen, searchClient, cfg.Verification, cfg.Generation.ReviseMaxTokens, logger),
		Retrieval:  retrieval.NewBuilder(searcher, wiki, cfg.Retrieval, logger),
		References: validate.NewValidator(cfg.HTTP, cfg.Concurrency.Workers, &cfg.Authority, logger),
		Agents:     agents,
		MaxRounds:  cfg.Verification.MaxRounds,
		Status: Status{
			Providers:    providers.Names(),
			Search:       searchClient.Backend(),
			Encyclopedia: cfg.Encyclopedia.Enabled,
		},
		Logger: logger,
	}), nil
}

// Status reports the wired backends
func (s *Service) Status() Status {
	return s.status
}

// AgentConfig returns the current agent prompts
func (s *Service) AgentConfig(ctx context.Context) (model.AgentConfig, error) {
	return s.agents.Get(ctx)
}

// UpdateAgentConfig merges u into the stored agent prompts
func (s *Service) UpdateAgentConfig(ctx context.Context, u agentconfig.Update) (model.AgentConfig, error) {
	return s.agents.Set(ctx, u)
}
