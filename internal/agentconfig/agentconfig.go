// Package agentconfig stores the operator-editable system prompts for the
// ideas and writing agents in a YAML file, read through a short TTL cache.
package agentconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/draftsmith/internal/cache"
	"github.com/ppiankov/draftsmith/internal/logging"
	"github.com/ppiankov/draftsmith/internal/model"
)

const cacheKey = "agent-config"

// Update carries a partial change; nil roles are left as they are
type Update struct {
	Ideas   *model.RoleConfig `json:"ideas,omitempty"`
	Writing *model.RoleConfig `json:"writing,omitempty"`
}

// Provider reads and writes the agent prompt file
type Provider struct {
	path   string
	cache  *cache.MemoryCache[model.AgentConfig]
	logger *zap.Logger

	mu     sync.Mutex // guards the file and memory
	memory *model.AgentConfig
}

// NewProvider creates a provider for path. An empty path keeps
// configuration in memory only.
func NewProvider(path string, ttl time.Duration, clock cache.Clock, logger *zap.Logger) *Provider {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Provider{
		path:   path,
		cache:  cache.NewMemoryCache[model.AgentConfig](ttl, clock),
		logger: logging.Component(logger, "agentconfig"),
	}
}

// Path returns the backing file path
func (p *Provider) Path() string {
	return p.path
}

// Get returns the current prompts. A missing or unreadable file yields the
// defaults; blank prompts fall back to the defaults individually.
func (p *Provider) Get(ctx context.Context) (model.AgentConfig, error) {
	if cfg, ok := p.cache.Get(cacheKey); ok {
		return cfg, nil
	}

	p.mu.Lock()
	cfg, err := p.load()
	p.mu.Unlock()
	if err != nil {
		p.logger.Warn("agent config unreadable, using defaults", zap.String("path", p.path), zap.Error(err))
		cfg = model.DefaultAgentConfig()
	}
	cfg = cfg.WithDefaults()
	p.cache.Set(cacheKey, cfg)
	return cfg, nil
}

// Set merges u into the stored prompts, writes them and invalidates the cache
func (p *Provider) Set(ctx context.Context, u Update) (model.AgentConfig, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	current, err := p.load()
	if err != nil {
		current = model.DefaultAgentConfig()
	}
	current = current.WithDefaults()
	if u.Ideas != nil {
		current.Ideas = *u.Ideas
	}
	if u.Writing != nil {
		current.Writing = *u.Writing
	}

	if err := p.store(current); err != nil {
		return model.AgentConfig{}, err
	}
	p.cache.Delete(cacheKey)
	p.logger.Info("agent config updated", zap.String("path", p.path))

	return current.WithDefaults(), nil
}

func (p *Provider) load() (model.AgentConfig, error) {
	if p.path == "" {
		if p.memory != nil {
			return *p.memory, nil
		}
		return model.DefaultAgentConfig(), nil
	}

	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.DefaultAgentConfig(), nil
	}
	if err != nil {
		return model.AgentConfig{}, fmt.Errorf("read agent config: %w", err)
	}

	var cfg model.AgentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.AgentConfig{}, fmt.Errorf("parse agent config: %w", err)
	}
	return cfg, nil
}

func (p *Provider) store(cfg model.AgentConfig) error {
	if p.path == "" {
		p.memory = &cfg
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal agent config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("write agent config: %w", err)
	}
	return nil
}
