package agentconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/ppiankov/draftsmith/internal/model"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestProvider_MissingFileUsesDefaults(t *testing.T) {
	p := NewProvider(filepath.Join(t.TempDir(), "agents.yaml"), time.Minute, nil, zaptest.NewLogger(t))

	cfg, err := p.Get(context.Background())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cfg != model.DefaultAgentConfig() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestProvider_BlankPromptFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	content := "ideas:\n  system_prompt: \"\"\nwriting:\n  system_prompt: Write tersely.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _ := NewProvider(path, time.Minute, nil, nil).Get(context.Background())

	if cfg.Ideas.SystemPrompt != model.DefaultAgentConfig().Ideas.SystemPrompt {
		t.Error("Expected blank ideas prompt to fall back to default")
	}
	if cfg.Writing.SystemPrompt != "Write tersely." {
		t.Errorf("Expected stored writing prompt, got %q", cfg.Writing.SystemPrompt)
	}
}

func TestProvider_CacheTTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	p := NewProvider(path, 60*time.Second, clock.Now, nil)
	ctx := context.Background()

	if _, err := p.Get(ctx); err != nil {
		t.Fatal(err)
	}

	// an out-of-band edit is not seen until the TTL passes
	if err := os.WriteFile(path, []byte("writing:\n  system_prompt: Edited.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _ := p.Get(ctx)
	if cfg.Writing.SystemPrompt == "Edited." {
		t.Error("Expected cached value before TTL")
	}

	clock.now = clock.now.Add(60 * time.Second)
	cfg, _ = p.Get(ctx)
	if cfg.Writing.SystemPrompt != "Edited." {
		t.Errorf("Expected reload after TTL, got %q", cfg.Writing.SystemPrompt)
	}
}

func TestProvider_SetInvalidatesCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "agents.yaml")
	p := NewProvider(path, time.Hour, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	if _, err := p.Get(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := p.Set(ctx, Update{Ideas: &model.RoleConfig{SystemPrompt: "Only maritime history."}}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	cfg, _ := p.Get(ctx)
	if cfg.Ideas.SystemPrompt != "Only maritime history." {
		t.Errorf("Expected write visible immediately, got %q", cfg.Ideas.SystemPrompt)
	}
	if cfg.Writing.SystemPrompt != model.DefaultAgentConfig().Writing.SystemPrompt {
		t.Error("Expected untouched role to keep its prompt")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected file written: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected non-empty file")
	}
}

func TestProvider_InMemory(t *testing.T) {
	p := NewProvider("", time.Minute, nil, nil)
	ctx := context.Background()

	if _, err := p.Set(ctx, Update{Writing: &model.RoleConfig{SystemPrompt: "In memory."}}); err != nil {
		t.Fatal(err)
	}
	cfg, _ := p.Get(ctx)
	if cfg.Writing.SystemPrompt != "In memory." {
		t.Errorf("Expected in-memory write, got %q", cfg.Writing.SystemPrompt)
	}
}
