package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/draftsmith/internal/model"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(viper.New())
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	def := model.DefaultConfig()
	if cfg.Server.Addr != def.Server.Addr {
		t.Errorf("expected default addr %q, got %q", def.Server.Addr, cfg.Server.Addr)
	}
	if cfg.Verification.MaxRounds != def.Verification.MaxRounds {
		t.Errorf("expected default max rounds, got %d", cfg.Verification.MaxRounds)
	}
	if !strings.HasSuffix(cfg.AgentConfig.Path, filepath.Join(".draftsmith", "agents.yaml")) {
		t.Errorf("unexpected agent config path %q", cfg.AgentConfig.Path)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GOOGLE_API_KEY", "g-test")
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	t.Setenv("DRAFTSMITH_SERVER_ADDR", ":9999")
	t.Setenv("DRAFTSMITH_VERIFICATION_MAX_ROUNDS", "3")

	v := viper.New()
	bindEnv(v)

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.LLM.OpenAI.APIKey != "sk-test" {
		t.Errorf("expected openai key from env, got %q", cfg.LLM.OpenAI.APIKey)
	}
	if cfg.LLM.Gemini.APIKey != "g-test" {
		t.Errorf("expected gemini key from GOOGLE_API_KEY, got %q", cfg.LLM.Gemini.APIKey)
	}
	if cfg.Search.TavilyAPIKey != "tvly-test" {
		t.Errorf("expected tavily key from env, got %q", cfg.Search.TavilyAPIKey)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("expected addr from env, got %q", cfg.Server.Addr)
	}
	if cfg.Verification.MaxRounds != 3 {
		t.Errorf("expected max rounds 3, got %d", cfg.Verification.MaxRounds)
	}
	if cfg.LLM.OpenAI.Model != model.DefaultConfig().LLM.OpenAI.Model {
		t.Errorf("expected default model kept, got %q", cfg.LLM.OpenAI.Model)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `search:
  timeout: 3s
  serper_api_key: serper-test
logging:
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Search.Timeout != 3*time.Second {
		t.Errorf("expected 3s search timeout, got %v", cfg.Search.Timeout)
	}
	if cfg.Search.SerperAPIKey != "serper-test" {
		t.Errorf("expected serper key from file, got %q", cfg.Search.SerperAPIKey)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "info" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Search.TavilyBaseURL != model.DefaultConfig().Search.TavilyBaseURL {
		t.Error("expected untouched keys to keep their defaults")
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".draftsmith")
	path := filepath.Join(dir, "config.yaml")

	if err := writeDefaultConfig(dir, path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if cfg.Server.Addr != model.DefaultConfig().Server.Addr {
		t.Errorf("expected defaults in the file, got addr %q", cfg.Server.Addr)
	}

	if err := writeDefaultConfig(dir, path); err == nil {
		t.Error("expected error when the file already exists")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Sydney Harbour Bridge", "the-sydney-harbour-bridge"},
		{"  What/Why: a *story*?  ", "what-why-a-story"},
		{"Ёлка и мост", "ёлка-и-мост"},
		{"???", "untitled"},
		{strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}

	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPromptUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	if err := os.WriteFile(path, []byte("  From a file.\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	update, err := promptUpdate("@"+path, "")
	if err != nil {
		t.Fatalf("promptUpdate failed: %v", err)
	}
	if update.Ideas == nil || update.Ideas.SystemPrompt != "From a file." {
		t.Errorf("expected ideas prompt from file, got %+v", update.Ideas)
	}
	if update.Writing != nil {
		t.Error("expected writing prompt left alone")
	}

	if _, err := promptUpdate("", "@"+filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for a missing prompt file")
	}
}

func TestReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.txt")
	if err := os.WriteFile(path, []byte("Opening.\nBody."), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := readInput(path)
	if err != nil {
		t.Fatalf("readInput failed: %v", err)
	}
	if got != "Opening.\nBody." {
		t.Errorf("unexpected content %q", got)
	}

	if _, err := readInput(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for a missing file")
	}
}
