package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/draftsmith/internal/model"
)

// envBindings maps config keys to the conventional variables read besides
// DRAFTSMITH_<KEY>
var envBindings = map[string][]string{
	"llm.openai.api_key":         {"OPENAI_API_KEY"},
	"llm.openai.model":           {"OPENAI_MODEL"},
	"llm.anthropic.api_key":      {"ANTHROPIC_API_KEY"},
	"llm.anthropic.model":        {"ANTHROPIC_MODEL"},
	"llm.gemini.api_key":         {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"llm.gemini.model":           {"GEMINI_MODEL"},
	"llm.ollama.base_url":        {"OLLAMA_BASE_URL"},
	"llm.ollama.model":           {"OLLAMA_MODEL"},
	"search.tavily_api_key":      {"TAVILY_API_KEY"},
	"search.serper_api_key":      {"SERPER_API_KEY"},
	"http.http_proxy":            {"HTTP_PROXY"},
	"http.https_proxy":           {"HTTPS_PROXY"},
	"http.no_proxy":              {"NO_PROXY"},
	"encyclopedia.enabled":       nil,
	"encyclopedia.base_url":      nil,
	"verification.max_rounds":    nil,
	"verification.max_claims":    nil,
	"concurrency.workers":        nil,
	"server.addr":                nil,
	"logging.level":              nil,
	"logging.format":             nil,
	"agent_config.path":          nil,
	"agent_config.cache_ttl":     nil,
	"retrieval.max_sources":      nil,
	"generation.min_draft_chars": nil,
}

// bindEnv registers DRAFTSMITH_* for every known key plus the
// conventional credential variables
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("DRAFTSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, extra := range envBindings {
		names := append([]string{"DRAFTSMITH_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, extra...)
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
}

// loadConfig overlays the config file and environment on the defaults
func loadConfig(v *viper.Viper) (model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return model.Config{}, fmt.Errorf("parse config: %w", err)
	}

	def := model.DefaultConfig()
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
	if cfg.AgentConfig.Path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.AgentConfig.Path = filepath.Join(home, ".draftsmith", "agents.yaml")
		}
	}
	return cfg, nil
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Draftsmith configuration",
	Long: `Manage Draftsmith configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (DRAFTSMITH_*, OPENAI_API_KEY, ...)
3. .env.local and .env in the working directory
4. Config file (~/.draftsmith/config.yaml)
5. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration (defaults, config file, env vars, flags) with secrets masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		configFile := viper.ConfigFileUsed()
		if configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("  Current Configuration")
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()

		yamlData, err := yaml.Marshal(cfg.Redacted())
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		fmt.Println(string(yamlData))

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()
		fmt.Println("Configuration hierarchy (highest to lowest priority):")
		fmt.Println("  1. CLI flags")
		fmt.Println("  2. Environment variables (DRAFTSMITH_*, OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY, TAVILY_API_KEY, SERPER_API_KEY)")
		fmt.Println("  3. .env.local / .env")
		fmt.Println("  4. Config file (~/.draftsmith/config.yaml)")
		fmt.Println("  5. Defaults")
		fmt.Println()

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.draftsmith/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configDir := filepath.Join(home, ".draftsmith")
		configPath := filepath.Join(configDir, "config.yaml")
		return writeDefaultConfig(configDir, configPath)
	},
}

func writeDefaultConfig(configDir, configPath string) (err error) {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s\nUse 'draftsmith config show' to view it, or delete it first to recreate", configPath)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	// Helper for writing with error checking
	printf := func(format string, a ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(f, format, a...)
	}

	printf("# Draftsmith Configuration File\n")
	printf("#\n")
	printf("# Configuration hierarchy (highest to lowest priority):\n")
	printf("#   1. CLI flags\n")
	printf("#   2. Environment variables (DRAFTSMITH_*)\n")
	printf("#   3. .env.local / .env\n")
	printf("#   4. This config file\n")
	printf("#   5. Built-in defaults\n\n")
	printf("%s", yamlData)
	printf("\n# API Keys (recommended to use environment variables instead):\n")
	printf("#   export OPENAI_API_KEY=sk-...\n")
	printf("#   export ANTHROPIC_API_KEY=sk-ant-...\n")
	printf("#   export GEMINI_API_KEY=...\n")
	printf("#   export TAVILY_API_KEY=tvly-...   (or SERPER_API_KEY)\n")
	printf("#   export OLLAMA_BASE_URL=http://localhost:11434\n")
	if err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", configPath)
	fmt.Printf("\nTo view the configuration:\n")
	fmt.Printf("  draftsmith config show\n")
	fmt.Printf("\nTo customize, edit the file with your preferred editor:\n")
	fmt.Printf("  $EDITOR %s\n", configPath)
	fmt.Printf("\n")

	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
