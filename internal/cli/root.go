package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/logging"
	"github.com/ppiankov/draftsmith/internal/model"
	"github.com/ppiankov/draftsmith/internal/pipeline"
)

const version = "draftsmith v0.1.0"

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "draftsmith",
	Short: "Draftsmith - evidence-grounded article drafting",
	Long: `Draftsmith drafts articles with generation models and checks them
against web search and the encyclopedia.

It proposes ideas, writes outlines and drafts with every configured
provider, extracts factual claims, judges them against evidence and
revises the passages it could not confirm.

Draftsmith flags what it cannot confirm. It does not decide what is true.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Draftsmith.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.draftsmith/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads .env files, the config file and ENV variables
func initConfig() {
	// .env.local wins over .env; neither overrides the real environment
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err == nil && verbose {
			fmt.Fprintf(os.Stderr, "Loaded environment from %s\n", name)
		}
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.draftsmith")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	bindEnv(viper.GetViper())

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setup loads configuration and builds the logger and service
func setup() (model.Config, *zap.Logger, *pipeline.Service, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return model.Config{}, nil, nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return model.Config{}, nil, nil, err
	}

	svc, err := pipeline.New(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return model.Config{}, nil, nil, fmt.Errorf("build pipeline: %w", err)
	}
	return cfg, logger, svc, nil
}

func newLogger(cfg model.Config) (*zap.Logger, error) {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
