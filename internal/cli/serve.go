package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/draftsmith/internal/httpapi"
)

var listenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long: `Serve exposes every authoring step over HTTP, plus /health and
Prometheus metrics at /metrics.

Example:
  draftsmith serve
  draftsmith serve --addr 127.0.0.1:9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (default from server.addr, :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, svc, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}

	status := svc.Status()
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Draftsmith API\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Listening:     %s\n", addr)
	fmt.Fprintf(os.Stderr, "  Providers:     %v\n", status.Providers)
	fmt.Fprintf(os.Stderr, "  Search:        %s\n", orNone(status.Search))
	fmt.Fprintf(os.Stderr, "  Encyclopedia:  %v\n", status.Encyclopedia)
	fmt.Fprintf(os.Stderr, "\n")

	ctx, stop := signalContext()
	defer stop()

	return httpapi.NewServer(svc, logger).Start(ctx, addr)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
