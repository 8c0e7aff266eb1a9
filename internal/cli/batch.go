package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/draftsmith/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	noValidate   bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Write outlines for many topics from a file in parallel",
	Long: `Batch drafts an outline for every topic in the input file:
- One topic per line: "title | optional description"
- Blank lines and lines starting with # are skipped
- Topics run in parallel with a configurable worker count
- Each outline is fact-checked unless --no-validate is set
- One Markdown and one JSON file is written per topic

Example:
  draftsmith batch topics.txt
  draftsmith batch topics.txt --concurrency 4 --output-dir ./outlines
  draftsmith batch topics.txt --no-validate --timeout 20m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./draftsmith-outlines", "output directory for outlines")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip fact-checking the outlines")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	_, logger, svc, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sigCtx, stop := signalContext()
	defer stop()
	ctx, cancel := context.WithTimeout(sigCtx, batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Draftsmith Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Validate:     %v\n", !noValidate)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(svc, concurrency, !noValidate, logger)

	fmt.Fprintf(os.Stderr, "⚙️  Processing topics with %d workers...\n\n", concurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Topic.Title, result.Error)
			continue
		}

		if err := writeOutline(outputDir, result); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Topic.Title, err)
			continue
		}
		successCount++

		status := "not checked"
		if result.Validation != nil {
			status = result.Validation.Summary
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%s)\n", result.Topic.Title, status)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d topics\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// writeOutline stores <slug>.md with the outline and <slug>.json with the
// full result
func writeOutline(dir string, result *worker.OutlineResult) error {
	slug := slugify(result.Topic.Title)

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", result.Topic.Title)
	if result.Topic.Description != "" {
		fmt.Fprintf(&md, "_%s_\n\n", result.Topic.Description)
	}
	md.WriteString(result.Outline)
	md.WriteString("\n")
	if v := result.Validation; v != nil {
		fmt.Fprintf(&md, "\n## Fact check\n\n%s\n\n", v.Summary)
		for _, item := range v.Items {
			fmt.Fprintf(&md, "- **%s** %s", item.Status, item.Text)
			if item.Reason != "" {
				fmt.Fprintf(&md, " (%s)", item.Reason)
			}
			md.WriteString("\n")
		}
	}
	if err := os.WriteFile(filepath.Join(dir, slug+".md"), []byte(md.String()), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	data, err := json.MarshalIndent(map[string]any{
		"title":       result.Topic.Title,
		"description": result.Topic.Description,
		"outline":     result.Outline,
		"validation":  result.Validation,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, slug+".json"), data, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// slugify turns a title into a safe file name
func slugify(s string) string {
	s = strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if r := []rune(s); len(r) > 100 {
		s = strings.TrimRight(string(r[:100]), "-")
	}
	if s == "" {
		return "untitled"
	}
	return s
}
