package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/draftsmith/internal/agentconfig"
	"github.com/ppiankov/draftsmith/internal/model"
)

var (
	description string
	inputFile   string
	outlineFile string
	jsonOutput  bool
	refine      bool
	allDrafts   bool
	asHTML      bool
	stepTimeout time.Duration
	ideasPrompt string
	writePrompt string
)

// ideasCmd represents the ideas command
var ideasCmd = &cobra.Command{
	Use:   "ideas",
	Short: "Propose article ideas grounded in web search and the encyclopedia",
	Long: `Ideas gathers sources from the configured search backend and the
encyclopedia, then asks the generation providers for up to three ideas.

With --refine, ideas are checked against evidence and invalid ones are
replaced for up to two rounds.

Example:
  draftsmith ideas
  draftsmith ideas --refine --json`,
	Args: cobra.NoArgs,
	RunE: runIdeas,
}

// outlineCmd represents the outline command
var outlineCmd = &cobra.Command{
	Use:   "outline <title>",
	Short: "Write an article outline",
	Args:  cobra.ExactArgs(1),
	RunE:  runOutline,
}

// draftCmd represents the draft command
var draftCmd = &cobra.Command{
	Use:   "draft <title>",
	Short: "Write an article draft",
	Long: `Draft writes the article with the first provider that answers, or with
every provider when --all is set.

Example:
  draftsmith draft "The Sydney Harbour Bridge" --outline-file outline.txt
  draftsmith draft "The Sydney Harbour Bridge" --all --json`,
	Args: cobra.ExactArgs(1),
	RunE: runDraft,
}

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <title>",
	Short: "Fact-check an outline or draft",
	Long: `Validate extracts factual claims from the text (file or stdin), searches
for evidence and judges each claim as ok, warning or unsure.

Example:
  draftsmith validate "The Sydney Harbour Bridge" -f outline.txt
  cat draft.html | draftsmith validate "The Sydney Harbour Bridge" --html`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

// reviseCmd represents the revise command
var reviseCmd = &cobra.Command{
	Use:   "revise <title>",
	Short: "Validate text once and rewrite the flagged passages",
	Args:  cobra.ExactArgs(1),
	RunE:  runRevise,
}

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review <title>",
	Short: "Validate and revise text until it checks out or the round budget runs out",
	Args:  cobra.ExactArgs(1),
	RunE:  runReview,
}

// providersCmd represents the providers command
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured generation, search and encyclopedia backends",
	Args:  cobra.NoArgs,
	RunE:  runProviders,
}

var agentConfigCmd = &cobra.Command{
	Use:   "agent-config",
	Short: "Show or change the system prompts of the ideas and writing agents",
}

var agentConfigShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current agent prompts",
	Args:  cobra.NoArgs,
	RunE:  runAgentConfigShow,
}

var agentConfigSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change agent prompts",
	Long: `Set replaces the system prompt of one or both agents. A value starting
with @ is read from that file.

Example:
  draftsmith agent-config set --writing "Write in plain English."
  draftsmith agent-config set --ideas @ideas-prompt.txt`,
	Args: cobra.NoArgs,
	RunE: runAgentConfigSet,
}

func init() {
	rootCmd.AddCommand(ideasCmd, outlineCmd, draftCmd, validateCmd, reviseCmd, reviewCmd, providersCmd, agentConfigCmd)
	agentConfigCmd.AddCommand(agentConfigShowCmd, agentConfigSetCmd)

	for _, cmd := range []*cobra.Command{ideasCmd, outlineCmd, draftCmd, validateCmd, reviseCmd, reviewCmd} {
		cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
		cmd.Flags().DurationVar(&stepTimeout, "timeout", 5*time.Minute, "overall timeout")
	}
	for _, cmd := range []*cobra.Command{outlineCmd, draftCmd, validateCmd, reviseCmd, reviewCmd} {
		cmd.Flags().StringVarP(&description, "description", "d", "", "short description of the article")
	}
	for _, cmd := range []*cobra.Command{validateCmd, reviseCmd, reviewCmd} {
		cmd.Flags().StringVarP(&inputFile, "file", "f", "-", "text to check (- for stdin)")
		cmd.Flags().BoolVar(&asHTML, "html", false, "input is an HTML draft")
	}

	ideasCmd.Flags().BoolVar(&refine, "refine", false, "validate ideas and replace invalid ones")
	draftCmd.Flags().StringVar(&outlineFile, "outline-file", "", "outline to follow")
	draftCmd.Flags().BoolVar(&allDrafts, "all", false, "draft with every provider")

	agentConfigSetCmd.Flags().StringVar(&ideasPrompt, "ideas", "", "system prompt for the ideas agent (@file to read from a file)")
	agentConfigSetCmd.Flags().StringVar(&writePrompt, "writing", "", "system prompt for the writing agent (@file to read from a file)")
}

func runIdeas(cmd *cobra.Command, args []string) error {
	_, logger, svc, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := commandContext()
	defer cancel()

	if refine {
		result, err := svc.RefineIdeas(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(result)
		}
		printIdeas(result.Ideas)
		fmt.Fprintf(os.Stderr, "\n%d revision round(s)\n", result.Rounds)
		return nil
	}

	ideas, err := svc.GenerateIdeas(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(map[string]any{"ideas": ideas})
	}
	printIdeas(ideas)
	return nil
}

func runOutline(cmd *cobra.Command, args []string) error {
	_, logger, svc, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := commandContext()
	defer cancel()

	outline, err := svc.GenerateOutline(ctx, args[0], description)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(map[string]string{"outline": outline})
	}
	fmt.Println(outline)
	return nil
}

func runDraft(cmd *cobra.Command, args []string) error {
	req := model.DraftRequest{Title: args[0], Description: description}
	if outlineFile != "" {
		outline, err := readInput(outlineFile)
		if err != nil {
			return err
		}
		req.Outline = outline
	}

	_, logger, svc, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := commandContext()
	defer cancel()

	if allDrafts {
		set, err := svc.GenerateAllDrafts(ctx, req)
		if jsonOutput && err == nil {
			return printJSON(set)
		}
		for _, name := range sortedKeys(set.Errors) {
			fmt.Fprintf(os.Stderr, "✗ %s: %s\n", name, set.Errors[name])
		}
		if err != nil {
			return err
		}
		for _, name := range sortedKeys(set.Drafts) {
			fmt.Printf("═══ %s ═══\n\n%s\n\n", name, set.Drafts[name])
		}
		return nil
	}

	draft, err := svc.GenerateDraft(ctx, req)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(map[string]string{"draft": draft})
	}
	fmt.Println(draft)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	text, err := readInput(inputFile)
	if err != nil {
		return err
	}

	_, logger, svc, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := commandContext()
	defer cancel()

	var result model.ValidationResult
	if asHTML {
		result = svc.ValidateDraft(ctx, args[0], description, text)
	} else {
		result = svc.ValidateOutline(ctx, args[0], description, text)
	}
	if jsonOutput {
		return printJSON(result)
	}
	printValidation(result)
	return nil
}

func runRevise(cmd *cobra.Command, args []string) error {
	text, err := readInput(inputFile)
	if err != nil {
		return err
	}

	_, logger, svc, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := commandContext()
	defer cancel()

	var result model.ValidationResult
	if asHTML {
		result = svc.ValidateDraft(ctx, args[0], description, text)
	} else {
		result = svc.ValidateOutline(ctx, args[0], description, text)
	}
	revised := svc.ReviseOutline(ctx, text, result)
	if jsonOutput {
		return printJSON(map[string]any{"validation": result, "revised": revised})
	}
	printValidation(result)
	fmt.Fprintln(os.Stderr)
	fmt.Println(revised)
	return nil
}

func runReview(cmd *cobra.Command, args []string) error {
	text, err := readInput(inputFile)
	if err != nil {
		return err
	}

	_, logger, svc, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := commandContext()
	defer cancel()

	review := svc.ReviewDraft(ctx, args[0], description, text)
	if jsonOutput {
		return printJSON(review)
	}
	printValidation(review.Validation)
	fmt.Fprintf(os.Stderr, "\n%d revision(s)\n\n", review.Revisions)
	fmt.Println(review.Text)
	return nil
}

func runProviders(cmd *cobra.Command, args []string) error {
	_, logger, svc, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	status := svc.Status()
	providers := "none (placeholder output only)"
	if len(status.Providers) > 0 {
		providers = strings.Join(status.Providers, ", ")
	}
	search := status.Search
	if search == "" {
		search = "none (text-only verification)"
	}

	fmt.Printf("  Generation:    %s\n", providers)
	fmt.Printf("  Search:        %s\n", search)
	fmt.Printf("  Encyclopedia:  %v\n", status.Encyclopedia)
	return nil
}

func runAgentConfigShow(cmd *cobra.Command, args []string) error {
	_, logger, svc, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := svc.AgentConfig(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cfg)
}

func runAgentConfigSet(cmd *cobra.Command, args []string) error {
	if ideasPrompt == "" && writePrompt == "" {
		return fmt.Errorf("nothing to change: pass --ideas and/or --writing")
	}

	update, err := promptUpdate(ideasPrompt, writePrompt)
	if err != nil {
		return err
	}

	_, logger, svc, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := svc.UpdateAgentConfig(cmd.Context(), update)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "✓ Agent prompts updated")
	return printJSON(cfg)
}

func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signalContext()
	ctx, cancel := context.WithTimeout(ctx, stepTimeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// readInput reads a file, or stdin for "" and "-"
func readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

// promptValue resolves @file references
func promptValue(v string) (string, error) {
	if !strings.HasPrefix(v, "@") {
		return v, nil
	}
	data, err := os.ReadFile(strings.TrimPrefix(v, "@"))
	if err != nil {
		return "", fmt.Errorf("read prompt file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func promptUpdate(ideas, writing string) (agentconfig.Update, error) {
	var update agentconfig.Update
	if ideas != "" {
		v, err := promptValue(ideas)
		if err != nil {
			return update, err
		}
		update.Ideas = &model.RoleConfig{SystemPrompt: v}
	}
	if writing != "" {
		v, err := promptValue(writing)
		if err != nil {
			return update, err
		}
		update.Writing = &model.RoleConfig{SystemPrompt: v}
	}
	return update, nil
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printIdeas(ideas []model.Idea) {
	for i, idea := range ideas {
		fmt.Printf("%d. %s\n", i+1, idea.Title)
		if idea.Description != "" {
			fmt.Printf("   %s\n", idea.Description)
		}
		if idea.ConfidenceLevel != "" {
			fmt.Printf("   confidence: %s\n", idea.ConfidenceLevel)
		}
		if idea.Verified != nil && !*idea.Verified {
			fmt.Printf("   ⚠ not confirmed by evidence\n")
		}
		for _, src := range idea.Sources {
			fmt.Printf("   - %s (%s)\n", src.Title, src.Link)
		}
		fmt.Println()
	}
}

func printValidation(result model.ValidationResult) {
	marks := map[model.Status]string{
		model.StatusOK:      "✓",
		model.StatusWarning: "✗",
		model.StatusUnsure:  "?",
	}
	for _, item := range result.Items {
		line := fmt.Sprintf("%s %s", marks[item.Status], item.Text)
		if item.Reason != "" {
			line += " (" + item.Reason + ")"
		}
		fmt.Fprintln(os.Stderr, line)
		for _, src := range item.Sources {
			fmt.Fprintf(os.Stderr, "    %s: %s\n", src.Title, src.Link)
		}
	}
	fmt.Fprintf(os.Stderr, "\n%s\n", result.Summary)
}
