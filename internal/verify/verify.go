// Package verify checks generated text against web evidence.
//
// A verification call extracts checkable claims with one model call,
// searches for each claim in parallel, then asks the model to judge every
// claim against its results. Without a search backend the model judges the
// text on its own; without any model the keyword extractor supplies
// unverified candidates.
package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/apperr"
	"github.com/ppiankov/draftsmith/internal/extract"
	"github.com/ppiankov/draftsmith/internal/llm"
	"github.com/ppiankov/draftsmith/internal/logging"
	"github.com/ppiankov/draftsmith/internal/metrics"
	"github.com/ppiankov/draftsmith/internal/model"
	"github.com/ppiankov/draftsmith/internal/parse"
	"github.com/ppiankov/draftsmith/internal/score"
)

const (
	extractInputRunes  = 3000
	textOnlyInputRunes = 3500
	fallbackItemRunes  = 200
	maxItemSources     = 2
	untitledItemSource = "source"
)

// Reasons attached to items the model did not decide
const (
	ReasonNoResponse   = "no response from the verification model"
	ReasonUnparseable  = "could not parse the verification answer"
	ReasonNoVerdict    = "no verdict returned for this claim"
	ReasonNoClaims     = "no factual claims identified in the answer"
	ReasonNoProvider   = "no generation provider configured"
	ReasonNoEvidence   = "no search results for this claim"
	ReasonNoOverlap    = "search results do not mention the key details"
	ReasonWarning      = "no clear support in the search results"
	ReasonUnsure       = "could not decide from the available evidence"
	nothingToVerify    = "Nothing to verify."
	verificationFailed = "Verification did not complete."
	textOnlySummary    = "Judged by the model only. Set TAVILY_API_KEY or SERPER_API_KEY to check against web search."
)

// Completer runs a single generation call
type Completer interface {
	Complete(ctx context.Context, req llm.Request, order ...string) (string, error)
	HasProvider() bool
}

// Searcher looks up web evidence. Failures degrade to an empty result.
type Searcher interface {
	Search(ctx context.Context, query string, n int) []model.EvidenceSource
	Enabled() bool
}

// Verifier runs the claim verification pipeline
type Verifier struct {
	llm             Completer
	search          Searcher
	cfg             model.VerificationConfig
	reviseMaxTokens int
	extractor       *extract.ClaimExtractor
	scorer          *score.Scorer
	logger          *zap.Logger
}

// NewVerifier creates a verifier. search may be nil.
func NewVerifier(llm Completer, search Searcher, cfg model.VerificationConfig, reviseMaxTokens int, logger *zap.Logger) *Verifier {
	def := model.DefaultConfig()
	if cfg.MaxClaims <= 0 {
		cfg.MaxClaims = def.Verification.MaxClaims
	}
	if cfg.ResultsPerClaim <= 0 {
		cfg.ResultsPerClaim = def.Verification.ResultsPerClaim
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = def.Verification.MaxRounds
	}
	if reviseMaxTokens <= 0 {
		reviseMaxTokens = def.Generation.ReviseMaxTokens
	}

	return &Verifier{
		llm:             llm,
		search:          search,
		cfg:             cfg,
		reviseMaxTokens: reviseMaxTokens,
		extractor:       extract.NewClaimExtractor(cfg.MaxClaims),
		scorer:          score.NewScorer(),
		logger:          logging.Component(logger, "verify"),
	}
}

// Config returns the effective verification settings
func (v *Verifier) Config() model.VerificationConfig {
	return v.cfg
}

func (v *Verifier) hasProvider() bool {
	return v.llm != nil && v.llm.HasProvider()
}

func (v *Verifier) hasSearch() bool {
	return v.search != nil && v.search.Enabled()
}

// evidenceClaim is a claim with the results found for it
type evidenceClaim struct {
	model.Claim
	results []model.EvidenceSource
}

// Validate verifies the factual claims in text. It never fails: every
// degraded path is reported through item statuses and the summary.
func (v *Verifier) Validate(ctx context.Context, title, description, text string) model.ValidationResult {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ValidationResult{
			Items:       []model.ValidationItem{},
			Summary:     nothingToVerify,
			AllVerified: true,
		}
	}

	var result model.ValidationResult
	switch {
	case !v.hasProvider():
		result = v.offline(text)
	case v.hasSearch():
		result = v.withEvidence(ctx, title, description, text)
	default:
		result = v.textOnly(ctx, title, description, text)
	}

	for _, item := range result.Items {
		metrics.VerificationItems.WithLabelValues(string(item.Status)).Inc()
	}
	v.logger.Info("verification finished",
		zap.Int("items", len(result.Items)),
		zap.Bool("all_verified", result.AllVerified),
		zap.Bool("web_search", result.UsedWebSearch))
	return result
}

// withEvidence is the full extract, search, judge path
func (v *Verifier) withEvidence(ctx context.Context, title, description, text string) model.ValidationResult {
	claims := v.extractClaims(ctx, title, description, text)
	if len(claims) == 0 && containsDigit(text) {
		v.logger.Debug("no claims extracted from text with numbers, retrying")
		claims = v.extractClaims(ctx, title, description, text)
	}
	if len(claims) == 0 {
		v.logger.Info("no claims extracted, falling back to text-only judgment")
		return v.textOnly(ctx, title, description, text)
	}

	items := v.judge(ctx, v.gatherEvidence(ctx, claims))
	return v.scorer.Result(items, true)
}

// gatherEvidence runs one search per claim concurrently
func (v *Verifier) gatherEvidence(ctx context.Context, claims []model.Claim) []evidenceClaim {
	out := make([]evidenceClaim, len(claims))
	var wg sync.WaitGroup
	for i, c := range claims {
		wg.Add(1)
		go func(idx int, c model.Claim) {
			defer wg.Done()
			out[idx] = evidenceClaim{Claim: c, results: v.search.Search(ctx, c.SearchQuery, v.cfg.ResultsPerClaim)}
		}(i, c)
	}
	wg.Wait()
	return out
}

type claimsAnswer struct {
	Claims []struct {
		Text        string `json:"text"`
		SearchQuery string `json:"searchQuery"`
	} `json:"claims"`
}

// extractClaims asks the model for checkable claims. Any failure yields
// no claims.
func (v *Verifier) extractClaims(ctx context.Context, title, description, text string) []model.Claim {
	raw, err := v.llm.Complete(ctx, llm.Request{
		System: "You extract factual claims from article text (an outline or a full draft). Answer with JSON only in the requested shape. If the text contains facts, extract at least one claim.",
		Prompt: extractPrompt(title, description, model.Truncate(text, extractInputRunes), v.cfg.MaxClaims),
		JSON:   true,
	})
	if err != nil {
		v.logger.Warn("claim extraction failed", zap.Error(err))
		return nil
	}

	var answer claimsAnswer
	if err := parse.Object(raw, &answer); err != nil {
		v.logger.Warn("unparseable claim extraction answer", zap.Int("bytes", len(raw)), zap.Error(err))
		return nil
	}

	var claims []model.Claim
	for _, c := range answer.Claims {
		text, query := strings.TrimSpace(c.Text), strings.TrimSpace(c.SearchQuery)
		if text == "" || query == "" {
			continue
		}
		claims = append(claims, model.Claim{Text: text, SearchQuery: query})
		if len(claims) == v.cfg.MaxClaims {
			break
		}
	}
	return claims
}

type judgeAnswer struct {
	Items []struct {
		Text    string `json:"text"`
		Status  string `json:"status"`
		Reason  string `json:"reason"`
		Sources []struct {
			Title string `json:"title"`
			Link  string `json:"link"`
		} `json:"sources"`
	} `json:"items"`
}

// judge asks the model to rate every claim against its evidence. Answer
// items map to claims by position.
func (v *Verifier) judge(ctx context.Context, claims []evidenceClaim) []model.ValidationItem {
	raw, err := v.llm.Complete(ctx, llm.Request{
		System: "You check claims against search results. Answer with JSON only: items, each with text, status, optional reason and optional sources.",
		Prompt: judgePrompt(claims),
		JSON:   true,
	})
	if errors.Is(err, apperr.ErrEmptyResponse) {
		return allUnsure(claims, ReasonNoResponse)
	}
	if err != nil {
		v.logger.Warn("claim judgment failed, using lexical corroboration", zap.Error(err))
		return corroborate(claims)
	}

	var answer judgeAnswer
	if err := parse.Object(raw, &answer); err != nil {
		v.logger.Warn("unparseable judgment, using lexical corroboration", zap.Int("bytes", len(raw)), zap.Error(err))
		return corroborate(claims)
	}

	items := make([]model.ValidationItem, len(claims))
	for i, c := range claims {
		if i >= len(answer.Items) {
			items[i] = model.ValidationItem{Text: c.Text, Status: model.StatusUnsure, Reason: ReasonNoVerdict}
			continue
		}
		a := answer.Items[i]
		item := model.ValidationItem{
			Text:   c.Text,
			Status: model.NormalizeStatus(strings.TrimSpace(a.Status)),
			Reason: strings.TrimSpace(a.Reason),
		}
		for _, s := range a.Sources {
			link := strings.TrimSpace(s.Link)
			if link == "" {
				continue
			}
			title := strings.TrimSpace(s.Title)
			if title == "" {
				title = untitledItemSource
			}
			item.Sources = append(item.Sources, model.SourceRef{Title: title, Link: link})
			if len(item.Sources) == maxItemSources {
				break
			}
		}
		items[i] = withDefaultReason(item)
	}
	return items
}

type textOnlyAnswer struct {
	Items []struct {
		Text   string `json:"text"`
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"items"`
	Summary string `json:"summary"`
}

// textOnly lets the model judge the text without evidence. The result
// always has at least one item.
func (v *Verifier) textOnly(ctx context.Context, title, description, text string) model.ValidationResult {
	fallback := func(reason, summary string) model.ValidationResult {
		return model.ValidationResult{
			Items:   []model.ValidationItem{{Text: model.Truncate(text, fallbackItemRunes), Status: model.StatusUnsure, Reason: reason}},
			Summary: summary,
		}
	}

	raw, err := v.llm.Complete(ctx, llm.Request{
		System: "You fact-check an article. Identify factual claims and judge whether they look well founded. Answer with JSON only: items (at least one) and summary.",
		Prompt: textOnlyPrompt(title, description, model.Truncate(text, textOnlyInputRunes), v.cfg.MaxClaims),
		JSON:   true,
	})
	if err != nil {
		v.logger.Warn("text-only verification failed", zap.Error(err))
		return fallback(ReasonNoResponse, verificationFailed)
	}

	var answer textOnlyAnswer
	if err := parse.Object(raw, &answer); err != nil {
		v.logger.Warn("unparseable text-only answer", zap.Int("bytes", len(raw)), zap.Error(err))
		return fallback(ReasonUnparseable, verificationFailed)
	}

	var items []model.ValidationItem
	for _, a := range answer.Items {
		t := strings.TrimSpace(a.Text)
		if t == "" {
			continue
		}
		items = append(items, withDefaultReason(model.ValidationItem{
			Text:   t,
			Status: model.NormalizeStatus(strings.TrimSpace(a.Status)),
			Reason: strings.TrimSpace(a.Reason),
		}))
		if len(items) == v.cfg.MaxClaims {
			break
		}
	}

	summary := strings.TrimSpace(answer.Summary)
	if summary == "" {
		summary = textOnlySummary
	}
	if len(items) == 0 {
		return fallback(ReasonNoClaims, summary+" (no claims identified, try again.)")
	}
	return model.ValidationResult{
		Items:       items,
		Summary:     summary,
		AllVerified: score.AllVerified(items),
	}
}

// offline reports keyword-extracted candidates as unverified
func (v *Verifier) offline(text string) model.ValidationResult {
	var items []model.ValidationItem
	for _, c := range v.extractor.Extract(text) {
		items = append(items, model.ValidationItem{Text: c.Text, Status: model.StatusUnsure, Reason: ReasonNoProvider})
	}
	if len(items) == 0 {
		items = []model.ValidationItem{{Text: model.Truncate(text, fallbackItemRunes), Status: model.StatusUnsure, Reason: ReasonNoProvider}}
	}
	return model.ValidationResult{
		Items:   items,
		Summary: fmt.Sprintf("Verification not run: %s.", ReasonNoProvider),
	}
}

func allUnsure(claims []evidenceClaim, reason string) []model.ValidationItem {
	items := make([]model.ValidationItem, len(claims))
	for i, c := range claims {
		items[i] = model.ValidationItem{Text: c.Text, Status: model.StatusUnsure, Reason: reason}
	}
	return items
}

func withDefaultReason(item model.ValidationItem) model.ValidationItem {
	if item.Reason != "" {
		return item
	}
	switch item.Status {
	case model.StatusWarning:
		item.Reason = ReasonWarning
	case model.StatusUnsure:
		item.Reason = ReasonUnsure
	}
	return item
}

func containsDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
