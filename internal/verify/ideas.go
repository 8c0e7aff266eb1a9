package verify

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/draftsmith/internal/llm"
	"github.com/ppiankov/draftsmith/internal/model"
	"github.com/ppiankov/draftsmith/internal/parse"
)

const (
	ideaEvidenceResults = 2
	ReasonNotChecked    = "not checked"
)

type ideasAnswer struct {
	Results []struct {
		Valid  *bool  `json:"valid"`
		Reason string `json:"reason"`
	} `json:"results"`
}

// ValidateIdeas judges each idea as sound or not. Without a provider, or
// when the answer is empty or unreadable, every idea counts as valid. The
// answer maps to ideas by position.
func (v *Verifier) ValidateIdeas(ctx context.Context, ideas []model.Idea) []model.IdeaValidation {
	out := make([]model.IdeaValidation, len(ideas))
	for i, idea := range ideas {
		out[i] = model.IdeaValidation{Title: idea.Title, Description: idea.Description, Valid: true}
	}
	if len(ideas) == 0 {
		return out
	}
	if !v.hasProvider() {
		for i := range out {
			out[i].Reason = ReasonNotChecked
		}
		return out
	}

	evidence := v.ideaEvidence(ctx, ideas)
	for i := range out {
		for _, r := range evidence[i] {
			out[i].Sources = append(out[i].Sources, model.SourceRef{Title: r.Title, Link: r.Link})
		}
	}

	raw, err := v.llm.Complete(ctx, llm.Request{
		System: "You check whether article ideas are relevant and sound. Answer with JSON only in the requested shape.",
		Prompt: ideasValidationPrompt(ideas, evidence),
		JSON:   true,
	})
	if err != nil {
		v.logger.Warn("idea validation failed, accepting all", zap.Error(err))
		return out
	}

	var answer ideasAnswer
	if err := parse.Object(raw, &answer); err != nil {
		v.logger.Warn("unparseable idea validation, accepting all", zap.Int("bytes", len(raw)), zap.Error(err))
		return out
	}

	for i := range out {
		if i >= len(answer.Results) {
			break
		}
		r := answer.Results[i]
		if r.Valid != nil {
			out[i].Valid = *r.Valid
		}
		out[i].Reason = strings.TrimSpace(r.Reason)
	}
	return out
}

// ideaEvidence searches for every idea title concurrently. The result is
// indexed like ideas and empty when search is off.
func (v *Verifier) ideaEvidence(ctx context.Context, ideas []model.Idea) [][]model.EvidenceSource {
	evidence := make([][]model.EvidenceSource, len(ideas))
	if !v.hasSearch() {
		return evidence
	}

	var g errgroup.Group
	for i, idea := range ideas {
		g.Go(func() error {
			evidence[i] = v.search.Search(ctx, idea.Title, ideaEvidenceResults)
			return nil
		})
	}
	_ = g.Wait()
	return evidence
}
