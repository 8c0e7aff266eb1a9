package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/apperr"
	"github.com/ppiankov/draftsmith/internal/extract"
	"github.com/ppiankov/draftsmith/internal/metrics"
	"github.com/ppiankov/draftsmith/internal/model"
)

// GenerateOutline drafts a short outline for an idea
func (s *Service) GenerateOutline(ctx context.Context, title, description string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", apperr.Invalid("title is required")
	}
	return s.gen.GenerateOutline(ctx, title, description)
}

// GenerateDraft writes a full draft with the primary provider
func (s *Service) GenerateDraft(ctx context.Context, req model.DraftRequest) (string, error) {
	if strings.TrimSpace(req.Title) == "" {
		return "", apperr.Invalid("title is required")
	}
	return s.gen.GenerateOne(ctx, "", req)
}

// GenerateAllDrafts writes one draft per provider. The set is returned
// even on error; the error is set only when no provider produced a draft.
func (s *Service) GenerateAllDrafts(ctx context.Context, req model.DraftRequest) (model.DraftSet, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.NewDraftSet(), apperr.Invalid("title is required")
	}

	set := s.gen.GenerateAll(ctx, req)
	if len(set.Drafts) > 0 {
		return set, nil
	}

	names := make([]string, 0, len(set.Errors))
	for name := range set.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	errs := make([]error, 0, len(names))
	for _, name := range names {
		errs = append(errs, fmt.Errorf("%s: %s", name, set.Errors[name]))
	}
	return set, apperr.Wrap(apperr.ErrAllProvidersFailed, "generate drafts", errors.Join(errs...))
}

// ValidateOutline verifies the factual claims in an outline or a plain
// text draft
func (s *Service) ValidateOutline(ctx context.Context, title, description, text string) model.ValidationResult {
	return s.verifier.Validate(ctx, title, description, text)
}

// ValidateDraft verifies a draft that may be HTML
func (s *Service) ValidateDraft(ctx context.Context, title, description, draft string) model.ValidationResult {
	return s.verifier.Validate(ctx, title, description, extract.Text(draft))
}

// ReviseOutline rewrites the passages flagged in result
func (s *Service) ReviseOutline(ctx context.Context, text string, result model.ValidationResult) string {
	return s.verifier.Revise(ctx, text, result)
}

// ReviewDraft alternates verification and revision until the text is
// verified, a revision changes nothing, or the round budget is spent
func (s *Service) ReviewDraft(ctx context.Context, title, description, text string) model.DraftReview {
	result := s.verifier.Validate(ctx, title, description, text)

	revisions := 0
	for revisions < s.maxRounds && !result.AllVerified && ctx.Err() == nil {
		revised := s.verifier.Revise(ctx, text, result)
		if revised == text {
			break
		}
		text = revised
		revisions++
		result = s.verifier.Validate(ctx, title, description, text)
	}

	metrics.RevisionRounds.WithLabelValues("draft").Observe(float64(revisions))
	s.logger.Info("draft reviewed",
		zap.Int("revisions", revisions),
		zap.Bool("all_verified", result.AllVerified))

	return model.DraftReview{Text: text, Validation: result, Revisions: revisions}
}
