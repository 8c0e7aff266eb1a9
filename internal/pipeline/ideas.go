package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/apperr"
	"github.com/ppiankov/draftsmith/internal/generate"
	"github.com/ppiankov/draftsmith/internal/metrics"
	"github.com/ppiankov/draftsmith/internal/model"
)

// GenerateIdeas proposes up to three article ideas, grounded in retrieved
// sources when any are found
func (s *Service) GenerateIdeas(ctx context.Context) ([]model.Idea, error) {
	if !s.gen.HasProvider() {
		return nil, apperr.ErrNoProvider
	}
	return s.gen.GenerateIdeas(ctx, generate.IdeasRequest{Context: s.buildContext(ctx)})
}

// ValidateIdeas judges each idea as sound or not
func (s *Service) ValidateIdeas(ctx context.Context, ideas []model.Idea) []model.IdeaValidation {
	return s.verifier.ValidateIdeas(ctx, ideas)
}

// maxIdeaRounds caps idea regeneration regardless of the review budget
const maxIdeaRounds = 2

// RefineIdeas generates ideas, then replaces the ones judged invalid for
// at most maxIdeaRounds rounds. Valid ideas are kept as they are; a failed
// regeneration ends the loop with the best set so far.
func (s *Service) RefineIdeas(ctx context.Context) (model.RefineResult, error) {
	if !s.gen.HasProvider() {
		return model.RefineResult{}, apperr.ErrNoProvider
	}

	rc := s.buildContext(ctx)
	ideas, err := s.gen.GenerateIdeas(ctx, generate.IdeasRequest{Context: rc})
	if err != nil {
		return model.RefineResult{}, err
	}
	validations := s.verifier.ValidateIdeas(ctx, ideas)

	tried := titles(ideas)
	seen := make(map[string]bool)
	for _, t := range tried {
		seen[titleKey(t)] = true
	}

	rounds := 0
	limit := min(s.maxRounds, maxIdeaRounds)
	for rounds < limit && ctx.Err() == nil {
		invalid := invalidIndexes(validations)
		if len(invalid) == 0 {
			break
		}
		rounds++

		fresh, err := s.gen.GenerateIdeas(ctx, generate.IdeasRequest{
			Context: rc,
			Count:   len(invalid),
			Avoid:   tried,
		})
		if err != nil {
			s.logger.Warn("idea regeneration failed, keeping best so far", zap.Int("round", rounds), zap.Error(err))
			break
		}

		fresh = unseen(fresh, seen, len(invalid))
		if len(fresh) == 0 {
			s.logger.Info("regeneration produced no new ideas", zap.Int("round", rounds))
			break
		}
		tried = append(tried, titles(fresh)...)
		freshValidations := s.verifier.ValidateIdeas(ctx, fresh)

		for i, idea := range fresh {
			slot := invalid[i]
			ideas[slot] = idea
			validations[slot] = freshValidations[i]
		}
		s.logger.Debug("replaced invalid ideas", zap.Int("round", rounds), zap.Int("replaced", len(fresh)))
	}

	metrics.RevisionRounds.WithLabelValues("ideas").Observe(float64(rounds))

	if len(ideas) > model.MaxIdeas {
		ideas = ideas[:model.MaxIdeas]
		validations = validations[:model.MaxIdeas]
	}
	for i := range ideas {
		valid := validations[i].Valid
		ideas[i].Verified = &valid
	}
	return model.RefineResult{Ideas: ideas, Validations: validations, Rounds: rounds}, nil
}

func (s *Service) buildContext(ctx context.Context) model.RetrievalContext {
	if s.retrieval == nil {
		return model.RetrievalContext{}
	}
	return s.retrieval.Build(ctx)
}

func invalidIndexes(validations []model.IdeaValidation) []int {
	var out []int
	for i, v := range validations {
		if !v.Valid {
			out = append(out, i)
		}
	}
	return out
}

func titles(ideas []model.Idea) []string {
	out := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		out = append(out, idea.Title)
	}
	return out
}

// unseen drops ideas whose title was already used and records the rest
func unseen(ideas []model.Idea, seen map[string]bool, limit int) []model.Idea {
	var out []model.Idea
	for _, idea := range ideas {
		key := titleKey(idea.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, idea)
		if len(out) == limit {
			break
		}
	}
	return out
}

func titleKey(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}
