package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/llm"
	"github.com/ppiankov/draftsmith/internal/model"
	"github.com/ppiankov/draftsmith/internal/parse"
)

// IdeasRequest asks for article ideas
type IdeasRequest struct {
	// Context, when not empty, grounds the ideas in retrieved sources
	Context model.RetrievalContext

	// Count is the number of ideas wanted (0 or more than MaxIdeas = MaxIdeas)
	Count int

	// Avoid lists titles already chosen; new ideas should differ
	Avoid []string
}

func newIdeaID() string {
	return uuid.NewString()
}

// GenerateIdeas asks the ideas providers for article ideas. It returns
// apperr.ErrNoProvider when nothing is configured and
// apperr.ErrUnparseable when the answer cannot be read.
func (o *Orchestrator) GenerateIdeas(ctx context.Context, req IdeasRequest) ([]model.Idea, error) {
	count := req.Count
	if count <= 0 || count > model.MaxIdeas {
		count = model.MaxIdeas
	}

	raw, err := o.Complete(ctx, llm.Request{
		System:    o.agentConfig(ctx).Ideas.SystemPrompt,
		Prompt:    ideasPrompt(req, count),
		MaxTokens: o.cfg.IdeaMaxTokens,
		JSON:      true,
	}, llm.IdeaOrder...)
	if err != nil {
		return nil, fmt.Errorf("generate ideas: %w", err)
	}

	fields, err := parse.Ideas(raw, count)
	if err != nil {
		o.logger.Warn("unparseable ideas response", zap.Int("bytes", len(raw)), zap.Error(err))
		return nil, fmt.Errorf("generate ideas: %w", err)
	}

	ideas := make([]model.Idea, 0, len(fields))
	for _, f := range fields {
		ideas = append(ideas, o.buildIdea(f, req.Context))
	}
	return ideas, nil
}

// buildIdea attaches an id, resolved sources and a confidence level
func (o *Orchestrator) buildIdea(f parse.IdeaFields, rc model.RetrievalContext) model.Idea {
	idea := model.Idea{
		ID:          o.newID(),
		Title:       f.Title,
		Description: f.Description,
	}
	if rc.Empty() {
		return idea
	}

	seen := make(map[string]bool)
	for _, id := range f.SourceIDs {
		id = strings.TrimSpace(id)
		if seen[id] {
			continue
		}
		seen[id] = true
		if src, ok := rc.SourcesMap[id]; ok {
			idea.SourceIDs = append(idea.SourceIDs, id)
			idea.Sources = append(idea.Sources, src)
		}
	}
	idea.ConfidenceLevel = o.scorer.IdeaConfidence(f.ConfidenceLevel, len(idea.Sources))
	return idea
}
