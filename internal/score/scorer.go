package score

import (
	"fmt"
	"strings"

	"github.com/ppiankov/draftsmith/internal/model"
)

// Scorer turns judged items into the verdict shown to the author and
// derives idea confidence from the sources an idea cites.
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Result builds a ValidationResult from judged items. The summary sentence
// is always present; AllVerified holds only for a non-empty, all-ok list.
func (s *Scorer) Result(items []model.ValidationItem, usedWebSearch bool) model.ValidationResult {
	if items == nil {
		items = []model.ValidationItem{}
	}
	return model.ValidationResult{
		Items:         items,
		Summary:       s.Summary(items, usedWebSearch),
		AllVerified:   AllVerified(items),
		UsedWebSearch: usedWebSearch,
	}
}

// Summary returns the one-sentence verdict for a list of items
func (s *Scorer) Summary(items []model.ValidationItem, usedWebSearch bool) string {
	if len(items) == 0 {
		return "Nothing to verify."
	}

	verified := 0
	for _, item := range items {
		if item.Status == model.StatusOK {
			verified++
		}
	}

	against := "against web search"
	if !usedWebSearch {
		against = "by model judgment only"
	}

	if verified == len(items) {
		return fmt.Sprintf("Verified %d %s %s.", len(items), plural(len(items), "claim"), against)
	}
	return fmt.Sprintf("%d of %d %s verified %s. Review the flagged items.",
		verified, len(items), plural(len(items), "claim"), against)
}

// AllVerified reports whether items is non-empty and every status is ok
func AllVerified(items []model.ValidationItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.Status != model.StatusOK {
			return false
		}
	}
	return true
}

// IdeaConfidence combines the model's declared level with how many cited
// sources actually resolved. An idea that cites nothing is low confidence.
func (s *Scorer) IdeaConfidence(declared string, resolvedSources int) string {
	derived := s.determineConfidence(resolvedSources)

	switch strings.ToLower(strings.TrimSpace(declared)) {
	case model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow:
		declared = strings.ToLower(strings.TrimSpace(declared))
	default:
		return derived
	}

	// never more confident than the evidence allows
	if rank(declared) < rank(derived) {
		return declared
	}
	return derived
}

// determineConfidence maps a resolved source count to a level
func (s *Scorer) determineConfidence(sources int) string {
	switch {
	case sources >= 2:
		return model.ConfidenceHigh
	case sources == 1:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func rank(level string) int {
	switch level {
	case model.ConfidenceHigh:
		return 2
	case model.ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
