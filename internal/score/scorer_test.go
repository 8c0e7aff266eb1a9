package score

import (
	"strings"
	"testing"

	"github.com/ppiankov/draftsmith/internal/model"
)

func items(statuses ...model.Status) []model.ValidationItem {
	out := make([]model.ValidationItem, len(statuses))
	for i, s := range statuses {
		out[i] = model.ValidationItem{Text: "claim", Status: s}
	}
	return out
}

func TestScorer_Result_AllOK(t *testing.T) {
	scorer := NewScorer()

	result := scorer.Result(items(model.StatusOK, model.StatusOK), true)

	if !result.AllVerified {
		t.Error("Expected AllVerified for all-ok items")
	}
	if !result.UsedWebSearch {
		t.Error("Expected UsedWebSearch to carry through")
	}
	if result.Summary != "Verified 2 claims against web search." {
		t.Errorf("Unexpected summary: %q", result.Summary)
	}
}

func TestScorer_Result_Mixed(t *testing.T) {
	scorer := NewScorer()

	result := scorer.Result(items(model.StatusOK, model.StatusWarning, model.StatusUnsure), false)

	if result.AllVerified {
		t.Error("Expected AllVerified false with flagged items")
	}
	if !strings.HasPrefix(result.Summary, "1 of 3 claims verified") {
		t.Errorf("Unexpected summary: %q", result.Summary)
	}
	if !strings.Contains(result.Summary, "model judgment") {
		t.Errorf("Expected text-only wording, got %q", result.Summary)
	}
}

func TestScorer_Result_Empty(t *testing.T) {
	scorer := NewScorer()

	result := scorer.Result(nil, false)

	if result.AllVerified {
		t.Error("Empty item list must not count as verified")
	}
	if result.Items == nil {
		t.Error("Expected non-nil items slice")
	}
	if result.Summary == "" {
		t.Error("Summary must always be present")
	}
}

func TestScorer_Summary_Singular(t *testing.T) {
	got := NewScorer().Summary(items(model.StatusOK), true)
	if got != "Verified 1 claim against web search." {
		t.Errorf("Unexpected summary: %q", got)
	}
}

func TestScorer_IdeaConfidence(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name     string
		declared string
		sources  int
		want     string
	}{
		{"no sources is low", "high", 0, "low"},
		{"declared capped by evidence", "high", 1, "medium"},
		{"declared lower than evidence", "low", 3, "low"},
		{"declared matches", "Medium", 1, "medium"},
		{"unknown declared uses derived", "very", 2, "high"},
		{"empty declared uses derived", "", 1, "medium"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scorer.IdeaConfidence(tt.declared, tt.sources); got != tt.want {
				t.Errorf("IdeaConfidence(%q, %d) = %q, want %q", tt.declared, tt.sources, got, tt.want)
			}
		})
	}
}
