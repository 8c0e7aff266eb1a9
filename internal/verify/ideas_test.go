package verify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/draftsmith/internal/model"
)

func sampleIdeas() []model.Idea {
	return []model.Idea{
		{Title: "The bridge that took eight years", Description: "How the harbour crossing was built"},
		{Title: "Moon cheese", Description: "The moon is made of cheese"},
		{Title: "Forgotten lighthouses"},
	}
}

func TestValidateIdeas_Empty(t *testing.T) {
	llm := &fakeCompleter{}
	got := newTestVerifier(llm, nil).ValidateIdeas(context.Background(), nil)

	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil result, got %#v", got)
	}
	if len(llm.calls()) != 0 {
		t.Error("Expected no calls")
	}
}

func TestValidateIdeas_NoProvider(t *testing.T) {
	got := newTestVerifier(&fakeCompleter{disabled: true}, nil).ValidateIdeas(context.Background(), sampleIdeas())

	if len(got) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(got))
	}
	for _, v := range got {
		if !v.Valid || v.Reason != ReasonNotChecked {
			t.Errorf("Expected valid/not checked, got %+v", v)
		}
	}
	if got[0].Title != "The bridge that took eight years" || got[0].Description != "How the harbour crossing was built" {
		t.Errorf("Expected idea fields carried over, got %+v", got[0])
	}
}

func TestValidateIdeas_MapsByIndex(t *testing.T) {
	llm := &fakeCompleter{replies: []reply{
		{text: `{"results":[{"title":"other","valid":true},{"valid":false,"reason":"invented"}]}`},
	}}

	got := newTestVerifier(llm, nil).ValidateIdeas(context.Background(), sampleIdeas())

	if !got[0].Valid {
		t.Error("Expected first idea valid")
	}
	if got[0].Title != "The bridge that took eight years" {
		t.Errorf("Expected title from the idea, got %q", got[0].Title)
	}
	if got[1].Valid || got[1].Reason != "invented" {
		t.Errorf("Expected second idea invalid, got %+v", got[1])
	}
	if !got[2].Valid {
		t.Error("Expected idea without result to stay valid")
	}

	prompt := llm.calls()[0].Prompt
	if !strings.Contains(prompt, "3. Title: Forgotten lighthouses\n   Description: -") {
		t.Errorf("Expected numbered list with placeholder description, got %q", prompt)
	}
}

func TestValidateIdeas_UnusableAnswerAcceptsAll(t *testing.T) {
	tests := []struct {
		name  string
		reply reply
	}{
		{"unparseable", reply{text: "all good!"}},
		{"failure", reply{err: errors.New("boom")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeCompleter{replies: []reply{tt.reply}}
			got := newTestVerifier(llm, nil).ValidateIdeas(context.Background(), sampleIdeas())
			for _, v := range got {
				if !v.Valid {
					t.Errorf("Expected valid, got %+v", v)
				}
			}
		})
	}
}

func TestValidateIdeas_WithEvidence(t *testing.T) {
	search := &fakeSearcher{results: map[string][]model.EvidenceSource{
		"The bridge that took eight years": {
			{Title: "Harbour Bridge history", Link: "https://example.org/history", Snippet: "eight years of work"},
			{Title: "Bridge facts", Link: "https://example.org/facts", Snippet: "503 metres"},
			{Title: "Third", Link: "https://example.org/third", Snippet: "extra"},
		},
	}}
	llm := &fakeCompleter{replies: []reply{{text: `{"results":[{"valid":true},{"valid":false,"reason":"contradicted"},{"valid":true}]}`}}}

	got := newTestVerifier(llm, search).ValidateIdeas(context.Background(), sampleIdeas())

	if len(search.seen()) != 3 {
		t.Errorf("Expected one search per idea, got %v", search.seen())
	}
	if len(got[0].Sources) != 2 {
		t.Errorf("Expected 2 evidence sources on first idea, got %+v", got[0].Sources)
	}
	if len(got[1].Sources) != 0 {
		t.Errorf("Expected no sources on second idea, got %+v", got[1].Sources)
	}
	if !strings.Contains(llm.calls()[0].Prompt, "Evidence: Harbour Bridge history: eight years of work") {
		t.Error("Expected evidence in the prompt")
	}
	if got[1].Valid {
		t.Error("Expected contradicted idea invalid")
	}
}
