package model

// MaxIdeas bounds every idea generation call
const MaxIdeas = 3

const (
	MaxIdeaTitleRunes       = 200
	MaxIdeaDescriptionRunes = 500
)

// Confidence levels attached to retrieval-augmented ideas
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Idea is a candidate article topic
type Idea struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	SourceIDs       []string         `json:"sourceIds,omitempty"`
	Sources         []EvidenceSource `json:"sources,omitempty"`
	ConfidenceLevel string           `json:"confidenceLevel,omitempty"`
	Verified        *bool            `json:"verified,omitempty"`
}

// IdeaValidation is the verdict for a single idea
type IdeaValidation struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Valid       bool        `json:"valid"`
	Reason      string      `json:"reason,omitempty"`
	Sources     []SourceRef `json:"sources,omitempty"`
}

// RefineResult is what the idea revision loop settles on
type RefineResult struct {
	Ideas       []Idea           `json:"ideas"`
	Validations []IdeaValidation `json:"validations"`
	Rounds      int              `json:"rounds"`
}

// SuggestionValidation says whether an edit suggestion is safe to apply
type SuggestionValidation struct {
	Suggestion string `json:"suggestion"`
	Valid      bool   `json:"valid"`
	Reason     string `json:"reason,omitempty"`
}

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
