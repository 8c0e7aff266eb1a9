package model

// Claim is a checkable factual assertion pulled out of generated text.
// It only lives for the duration of a single verification call.
type Claim struct {
	Text        string `json:"text"`
	SearchQuery string `json:"searchQuery"`
	Heuristic   string `json:"heuristic,omitempty"` // set when found by keyword matching instead of a model
}

// Status is the support level assigned to a claim after judgment
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusUnsure  Status = "unsure"
)

// NormalizeStatus maps a model-supplied status onto the closed set.
// Anything the judge did not flag as warning or unsure counts as ok.
func NormalizeStatus(s string) Status {
	switch Status(s) {
	case StatusWarning:
		return StatusWarning
	case StatusUnsure:
		return StatusUnsure
	default:
		return StatusOK
	}
}

// SourceRef is a citation attached to a validation item
type SourceRef struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// ValidationItem is the verdict for one claim
type ValidationItem struct {
	Text    string      `json:"text"`
	Status  Status      `json:"status"`
	Reason  string      `json:"reason,omitempty"`
	Sources []SourceRef `json:"sources,omitempty"`
}

// ValidationResult is the outcome of verifying a piece of text.
// AllVerified holds only when Items is non-empty and every item is ok,
// with the single exception of empty input text.
type ValidationResult struct {
	Items         []ValidationItem `json:"items"`
	Summary       string           `json:"summary"`
	AllVerified   bool             `json:"allVerified"`
	UsedWebSearch bool             `json:"usedWebSearch"`
}

// ProblemItems returns the items that need revision
func (r ValidationResult) ProblemItems() []ValidationItem {
	var out []ValidationItem
	for _, item := range r.Items {
		if item.Status == StatusWarning || item.Status == StatusUnsure {
			out = append(out, item)
		}
	}
	return out
}

// DraftReview is the output of the draft verify/revise loop
type DraftReview struct {
	Text       string           `json:"text"`
	Validation ValidationResult `json:"validation"`
	Revisions  int              `json:"revisions"`
}
