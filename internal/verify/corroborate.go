package verify

import (
	"strings"
	"unicode"

	"github.com/ppiankov/draftsmith/internal/model"
)

const minContentWordRunes = 4

var stopWords = map[string]bool{
	"about": true, "after": true, "also": true, "been": true, "before": true,
	"from": true, "have": true, "into": true, "more": true, "most": true,
	"only": true, "over": true, "some": true, "than": true, "that": true,
	"their": true, "them": true, "then": true, "there": true, "these": true,
	"they": true, "this": true, "were": true, "what": true, "when": true,
	"which": true, "while": true, "with": true, "would": true, "where": true,
}

// corroborate judges claims by token overlap with their evidence. A claim
// is ok when one result mentions every number in it and at least half of
// its content words.
func corroborate(claims []evidenceClaim) []model.ValidationItem {
	items := make([]model.ValidationItem, len(claims))
	for i, c := range claims {
		items[i] = corroborateOne(c)
	}
	return items
}

func corroborateOne(c evidenceClaim) model.ValidationItem {
	item := model.ValidationItem{Text: c.Text}
	if len(c.results) == 0 {
		item.Status = model.StatusUnsure
		item.Reason = ReasonNoEvidence
		return item
	}

	tokens := keyTokens(c.Text)
	if len(tokens) == 0 {
		item.Status = model.StatusUnsure
		item.Reason = ReasonUnsure
		return item
	}

	for _, r := range c.results {
		if !mentionsKeyDetails(r, tokens) {
			continue
		}
		item.Status = model.StatusOK
		title := r.Title
		if title == "" {
			title = untitledItemSource
		}
		if len(item.Sources) < maxItemSources {
			item.Sources = append(item.Sources, model.SourceRef{Title: title, Link: r.Link})
		}
	}
	if item.Status == model.StatusOK {
		return item
	}

	item.Status = model.StatusWarning
	item.Reason = ReasonNoOverlap
	return item
}

// keyTokens returns the numbers and content words of s, lowercased
func keyTokens(s string) []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, f := range words(s) {
		if seen[f] {
			continue
		}
		if !isNumber(f) && (len([]rune(f)) < minContentWordRunes || stopWords[f]) {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// mentionsKeyDetails requires every number as a whole word; content words
// may match inside longer words and only half of them need to appear
func mentionsKeyDetails(src model.EvidenceSource, tokens []string) bool {
	text := src.Title + " " + src.Snippet
	haystack := strings.ToLower(text)
	present := make(map[string]bool)
	for _, w := range words(text) {
		present[w] = true
	}

	var contentWords, matched int
	for _, t := range tokens {
		if isNumber(t) {
			if !present[t] {
				return false
			}
			continue
		}
		contentWords++
		if strings.Contains(haystack, t) {
			matched++
		}
	}
	return matched*2 >= contentWords
}
