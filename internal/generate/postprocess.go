package generate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// preambles are phrases models put before the requested text. They are
// removed from the start of the output, repeatedly.
var preambles = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:sure|certainly|of course|absolutely)\s*[!,.]\s*`),
	regexp.MustCompile(`(?i)^here(?:'s|’s| is) (?:the|your|a|an) [^\n:]{0,60}:\s*`),
	regexp.MustCompile(`(?i)^(?:below is|the following is) [^\n:]{0,60}:\s*`),
	regexp.MustCompile(`^(?:הנה|להלן|בטח)[^\n:]{0,60}:\s*`),
}

// StripPreamble removes leading boilerplate such as "Here is the article:"
func StripPreamble(s string) string {
	s = strings.TrimSpace(s)
	for {
		before := s
		for _, re := range preambles {
			s = strings.TrimSpace(re.ReplaceAllString(s, ""))
		}
		if s == before {
			return s
		}
	}
}

// finishDraft strips the preamble and substitutes the placeholder for
// output shorter than minRunes. The bool reports whether it substituted.
func finishDraft(raw, title string, minRunes int) (string, bool) {
	text := StripPreamble(raw)
	if utf8.RuneCountInString(text) < minRunes {
		return PlaceholderDraft(title), true
	}
	return text, false
}

// PlaceholderDraft is the deterministic draft used when a provider is not
// configured or returned too little
func PlaceholderDraft(title string) string {
	return fmt.Sprintf(`This is a sample draft of a full article on: %s. The article body goes here, not the outline.

## The background

This paragraph expands the central idea with concrete details, dates or real-life examples. The article itself should be longer and more detailed than the outline.

## What actually happened

Another paragraph opens a second angle or develops one of the outline points into continuous, readable text.

## After the event

To close, a sentence or two that wrap up the article and give the reader something to think about.`, title)
}

// PlaceholderOutline is the deterministic outline used when no provider is configured
func PlaceholderOutline(title string) string {
	return fmt.Sprintf("Opening: introduce the subject and the central question.\nBody: 2-3 main points with examples.\nEnding: summary or call to action.\n\n(Sample outline for: %s)", title)
}
