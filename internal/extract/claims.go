package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/ppiankov/draftsmith/internal/model"
)

var (
	yearPattern   = regexp.MustCompile(`\b(1[0-9]{3}|20[0-9]{2})\b`)
	numberPattern = regexp.MustCompile(`\d`)
)

// ClaimExtractor picks sentences that look like checkable facts. It is the
// offline stand-in for model-driven claim extraction.
type ClaimExtractor struct {
	keywords []string
	limit    int
}

// NewClaimExtractor creates a new claim extractor returning at most limit claims
func NewClaimExtractor(limit int) *ClaimExtractor {
	if limit <= 0 {
		limit = 8
	}
	return &ClaimExtractor{
		keywords: []string{
			"according to", "originated", "first", "introduced", "invented",
			"founded", "established", "discovered", "developed", "born",
			"died", "killed", "built", "published", "won", "record",
			"percent", "million", "billion", "largest", "oldest",
		},
		limit: limit,
	}
}

// Extract extracts claims from draft content, which may be HTML or plain text
func (e *ClaimExtractor) Extract(content string) []model.Claim {
	text := Text(content)

	var claims []model.Claim
	for _, sentence := range splitSentences(text) {
		if heuristic := e.match(sentence); heuristic != "" {
			claims = append(claims, model.Claim{
				Text:        sentence,
				SearchQuery: searchQuery(sentence),
				Heuristic:   heuristic,
			})
		}
	}

	claims = dedupeClaims(claims)
	if len(claims) > e.limit {
		claims = claims[:e.limit]
	}
	return claims
}

func (e *ClaimExtractor) match(sentence string) string {
	if m := yearPattern.FindString(sentence); m != "" {
		return "year:" + m
	}
	lower := strings.ToLower(sentence)
	for _, keyword := range e.keywords {
		if strings.Contains(lower, keyword) {
			return "keyword:" + keyword
		}
	}
	if numberPattern.MatchString(sentence) {
		return "number"
	}
	return ""
}

// searchQuery trims a sentence into a search-engine sized query
func searchQuery(sentence string) string {
	words := strings.Fields(strings.Trim(sentence, ".!?"))
	if len(words) > 12 {
		words = words[:12]
	}
	return strings.Join(words, " ")
}

// Text returns the visible text of content. Plain text passes through with
// whitespace collapsed.
func Text(content string) string {
	if !strings.Contains(content, "<") {
		return strings.Join(strings.Fields(content), " ")
	}
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return strings.Join(strings.Fields(content), " ")
	}
	return strings.Join(strings.Fields(extractVisibleText(doc)), " ")
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

// splitSentences splits text into sentences (simple heuristic)
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		if n := utf8.RuneCountInString(sentence); n >= 20 && n <= 500 {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			// avoid splitting on decimals and abbreviations like "3.5"
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
				flush()
			}
		}
	}
	if current.Len() > 0 {
		flush()
	}

	return sentences
}

// dedupeClaims removes duplicate claims
func dedupeClaims(claims []model.Claim) []model.Claim {
	seen := make(map[string]bool)
	var unique []model.Claim

	for _, claim := range claims {
		key := strings.ToLower(strings.TrimSpace(claim.Text))
		if !seen[key] {
			seen[key] = true
			unique = append(unique, claim)
		}
	}

	return unique
}
