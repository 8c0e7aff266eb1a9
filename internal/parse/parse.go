// Package parse turns unreliable model output into typed records.
//
// Parsing is a cascade: direct decode of the cleaned candidate, then
// decode after mechanical repair, then (for idea lists) regex extraction
// of title/description pairs from whatever is left.
package parse

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/ppiankov/draftsmith/internal/apperr"
)

const toolCallMarker = "web_search_function_calls>>"

var (
	invokeBlock    = regexp.MustCompile(`(?is)<invoke\s+name="[^"]*">.*?</invoke>`)
	parameterBlock = regexp.MustCompile(`(?is)<parameter\s+name="[^"]*">.*?</parameter>`)
	markupTag      = regexp.MustCompile(`</?[A-Za-z][\w:-]*(?:\s[^<>]*)?/?>`)
	codeFence      = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")
	trailingComma  = regexp.MustCompile(`,(\s*[}\]])`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
	invisibles     = strings.NewReplacer("\ufeff", "", "\u200b", "", "\u200c", "", "\u200d", "")
)

// StripArtifacts removes tool-call blocks and markup a model sometimes
// leaks into its answer. Whitespace is left intact.
func StripArtifacts(s string) string {
	s = stripToolCallBlocks(s)
	s = invokeBlock.ReplaceAllString(s, "")
	s = parameterBlock.ReplaceAllString(s, "")
	s = markupTag.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Clean is StripArtifacts with whitespace collapsed, for display
func Clean(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(StripArtifacts(s), " "))
}

// stripToolCallBlocks drops everything from a tool-call marker up to the
// next code fence (or the end of input)
func stripToolCallBlocks(s string) string {
	for {
		lower := strings.ToLower(s)
		start := strings.Index(lower, toolCallMarker)
		if start < 0 {
			return s
		}
		end := strings.Index(s[start:], "```")
		if end < 0 {
			s = s[:start]
			continue
		}
		s = s[:start] + s[start+end:]
	}
}

// Extract returns the most likely JSON span: the first fenced block if
// any, otherwise the text between the first '{' and the last '}'.
func Extract(raw string) string {
	s := invisibles.Replace(strings.TrimSpace(raw))
	if m := codeFence.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		return s[start : end+1]
	}
	return s
}

// Repair drops trailing commas and fixes string literals: unescaped quotes
// that do not close the string are escaped, raw control whitespace becomes
// an escape sequence.
func Repair(s string) string {
	return repairStrings(trailingComma.ReplaceAllString(s, "$1"))
}

func repairStrings(s string) string {
	var out strings.Builder
	out.Grow(len(s) + 16)

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			out.WriteByte(c)
			escaped = false
			continue
		}

		if !inString {
			if c == '"' {
				inString = true
			}
			out.WriteByte(c)
			continue
		}

		switch c {
		case '\\':
			out.WriteByte(c)
			escaped = true
		case '"':
			if closesString(s, i+1) {
				out.WriteByte(c)
				inString = false
			} else {
				out.WriteString(`\"`)
			}
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
				out.WriteString(`\n`)
			} else {
				out.WriteString(`\r`)
			}
		case '\n':
			out.WriteString(`\n`)
		case '\t':
			out.WriteString(`\t`)
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

// closesString reports whether the next non-whitespace byte at or after
// pos is a structural character that may follow a string literal
func closesString(s string, pos int) bool {
	for j := pos; j < len(s); j++ {
		switch s[j] {
		case ' ', '\n', '\r', '\t':
			continue
		case ':', ',', '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

// Object decodes model output into v. Already-valid JSON is decoded as
// is; otherwise the extracted candidate is tried before and after repair.
func Object(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if json.Valid([]byte(trimmed)) {
		if err := json.Unmarshal([]byte(trimmed), v); err != nil {
			return apperr.Wrap(apperr.ErrUnparseable, "decode", err)
		}
		return nil
	}

	candidate := Extract(StripArtifacts(trimmed))
	for _, attempt := range []string{candidate, Repair(candidate)} {
		if !json.Valid([]byte(attempt)) {
			continue
		}
		if err := json.Unmarshal([]byte(attempt), v); err != nil {
			return apperr.Wrap(apperr.ErrUnparseable, "decode", err)
		}
		return nil
	}
	return apperr.ErrUnparseable
}
