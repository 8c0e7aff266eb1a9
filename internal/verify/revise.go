package verify

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/llm"
	"github.com/ppiankov/draftsmith/internal/model"
)

const reviseInputRunes = 4000

// Revise rewrites the passages flagged in result and returns the full
// text. Long text is revised in paragraph-bounded chunks; only chunks that
// mention a flagged claim are sent to the model, the rest stay as written.
// It returns text unchanged when nothing is flagged, no provider is
// configured or the model gives no usable answer.
func (v *Verifier) Revise(ctx context.Context, text string, result model.ValidationResult) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return text
	}
	problems := result.ProblemItems()
	if len(problems) == 0 || !v.hasProvider() {
		return text
	}

	parts := chunk(trimmed, reviseInputRunes)
	targets := make([][]model.ValidationItem, len(parts))
	if len(parts) == 1 {
		targets[0] = problems
	} else {
		assigned := false
		for i, part := range parts {
			targets[i] = problemsIn(part, problems)
			assigned = assigned || len(targets[i]) > 0
		}
		if !assigned {
			targets[0] = problems
		}
	}

	changed := false
	var out strings.Builder
	for i, part := range parts {
		if len(targets[i]) == 0 {
			out.WriteString(part)
			continue
		}
		revised, ok := v.revisePart(ctx, part, targets[i])
		if !ok {
			out.WriteString(part)
			continue
		}
		changed = true
		out.WriteString(revised)
	}
	if !changed {
		return text
	}

	v.logger.Debug("text revised", zap.Int("problems", len(problems)), zap.Int("chunks", len(parts)))
	return strings.TrimSpace(out.String())
}

// revisePart rewrites one chunk, keeping the whitespace around it so the
// chunks join back the way they were split
func (v *Verifier) revisePart(ctx context.Context, part string, problems []model.ValidationItem) (string, bool) {
	body := strings.TrimSpace(part)
	if body == "" {
		return part, false
	}

	revised, err := v.llm.Complete(ctx, llm.Request{
		System:    "You update article text from fact-check results. Replace only the problematic passages with [needs checking: reason] or with corrected text. Return the whole updated text only.",
		Prompt:    revisePrompt(body, problems),
		MaxTokens: v.reviseMaxTokens,
	})
	if err != nil {
		v.logger.Warn("revision failed, keeping text", zap.Error(err))
		return part, false
	}
	revised = strings.TrimSpace(revised)
	if revised == "" {
		return part, false
	}

	lead := part[:len(part)-len(strings.TrimLeftFunc(part, unicode.IsSpace))]
	trail := part[len(strings.TrimRightFunc(part, unicode.IsSpace)):]
	return lead + revised + trail, true
}

// chunk splits s into pieces of at most limit runes, breaking after a
// newline where possible. Joining the pieces gives back s.
func chunk(s string, limit int) []string {
	if utf8.RuneCountInString(s) <= limit {
		return []string{s}
	}

	var parts []string
	var cur strings.Builder
	curRunes := 0
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curRunes = 0
		}
	}

	for _, line := range strings.SplitAfter(s, "\n") {
		n := utf8.RuneCountInString(line)
		if curRunes+n > limit {
			flush()
		}
		for n > limit {
			r := []rune(line)
			parts = append(parts, string(r[:limit]))
			line = string(r[limit:])
			n -= limit
		}
		cur.WriteString(line)
		curRunes += n
	}
	flush()
	return parts
}

// problemsIn returns the flagged items whose key details appear in part
func problemsIn(part string, problems []model.ValidationItem) []model.ValidationItem {
	var out []model.ValidationItem
	lower := strings.ToLower(part)
	for _, p := range problems {
		text := strings.ToLower(strings.TrimSpace(p.Text))
		if text == "" {
			continue
		}
		if strings.Contains(lower, text) {
			out = append(out, p)
			continue
		}
		tokens := keyTokens(p.Text)
		if len(tokens) > 0 && mentionsKeyDetails(model.EvidenceSource{Snippet: part}, tokens) {
			out = append(out, p)
		}
	}
	return out
}
