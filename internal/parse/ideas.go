package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/draftsmith/internal/apperr"
	"github.com/ppiankov/draftsmith/internal/model"
)

// IdeaFields is an idea as read from model output, before ids and
// sources are attached
type IdeaFields struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	SourceIDs       []string `json:"sourceIds,omitempty"`
	ConfidenceLevel string   `json:"confidenceLevel,omitempty"`
}

type ideaEnvelope struct {
	Ideas       []IdeaFields `json:"ideas"`
	Suggestions []IdeaFields `json:"suggestions"`
}

var (
	objectBoundary = regexp.MustCompile(`\}\s*,?\s*\{`)
	titleField     = regexp.MustCompile(`"(?:title|כותרת)"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	descField      = regexp.MustCompile(`"(?:description|תיאור)"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	unescapeField  = strings.NewReplacer(`\n`, "\n", `\"`, `"`, `\\`, `\`)
)

// Ideas reads at most limit ideas from model output. It returns
// apperr.ErrUnparseable when no strategy yields a single record.
func Ideas(raw string, limit int) ([]IdeaFields, error) {
	if limit <= 0 {
		limit = model.MaxIdeas
	}

	var env ideaEnvelope
	if err := Object(raw, &env); err == nil {
		items := env.Ideas
		if len(items) == 0 {
			items = env.Suggestions
		}
		if len(items) > 0 {
			return normalizeIdeas(items, limit), nil
		}
	}

	if items := extractIdeaPairs(StripArtifacts(raw), limit); len(items) > 0 {
		return items, nil
	}
	return nil, apperr.ErrUnparseable
}

func normalizeIdeas(items []IdeaFields, limit int) []IdeaFields {
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]IdeaFields, 0, len(items))
	for i, item := range items {
		item.Title = strings.TrimSpace(item.Title)
		if item.Title == "" {
			item.Title = fmt.Sprintf("Idea %d", i+1)
		}
		item.Title = model.Truncate(item.Title, model.MaxIdeaTitleRunes)
		item.Description = model.Truncate(strings.TrimSpace(item.Description), model.MaxIdeaDescriptionRunes)
		item.ConfidenceLevel = strings.ToLower(strings.TrimSpace(item.ConfidenceLevel))
		out = append(out, item)
	}
	return out
}

// extractIdeaPairs is the last resort for output too broken to decode:
// split on object boundaries and pull title/description literals
func extractIdeaPairs(content string, limit int) []IdeaFields {
	var out []IdeaFields
	for _, block := range objectBoundary.Split(content, -1) {
		title := fieldValue(titleField, block)
		desc := fieldValue(descField, block)
		if title == "" && desc == "" {
			continue
		}
		if title == "" {
			title = fmt.Sprintf("Idea %d", len(out)+1)
		}
		out = append(out, IdeaFields{
			Title:       model.Truncate(title, model.MaxIdeaTitleRunes),
			Description: model.Truncate(desc, model.MaxIdeaDescriptionRunes),
		})
		if len(out) >= limit {
			break
		}
	}
	return out
}

func fieldValue(re *regexp.Regexp, block string) string {
	m := re.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(unescapeField.Replace(m[1]))
}
