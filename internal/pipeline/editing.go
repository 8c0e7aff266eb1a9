package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/extract"
	"github.com/ppiankov/draftsmith/internal/generate"
	"github.com/ppiankov/draftsmith/internal/llm"
	"github.com/ppiankov/draftsmith/internal/model"
	"github.com/ppiankov/draftsmith/internal/parse"
)

const (
	editInputRunes        = 4000
	suggestionInputRunes  = 3000
	expandInputRunes      = 2000
	instructionInputRunes = 8000
	referenceInputRunes   = 4000
	maxSuggestions        = 5
	maxReferences         = 8
)

var listMarker = regexp.MustCompile(`^[-•*\d.)\s]+`)

// defaultSuggestions are offered when no provider is configured
var defaultSuggestions = []string{
	"Check long sentences; they may need splitting or shortening.",
	"Make sure every paragraph opens with a clear topic.",
	"Look for repeated words and swap in fitting alternatives.",
}

// EditSuggestions proposes three to five improvements for a draft
func (s *Service) EditSuggestions(ctx context.Context, draftHTML string) []string {
	text := extract.Text(draftHTML)
	if text == "" {
		return []string{}
	}
	if !s.gen.HasProvider() {
		return append([]string(nil), defaultSuggestions...)
	}

	raw, err := s.gen.Complete(ctx, llm.Request{
		System: s.gen.WritingPrompt(ctx),
		Prompt: "This draft needs editing (sharper wording, tightening, clarity). Return a list of 3 to 5 improvement suggestions only, one per line, without returning the text itself. Draft:\n\n" +
			model.Truncate(text, editInputRunes),
	})
	if err != nil {
		s.logger.Warn("edit suggestions failed", zap.Error(err))
		return []string{}
	}

	out := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

type suggestionsAnswer struct {
	Results []struct {
		Suggestion string `json:"suggestion"`
		Valid      *bool  `json:"valid"`
		Reason     string `json:"reason"`
	} `json:"results"`
}

// ValidateSuggestions checks that each suggestion fits the draft. Without
// a provider, or on an unusable answer, every suggestion counts as valid.
func (s *Service) ValidateSuggestions(ctx context.Context, draftHTML string, suggestions []string) []model.SuggestionValidation {
	out := make([]model.SuggestionValidation, len(suggestions))
	for i, sg := range suggestions {
		out[i] = model.SuggestionValidation{Suggestion: sg, Valid: true}
	}
	if len(suggestions) == 0 {
		return out
	}
	if !s.gen.HasProvider() {
		for i := range out {
			out[i].Reason = "not checked"
		}
		return out
	}

	var list strings.Builder
	for i, sg := range suggestions {
		fmt.Fprintf(&list, "%d. %s\n", i+1, sg)
	}
	raw, err := s.gen.Complete(ctx, llm.Request{
		System: "You check whether editing suggestions are relevant to a text. Answer with JSON only in the requested shape.",
		Prompt: fmt.Sprintf(`Here is an article draft and a list of improvement suggestions. For each suggestion decide whether it is correct and relevant to the text (it really fits the content and style) or irrelevant or invented.

Answer with JSON only, in this shape:
{"results":[{"suggestion":"suggestion text","valid":true,"reason":"short reason when valid is false"}]}

Draft:
%s

Suggestions:
%s`, model.Truncate(extract.Text(draftHTML), suggestionInputRunes), list.String()),
		JSON: true,
	})
	if err != nil {
		s.logger.Warn("suggestion validation failed, accepting all", zap.Error(err))
		return out
	}

	var answer suggestionsAnswer
	if err := parse.Object(raw, &answer); err != nil {
		s.logger.Warn("unparseable suggestion validation, accepting all", zap.Error(err))
		return out
	}
	for i := range out {
		if i >= len(answer.Results) {
			break
		}
		r := answer.Results[i]
		if r.Valid != nil {
			out[i].Valid = *r.Valid
		}
		out[i].Reason = strings.TrimSpace(r.Reason)
	}
	return out
}

// ExpandText elaborates a paragraph or sentence from a draft. The input
// comes back trimmed when there is nothing to do or nothing useful came
// back.
func (s *Service) ExpandText(ctx context.Context, text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return text
	}
	if !s.gen.HasProvider() {
		return trimmed
	}

	raw, err := s.gen.Complete(ctx, llm.Request{
		System: s.gen.WritingPrompt(ctx),
		Prompt: "The following text is a paragraph or sentence from a draft. Expand it: add details, examples or short explanations without changing the tone. Return only the expanded text, without explanations.\n\nText to expand:\n" +
			model.Truncate(trimmed, expandInputRunes),
	})
	if err != nil {
		s.logger.Warn("expand text failed", zap.Error(err))
		return trimmed
	}
	if expanded := generate.StripPreamble(raw); expanded != "" {
		return expanded
	}
	return trimmed
}

// ApplyInstruction rewrites an HTML draft according to a free-form
// instruction and returns the whole updated HTML
func (s *Service) ApplyInstruction(ctx context.Context, draftHTML, instruction string) string {
	if extract.Text(draftHTML) == "" || strings.TrimSpace(instruction) == "" || !s.gen.HasProvider() {
		return draftHTML
	}

	raw, err := s.gen.Complete(ctx, llm.Request{
		System: s.gen.WritingPrompt(ctx),
		Prompt: fmt.Sprintf("The following draft (HTML) must be changed according to the instruction. Return the whole updated draft as HTML only, with the same tags (p, strong, h2 and so on), without explanations.\n\nInstruction: %s\n\nCurrent draft:\n%s",
			strings.TrimSpace(instruction), model.Truncate(draftHTML, instructionInputRunes)),
	})
	if err != nil {
		s.logger.Warn("apply instruction failed", zap.Error(err))
		return draftHTML
	}
	if updated := generate.StripPreamble(raw); updated != "" {
		return updated
	}
	return draftHTML
}

type referencesAnswer struct {
	Sources []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
	} `json:"sources"`
}

// SourcesReferences proposes a bibliography for a draft: references the
// model suggests plus links already in the draft. Every link is probed and
// tagged with an authority tier; suggested links that do not resolve are
// dropped.
func (s *Service) SourcesReferences(ctx context.Context, draftHTML string) []model.SourceReference {
	text := extract.Text(draftHTML)
	if text == "" {
		return []model.SourceReference{}
	}

	seen := make(map[string]bool)
	var refs []model.SourceReference
	add := func(ref model.SourceReference) {
		if ref.URL == "" || seen[ref.URL] {
			return
		}
		seen[ref.URL] = true
		refs = append(refs, ref)
	}

	for _, ref := range s.suggestReferences(ctx, text) {
		add(ref)
	}
	for _, link := range extract.Links(draftHTML) {
		title := link.Text
		if title == "" {
			title = link.URL
		}
		add(model.SourceReference{Title: title, URL: link.URL, Origin: model.OriginDraft})
	}

	if s.refs != nil {
		refs = s.refs.Validate(ctx, refs)
	}

	out := []model.SourceReference{}
	for _, ref := range refs {
		if s.refs != nil && ref.Origin == model.OriginSuggested && !ref.Accessible {
			s.logger.Debug("dropping unreachable reference", zap.String("url", ref.URL), zap.Int("status", ref.StatusCode))
			continue
		}
		out = append(out, ref)
		if len(out) == maxReferences {
			break
		}
	}
	return out
}

func (s *Service) suggestReferences(ctx context.Context, text string) []model.SourceReference {
	if !s.gen.HasProvider() {
		return nil
	}

	raw, err := s.gen.Complete(ctx, llm.Request{
		System: "You suggest real references for articles. Answer with JSON only in the requested shape.",
		Prompt: `Based on the following draft, suggest 3 to 5 relevant sources and references (articles, studies, official sites) that can strengthen the article. Each source: a clear title, a real URL (https) and an optional one-sentence description. Answer with JSON only in this shape: {"sources": [{"title": "title", "url": "https://...", "description": "description"}]}. Make sure the URLs are valid. Draft:

` + model.Truncate(text, referenceInputRunes),
		JSON: true,
	})
	if err != nil {
		s.logger.Warn("reference suggestions failed", zap.Error(err))
		return nil
	}

	var answer referencesAnswer
	if err := parse.Object(raw, &answer); err != nil {
		s.logger.Warn("unparseable reference suggestions", zap.Error(err))
		return nil
	}

	var refs []model.SourceReference
	for _, src := range answer.Sources {
		title, link := strings.TrimSpace(src.Title), strings.TrimSpace(src.URL)
		if title == "" || !isWebURL(link) {
			continue
		}
		refs = append(refs, model.SourceReference{
			Title:       title,
			URL:         link,
			Description: strings.TrimSpace(src.Description),
			Origin:      model.OriginSuggested,
		})
		if len(refs) == maxReferences {
			break
		}
	}
	return refs
}

func isWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
