package verify

import (
	"fmt"
	"strings"

	"github.com/ppiankov/draftsmith/internal/model"
)

func extractPrompt(title, description, text string, maxClaims int) string {
	return fmt.Sprintf(`Article text (title: %s, description: %s), an outline or a full draft:
---
%s
---

Extract up to %d factual claims worth checking on the web: dates, numbers, names, events, statistics. For each claim give:
1. text: the relevant passage (a short sentence).
2. searchQuery: one web search query suited to checking the claim.

Return at least one claim if the text contains facts. Answer with JSON only:
{"claims":[{"text":"...","searchQuery":"..."}]}`, title, description, text, maxClaims)
}

func judgePrompt(claims []evidenceClaim) string {
	var b strings.Builder
	b.WriteString(`Check every claim against its search results. For each claim decide:
- "ok": the results support it.
- "warning": no clear support, or the results contradict it.
- "unsure": the results are not enough to decide.

Also pick up to 2 relevant sources from the results (title + link) that support or contradict the claim, only if there are any.

Answer with JSON only, one item per claim in the same order:
{"items":[{"text":"claim text","status":"ok|warning|unsure","reason":"short reason, only for warning/unsure","sources":[{"title":"...","link":"https://..."}]}]}

Data:
`)
	for i, c := range claims {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%d] Claim: %s\nQuery: %s\nResults:\n", i+1, c.Text, c.SearchQuery)
		if len(c.results) == 0 {
			b.WriteString("(none)\n")
		}
		for _, r := range c.results {
			fmt.Fprintf(&b, "- %s: %s\n  %s\n", r.Title, r.Snippet, r.Link)
		}
	}
	return b.String()
}

func textOnlyPrompt(title, description, text string, maxClaims int) string {
	return fmt.Sprintf(`You are fact-checking article text (a draft or an outline). The idea: title %s. Description: %s.

Article text:
---
%s
---

For every significant factual claim (dates, numbers, names, events, statistics) decide:
- "ok": looks well founded and plausible, not invented.
- "warning": may be invented; a number, date or fact that needs checking at the source.
- "unsure": unclear whether it is well founded.

Answer with JSON only, with at least 1 item (up to %d):
{"items":[{"text":"claim text","status":"ok|warning|unsure","reason":"short reason, only for warning/unsure"}],"summary":"a short summary of what is fine and what to check"}`, title, description, text, maxClaims)
}

func revisePrompt(text string, problems []model.ValidationItem) string {
	var items strings.Builder
	for _, p := range problems {
		reason := p.Reason
		if reason == "" {
			reason = "uncertain"
		}
		fmt.Fprintf(&items, "- %q | reason: %s", p.Text, reason)
		if len(p.Sources) > 0 {
			names := make([]string, 0, len(p.Sources))
			for _, s := range p.Sources {
				if s.Title != "" {
					names = append(names, s.Title)
				} else {
					names = append(names, s.Link)
				}
			}
			fmt.Fprintf(&items, " | sources: %s", strings.Join(names, ", "))
		}
		items.WriteString("\n")
	}

	return fmt.Sprintf(`Current text:
---
%s
---

These passages need fixing according to fact-checking:
%s
Update the text: replace each problematic passage with %s or with a corrected statement when the sources allow a correction. Leave the rest of the text unchanged.
Return only the full updated text, without explanations or headings.`, text, items.String(), "[needs checking: short reason]")
}

func ideasValidationPrompt(ideas []model.Idea, evidence [][]model.EvidenceSource) string {
	var list strings.Builder
	for i, idea := range ideas {
		if i > 0 {
			list.WriteString("\n\n")
		}
		desc := idea.Description
		if desc == "" {
			desc = "-"
		}
		fmt.Fprintf(&list, "%d. Title: %s\n   Description: %s", i+1, idea.Title, desc)
		if i < len(evidence) {
			for _, r := range evidence[i] {
				fmt.Fprintf(&list, "\n   Evidence: %s: %s (%s)", r.Title, r.Snippet, r.Link)
			}
		}
	}

	return fmt.Sprintf(`Here is a list of ideas for an article or newsletter. For each idea (title + description) decide whether it is sound and relevant: sensible, fit for an article, not invented, on topic. If an idea is unclear, too generic or unfit, mark it invalid with a short reason. Where evidence is listed, an idea the evidence contradicts is invalid.

Answer with JSON only, one result per idea in the same order:
{"results":[{"title":"...","description":"...","valid":true,"reason":"short reason, only when valid is false"}]}

Ideas:
%s`, list.String())
}
