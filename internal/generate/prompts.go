package generate

import (
	"fmt"
	"strings"

	"github.com/ppiankov/draftsmith/internal/model"
)

// fixedWritingRules precede every writing prompt, whatever the operator configured
const fixedWritingRules = `Iron rule: documented facts only. Do not invent details, dialogue, scenes or descriptions. In an outline, do not invent names, dates, places or numbers; if unsure, leave [needs checking] or a fitting placeholder such as [name], [date], [place].

Write only what is known and documented to have happened. If a detail is uncertain, leave it out or say explicitly that it is an estimate or an uncertain source. No "probably", "it is likely that" or embellished descriptions drawn from imagination.

`

const noFabrication = "Suggest only real, documented stories (real names, events that happened). Never invent events, names, groups or places."

const ideasFormat = `Answer in JSON only, exactly in this shape: {"ideas": [{"title": "title", "description": "description"}, ...]}. An ideas array of exactly %d objects, each with title and description. Do not wrap it in markdown or add other text.`

const ideasSourcedFormat = `Answer in JSON only, exactly in this shape: {"ideas": [{"title": "title", "description": "description", "sourceIds": ["s1", "w2"], "confidenceLevel": "high|medium|low"}, ...]}. An ideas array of exactly %d objects. sourceIds lists the ids of the sources below that support the idea; use only ids that appear there. confidenceLevel is high when several sources support the idea, low when none do. Do not wrap it in markdown or add other text.`

func ideasPrompt(req IdeasRequest, count int) string {
	var b strings.Builder
	b.WriteString(noFabrication)
	b.WriteString("\n\n")

	if !req.Context.Empty() {
		b.WriteString("Base the ideas on these sources:\n\n")
		b.WriteString(req.Context.ContextBlock)
		b.WriteString("\n\n")
	}

	if len(req.Avoid) > 0 {
		b.WriteString("These ideas are already taken; suggest different subjects:\n")
		for _, title := range req.Avoid {
			fmt.Fprintf(&b, "- %s\n", title)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Create exactly %d %s for one article. ", count, plural(count, "idea"))
	if req.Context.Empty() {
		fmt.Fprintf(&b, ideasFormat, count)
	} else {
		fmt.Fprintf(&b, ideasSourcedFormat, count)
	}
	return b.String()
}

func outlinePrompt(title, description string) string {
	return fmt.Sprintf(`Create a short outline for an article based on the idea below. A template only, not the article body.

Title: %s
Description: %s

Return only the outline: headings or one sentence per part (opening, body, ending). No full paragraphs and no article text. The outline is a list of points to guide the writing; the full article is written later. Every point must refer only to documented events and facts. Do not invent.`, title, description)
}

func draftPrompt(req model.DraftRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Write the full body of the article (plain text only, no JSON) from the idea and outline below.

Title: %s
Description: %s

Outline (including the author's additions and notes; expand all of it into a full article):
%s

Return only the article text: detailed paragraphs separated by a blank line. Every point or addition in the outline must be fully developed. Do not return the outline as is; write a full article with details, examples and complete sentences.

Headings: add 3-4 short, catchy subheadings that split the article into clear parts (content headings, not "Introduction" or "Conclusion"). Put each heading on its own line starting with ## and follow it with a blank line.

Important: every detail must be documented and true. Do not invent events, quotes or descriptions.`, req.Title, req.Description, req.Outline)

	if len(req.ValidationWarnings) > 0 {
		b.WriteString("\n\nFact-check notes on the outline. Address each one: correct the statement from a reliable source or mark it [needs checking]:\n")
		for _, w := range req.ValidationWarnings {
			if w = strings.TrimSpace(w); w != "" {
				fmt.Fprintf(&b, "- %s\n", w)
			}
		}
	}
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
