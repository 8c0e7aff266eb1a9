package model

import (
	"sort"
	"strconv"
)

// EvidenceSource is one external source gathered for a retrieval context.
// ID is a short label (s1, w1, ...) unique within one context; Link is
// the dedup key.
type EvidenceSource struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// UntitledSource is used when a backend returns a result with no title
const UntitledSource = "Untitled"

// RetrievalContext is a labeled, size-bounded source set plus its
// rendered prompt block. Built fresh per request.
type RetrievalContext struct {
	ContextBlock string                    `json:"contextBlock"`
	SourcesMap   map[string]EvidenceSource `json:"sourcesMap"`
}

// Empty reports whether no sources were gathered
func (c RetrievalContext) Empty() bool {
	return len(c.SourcesMap) == 0
}

// Resolve maps source ids to sources, skipping unknown ids
func (c RetrievalContext) Resolve(ids []string) []EvidenceSource {
	var out []EvidenceSource
	for _, id := range ids {
		if src, ok := c.SourcesMap[id]; ok {
			out = append(out, src)
		}
	}
	return out
}

// IDs returns the source ids in render order: search family before
// encyclopedia family, numeric within a family
func (c RetrievalContext) IDs() []string {
	ids := make([]string, 0, len(c.SourcesMap))
	for id := range c.SourcesMap {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		fi, ni := splitID(ids[i])
		fj, nj := splitID(ids[j])
		if fi != fj {
			return fi == "s"
		}
		return ni < nj
	})
	return ids
}

func splitID(id string) (string, int) {
	if id == "" {
		return "", 0
	}
	n, _ := strconv.Atoi(id[1:])
	return id[:1], n
}

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Laws, statutes, academic papers, official documents
	TierSecondary AuthorityTier = 2 // Encyclopedias, major publishers, reputable media
	TierTertiary  AuthorityTier = 3 // Blogs, personal websites, tourism sites
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// MarshalText renders the tier by name in JSON and YAML output
func (t AuthorityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Reference origins
const (
	OriginSuggested = "suggested"
	OriginDraft     = "draft"
)

// SourceReference is a bibliography entry proposed for a finished draft
type SourceReference struct {
	Title       string        `json:"title"`
	URL         string        `json:"url"`
	Description string        `json:"description,omitempty"`
	Accessible  bool          `json:"accessible"`
	StatusCode  int           `json:"statusCode,omitempty"`
	Authority   AuthorityTier `json:"authority"`
	Origin      string        `json:"origin"`
}
