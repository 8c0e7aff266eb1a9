// Package retrieval assembles a labeled, size-bounded set of evidence
// sources for retrieval-augmented generation.
package retrieval

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/encyclopedia"
	"github.com/ppiankov/draftsmith/internal/logging"
	"github.com/ppiankov/draftsmith/internal/model"
)

const maxSnippetRunes = 500

// Searcher is the evidence search dependency
type Searcher interface {
	Search(ctx context.Context, query string, n int) []model.EvidenceSource
}

// Encyclopedia is the encyclopedia lookup dependency
type Encyclopedia interface {
	SearchAndSummarize(ctx context.Context, query string, maxPages int) []encyclopedia.PageSummary
}

// Builder runs the seed queries and merges their results
type Builder struct {
	search Searcher
	wiki   Encyclopedia
	cfg    model.RetrievalConfig
	logger *zap.Logger
}

// NewBuilder creates a builder. Either dependency may be nil.
func NewBuilder(search Searcher, wiki Encyclopedia, cfg model.RetrievalConfig, logger *zap.Logger) *Builder {
	if cfg.MaxSources <= 0 {
		cfg.MaxSources = 12
	}
	if cfg.ResultsPerQuery <= 0 {
		cfg.ResultsPerQuery = 5
	}
	if cfg.PagesPerQuery <= 0 {
		cfg.PagesPerQuery = 2
	}
	return &Builder{
		search: search,
		wiki:   wiki,
		cfg:    cfg,
		logger: logging.Component(logger, "retrieval"),
	}
}

// Build runs the configured seed queries
func (b *Builder) Build(ctx context.Context) model.RetrievalContext {
	return b.BuildFor(ctx, b.cfg.SeedQueries)
}

// BuildFor runs the given queries against search first and then the
// encyclopedia. Once the cap is reached the remaining queries are skipped;
// an admitted query asks only for the room that is left.
func (b *Builder) BuildFor(ctx context.Context, queries []string) model.RetrievalContext {
	acc := newAccumulator(b.cfg.MaxSources)

	if b.search != nil {
		for _, q := range queries {
			if acc.full() || ctx.Err() != nil {
				break
			}
			n := min(b.cfg.ResultsPerQuery, acc.remaining())
			for _, src := range b.search.Search(ctx, q, n) {
				acc.add("s", src)
			}
		}
	}

	if b.wiki != nil {
		for _, q := range queries {
			if acc.full() || ctx.Err() != nil {
				break
			}
			n := min(b.cfg.PagesPerQuery, acc.remaining())
			for _, page := range b.wiki.SearchAndSummarize(ctx, q, n) {
				acc.add("w", page.Evidence())
			}
		}
	}

	rc := model.RetrievalContext{SourcesMap: acc.sources}
	rc.ContextBlock = Render(rc)

	b.logger.Debug("retrieval context built",
		zap.Int("sources", len(acc.sources)),
		zap.Int("search", acc.counters["s"]),
		zap.Int("encyclopedia", acc.counters["w"]))
	return rc
}

// Render formats sources for inclusion in a prompt
func Render(rc model.RetrievalContext) string {
	if rc.Empty() {
		return ""
	}
	var sb strings.Builder
	for _, id := range rc.IDs() {
		src := rc.SourcesMap[id]
		fmt.Fprintf(&sb, "[%s] %s\n", id, src.Title)
		if snippet := strings.TrimSpace(src.Snippet); snippet != "" {
			sb.WriteString(model.Truncate(snippet, maxSnippetRunes))
			sb.WriteString("\n")
		}
		sb.WriteString(src.Link)
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

type accumulator struct {
	limit    int
	sources  map[string]model.EvidenceSource
	seen     map[string]bool
	counters map[string]int
}

func newAccumulator(limit int) *accumulator {
	return &accumulator{
		limit:    limit,
		sources:  make(map[string]model.EvidenceSource),
		seen:     make(map[string]bool),
		counters: make(map[string]int),
	}
}

func (a *accumulator) full() bool     { return len(a.sources) >= a.limit }
func (a *accumulator) remaining() int { return a.limit - len(a.sources) }

func (a *accumulator) add(family string, src model.EvidenceSource) {
	key := dedupKey(src.Link)
	if key == "" || a.seen[key] || a.full() {
		return
	}
	a.seen[key] = true
	a.counters[family]++
	src.ID = fmt.Sprintf("%s%d", family, a.counters[family])
	a.sources[src.ID] = src
}

// dedupKey normalizes a URL so trivially different spellings collapse
func dedupKey(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return link
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}
