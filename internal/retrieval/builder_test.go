package retrieval

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/ppiankov/draftsmith/internal/encyclopedia"
	"github.com/ppiankov/draftsmith/internal/model"
)

type fakeSearcher struct {
	byQuery map[string][]model.EvidenceSource
	calls   []string
	counts  []int
}

func (f *fakeSearcher) Search(ctx context.Context, query string, n int) []model.EvidenceSource {
	f.calls = append(f.calls, query)
	f.counts = append(f.counts, n)
	res := f.byQuery[query]
	if len(res) > n {
		res = res[:n]
	}
	return res
}

type fakeWiki struct {
	byQuery map[string][]encyclopedia.PageSummary
	calls   []string
}

func (f *fakeWiki) SearchAndSummarize(ctx context.Context, query string, maxPages int) []encyclopedia.PageSummary {
	f.calls = append(f.calls, query)
	res := f.byQuery[query]
	if len(res) > maxPages {
		res = res[:maxPages]
	}
	return res
}

func src(link string) model.EvidenceSource {
	return model.EvidenceSource{Title: "title " + link, Link: link, Snippet: "snippet " + link}
}

func cfg(maxSources int) model.RetrievalConfig {
	return model.RetrievalConfig{
		SeedQueries:     []string{"q1", "q2", "q3"},
		MaxSources:      maxSources,
		ResultsPerQuery: 3,
		PagesPerQuery:   2,
	}
}

func TestBuilder_IDsAndDedup(t *testing.T) {
	search := &fakeSearcher{byQuery: map[string][]model.EvidenceSource{
		"q1": {src("https://a.example/1"), src("https://a.example/2")},
		"q2": {src("https://A.example/1/"), src("https://a.example/3")},
	}}
	wiki := &fakeWiki{byQuery: map[string][]encyclopedia.PageSummary{
		"q1": {{Title: "W1", Extract: "e1", URL: "https://en.wikipedia.org/wiki/W1"}},
		"q3": {{Title: "Dup", Extract: "e", URL: "https://a.example/3"}},
	}}

	b := NewBuilder(search, wiki, cfg(20), zaptest.NewLogger(t))
	rc := b.Build(context.Background())

	if len(rc.SourcesMap) != 4 {
		t.Fatalf("expected 4 unique sources, got %d: %v", len(rc.SourcesMap), rc.IDs())
	}
	want := "s1,s2,s3,w1"
	if got := strings.Join(rc.IDs(), ","); got != want {
		t.Errorf("expected ids %s, got %s", want, got)
	}
	if rc.SourcesMap["s3"].Link != "https://a.example/3" {
		t.Errorf("unexpected s3: %+v", rc.SourcesMap["s3"])
	}
	if rc.SourcesMap["w1"].Snippet != "e1" {
		t.Errorf("expected encyclopedia extract as snippet, got %q", rc.SourcesMap["w1"].Snippet)
	}
}

func TestBuilder_CapSkipsRemainingQueries(t *testing.T) {
	byQuery := map[string][]model.EvidenceSource{}
	for q := 1; q <= 3; q++ {
		for i := 0; i < 3; i++ {
			key := fmt.Sprintf("q%d", q)
			byQuery[key] = append(byQuery[key], src(fmt.Sprintf("https://x.example/%d/%d", q, i)))
		}
	}
	search := &fakeSearcher{byQuery: byQuery}
	wiki := &fakeWiki{}

	b := NewBuilder(search, wiki, cfg(5), nil)
	rc := b.Build(context.Background())

	if len(rc.SourcesMap) != 5 {
		t.Fatalf("expected exactly the cap of 5 sources, got %d", len(rc.SourcesMap))
	}
	// q1 asks for 3, q2 for the remaining 2, q3 is skipped
	if len(search.calls) != 2 {
		t.Errorf("expected 2 search queries before the cap, got %v", search.calls)
	}
	if search.counts[1] != 2 {
		t.Errorf("expected second query sized to remaining room, got %d", search.counts[1])
	}
	if len(wiki.calls) != 0 {
		t.Errorf("expected encyclopedia skipped once cap reached, got %v", wiki.calls)
	}
}

func TestBuilder_NoDependencies(t *testing.T) {
	b := NewBuilder(nil, nil, cfg(5), nil)
	rc := b.Build(context.Background())
	if !rc.Empty() || rc.ContextBlock != "" {
		t.Errorf("expected empty context, got %+v", rc)
	}
}

func TestRender(t *testing.T) {
	rc := model.RetrievalContext{SourcesMap: map[string]model.EvidenceSource{
		"w1": {ID: "w1", Title: "Wiki", Link: "https://w.example", Snippet: "wiki text"},
		"s1": {ID: "s1", Title: "Web", Link: "https://s.example", Snippet: ""},
	}}

	got := Render(rc)
	want := "[s1] Web\nhttps://s.example\n\n[w1] Wiki\nwiki text\nhttps://w.example"
	if got != want {
		t.Errorf("unexpected render:\n%s\nwant:\n%s", got, want)
	}
}
