package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/ppiankov/draftsmith/internal/generate"
	"github.com/ppiankov/draftsmith/internal/llm"
	"github.com/ppiankov/draftsmith/internal/model"
	"github.com/ppiankov/draftsmith/internal/verify"
)

func TestMain(m *testing.M) {
	// genai links in opencensus, whose stats worker starts at init
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// routedProvider answers each request through respond and records it
type routedProvider struct {
	name    string
	respond func(req llm.Request) (string, error)

	mu       sync.Mutex
	requests []llm.Request
}

func (p *routedProvider) Name() string                      { return p.name }
func (p *routedProvider) IsAvailable(_ context.Context) bool { return true }

func (p *routedProvider) Generate(_ context.Context, req llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	text, err := p.respond(req)
	if err != nil {
		return nil, err
	}
	return &llm.Response{Text: text}, nil
}

func (p *routedProvider) count(match func(llm.Request) bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, r := range p.requests {
		if match(r) {
			n++
		}
	}
	return n
}

// Request classifiers, keyed on the system prompt of each call
func isIdeaValidation(r llm.Request) bool { return strings.Contains(r.System, "article ideas are relevant") }
func isTextOnlyCheck(r llm.Request) bool  { return strings.Contains(r.System, "fact-check an article") }
func isRevision(r llm.Request) bool       { return strings.Contains(r.System, "update article text") }
func isRegeneration(r llm.Request) bool   { return strings.Contains(r.Prompt, "already taken") }

type staticContext struct {
	rc model.RetrievalContext
}

func (s staticContext) Build(context.Context) model.RetrievalContext { return s.rc }

// fakeReferences marks every URL containing "broken" as inaccessible
type fakeReferences struct {
	mu   sync.Mutex
	seen []model.SourceReference
}

func (f *fakeReferences) Validate(_ context.Context, refs []model.SourceReference) []model.SourceReference {
	f.mu.Lock()
	f.seen = append(f.seen, refs...)
	f.mu.Unlock()

	out := make([]model.SourceReference, len(refs))
	for i, r := range refs {
		r.Accessible = !strings.Contains(r.URL, "broken")
		r.Authority = model.TierSecondary
		out[i] = r
	}
	return out
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("idea-%d", n)
	}
}

type serviceOption func(*Deps)

func withRetrieval(c ContextBuilder) serviceOption {
	return func(d *Deps) { d.Retrieval = c }
}

func withReferences(r ReferenceChecker) serviceOption {
	return func(d *Deps) { d.References = r }
}

func withMaxRounds(n int) serviceOption {
	return func(d *Deps) { d.MaxRounds = n }
}

func newTestService(t *testing.T, providers []llm.Provider, opts ...serviceOption) *Service {
	t.Helper()
	logger := zaptest.NewLogger(t)
	gen := generate.NewOrchestrator(llm.NewSetFromProviders(providers...), nil, model.GenerationConfig{}, logger,
		generate.WithIDFunc(sequentialIDs()))

	d := Deps{
		Generator: gen,
		Verifier:  verify.NewVerifier(gen, nil, model.VerificationConfig{}, 0, logger),
		Logger:    logger,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return NewService(d)
}

func ideasJSON(titles ...string) string {
	parts := make([]string, len(titles))
	for i, t := range titles {
		parts[i] = fmt.Sprintf(`{"title":%q,"description":"About %s"}`, t, t)
	}
	return `{"ideas":[` + strings.Join(parts, ",") + `]}`
}
