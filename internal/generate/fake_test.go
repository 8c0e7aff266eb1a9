package generate

import (
	"context"
	"sync"

	"github.com/ppiankov/draftsmith/internal/llm"
)

// fakeProvider answers from a script and records requests
type fakeProvider struct {
	name  string
	text  string
	err   error
	panic bool
	delay func(ctx context.Context)

	mu       sync.Mutex
	requests []llm.Request
}

func (f *fakeProvider) Name() string                      { return f.name }
func (f *fakeProvider) IsAvailable(_ context.Context) bool { return true }

func (f *fakeProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.delay != nil {
		f.delay(ctx)
	}
	if f.panic {
		panic("provider exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Text: f.text, Model: f.name + "-model"}, nil
}

func (f *fakeProvider) calls() []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.Request(nil), f.requests...)
}
