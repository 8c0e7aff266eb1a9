package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/ppiankov/draftsmith/internal/model"
)

// stubBackend counts calls and can block until released
type stubBackend struct {
	calls   int32
	release chan struct{}
	delay   time.Duration
	err     error
	results []model.EvidenceSource
	lastN   int32
}

func (b *stubBackend) Name() string     { return "stub" }
func (b *stubBackend) Endpoint() string { return "https://stub.example/search" }

func (b *stubBackend) Search(ctx context.Context, query string, n int) ([]model.EvidenceSource, error) {
	atomic.AddInt32(&b.calls, 1)
	atomic.StoreInt32(&b.lastN, int32(n))
	if b.release != nil {
		<-b.release
	}
	if b.delay > 0 {
		select {
		case <-time.After(b.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.err != nil {
		return nil, b.err
	}
	return b.results, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func testConfig() model.SearchConfig {
	cfg := model.DefaultConfig().Search
	cfg.RequestsPerSecond = 0
	return cfg
}

func oneResult() []model.EvidenceSource {
	return []model.EvidenceSource{{Title: "T", Link: "https://example.com", Snippet: "s"}}
}

func TestClient_ConcurrentIdenticalQueriesShareOneCall(t *testing.T) {
	backend := &stubBackend{release: make(chan struct{}), results: oneResult()}
	client := NewClient(backend, testConfig(), WithLogger(zaptest.NewLogger(t)))

	const callers = 20
	var wg sync.WaitGroup
	got := make([][]model.EvidenceSource, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			got[idx] = client.Search(context.Background(), "tokyo 1923 earthquake", 4)
		}(i)
	}

	// let the leader reach the backend before releasing it
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&backend.calls) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	close(backend.release)
	wg.Wait()

	if calls := atomic.LoadInt32(&backend.calls); calls != 1 {
		t.Errorf("expected exactly 1 backend call, got %d", calls)
	}
	for i, r := range got {
		if len(r) != 1 {
			t.Errorf("caller %d got %d results", i, len(r))
		}
	}
}

func TestClient_CacheTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	backend := &stubBackend{results: oneResult()}
	client := NewClient(backend, testConfig(), WithClock(clock.Now))
	ctx := context.Background()

	client.Search(ctx, "q", 5)
	clock.Advance(4 * time.Minute)
	client.Search(ctx, "q", 5)
	if calls := atomic.LoadInt32(&backend.calls); calls != 1 {
		t.Fatalf("expected cached result within TTL, got %d calls", calls)
	}

	clock.Advance(time.Minute)
	client.Search(ctx, "q", 5)
	if calls := atomic.LoadInt32(&backend.calls); calls != 2 {
		t.Errorf("expected refetch after TTL, got %d calls", calls)
	}
}

func TestClient_CacheKeyIncludesCount(t *testing.T) {
	backend := &stubBackend{results: oneResult()}
	client := NewClient(backend, testConfig())
	ctx := context.Background()

	client.Search(ctx, "q", 4)
	client.Search(ctx, "q", 5)
	if calls := atomic.LoadInt32(&backend.calls); calls != 2 {
		t.Errorf("expected separate entries per result count, got %d calls", calls)
	}
}

func TestClient_FailureDegradesToEmptyAndIsNotCached(t *testing.T) {
	backend := &stubBackend{err: errors.New("boom")}
	client := NewClient(backend, testConfig(), WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()

	if r := client.Search(ctx, "q", 5); len(r) != 0 {
		t.Fatalf("expected empty results on failure, got %d", len(r))
	}
	client.Search(ctx, "q", 5)
	if calls := atomic.LoadInt32(&backend.calls); calls != 2 {
		t.Errorf("expected failures not to be cached, got %d calls", calls)
	}
}

func TestClient_TimeoutDegradesToEmpty(t *testing.T) {
	backend := &stubBackend{delay: 5 * time.Second, results: oneResult()}
	cfg := testConfig()
	cfg.Timeout = 30 * time.Millisecond
	client := NewClient(backend, cfg)

	start := time.Now()
	r := client.Search(context.Background(), "slow", 5)
	if len(r) != 0 {
		t.Errorf("expected empty results on timeout, got %d", len(r))
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("expected timeout to bound the call, took %v", elapsed)
	}
}

func TestClient_Clamp(t *testing.T) {
	backend := &stubBackend{results: oneResult()}
	client := NewClient(backend, testConfig())
	ctx := context.Background()

	tests := []struct {
		in   int
		want int32
	}{
		{0, 5},
		{-3, 1},
		{50, 10},
		{7, 7},
	}
	for _, tt := range tests {
		client.Search(ctx, "clamp", tt.in)
		if got := atomic.LoadInt32(&backend.lastN); got != tt.want {
			t.Errorf("Search(n=%d) sent n=%d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClient_Disabled(t *testing.T) {
	client := NewClient(nil, testConfig())
	if client.Enabled() {
		t.Error("expected client without backend to be disabled")
	}
	if r := client.Search(context.Background(), "q", 5); r == nil || len(r) != 0 {
		t.Errorf("expected empty non-nil results, got %v", r)
	}
}

func TestClient_ResultsAreCopies(t *testing.T) {
	backend := &stubBackend{results: oneResult()}
	client := NewClient(backend, testConfig())
	ctx := context.Background()

	first := client.Search(ctx, "q", 5)
	first[0].ID = "s1"

	second := client.Search(ctx, "q", 5)
	if second[0].ID != "" {
		t.Error("expected cached entry to be unaffected by caller mutation")
	}
}
