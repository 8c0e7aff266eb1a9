package cache

import (
	"sync"
	"testing"
	"time"
)

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

func TestMemoryCache_TTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache[[]string](5*time.Minute, clock.Now)

	c.Set("k", []string{"a"})

	clock.Advance(4*time.Minute + 59*time.Second)
	if v, ok := c.Get("k"); !ok || len(v) != 1 {
		t.Fatal("expected entry to be live before TTL")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to expire exactly at TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry to be evicted on read, %d left", c.Len())
	}
}

func TestMemoryCache_TTLFromCreation(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := NewMemoryCache[int](time.Minute, clock.Now)

	c.Set("k", 1)
	clock.Advance(50 * time.Second)

	// reads do not extend lifetime
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit")
	}
	clock.Advance(10 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expiry measured from Set, not last read")
	}
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewMemoryCache[string](time.Hour, nil)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be deleted")
	}

	c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Error("expected cache to be cleared")
	}
}

func TestKey(t *testing.T) {
	k1 := Key("search", "5", "laksa origin")
	k2 := Key("search", "5", "laksa origin")
	k3 := Key("search", "4", "laksa origin")

	if k1 != k2 {
		t.Error("expected deterministic keys")
	}
	if k1 == k3 {
		t.Error("expected result count to be part of the key")
	}
	if Key("search", "a", "bc") == Key("search", "ab", "c") {
		t.Error("expected part boundaries to be preserved")
	}
}

var _ Cache[int] = (*MemoryCache[int])(nil)
