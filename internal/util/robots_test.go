package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsChecker_CanFetch(t *testing.T) {
	var fetches int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			atomic.AddInt32(&fetches, 1)
			_, _ = w.Write([]byte("User-agent: Draftsmith\nDisallow: /private/\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker("Draftsmith/0.1 (+https://example.com)", 5*time.Second)
	ctx := context.Background()

	if !checker.IsAllowed(ctx, server.URL+"/public/page") {
		t.Error("Expected public path to be allowed")
	}
	if checker.IsAllowed(ctx, server.URL+"/private/page") {
		t.Error("Expected private path to be disallowed")
	}
	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Errorf("Expected robots.txt fetched once, got %d", got)
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	checker := NewRobotsChecker("Draftsmith/0.1", 5*time.Second)
	if !checker.IsAllowed(context.Background(), server.URL+"/anything") {
		t.Error("Expected allow when robots.txt is missing")
	}
}

func TestRobotsChecker_InvalidURL(t *testing.T) {
	checker := NewRobotsChecker("Draftsmith/0.1", time.Second)
	if _, err := checker.CanFetch(context.Background(), "not a url"); err == nil {
		t.Error("Expected error for URL without host")
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"Draftsmith/0.1 (+https://x)": "Draftsmith",
		"curl":                        "curl",
		"":                            "",
	}
	for in, want := range tests {
		if got := NormalizeUserAgent(in); got != want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, want)
		}
	}
}
