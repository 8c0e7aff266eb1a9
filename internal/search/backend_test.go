package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ppiankov/draftsmith/internal/model"
)

func TestTavilyBackend_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("expected POST /search, got %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tv-key" {
			t.Errorf("unexpected Authorization header: %s", r.Header.Get("Authorization"))
		}

		var req tavilyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Query != "laksa origin" || req.MaxResults != 3 || req.SearchDepth != "basic" || req.IncludeAnswer {
			t.Errorf("unexpected request body: %+v", req)
		}

		_, _ = w.Write([]byte(`{"results":[
			{"title":"Laksa - Wikipedia","url":"https://en.wikipedia.org/wiki/Laksa","content":"Laksa is a spicy noodle soup"},
			{"title":"","url":"https://example.com/laksa","content":"no title"},
			{"title":"No link","url":"","content":"dropped"}
		]}`))
	}))
	defer server.Close()

	backend := NewTavilyBackend("tv-key", server.URL, server.Client())
	results, err := backend.Search(context.Background(), "laksa origin", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results (one without link dropped), got %d", len(results))
	}
	if results[0].Link != "https://en.wikipedia.org/wiki/Laksa" || results[0].Snippet != "Laksa is a spicy noodle soup" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].Title != model.UntitledSource {
		t.Errorf("expected untitled placeholder, got %q", results[1].Title)
	}
}

func TestSerperBackend_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "sp-key" {
			t.Errorf("unexpected X-API-KEY header: %s", r.Header.Get("X-API-KEY"))
		}
		var req serperRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Q != "radium girls" || req.Num != 2 {
			t.Errorf("unexpected request body: %+v", req)
		}
		_, _ = w.Write([]byte(`{"organic":[
			{"title":"Radium Girls","link":"https://a.example/1","snippet":"s1"},
			{"title":"More","link":"https://a.example/2","snippet":"s2"},
			{"title":"Extra","link":"https://a.example/3","snippet":"s3"}
		]}`))
	}))
	defer server.Close()

	backend := NewSerperBackend("sp-key", server.URL, server.Client())
	results, err := backend.Search(context.Background(), "radium girls", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected results capped at 2, got %d", len(results))
	}
}

func TestBackend_NonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	backend := NewSerperBackend("k", server.URL, server.Client())
	if _, err := backend.Search(context.Background(), "q", 5); err == nil {
		t.Error("expected error for 429 response")
	}
}

func TestSelectBackend(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}

	both := model.SearchConfig{TavilyAPIKey: "t", SerperAPIKey: "s"}
	if b := SelectBackend(both, hc); b == nil || b.Name() != "tavily" {
		t.Errorf("expected tavily to take priority, got %v", b)
	}

	serperOnly := model.SearchConfig{SerperAPIKey: "s"}
	if b := SelectBackend(serperOnly, hc); b == nil || b.Name() != "serper" {
		t.Errorf("expected serper fallback, got %v", b)
	}

	if b := SelectBackend(model.SearchConfig{}, hc); b != nil {
		t.Errorf("expected no backend without credentials, got %s", b.Name())
	}
}
