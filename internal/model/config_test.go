package model

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Verification.MaxClaims != 8 {
		t.Errorf("expected 8 max claims, got %d", cfg.Verification.MaxClaims)
	}
	if cfg.Verification.MaxRounds != 2 {
		t.Errorf("expected retry budget of 2, got %d", cfg.Verification.MaxRounds)
	}
	if cfg.Search.DefaultResults != 5 {
		t.Errorf("expected 5 default results, got %d", cfg.Search.DefaultResults)
	}
	if cfg.Retrieval.MaxSources <= 0 {
		t.Error("expected a positive retrieval cap")
	}
}

func TestConfig_Redacted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.OpenAI.APIKey = "sk-1234567890abcdef"
	cfg.Search.SerperAPIKey = "short"

	red := cfg.Redacted()

	if strings.Contains(red.LLM.OpenAI.APIKey, "567890ab") {
		t.Errorf("expected key to be masked, got %s", red.LLM.OpenAI.APIKey)
	}
	if !strings.HasPrefix(red.LLM.OpenAI.APIKey, "sk-1") {
		t.Errorf("expected key prefix to be kept, got %s", red.LLM.OpenAI.APIKey)
	}
	if red.Search.SerperAPIKey != "*****" {
		t.Errorf("expected short key fully masked, got %s", red.Search.SerperAPIKey)
	}
	if cfg.LLM.OpenAI.APIKey != "sk-1234567890abcdef" {
		t.Error("Redacted must not modify the receiver")
	}
}

func TestRetrievalContext_IDs(t *testing.T) {
	rc := RetrievalContext{SourcesMap: map[string]EvidenceSource{
		"w1":  {ID: "w1"},
		"s10": {ID: "s10"},
		"s2":  {ID: "s2"},
		"s1":  {ID: "s1"},
	}}

	got := strings.Join(rc.IDs(), ",")
	if got != "s1,s2,s10,w1" {
		t.Errorf("unexpected id order: %s", got)
	}

	resolved := rc.Resolve([]string{"s2", "missing", "w1"})
	if len(resolved) != 2 {
		t.Errorf("expected 2 resolved sources, got %d", len(resolved))
	}
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]Status{
		"ok":      StatusOK,
		"warning": StatusWarning,
		"unsure":  StatusUnsure,
		"":        StatusOK,
		"bogus":   StatusOK,
	}
	for in, want := range cases {
		if got := NormalizeStatus(in); got != want {
			t.Errorf("NormalizeStatus(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("שלום עולם", 4); got != "שלום" {
		t.Errorf("expected rune-safe truncation, got %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Errorf("expected unchanged, got %q", got)
	}
}
