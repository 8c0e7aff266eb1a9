package validate

import (
	"testing"

	"github.com/ppiankov/draftsmith/internal/model"
)

func TestAuthorityClassifier_Classify(t *testing.T) {
	classifier := NewAuthorityClassifier(nil) // Use defaults

	tests := []struct {
		url      string
		expected model.AuthorityTier
		desc     string
	}{
		{"https://www.who.int/news", model.TierPrimary, "configured primary domain"},
		{"https://pubmed.nih.gov/123", model.TierPrimary, "subdomain of primary domain"},
		{"https://en.wikipedia.org/wiki/Radium_Girls", model.TierSecondary, "subdomain of secondary domain"},
		{"https://www.bbc.co.uk/news/x", model.TierSecondary, "www prefix stripped"},
		{"https://whitehouse.gov/statements", model.TierPrimary, ".gov suffix"},
		{"https://mit.edu/research", model.TierPrimary, ".edu suffix"},
		{"https://huji.ac.il/about", model.TierPrimary, ".ac.il suffix"},
		{"https://example.com/laws/act-1", model.TierPrimary, "legislation path pattern"},
		{"https://example.com/journals/vol1", model.TierSecondary, "journal path pattern"},
		{"https://randomsite.com/page", model.TierTertiary, "unknown domain"},
		{"https://tourism-board.org/visit", model.TierTertiary, ".org without other signals"},
		{"https://EN.Wikipedia.ORG:443/wiki/X", model.TierSecondary, "case and port ignored"},
		{"not a url", model.TierTertiary, "no host"},
		{"", model.TierTertiary, "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := classifier.Classify(tt.url); got != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, got)
			}
		})
	}
}

func TestAuthorityClassifier_DomainMap(t *testing.T) {
	classifier := NewAuthorityClassifier(&model.AuthorityConfig{
		SecondaryDomains: []string{"example.org"},
		DomainMap: map[string]string{
			"nytimes.com":     "secondary",
			"blog.example.org": "tertiary",
		},
	})

	if got := classifier.Classify("https://nytimes.com/article"); got != model.TierSecondary {
		t.Errorf("Expected secondary from domain map, got %v", got)
	}
	if got := classifier.Classify("https://blog.example.org/post"); got != model.TierTertiary {
		t.Errorf("Expected domain map to override suffix rule, got %v", got)
	}
	if got := classifier.Classify("https://news.example.org/post"); got != model.TierSecondary {
		t.Errorf("Expected suffix rule, got %v", got)
	}
}

func TestAuthorityClassifier_MostSpecificDomainWins(t *testing.T) {
	classifier := NewAuthorityClassifier(&model.AuthorityConfig{
		PrimaryDomains:   []string{"archive.example.com"},
		SecondaryDomains: []string{"example.com"},
	})

	if got := classifier.Classify("https://archive.example.com/doc"); got != model.TierPrimary {
		t.Errorf("Expected primary for the more specific domain, got %v", got)
	}
}

func TestAuthorityClassifier_InvalidPattern(t *testing.T) {
	classifier := NewAuthorityClassifier(&model.AuthorityConfig{
		PathPatterns: []model.PathPattern{{Pattern: "([", Tier: "primary"}},
	})
	if len(classifier.pathPatterns) != 0 {
		t.Error("Expected invalid pattern to be skipped")
	}
}

func TestParseTierString(t *testing.T) {
	tests := map[string]model.AuthorityTier{
		"primary":   model.TierPrimary,
		"1":         model.TierPrimary,
		"Secondary": model.TierSecondary,
		"2":         model.TierSecondary,
		"tertiary":  model.TierTertiary,
		"bogus":     model.TierTertiary,
	}
	for in, want := range tests {
		if got := parseTierString(in); got != want {
			t.Errorf("parseTierString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestAuthorityClassifier_NilConfigMatchesDefaults(t *testing.T) {
	def := model.DefaultConfig().Authority
	fromNil := NewAuthorityClassifier(nil)
	fromDefault := NewAuthorityClassifier(&def)

	for _, u := range []string{
		"https://www.who.int/news",
		"https://example.com/laws/act-1",
		"https://randomsite.com/page",
	} {
		if a, b := fromNil.Classify(u), fromDefault.Classify(u); a != b {
			t.Errorf("%s: nil config gave %v, default config gave %v", u, a, b)
		}
	}
}
