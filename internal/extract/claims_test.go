package extract

import (
	"strings"
	"testing"
)

func TestClaimExtractor_BasicExtraction(t *testing.T) {
	extractor := NewClaimExtractor(8)

	html := `
	<html>
	<body>
		<p>The Radium Dial Company opened its Ottawa studio in 1922 and hired local girls.</p>
		<p>According to historians, the workers were told the paint was harmless.</p>
		<p>This is just a regular sentence without anything to check.</p>
		<script>var x = "founded in 1999 by nobody";</script>
	</body>
	</html>
	`

	claims := extractor.Extract(html)

	if len(claims) != 2 {
		t.Fatalf("Expected 2 claims, got %d: %+v", len(claims), claims)
	}
	if claims[0].Heuristic != "year:1922" {
		t.Errorf("Expected year heuristic, got %q", claims[0].Heuristic)
	}
	if claims[1].Heuristic != "keyword:according to" {
		t.Errorf("Expected keyword heuristic, got %q", claims[1].Heuristic)
	}
	for _, c := range claims {
		if strings.Contains(c.Text, "nobody") {
			t.Error("Script content must not be extracted")
		}
		if c.SearchQuery == "" {
			t.Errorf("Expected a search query for %q", c.Text)
		}
	}
}

func TestClaimExtractor_PlainText(t *testing.T) {
	extractor := NewClaimExtractor(8)

	text := "The ship carried 2,224 people on its maiden voyage. It was a cold night at sea."
	claims := extractor.Extract(text)

	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim, got %d", len(claims))
	}
	if claims[0].Heuristic != "number" {
		t.Errorf("Expected number heuristic, got %q", claims[0].Heuristic)
	}
}

func TestClaimExtractor_Limit(t *testing.T) {
	extractor := NewClaimExtractor(2)

	var b strings.Builder
	for i := 0; i < 5; i++ {
		b.WriteString("The bridge was built in 190")
		b.WriteString(string(rune('0' + i)))
		b.WriteString(" by the city engineers. ")
	}

	if claims := extractor.Extract(b.String()); len(claims) != 2 {
		t.Errorf("Expected 2 claims, got %d", len(claims))
	}
}

func TestClaimExtractor_Dedupe(t *testing.T) {
	extractor := NewClaimExtractor(8)

	text := "The archive was founded by volunteers in town. The archive was founded by volunteers in town."
	if claims := extractor.Extract(text); len(claims) != 1 {
		t.Errorf("Expected duplicates removed, got %d", len(claims))
	}
}

func TestSearchQuery_Truncates(t *testing.T) {
	q := searchQuery("one two three four five six seven eight nine ten eleven twelve thirteen fourteen.")
	if len(strings.Fields(q)) != 12 {
		t.Errorf("Expected 12 words, got %q", q)
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "  hello \n world ", "hello world"},
		{"html", "<p>Hello <b>world</b></p><style>p{}</style>", "Hello world"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
