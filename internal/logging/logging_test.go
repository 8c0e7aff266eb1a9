package logging

import "testing"

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := New("debug", format)
		if err != nil {
			t.Fatalf("New(debug, %q) failed: %v", format, err)
		}
		if !l.Core().Enabled(-1) {
			t.Errorf("expected debug level enabled for format %q", format)
		}
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("loud", "json"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected a logger")
	}
	Component(nil, "search").Info("does not panic")
}
