package util

import (
	"net/http"
	"testing"
)

func proxyFor(t *testing.T, proxy func(*http.Request) (string, error), rawURL string) string {
	t.Helper()
	host, err := proxy(mustRequest(t, rawURL))
	if err != nil {
		t.Fatalf("proxy(%s): %v", rawURL, err)
	}
	return host
}

func mustRequest(t *testing.T, rawURL string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func hostOnly(httpProxy, httpsProxy, noProxy string) func(*http.Request) (string, error) {
	proxy := NewProxyFunc(httpProxy, httpsProxy, noProxy)
	return func(req *http.Request) (string, error) {
		u, err := proxy(req)
		if u == nil || err != nil {
			return "", err
		}
		return u.Host, nil
	}
}

func TestNewProxyFunc_Explicit(t *testing.T) {
	proxy := hostOnly("http://plain:8080", "http://secure:8443", "")

	if got := proxyFor(t, proxy, "https://api.openai.com/v1"); got != "secure:8443" {
		t.Errorf("https request: got %q", got)
	}
	if got := proxyFor(t, proxy, "http://en.wikipedia.org/wiki/Bridge"); got != "plain:8080" {
		t.Errorf("http request: got %q", got)
	}
}

func TestNewProxyFunc_HTTPSFallsBackToHTTP(t *testing.T) {
	proxy := hostOnly("http://plain:8080", "", "")

	if got := proxyFor(t, proxy, "https://api.tavily.com/search"); got != "plain:8080" {
		t.Errorf("expected https to reuse the http proxy, got %q", got)
	}
}

func TestNewProxyFunc_NoProxy(t *testing.T) {
	proxy := hostOnly("http://plain:8080", "", "internal.example,.corp.example")

	for _, rawURL := range []string{
		"http://internal.example/api",
		"https://search.corp.example/q",
		"http://localhost:11434/api/generate",
	} {
		if got := proxyFor(t, proxy, rawURL); got != "" {
			t.Errorf("%s: expected direct connection, got %q", rawURL, got)
		}
	}
	if got := proxyFor(t, proxy, "https://google.serper.dev/search"); got != "plain:8080" {
		t.Errorf("expected other hosts proxied, got %q", got)
	}
}
