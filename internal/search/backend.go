package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ppiankov/draftsmith/internal/model"
)

// Backend is a web search provider
type Backend interface {
	Name() string
	Endpoint() string
	Search(ctx context.Context, query string, n int) ([]model.EvidenceSource, error)
}

// TavilyBackend queries the Tavily search API
type TavilyBackend struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type tavilyRequest struct {
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// NewTavilyBackend creates a Tavily backend
func NewTavilyBackend(apiKey, baseURL string, httpClient *http.Client) *TavilyBackend {
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}
	return &TavilyBackend{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (b *TavilyBackend) Name() string     { return "tavily" }
func (b *TavilyBackend) Endpoint() string { return b.baseURL + "/search" }

// Search runs one query
func (b *TavilyBackend) Search(ctx context.Context, query string, n int) ([]model.EvidenceSource, error) {
	body := tavilyRequest{
		Query:         query,
		MaxResults:    n,
		SearchDepth:   "basic",
		IncludeAnswer: false,
	}
	headers := map[string]string{"Authorization": "Bearer " + b.apiKey}

	var resp tavilyResponse
	if err := postJSON(ctx, b.httpClient, b.Endpoint(), headers, body, &resp); err != nil {
		return nil, fmt.Errorf("tavily: %w", err)
	}

	results := make([]model.EvidenceSource, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = appendResult(results, r.Title, r.URL, r.Content)
	}
	return limit(results, n), nil
}

// SerperBackend queries the Serper Google search API
type SerperBackend struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// NewSerperBackend creates a Serper backend
func NewSerperBackend(apiKey, baseURL string, httpClient *http.Client) *SerperBackend {
	if baseURL == "" {
		baseURL = "https://google.serper.dev"
	}
	return &SerperBackend{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (b *SerperBackend) Name() string     { return "serper" }
func (b *SerperBackend) Endpoint() string { return b.baseURL + "/search" }

// Search runs one query
func (b *SerperBackend) Search(ctx context.Context, query string, n int) ([]model.EvidenceSource, error) {
	body := serperRequest{Q: query, Num: n}
	headers := map[string]string{"X-API-KEY": b.apiKey}

	var resp serperResponse
	if err := postJSON(ctx, b.httpClient, b.Endpoint(), headers, body, &resp); err != nil {
		return nil, fmt.Errorf("serper: %w", err)
	}

	results := make([]model.EvidenceSource, 0, len(resp.Organic))
	for _, r := range resp.Organic {
		results = appendResult(results, r.Title, r.Link, r.Snippet)
	}
	return limit(results, n), nil
}

// appendResult drops entries without a link and defaults empty titles
func appendResult(results []model.EvidenceSource, title, link, snippet string) []model.EvidenceSource {
	link = strings.TrimSpace(link)
	if link == "" {
		return results
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = model.UntitledSource
	}
	return append(results, model.EvidenceSource{
		Title:   title,
		Link:    link,
		Snippet: strings.TrimSpace(snippet),
	})
}

func limit(results []model.EvidenceSource, n int) []model.EvidenceSource {
	if len(results) > n {
		return results[:n]
	}
	return results
}

func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
