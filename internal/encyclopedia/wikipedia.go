// Package encyclopedia looks up Wikipedia pages and their lead summaries.
package encyclopedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/logging"
	"github.com/ppiankov/draftsmith/internal/metrics"
	"github.com/ppiankov/draftsmith/internal/model"
	"github.com/ppiankov/draftsmith/internal/util"
)

const maxSearchLimit = 10

// SearchHit is a page returned by title search
type SearchHit struct {
	ID          int    `json:"id"`
	Key         string `json:"key"`
	Title       string `json:"title"`
	Excerpt     string `json:"excerpt,omitempty"`
	Description string `json:"description,omitempty"`
}

// PageSummary is the lead extract of one page
type PageSummary struct {
	Title   string `json:"title"`
	Key     string `json:"key"`
	Extract string `json:"extract"`
	URL     string `json:"url"`
}

// Evidence converts the summary into an unlabeled evidence source
func (p PageSummary) Evidence() model.EvidenceSource {
	return model.EvidenceSource{Title: p.Title, Link: p.URL, Snippet: p.Extract}
}

type searchResponse struct {
	Pages []SearchHit `json:"pages"`
}

type summaryResponse struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Client talks to the Wikipedia REST API
type Client struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client from configuration. Requests go through the
// proxies in httpCfg.
func NewClient(cfg model.EncyclopediaConfig, httpCfg model.HTTPConfig, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://en.wikipedia.org"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "Draftsmith/0.1 (+https://github.com/ppiankov/draftsmith)"
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  userAgent,
		timeout:    timeout,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
		},
		logger:     logging.Component(logger, "encyclopedia"),
	}
}

// SearchTitles runs a full-text page search. limit is capped at 10.
func (c *Client) SearchTitles(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	params := url.Values{}
	params.Set("q", strings.TrimSpace(query))
	params.Set("limit", strconv.Itoa(limit))
	apiURL := c.baseURL + "/w/rest.php/v1/search/page?" + params.Encode()

	var resp searchResponse
	if err := c.getJSON(ctx, apiURL, &resp); err != nil {
		metrics.EncyclopediaRequests.WithLabelValues("search", metrics.ResultError).Inc()
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	metrics.EncyclopediaRequests.WithLabelValues("search", metrics.ResultOK).Inc()

	if len(resp.Pages) > limit {
		resp.Pages = resp.Pages[:limit]
	}
	return resp.Pages, nil
}

// Summary fetches the lead extract of a page. It returns nil without error
// when the page has no usable extract.
func (c *Client) Summary(ctx context.Context, key string) (*PageSummary, error) {
	encoded := url.PathEscape(key)
	apiURL := c.baseURL + "/api/rest_v1/page/summary/" + encoded

	var resp summaryResponse
	if err := c.getJSON(ctx, apiURL, &resp); err != nil {
		metrics.EncyclopediaRequests.WithLabelValues("summary", metrics.ResultError).Inc()
		return nil, fmt.Errorf("summary %q: %w", key, err)
	}

	extract := strings.TrimSpace(resp.Extract)
	if extract == "" {
		metrics.EncyclopediaRequests.WithLabelValues("summary", metrics.ResultEmpty).Inc()
		return nil, nil
	}
	metrics.EncyclopediaRequests.WithLabelValues("summary", metrics.ResultOK).Inc()

	title := resp.Title
	if title == "" {
		title = strings.ReplaceAll(key, "_", " ")
	}
	pageURL := resp.ContentURLs.Desktop.Page
	if pageURL == "" {
		pageURL = c.baseURL + "/wiki/" + encoded
	}

	return &PageSummary{Title: title, Key: key, Extract: extract, URL: pageURL}, nil
}

// SearchAndSummarize searches and then fetches summaries one page at a time
// for the first maxPages hits. Any individual failure is skipped, so the
// result may be partial or empty; it is never an error.
func (c *Client) SearchAndSummarize(ctx context.Context, query string, maxPages int) []PageSummary {
	if maxPages <= 0 {
		maxPages = 3
	}

	hits, err := c.SearchTitles(ctx, query, maxPages)
	if err != nil {
		c.logger.Warn("title search failed", zap.String("query", query), zap.Error(err))
		return []PageSummary{}
	}

	summaries := make([]PageSummary, 0, len(hits))
	for _, hit := range hits {
		if len(summaries) >= maxPages || ctx.Err() != nil {
			break
		}
		summary, err := c.Summary(ctx, hit.Key)
		if err != nil {
			c.logger.Debug("summary skipped", zap.String("key", hit.Key), zap.Error(err))
			continue
		}
		if summary != nil {
			summaries = append(summaries, *summary)
		}
	}
	return summaries
}

func (c *Client) getJSON(ctx context.Context, apiURL string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	// Wikimedia rejects requests without a descriptive User-Agent
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Wikipedia API returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
