// Package search is the evidence search client: a thin, cached, deduplicated
// front for a web search backend that never fails its caller.
package search

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/draftsmith/internal/cache"
	"github.com/ppiankov/draftsmith/internal/logging"
	"github.com/ppiankov/draftsmith/internal/metrics"
	"github.com/ppiankov/draftsmith/internal/model"
	"github.com/ppiankov/draftsmith/internal/worker"
)

const (
	minResults = 1
	maxResults = 10
)

// Client answers search queries through a backend, a TTL cache and an
// in-flight map so that concurrent identical queries share one call
type Client struct {
	backend        Backend
	cache          *cache.MemoryCache[[]model.EvidenceSource]
	group          singleflight.Group
	limiter        *worker.Limiter
	timeout        time.Duration
	defaultResults int
	logger         *zap.Logger
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	clock   cache.Clock
	logger  *zap.Logger
	limiter *worker.Limiter
}

// WithClock injects the clock used for cache expiry
func WithClock(clock cache.Clock) Option {
	return func(o *clientOptions) { o.clock = clock }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithLimiter sets the rate limiter applied before each backend call
func WithLimiter(l *worker.Limiter) Option {
	return func(o *clientOptions) { o.limiter = l }
}

// NewClient creates a client. backend may be nil, in which case every
// search returns no results.
func NewClient(backend Backend, cfg model.SearchConfig, opts ...Option) *Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	defaultResults := cfg.DefaultResults
	if defaultResults <= 0 {
		defaultResults = 5
	}
	limiter := o.limiter
	if limiter == nil {
		limiter = worker.NewLimiter(cfg.RequestsPerSecond, cfg.BurstSize)
	}

	return &Client{
		backend:        backend,
		cache:          cache.NewMemoryCache[[]model.EvidenceSource](ttl, o.clock),
		limiter:        limiter,
		timeout:        timeout,
		defaultResults: defaultResults,
		logger:         logging.Component(o.logger, "search"),
	}
}

// Enabled reports whether a backend is configured
func (c *Client) Enabled() bool {
	return c != nil && c.backend != nil
}

// Backend returns the backend name, or "" when disabled
func (c *Client) Backend() string {
	if !c.Enabled() {
		return ""
	}
	return c.backend.Name()
}

// Search returns up to n results for query. n is clamped to [1,10]; zero
// means the configured default. Failures and timeouts yield an empty list.
func (c *Client) Search(ctx context.Context, query string, n int) []model.EvidenceSource {
	query = strings.TrimSpace(query)
	if !c.Enabled() || query == "" {
		return []model.EvidenceSource{}
	}
	n = c.clamp(n)
	key := cache.Key("search", strconv.Itoa(n), query)

	if hit, ok := c.cache.Get(key); ok {
		metrics.SearchCache.WithLabelValues("hit").Inc()
		return clone(hit)
	}
	metrics.SearchCache.WithLabelValues("miss").Inc()

	ch := c.group.DoChan(key, func() (any, error) {
		// a previous leader may have filled the cache after our miss
		if hit, ok := c.cache.Get(key); ok {
			return hit, nil
		}
		results := c.fetch(context.WithoutCancel(ctx), query, n)
		if len(results) > 0 {
			c.cache.Set(key, results)
		}
		return results, nil
	})

	select {
	case <-ctx.Done():
		return []model.EvidenceSource{}
	case res := <-ch:
		if res.Shared {
			metrics.SearchCache.WithLabelValues("shared").Inc()
		}
		return clone(res.Val.([]model.EvidenceSource))
	}
}

// fetch performs one bounded backend call
func (c *Client) fetch(ctx context.Context, query string, n int) []model.EvidenceSource {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	backend := c.backend.Name()
	if err := c.limiter.Wait(ctx, c.backend.Endpoint()); err != nil {
		metrics.SearchRequests.WithLabelValues(backend, metrics.ResultError).Inc()
		c.logger.Warn("rate limiter wait failed", zap.String("query", query), zap.Error(err))
		return []model.EvidenceSource{}
	}

	start := time.Now()
	results, err := c.backend.Search(ctx, query, n)
	if err != nil {
		metrics.SearchRequests.WithLabelValues(backend, metrics.ResultError).Inc()
		c.logger.Warn("search failed",
			zap.String("backend", backend),
			zap.String("query", query),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return []model.EvidenceSource{}
	}

	if len(results) == 0 {
		metrics.SearchRequests.WithLabelValues(backend, metrics.ResultEmpty).Inc()
	} else {
		metrics.SearchRequests.WithLabelValues(backend, metrics.ResultOK).Inc()
	}
	c.logger.Debug("search complete",
		zap.String("backend", backend),
		zap.String("query", query),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)))
	return results
}

func (c *Client) clamp(n int) int {
	if n == 0 {
		n = c.defaultResults
	}
	if n < minResults {
		return minResults
	}
	if n > maxResults {
		return maxResults
	}
	return n
}

func clone(in []model.EvidenceSource) []model.EvidenceSource {
	out := make([]model.EvidenceSource, len(in))
	copy(out, in)
	return out
}
