package validate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/draftsmith/internal/logging"
	"github.com/ppiankov/draftsmith/internal/model"
	"github.com/ppiankov/draftsmith/internal/util"
)

const validateMaxRetries = 3

// validateSleepFunc is the sleep function used between retries (injectable for tests)
var validateSleepFunc = time.Sleep

// Validator checks reference links concurrently and tags each with an
// authority tier
type Validator struct {
	httpClient *http.Client
	maxWorkers int
	userAgent  string
	authority  *AuthorityClassifier
	robots     *util.RobotsChecker
	logger     *zap.Logger
}

// check is the outcome of probing one URL
type check struct {
	statusCode int
	err        string
}

// NewValidator creates a new validator
func NewValidator(httpConfig model.HTTPConfig, maxWorkers int, authConfig *model.AuthorityConfig, logger *zap.Logger) *Validator {
	if maxWorkers <= 0 {
		maxWorkers = 20
	}
	timeout := httpConfig.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	userAgent := httpConfig.UserAgent
	if userAgent == "" {
		userAgent = model.DefaultConfig().HTTP.UserAgent
	}

	return &Validator{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpConfig.HTTPProxy, httpConfig.HTTPSProxy, httpConfig.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		maxWorkers: maxWorkers,
		userAgent:  userAgent,
		authority:  NewAuthorityClassifier(authConfig),
		robots:     util.NewRobotsChecker(userAgent, timeout),
		logger:     logging.Component(logger, "validate"),
	}
}

// Classify returns the authority tier for a URL without probing it
func (v *Validator) Classify(rawURL string) model.AuthorityTier {
	return v.authority.Classify(rawURL)
}

// Validate probes every reference concurrently and returns annotated copies
// in input order. A URL that robots.txt disallows is not probed and is
// kept as accessible.
func (v *Validator) Validate(ctx context.Context, refs []model.SourceReference) []model.SourceReference {
	results := make([]model.SourceReference, len(refs))
	if len(refs) == 0 {
		return results
	}

	var wg sync.WaitGroup

	// Create semaphore to limit concurrent requests
	semaphore := make(chan struct{}, v.maxWorkers)

	for i, ref := range refs {
		wg.Add(1)
		go func(idx int, r model.SourceReference) {
			defer wg.Done()

			r.Authority = v.authority.Classify(r.URL)
			r.Accessible = false
			r.StatusCode = 0

			select {
			case <-ctx.Done():
				results[idx] = r
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			if !v.robots.IsAllowed(ctx, r.URL) {
				v.logger.Debug("robots.txt disallows probe", zap.String("url", r.URL))
				r.Accessible = true
				results[idx] = r
				return
			}

			c := v.checkWithRetry(ctx, r.URL)
			r.StatusCode = c.statusCode
			r.Accessible = c.err == "" && c.statusCode >= 200 && c.statusCode < 400
			if !r.Accessible {
				v.logger.Debug("reference not accessible",
					zap.String("url", r.URL),
					zap.Int("status", c.statusCode),
					zap.String("error", c.err))
			}
			results[idx] = r
		}(i, ref)
	}

	wg.Wait()

	return results
}

// checkSingle probes one URL with HEAD, falling back to GET when HEAD is refused
func (v *Validator) checkSingle(ctx context.Context, rawURL string) check {
	c := v.do(ctx, http.MethodHead, rawURL)
	if c.statusCode == http.StatusMethodNotAllowed || c.statusCode == http.StatusNotImplemented {
		return v.do(ctx, http.MethodGet, rawURL)
	}
	return c
}

func (v *Validator) do(ctx context.Context, method, rawURL string) check {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return check{err: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("User-Agent", v.userAgent)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return check{err: fmt.Sprintf("request failed: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	return check{statusCode: resp.StatusCode}
}

// checkWithRetry retries transient failures with exponential backoff
func (v *Validator) checkWithRetry(ctx context.Context, rawURL string) check {
	var c check
	for attempt := 0; attempt < validateMaxRetries; attempt++ {
		c = v.checkSingle(ctx, rawURL)
		if !isRetryable(c) || ctx.Err() != nil {
			return c
		}
		if attempt < validateMaxRetries-1 {
			validateSleepFunc(time.Duration(1<<uint(attempt)) * time.Second)
		}
	}
	return c
}

// isRetryable returns true for results that indicate transient failures
func isRetryable(c check) bool {
	if c.statusCode >= 500 && c.statusCode < 600 {
		return true
	}
	if c.statusCode == http.StatusTooManyRequests {
		return true
	}
	if c.err != "" {
		return isRetryableNetworkError(c.err)
	}
	return false
}

// isRetryableNetworkError checks error strings for transient network failures
func isRetryableNetworkError(errMsg string) bool {
	s := strings.ToLower(errMsg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
