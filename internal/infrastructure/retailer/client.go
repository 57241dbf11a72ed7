// Package retailer contains the source adapters for each supported
// e-commerce site. Every adapter satisfies domain.SourceAdapter and keeps its
// retailer-specific quirks (selectors, embedded JSON shapes, field paths)
// local; the search pipeline only ever sees normalized ProductRecords.
package retailer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/comparaprecios/backend/internal/domain"
)

const (
	defaultUserAgent  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultTimeout    = 15 * time.Second
	defaultMaxResults = 10

	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond
)

// Config holds the knobs shared by every retailer adapter.
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	MaxResults int
}

func (c Config) withDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxResults <= 0 {
		c.MaxResults = defaultMaxResults
	}
	return c
}

// fetcher wraps the HTTP behavior common to all adapters: browser-like
// headers, a polite per-retailer rate limit, and bounded retries for
// transient failures.
type fetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	referer    string
}

func newFetcher(cfg Config, referer string) *fetcher {
	return &fetcher{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(2), 5),
		userAgent:  cfg.UserAgent,
		referer:    referer,
	}
}

// get executes a GET request with retries on transport errors and 5xx
// responses. It returns the response body and status code; callers decide
// which non-5xx statuses are acceptable.
func (f *fetcher) get(ctx context.Context, reqURL string, headers map[string]string) ([]byte, int, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, 0, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Accept-Language", "es-CO,es;q=0.9")
		if f.referer != "" {
			req.Header.Set("Referer", f.referer)
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrRetailerUnavailable, err)
			backoff(ctx, attempt)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrRetailerUnavailable, readErr)
			backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("%w: status %d", domain.ErrRetailerUnavailable, resp.StatusCode)
			backoff(ctx, attempt)
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func backoff(ctx context.Context, attempt int) {
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(attempt) * retryBackoff):
	}
}

// parseColombianPrice extracts a numeric price from display text such as
// "$ 2.500.000". Colombian retail prices are integral pesos, so every
// non-digit character is dropped.
func parseColombianPrice(text string) float64 {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(text) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	price, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil {
		return 0
	}
	return price
}
