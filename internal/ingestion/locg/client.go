// Package locg talks to the scraper service that reads series pages on
// League of Comic Geeks.
package locg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	rateBurst = 1

	// Retry configuration
	maxRetries   = 3
	initialDelay = 1 * time.Second
	maxDelay     = 16 * time.Second
)

// Client calls the scraper service with rate limiting and retries.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger

	// initialDelay is the first backoff step; tests shorten it.
	initialDelay time.Duration
}

// NewClient creates a scraper client. requestsPerSecond caps the call rate;
// page crawls are slow, so the timeout is generous.
func NewClient(baseURL string, requestsPerSecond float64, logger *slog.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		rateLimiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), rateBurst),
		logger:       logger,
		initialDelay: initialDelay,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Crawl asks the scraper to read the series page at pageURL. A scraper-side
// failure is returned as a result with Success false, not as an error.
func (c *Client) Crawl(ctx context.Context, pageURL string, creds *Credentials) (*CrawlResult, error) {
	body, err := json.Marshal(crawlRequest{URL: pageURL, Credentials: creds})
	if err != nil {
		return nil, fmt.Errorf("encode crawl request: %w", err)
	}

	var result CrawlResult
	if err := c.doRequest(ctx, http.MethodPost, "/crawl", body, &result); err != nil {
		return nil, fmt.Errorf("crawl %s: %w", pageURL, err)
	}
	if result.URL == "" {
		result.URL = pageURL
	}
	if result.CrawledAt.IsZero() {
		result.CrawledAt = time.Now().UTC()
	}
	return &result, nil
}

// doRequest performs an HTTP request with rate limiting and retry logic
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body []byte, result any) error {
	fullURL := c.baseURL + endpoint

	var lastErr error
	delay := c.initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "ComicVault/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxRetries && ctx.Err() == nil {
				c.logger.Warn("scraper request failed, retrying",
					"attempt", attempt+1, "max_retries", maxRetries, "delay", delay, "error", err)
				if err := sleep(ctx, delay); err != nil {
					return err
				}
				delay = minDuration(delay*2, maxDelay)
				continue
			}
			return fmt.Errorf("request failed after %d attempts: %w", attempt+1, err)
		}

		if resp.StatusCode != http.StatusOK {
			bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))

			if shouldRetry(resp.StatusCode) && attempt < maxRetries {
				if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
					if seconds, err := strconv.Atoi(retryAfter); err == nil {
						delay = minDuration(time.Duration(seconds)*time.Second, maxDelay)
					}
				}
				c.logger.Warn("scraper returned retryable status",
					"status", resp.StatusCode, "attempt", attempt+1, "delay", delay)
				if err := sleep(ctx, delay); err != nil {
					return err
				}
				delay = minDuration(delay*2, maxDelay)
				continue
			}
			return lastErr
		}

		err = json.NewDecoder(resp.Body).Decode(result)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("request failed after %d attempts: %w", maxRetries+1, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// shouldRetry determines if an HTTP status code warrants a retry
func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
