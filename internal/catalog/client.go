package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"bookhub/internal/metrics"
)

const (
	defaultBaseURL = "https://www.googleapis.com/books/v1"

	// Google Books allows far more, this keeps fan-outs polite.
	defaultRateLimit = 10
	defaultRateBurst = 20

	// Retry configuration
	defaultMaxRetries   = 3
	defaultInitialDelay = 500 * time.Millisecond
	maxDelay            = 8 * time.Second
)

// ErrNotConfigured is returned when the client has no API key.
var ErrNotConfigured = errors.New("book catalog API key is not configured")

// StatusError is a non-2xx answer from the catalog.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// ClientConfig configures a GoogleBooksClient. Zero values pick defaults.
type ClientConfig struct {
	BaseURL      string
	APIKey       string
	RateLimit    int
	MaxRetries   int
	InitialDelay time.Duration
	Logger       zerolog.Logger
}

// GoogleBooksClient handles catalog API requests with rate limiting and retry logic
type GoogleBooksClient struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	rateLimiter  *rate.Limiter
	maxRetries   int
	initialDelay time.Duration
	logger       zerolog.Logger
}

// NewClient creates a new catalog API client
func NewClient(cfg ClientConfig) *GoogleBooksClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	limit, burst := defaultRateLimit, defaultRateBurst
	if cfg.RateLimit > 0 {
		limit, burst = cfg.RateLimit, cfg.RateLimit*2
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = defaultInitialDelay
	}

	return &GoogleBooksClient{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		rateLimiter:  rate.NewLimiter(rate.Limit(limit), burst),
		maxRetries:   cfg.MaxRetries,
		initialDelay: cfg.InitialDelay,
		logger:       cfg.Logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// SearchVolumes runs a relevance-ordered search restricted to books
func (c *GoogleBooksClient) SearchVolumes(ctx context.Context, term string, maxResults int) (*VolumeListResponse, error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("orderBy", "relevance")
	params.Set("printType", "books")

	var response VolumeListResponse
	if err := c.doRequest(ctx, "search", "/volumes", params, &response); err != nil {
		return nil, fmt.Errorf("failed to search volumes: %w", err)
	}
	return &response, nil
}

// GetVolume fetches a single volume by id
func (c *GoogleBooksClient) GetVolume(ctx context.Context, id string) (*Volume, error) {
	var volume Volume
	endpoint := "/volumes/" + url.PathEscape(id)
	if err := c.doRequest(ctx, "get", endpoint, url.Values{}, &volume); err != nil {
		return nil, fmt.Errorf("failed to fetch volume %s: %w", id, err)
	}
	return &volume, nil
}

// doRequest performs an HTTP request with rate limiting and retry logic
func (c *GoogleBooksClient) doRequest(ctx context.Context, operation, endpoint string, params url.Values, result interface{}) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	params.Set("key", c.apiKey)
	fullURL := c.baseURL + endpoint + "?" + params.Encode()

	var lastErr error
	delay := c.initialDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		retry, err := c.attempt(ctx, operation, fullURL, result)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || attempt == c.maxRetries {
			break
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
			c.logger.Warn().Str("operation", operation).Msg("catalog rate limited us")
		}
		c.logger.Debug().Err(err).Int("attempt", attempt+1).Dur("retry_in", delay).Msg("catalog request failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = minDuration(delay*2, maxDelay)
	}

	return lastErr
}

// attempt sends one request. retry reports whether the failure is transient.
func (c *GoogleBooksClient) attempt(ctx context.Context, operation, fullURL string, result interface{}) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "BookHub/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.CatalogRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(operation, "error").Inc()
		// A cancelled or expired context will not get better by retrying.
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	metrics.CatalogRequestsTotal.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return shouldRetry(resp.StatusCode), &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}
	return false, nil
}

// shouldRetry determines if an HTTP status code warrants a retry
func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// minDuration returns the smaller of two durations
func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
