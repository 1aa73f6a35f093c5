// Package fetcher implements the rate-limited HTTP client used by the
// download stages.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/lawcorpus/plawfetch/internal/metrics"
)

// RateLimiter blocks until a call may proceed under the upstream quota.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Config controls client behavior.
type Config struct {
	// APIKey is sent as X-Api-Key when non-empty.
	APIKey    string
	UserAgent string
	Timeout   time.Duration
	// MaxRetries retries transport failures only; HTTP statuses are
	// returned to the caller as-is.
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// Response is the outcome of a completed HTTP exchange. A non-2xx
// status is not an error at this layer; interpreting the status is the
// caller's responsibility.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client issues GETs against the bulk-data API under the rate budget.
type Client struct {
	http    *resty.Client
	limiter RateLimiter
	logger  *zap.Logger
}

// New builds a Client.
func New(cfg Config, limiter RateLimiter, logger *zap.Logger) *Client {
	c := resty.New().
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(cfg.BackoffInitial).
		SetRetryMaxWaitTime(cfg.BackoffMax)
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		c.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.APIKey != "" {
		c.SetHeader("X-Api-Key", cfg.APIKey)
	}

	return &Client{
		http:    c,
		limiter: limiter,
		logger:  logger,
	}
}

// Get performs a rate-limited GET. It blocks in the limiter first, so a
// call over budget is delayed rather than dropped. Transport errors are
// returned after resty's retries are exhausted.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}

	metrics.ObserveFetch(res.StatusCode())
	c.logger.Debug("fetched",
		zap.String("url", url),
		zap.Int("status", res.StatusCode()),
		zap.Duration("duration", time.Since(start)),
	)
	return &Response{
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
	}, nil
}
