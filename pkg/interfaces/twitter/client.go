package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// Client handles third-party tweet API interactions. It owns the HTTP
// client lifecycle, authentication headers and bounded retry of transient
// network errors.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new API client from a validated config
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		logger: config.Logger,
	}, nil
}

// get performs an authenticated GET with bounded retry. Only transport
// failures (reset, timeout, hang-up) are retried, with linear backoff;
// semantic errors surface immediately.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt-1) * c.config.RetryDelay
			c.logger.WithFields(logrus.Fields{
				"path":    path,
				"attempt": attempt,
				"backoff": backoff.String(),
			}).Debug("Retrying request after transient error")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, err := c.doGet(ctx, path, query)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !isTransient(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.config.RetryAttempts, lastErr)
}

func (c *Client) doGet(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.config.BaseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	c.logger.WithFields(logrus.Fields{
		"path":  path,
		"query": query.Encode(),
	}).Debug("Sending API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	if resp.StatusCode == StatusRateLimit {
		c.logger.WithField("path", path).Warn("Rate limit exceeded")
		return nil, &RateLimitError{RetryAfter: parseRetryAfter(resp)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := extractErrorMessage(body)
		c.logger.WithFields(logrus.Fields{
			"path":        path,
			"status_code": resp.StatusCode,
			"message":     msg,
		}).Error("API request failed")
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return body, nil
}

func parseRetryAfter(resp *http.Response) int {
	var seconds int
	if v := resp.Header.Get("Retry-After"); v != "" {
		fmt.Sscanf(v, "%d", &seconds)
	}
	return seconds
}

func extractErrorMessage(body []byte) string {
	var errResp struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		if len(body) > 200 {
			body = body[:200]
		}
		return string(body)
	}
	switch {
	case errResp.Message != "":
		return errResp.Message
	case errResp.Msg != "":
		return errResp.Msg
	case errResp.Error != "":
		return errResp.Error
	}
	return "unknown error"
}
