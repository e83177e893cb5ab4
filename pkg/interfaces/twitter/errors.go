package twitter

import (
	"errors"
	"fmt"
	"net"
)

// StatusRateLimit is the upstream's throttling status code
const StatusRateLimit = 429

// ConnectionError wraps a transport-level failure (reset, timeout,
// hang-up). These are the only errors the client retries.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// RateLimitError indicates the upstream throttled the request
type RateLimitError struct {
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limit exceeded, retry after %ds", e.RetryAfter)
	}
	return "rate limit exceeded"
}

// APIError is a non-2xx semantic response from the upstream. It is never
// retried.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
}

// isTransient reports whether err is worth retrying: transport-level
// failures only, never semantic 4xx responses.
func isTransient(err error) bool {
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
