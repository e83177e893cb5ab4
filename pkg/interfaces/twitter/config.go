// Package twitter provides a client for the third-party tweet data API.
package twitter

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Default configuration values
const (
	// DefaultBaseURL is the third-party API endpoint
	DefaultBaseURL = "https://api.twitterapi.io"
	// DefaultRequestTimeout bounds a single HTTP call
	DefaultRequestTimeout = 30 * time.Second
	// DefaultRetryAttempts is the number of tries for transient network errors
	DefaultRetryAttempts = 3
	// DefaultRetryDelay is the linear backoff unit between retries
	DefaultRetryDelay = 2 * time.Second
	// DefaultPageSize is the number of items requested per page
	DefaultPageSize = 20
)

// Config holds the API client configuration.
// Environment variables:
//   - TWITTER_API_KEY: API key (required)
//   - TWITTER_API_BASE_URL: endpoint base URL
//   - TWITTER_API_TIMEOUT_SECONDS: per-request timeout
//   - TWITTER_API_RETRY_ATTEMPTS: retries for transient network errors
type Config struct {
	// APIKey authenticates every request
	APIKey string
	// BaseURL is the API endpoint base
	BaseURL string
	// RequestTimeout is applied per HTTP call
	RequestTimeout time.Duration
	// RetryAttempts bounds retries of transient network errors
	RetryAttempts int
	// RetryDelay is multiplied by the attempt number (linear backoff)
	RetryDelay time.Duration
	// PageSize is the requested items per page
	PageSize int
	// Logger is the configured logrus logger instance
	Logger *logrus.Logger
}

// NewConfig creates a Config from environment variables, falling back to
// defaults for everything except the API key. The .env file is loaded if
// present; its absence is not an error.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	timeout := DefaultRequestTimeout
	if s := os.Getenv("TWITTER_API_TIMEOUT_SECONDS"); s != "" {
		if t, err := strconv.Atoi(s); err == nil && t > 0 {
			timeout = time.Duration(t) * time.Second
		}
	}

	retries := DefaultRetryAttempts
	if s := os.Getenv("TWITTER_API_RETRY_ATTEMPTS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			retries = n
		}
	}

	config := &Config{
		APIKey:         os.Getenv("TWITTER_API_KEY"),
		BaseURL:        getEnvOrDefault("TWITTER_API_BASE_URL", DefaultBaseURL),
		RequestTimeout: timeout,
		RetryAttempts:  retries,
		RetryDelay:     DefaultRetryDelay,
		PageSize:       DefaultPageSize,
		Logger:         logrus.New(),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.Logger.WithFields(logrus.Fields{
		"api_key_exists": config.APIKey != "",
		"base_url":       config.BaseURL,
		"retry_attempts": config.RetryAttempts,
	}).Debug("Twitter API config initialized")

	return config, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("TWITTER_API_KEY is required")
	}
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	// The retry budget counts total attempts, so anything below 1 would
	// mean never issuing a request at all.
	if c.RetryAttempts < 1 {
		c.RetryAttempts = DefaultRetryAttempts
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	return nil
}

// Helper function to get environment variable with default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
