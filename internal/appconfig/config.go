// Package appconfig loads application-level settings from the environment.
package appconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Defaults for scheduling and serving
const (
	DefaultCollectionSchedule    = "@every 5m"
	DefaultFollowingsSchedule    = "@every 6h"
	DefaultShortSummarySchedule  = "@every 1h"
	DefaultMediumSummarySchedule = "@every 12h"
	DefaultLongSummarySchedule   = "@every 24h"
	DefaultListenAddr            = ":8080"
)

// Config holds application settings read once at startup
type Config struct {
	// TrackedHandles seeds the tracked account set on boot. Accounts
	// already tracked in the store stay tracked regardless.
	TrackedHandles []string

	// ReferenceAccountID is the account whose followings listing is
	// walked to discover profiles. Empty disables the followings sync.
	ReferenceAccountID string

	CollectionSchedule    string
	FollowingsSchedule    string
	ShortSummarySchedule  string
	MediumSummarySchedule string
	LongSummarySchedule   string

	// PostRetentionDays drops posts published before the cutoff during a
	// daily purge job. Zero keeps everything.
	PostRetentionDays int

	ListenAddr string
}

// NewConfig reads settings from the environment
func NewConfig() (*Config, error) {
	cfg := &Config{
		TrackedHandles:        splitHandles(os.Getenv("TRACKED_HANDLES")),
		ReferenceAccountID:    os.Getenv("REFERENCE_ACCOUNT_ID"),
		CollectionSchedule:    getEnvOrDefault("COLLECTION_SCHEDULE", DefaultCollectionSchedule),
		FollowingsSchedule:    getEnvOrDefault("FOLLOWINGS_SCHEDULE", DefaultFollowingsSchedule),
		ShortSummarySchedule:  getEnvOrDefault("SUMMARY_SHORT_SCHEDULE", DefaultShortSummarySchedule),
		MediumSummarySchedule: getEnvOrDefault("SUMMARY_MEDIUM_SCHEDULE", DefaultMediumSummarySchedule),
		LongSummarySchedule:   getEnvOrDefault("SUMMARY_LONG_SCHEDULE", DefaultLongSummarySchedule),
		ListenAddr:            getEnvOrDefault("LISTEN_ADDR", DefaultListenAddr),
	}

	if raw := os.Getenv("POST_RETENTION_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			return nil, fmt.Errorf("POST_RETENTION_DAYS must be a non-negative integer, got %q", raw)
		}
		cfg.PostRetentionDays = days
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail mid-run
func (c *Config) Validate() error {
	if len(c.TrackedHandles) == 0 && c.ReferenceAccountID == "" {
		return fmt.Errorf("at least one of TRACKED_HANDLES or REFERENCE_ACCOUNT_ID must be set")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR cannot be empty")
	}
	return nil
}

// splitHandles parses a comma-separated handle list, trimming whitespace
// and any leading @
func splitHandles(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	handles := make([]string, 0, len(parts))
	for _, p := range parts {
		h := strings.TrimPrefix(strings.TrimSpace(p), "@")
		if h != "" {
			handles = append(handles, h)
		}
	}
	return handles
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
