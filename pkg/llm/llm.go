// Package llm abstracts the completion backend used for summary
// generation.
package llm

import (
	"context"
)

// LLM produces a completion for a prompt. Implementations carry their own
// endpoint and model configuration; per-call options override individual
// generation settings.
type LLM interface {
	Generate(ctx context.Context, prompt string, opts ...Option) (string, error)
}

// Options holds the per-call generation settings
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Option overrides one generation setting for a single call
type Option func(*Options)

// WithTemperature overrides the sampling temperature
func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

// WithMaxTokens caps the completion length
func WithMaxTokens(tokens int) Option {
	return func(o *Options) {
		o.MaxTokens = tokens
	}
}
