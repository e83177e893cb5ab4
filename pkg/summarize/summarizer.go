// Package summarize generates natural-language summaries of collected
// posts over rolling time windows.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/calebmoore/tweetwatch/pkg/db/models"
	"github.com/calebmoore/tweetwatch/pkg/llm"
	"github.com/calebmoore/tweetwatch/pkg/store"
)

// ErrBusy is returned by TryGenerate when the concurrency budget for
// summary generation is exhausted. Expensive AI calls are rejected rather
// than queued indefinitely.
var ErrBusy = errors.New("summary generation already in progress")

// maxPromptPosts caps how many posts feed one prompt, newest kept
const maxPromptPosts = 200

// Notifier delivers a finished summary to an external channel
type Notifier interface {
	SendSummary(ctx context.Context, period models.SummaryPeriod, content string) error
}

// Summarizer produces Summary rows from posts in a rolling window
type Summarizer struct {
	store    *store.Store
	llm      llm.LLM
	logger   *logrus.Logger
	notifier Notifier
	sem      *semaphore.Weighted
}

// Option customizes a Summarizer
type Option func(*Summarizer)

// WithNotifier attaches a delivery channel for generated summaries
func WithNotifier(n Notifier) Option {
	return func(s *Summarizer) {
		s.notifier = n
	}
}

// WithConcurrency raises the number of generations allowed in flight
// (default 1)
func WithConcurrency(n int64) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(n)
		}
	}
}

// New creates a Summarizer
func New(st *store.Store, model llm.LLM, logger *logrus.Logger, opts ...Option) *Summarizer {
	s := &Summarizer{
		store:  st,
		llm:    model,
		logger: logger,
		sem:    semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces a summary for the period's current window, waiting for
// the concurrency budget if necessary. The scheduled summary jobs use this
// path.
func (s *Summarizer) Generate(ctx context.Context, period models.SummaryPeriod) (*models.Summary, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)
	return s.generate(ctx, period)
}

// TryGenerate produces a summary if the concurrency budget allows it right
// now, returning ErrBusy otherwise. The on-demand API path uses this to
// avoid queuing expensive AI calls behind each other.
func (s *Summarizer) TryGenerate(ctx context.Context, period models.SummaryPeriod) (*models.Summary, error) {
	if !s.sem.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer s.sem.Release(1)
	return s.generate(ctx, period)
}

func (s *Summarizer) generate(ctx context.Context, period models.SummaryPeriod) (*models.Summary, error) {
	windowEnd := time.Now()
	windowStart := windowEnd.Add(-Window(period))

	log := s.logger.WithFields(logrus.Fields{
		"period":       period,
		"window_start": windowStart,
		"window_end":   windowEnd,
	})

	posts, err := s.store.GetPostsByTimeRange(windowStart, windowEnd)
	if err != nil {
		log.WithError(err).Error("Failed to load posts for summary window")
		s.recordError(period, windowStart, windowEnd, err)
		return nil, err
	}

	if len(posts) == 0 {
		log.Info("No posts in window, recording empty summary")
		return s.store.SaveSummary(period, "", windowStart, windowEnd, 0, models.SummaryEmpty)
	}

	prompt := buildPrompt(period, posts)

	content, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		log.WithError(err).Error("Summary generation failed")
		s.recordError(period, windowStart, windowEnd, err)
		return nil, fmt.Errorf("failed to generate %s summary: %w", period, err)
	}

	summary, err := s.store.SaveSummary(period, content, windowStart, windowEnd, len(posts), models.SummarySuccess)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"summary_id": summary.ID,
		"post_count": summary.PostCount,
	}).Info("Summary generated")

	if s.notifier != nil {
		if err := s.notifier.SendSummary(ctx, period, content); err != nil {
			log.WithError(err).Warn("Failed to deliver summary notification")
		}
	}

	return summary, nil
}

// recordError appends an error-status row so failed runs are visible in
// history. A failure to record is only logged; the original error matters
// more.
func (s *Summarizer) recordError(period models.SummaryPeriod, start, end time.Time, cause error) {
	if _, err := s.store.SaveSummary(period, cause.Error(), start, end, 0, models.SummaryError); err != nil {
		s.logger.WithError(err).Error("Failed to record error summary")
	}
}

func buildPrompt(period models.SummaryPeriod, posts []models.Post) string {
	if len(posts) > maxPromptPosts {
		posts = posts[len(posts)-maxPromptPosts:]
	}

	var b strings.Builder
	b.WriteString(instruction(period))
	b.WriteString("\n\nActivity log:\n")
	for _, p := range posts {
		fmt.Fprintf(&b, "time: %s, user: @%s, likes: %d, reposts: %d\n%s\n---\n",
			p.PublishedAt, p.AuthorHandle, p.LikeCount, p.RetweetCount, p.Text)
	}
	return b.String()
}
