// Package reconcile merges freshly fetched records into the store,
// distinguishing new, updated and unchanged items with minimal writes.
package reconcile

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/calebmoore/tweetwatch/pkg/store"
)

// DefaultBatchSize bounds the number of posts written per transaction
const DefaultBatchSize = 40

// Stats accumulates reconciliation outcomes. It is a plain value threaded
// through each stage and returned, never shared mutable state.
type Stats struct {
	New     int `json:"new"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Add returns the element-wise sum of two stats values
func (s Stats) Add(o Stats) Stats {
	return Stats{
		New:     s.New + o.New,
		Updated: s.Updated + o.Updated,
		Skipped: s.Skipped + o.Skipped,
		Errors:  s.Errors + o.Errors,
	}
}

// Total returns the number of items accounted for
func (s Stats) Total() int {
	return s.New + s.Updated + s.Skipped + s.Errors
}

// AccountOutcome reports what happened to a single reconciled account
type AccountOutcome struct {
	Inserted bool
	Updated  bool
}

// Reconciler performs upsert reconciliation against a Store
type Reconciler struct {
	store     *store.Store
	logger    *logrus.Logger
	batchSize int
}

// Option customizes a Reconciler
type Option func(*Reconciler)

// WithBatchSize overrides the per-transaction batch size
func WithBatchSize(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// New creates a Reconciler over the given store
func New(s *store.Store, logger *logrus.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:     s,
		logger:    logger,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
