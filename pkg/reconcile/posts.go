package reconcile

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/calebmoore/tweetwatch/pkg/db/models"
	"github.com/calebmoore/tweetwatch/pkg/store"
)

// ReconcilePosts merges a batch of freshly fetched posts into the store.
//
// Each incoming post is looked up by ID: unknown posts are inserted, known
// posts are updated only when an engagement counter changed (counters and
// collected_at only; text, author and publish timestamp never rewrite), and
// identical posts are skipped without a write. Item-level store errors are
// counted and do not abort the remaining items.
//
// Posts are processed in fixed-size batches, one transaction per batch,
// batches strictly sequential. A transaction-level failure rolls the whole
// batch back; its items are counted as errors and processing continues with
// the next batch.
//
// Duplicate IDs inside one call are processed independently in order, so
// the last write in the batch wins. An empty batch is a no-op returning
// all-zero stats.
func (r *Reconciler) ReconcilePosts(ctx context.Context, posts []models.Post) (Stats, error) {
	var stats Stats
	if len(posts) == 0 {
		return stats, nil
	}

	for start := 0; start < len(posts); start += r.batchSize {
		if err := r.checkContext(ctx); err != nil {
			return stats, err
		}

		end := start + r.batchSize
		if end > len(posts) {
			end = len(posts)
		}
		batch := posts[start:end]

		batchStats, err := r.reconcileBatch(batch)
		if err != nil {
			// The whole batch rolled back: every item in it failed.
			r.logger.WithError(err).WithFields(logrus.Fields{
				"batch_start": start,
				"batch_size":  len(batch),
			}).Error("Post batch transaction failed, batch rolled back")
			stats.Errors += len(batch)
			continue
		}
		stats = stats.Add(batchStats)
	}

	r.logger.WithFields(logrus.Fields{
		"incoming": len(posts),
		"new":      stats.New,
		"updated":  stats.Updated,
		"skipped":  stats.Skipped,
		"errors":   stats.Errors,
	}).Info("Post reconciliation completed")

	return stats, nil
}

// reconcileBatch processes one batch inside a single transaction. Logical
// per-item errors increment the error counter without rolling back; only a
// transaction-level failure aborts the batch.
func (r *Reconciler) reconcileBatch(batch []models.Post) (Stats, error) {
	var stats Stats

	err := r.store.Transaction(func(tx *store.Store) error {
		for _, incoming := range batch {
			outcome, err := reconcileOne(tx, incoming)
			if err != nil {
				r.logger.WithError(err).WithField("post_id", incoming.ID).Warn("Failed to reconcile post")
				stats.Errors++
				continue
			}
			switch outcome {
			case outcomeNew:
				stats.New++
			case outcomeUpdated:
				stats.Updated++
			case outcomeSkipped:
				stats.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

type postOutcome int

const (
	outcomeNew postOutcome = iota
	outcomeUpdated
	outcomeSkipped
)

func reconcileOne(tx *store.Store, incoming models.Post) (postOutcome, error) {
	existing, err := tx.GetPost(incoming.ID)
	if err != nil {
		return 0, err
	}

	if incoming.CollectedAt.IsZero() {
		incoming.CollectedAt = time.Now()
	}

	if existing == nil {
		if err := tx.InsertPost(incoming); err != nil {
			return 0, err
		}
		return outcomeNew, nil
	}

	if existing.CountersDiffer(incoming) {
		if err := tx.UpdatePostCounters(incoming); err != nil {
			return 0, err
		}
		return outcomeUpdated, nil
	}

	return outcomeSkipped, nil
}
