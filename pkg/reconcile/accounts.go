package reconcile

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/calebmoore/tweetwatch/pkg/db/models"
)

// ReconcileAccount merges a freshly sighted account into the store. New
// accounts are inserted; known accounts get a full overwrite of every
// mutable field, since profile fields change legitimately over time.
//
// The is_tracked flag is the one exception: a discovery-path overwrite
// never downgrades it from true to false. Untracking happens only through
// the explicit store.SetTracked path.
func (r *Reconciler) ReconcileAccount(ctx context.Context, account models.Account) (AccountOutcome, error) {
	if err := r.checkContext(ctx); err != nil {
		return AccountOutcome{}, err
	}

	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = time.Now()
	}

	existing, err := r.store.GetAccount(account.ID)
	if err != nil {
		return AccountOutcome{}, err
	}

	if existing == nil {
		if err := r.store.InsertAccount(account); err != nil {
			return AccountOutcome{}, err
		}
		r.logger.WithFields(logrus.Fields{
			"account_id": account.ID,
			"handle":     account.Handle,
			"is_tracked": account.IsTracked,
		}).Debug("Inserted newly discovered account")
		return AccountOutcome{Inserted: true}, nil
	}

	if existing.IsTracked && !account.IsTracked {
		account.IsTracked = true
	}

	if err := r.store.UpdateAccount(account); err != nil {
		return AccountOutcome{}, err
	}

	r.logger.WithFields(logrus.Fields{
		"account_id": account.ID,
		"handle":     account.Handle,
	}).Debug("Overwrote account profile on re-sighting")

	return AccountOutcome{Updated: true}, nil
}

// ReconcileAccounts reconciles a listing of discovered accounts in order,
// isolating per-account failures. It returns aggregate stats: inserted
// accounts count as new, overwritten ones as updated.
func (r *Reconciler) ReconcileAccounts(ctx context.Context, accounts []models.Account) (Stats, error) {
	var stats Stats
	for _, account := range accounts {
		outcome, err := r.ReconcileAccount(ctx, account)
		if err != nil {
			if ctx.Err() != nil {
				return stats, err
			}
			r.logger.WithError(err).WithField("account_id", account.ID).Warn("Failed to reconcile account")
			stats.Errors++
			continue
		}
		if outcome.Inserted {
			stats.New++
		} else {
			stats.Updated++
		}
	}
	return stats, nil
}
