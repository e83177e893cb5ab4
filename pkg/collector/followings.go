package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/calebmoore/tweetwatch/pkg/db/models"
	"github.com/calebmoore/tweetwatch/pkg/interfaces/twitter"
	"github.com/calebmoore/tweetwatch/pkg/pagination"
	"github.com/calebmoore/tweetwatch/pkg/reconcile"
)

// SyncFollowings walks the full followings listing of the reference
// account and reconciles every discovered profile. Accounts discovered
// this way get is_following set; their is_tracked flag is left to the
// explicit tracking path (a discovery overwrite never downgrades it).
func (c *Collector) SyncFollowings(ctx context.Context, referenceAccountID string) (reconcile.Stats, pagination.Result, error) {
	walker := pagination.NewWalker[twitter.UserProfile](c.cfg.Walker)

	fetch := func(ctx context.Context, cursor string) (pagination.Page[twitter.UserProfile], error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return pagination.Page[twitter.UserProfile]{}, err
		}
		page, err := c.client.GetFollowingsPage(ctx, referenceAccountID, cursor)
		if err != nil {
			return pagination.Page[twitter.UserProfile]{}, err
		}
		return pagination.Page[twitter.UserProfile]{Items: page.Users, NextCursor: page.NextCursor}, nil
	}

	users, walkRes, err := walker.Walk(ctx, fetch, "")
	if err != nil {
		return reconcile.Stats{}, walkRes, fmt.Errorf("followings walk failed: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"reference_account": referenceAccountID,
		"pages":             walkRes.PagesProcessed,
		"empty_pages":       walkRes.EmptyPages,
		"discovered":        walkRes.TotalItems,
		"reason":            walkRes.Reason,
	}).Info("Followings walk finished")

	accounts := make([]models.Account, 0, len(users))
	now := time.Now()
	for _, u := range users {
		accounts = append(accounts, profileToAccount(u, now, true))
	}

	stats, err := c.reconciler.ReconcileAccounts(ctx, accounts)
	return stats, walkRes, err
}

// TrackAccount resolves a handle to a profile and marks it tracked. This
// is the explicit tracking path; new accounts enter the polling set here.
func (c *Collector) TrackAccount(ctx context.Context, handle string) (*models.Account, error) {
	profile, err := c.client.GetUserByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("no usable profile returned for handle %s", handle)
	}

	account := profileToAccount(*profile, time.Now(), false)
	account.IsTracked = true

	if _, err := c.reconciler.ReconcileAccount(ctx, account); err != nil {
		return nil, err
	}

	stored, err := c.store.GetAccount(account.ID)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"account_id": account.ID,
		"handle":     account.Handle,
	}).Info("Account tracked")

	return stored, nil
}

func profileToAccount(u twitter.UserProfile, now time.Time, following bool) models.Account {
	return models.Account{
		ID:             u.ID,
		Handle:         u.Handle,
		Name:           u.Name,
		Bio:            u.Bio,
		AvatarURL:      u.AvatarURL,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
		PostsCount:     u.PostsCount,
		IsFollowing:    following,
		UpdatedAt:      now,
	}
}
