// Package collector drives the periodic collection cycle: walking each
// tracked account's recent posts and reconciling them into the store.
package collector

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/calebmoore/tweetwatch/pkg/db/models"
	"github.com/calebmoore/tweetwatch/pkg/interfaces/twitter"
	"github.com/calebmoore/tweetwatch/pkg/pagination"
	"github.com/calebmoore/tweetwatch/pkg/reconcile"
	"github.com/calebmoore/tweetwatch/pkg/store"
)

// Default cycle parameters
const (
	// DefaultBatchSize is the number of accounts collected concurrently
	DefaultBatchSize = 10
	// DefaultBatchDelay separates account batches to respect upstream
	// rate limits
	DefaultBatchDelay = 5 * time.Second
	// DefaultRequestsPerMinute paces page fetches across the whole cycle
	DefaultRequestsPerMinute = 60
)

// Config holds collection cycle parameters
type Config struct {
	BatchSize         int
	BatchDelay        time.Duration
	RequestsPerMinute int
	Walker            pagination.Config
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchDelay <= 0 {
		c.BatchDelay = DefaultBatchDelay
	}
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = DefaultRequestsPerMinute
	}
	return c
}

// PageFetcher is the slice of the API client the collector needs. The
// production implementation is *twitter.Client.
type PageFetcher interface {
	GetUserTweetsPage(ctx context.Context, userID, cursor string) (twitter.TweetsPage, error)
	GetFollowingsPage(ctx context.Context, userID, cursor string) (twitter.FollowingsPage, error)
	GetUserByHandle(ctx context.Context, handle string) (*twitter.UserProfile, error)
}

// Collector runs collection cycles over the tracked account set
type Collector struct {
	client     PageFetcher
	store      *store.Store
	reconciler *reconcile.Reconciler
	logger     *logrus.Logger
	limiter    *rate.Limiter
	cfg        Config
}

// New creates a Collector
func New(client PageFetcher, st *store.Store, rec *reconcile.Reconciler, logger *logrus.Logger, cfg Config) *Collector {
	cfg = cfg.withDefaults()
	return &Collector{
		client:     client,
		store:      st,
		reconciler: rec,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		cfg:        cfg,
	}
}

// CycleResult describes one completed collection cycle
type CycleResult struct {
	CycleID         string
	Accounts        int
	FailedAccounts  int
	Posts           reconcile.Stats
	Elapsed         time.Duration
}

// RunCycle collects posts for every tracked account. Accounts are
// processed in fixed-size batches with bounded concurrency and an
// inter-batch delay; a failure for one account never aborts the cycle for
// the others.
func (c *Collector) RunCycle(ctx context.Context) (CycleResult, error) {
	start := time.Now()
	result := CycleResult{CycleID: uuid.NewString()}

	log := c.logger.WithField("cycle_id", result.CycleID)

	accounts, err := c.store.GetTrackedAccounts()
	if err != nil {
		return result, err
	}
	result.Accounts = len(accounts)

	log.WithField("tracked_accounts", len(accounts)).Info("Starting collection cycle")

	for batchStart := 0; batchStart < len(accounts); batchStart += c.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			result.Elapsed = time.Since(start)
			return result, err
		}

		batchEnd := batchStart + c.cfg.BatchSize
		if batchEnd > len(accounts) {
			batchEnd = len(accounts)
		}
		batch := accounts[batchStart:batchEnd]

		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for _, account := range batch {
			wg.Add(1)
			go func(account models.Account) {
				defer wg.Done()

				stats, err := c.collectAccount(ctx, account)
				mu.Lock()
				defer mu.Unlock()
				result.Posts = result.Posts.Add(stats)
				if err != nil {
					result.FailedAccounts++
					log.WithError(err).WithFields(logrus.Fields{
						"account_id": account.ID,
						"handle":     account.Handle,
					}).Error("Account collection failed")
				}
			}(account)
		}
		wg.Wait()

		if batchEnd < len(accounts) {
			select {
			case <-ctx.Done():
				result.Elapsed = time.Since(start)
				return result, ctx.Err()
			case <-time.After(c.cfg.BatchDelay):
			}
		}
	}

	result.Elapsed = time.Since(start)

	log.WithFields(logrus.Fields{
		"accounts": result.Accounts,
		"failed":   result.FailedAccounts,
		"new":      result.Posts.New,
		"updated":  result.Posts.Updated,
		"skipped":  result.Posts.Skipped,
		"errors":   result.Posts.Errors,
		"elapsed":  result.Elapsed.String(),
	}).Info("Collection cycle completed")

	return result, nil
}

// collectAccount walks one account's recent posts and reconciles them
func (c *Collector) collectAccount(ctx context.Context, account models.Account) (reconcile.Stats, error) {
	walker := pagination.NewWalker[twitter.Tweet](c.cfg.Walker)

	fetch := func(ctx context.Context, cursor string) (pagination.Page[twitter.Tweet], error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return pagination.Page[twitter.Tweet]{}, err
		}
		page, err := c.client.GetUserTweetsPage(ctx, account.ID, cursor)
		if err != nil {
			return pagination.Page[twitter.Tweet]{}, err
		}
		return pagination.Page[twitter.Tweet]{Items: page.Tweets, NextCursor: page.NextCursor}, nil
	}

	tweets, walkRes, err := walker.Walk(ctx, fetch, "")
	if err != nil {
		// Reconcile whatever complete pages arrived before the failure.
		stats, recErr := c.reconciler.ReconcilePosts(ctx, tweetsToPosts(tweets, account))
		if recErr != nil {
			return stats, recErr
		}
		return stats, err
	}

	c.logger.WithFields(logrus.Fields{
		"account_id": account.ID,
		"handle":     account.Handle,
		"pages":      walkRes.PagesProcessed,
		"items":      walkRes.TotalItems,
		"reason":     walkRes.Reason,
	}).Debug("Account walk finished")

	return c.reconciler.ReconcilePosts(ctx, tweetsToPosts(tweets, account))
}

// tweetsToPosts maps extracted tweets onto store models, filling author
// fields from the tracked account when the payload omitted them
func tweetsToPosts(tweets []twitter.Tweet, account models.Account) []models.Post {
	now := time.Now()
	posts := make([]models.Post, 0, len(tweets))
	for _, t := range tweets {
		authorID := t.AuthorID
		if authorID == "" {
			authorID = account.ID
		}
		handle := t.AuthorHandle
		if handle == "" {
			handle = account.Handle
		}
		posts = append(posts, models.Post{
			ID:            t.ID,
			AuthorID:      authorID,
			AuthorHandle:  handle,
			Text:          t.Text,
			PublishedAt:   t.CreatedAt,
			MediaURLs:     strings.Join(t.MediaURLs, ","),
			LikeCount:     t.LikeCount,
			RetweetCount:  t.RetweetCount,
			ReplyCount:    t.ReplyCount,
			QuoteCount:    t.QuoteCount,
			BookmarkCount: t.BookmarkCount,
			ViewCount:     t.ViewCount,
			CollectedAt:   now,
		})
	}
	return posts
}
