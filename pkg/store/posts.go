package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/calebmoore/tweetwatch/pkg/db/models"
)

// publishedAtLayouts are the native timestamp forms seen from the upstream
// API. Stored timestamps keep whichever form the platform sent; parsing
// happens at query time only.
var publishedAtLayouts = []string{
	time.RFC3339,
	"Mon Jan 02 15:04:05 -0700 2006",
}

// ParsePublishedAt parses a platform-native timestamp string
func ParsePublishedAt(s string) (time.Time, error) {
	for _, layout := range publishedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

// GetPost looks up a post by ID. It returns (nil, nil) when no row exists.
func (s *Store) GetPost(id string) (*models.Post, error) {
	var post models.Post
	result := s.db.Where("id = ?", id).First(&post)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up post %s: %w", id, result.Error)
	}
	return &post, nil
}

// InsertPost creates a new post row
func (s *Store) InsertPost(post models.Post) error {
	if err := s.db.Create(&post).Error; err != nil {
		return fmt.Errorf("failed to insert post %s: %w", post.ID, err)
	}
	return nil
}

// UpdatePostCounters rewrites only the engagement counters and collected_at
// of an existing post. Text, author and publish timestamp are immutable
// after insertion.
func (s *Store) UpdatePostCounters(post models.Post) error {
	result := s.db.Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"like_count":     post.LikeCount,
			"retweet_count":  post.RetweetCount,
			"reply_count":    post.ReplyCount,
			"quote_count":    post.QuoteCount,
			"bookmark_count": post.BookmarkCount,
			"view_count":     post.ViewCount,
			"collected_at":   post.CollectedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update counters for post %s: %w", post.ID, result.Error)
	}
	return nil
}

// GetPostsByTimeRange returns posts whose native timestamp parses into
// [start, end], both bounds inclusive. Timestamps are stored in the
// platform's string form, so each candidate row is parsed here and filtered
// in application logic after a bulk fetch. At the row counts involved
// (thousands) this is cheaper than maintaining a canonical column.
func (s *Store) GetPostsByTimeRange(start, end time.Time) ([]models.Post, error) {
	var all []models.Post
	if err := s.db.Order("published_at").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}

	posts := make([]models.Post, 0, len(all))
	for _, p := range all {
		ts, err := ParsePublishedAt(p.PublishedAt)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"post_id":      p.ID,
				"published_at": p.PublishedAt,
			}).Debug("Skipping post with unparseable timestamp")
			continue
		}
		if !ts.Before(start) && !ts.After(end) {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// PurgePostsBefore deletes posts published strictly before the cutoff. This
// is the only path that ever deletes post rows; nothing in the collection
// pipeline calls it.
func (s *Store) PurgePostsBefore(cutoff time.Time) (int64, error) {
	posts, err := s.GetPostsByTimeRange(time.Time{}, cutoff.Add(-time.Nanosecond))
	if err != nil {
		return 0, err
	}
	if len(posts) == 0 {
		return 0, nil
	}

	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	result := s.db.Where("id IN ?", ids).Delete(&models.Post{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge posts: %w", result.Error)
	}

	s.logger.WithFields(logrus.Fields{
		"purged": result.RowsAffected,
		"cutoff": cutoff,
	}).Info("Purged old posts")

	return result.RowsAffected, nil
}
