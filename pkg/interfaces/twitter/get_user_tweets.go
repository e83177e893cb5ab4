package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
)

// TweetsPage is one page of a user's tweets. An empty NextCursor means the
// listing is exhausted.
type TweetsPage struct {
	Tweets     []Tweet
	NextCursor string
}

// listEnvelope covers the envelope shapes the upstream has been seen to
// emit for paginated listings.
type listEnvelope struct {
	Tweets      []json.RawMessage `json:"tweets"`
	Followings  []json.RawMessage `json:"followings"`
	Users       []json.RawMessage `json:"users"`
	HasNextPage bool              `json:"has_next_page"`
	NextCursor  string            `json:"next_cursor"`
	Data        *listEnvelope     `json:"data"`
}

// flatten resolves the occasional extra "data" nesting level
func (e *listEnvelope) flatten() *listEnvelope {
	if e.Data != nil && len(e.Tweets) == 0 && len(e.Followings) == 0 && len(e.Users) == 0 {
		inner := e.Data.flatten()
		if inner.NextCursor == "" {
			inner.NextCursor = e.NextCursor
			inner.HasNextPage = e.HasNextPage
		}
		return inner
	}
	return e
}

func (e *listEnvelope) nextCursor() string {
	if !e.HasNextPage {
		return ""
	}
	return e.NextCursor
}

// GetUserTweetsPage fetches one page of a user's recent tweets. Malformed
// items extract to nothing and are dropped; a page where every item is
// malformed is indistinguishable from an empty page, which is exactly how
// the pagination walker treats it.
func (c *Client) GetUserTweetsPage(ctx context.Context, userID, cursor string) (TweetsPage, error) {
	query := url.Values{}
	query.Set("userId", userID)
	query.Set("count", strconv.Itoa(c.config.PageSize))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	body, err := c.get(ctx, "/twitter/user/last_tweets", query)
	if err != nil {
		return TweetsPage{}, fmt.Errorf("failed to fetch tweets page for user %s: %w", userID, err)
	}

	var envelope listEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return TweetsPage{}, fmt.Errorf("failed to decode tweets page: %w", err)
	}
	resolved := envelope.flatten()

	page := TweetsPage{NextCursor: resolved.nextCursor()}
	dropped := 0
	for _, raw := range resolved.Tweets {
		tweet, ok := RawTweet{raw}.TryExtract()
		if !ok {
			dropped++
			continue
		}
		page.Tweets = append(page.Tweets, tweet)
	}

	if dropped > 0 {
		c.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"dropped": dropped,
		}).Debug("Dropped malformed tweet payloads from page")
	}

	return page, nil
}
