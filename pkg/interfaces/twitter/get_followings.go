package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
)

// FollowingsPage is one page of the accounts a user follows
type FollowingsPage struct {
	Users      []UserProfile
	NextCursor string
}

// GetFollowingsPage fetches one page of a user's followings listing. The
// tail of a large followings graph is where the upstream misbehaves most
// (empty pages with live cursors, non-advancing cursors); termination is
// the pagination walker's job, not this method's.
func (c *Client) GetFollowingsPage(ctx context.Context, userID, cursor string) (FollowingsPage, error) {
	query := url.Values{}
	query.Set("userId", userID)
	query.Set("count", strconv.Itoa(c.config.PageSize))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	body, err := c.get(ctx, "/twitter/user/followings", query)
	if err != nil {
		return FollowingsPage{}, fmt.Errorf("failed to fetch followings page for user %s: %w", userID, err)
	}

	var envelope listEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return FollowingsPage{}, fmt.Errorf("failed to decode followings page: %w", err)
	}
	resolved := envelope.flatten()

	rawUsers := resolved.Followings
	if len(rawUsers) == 0 {
		rawUsers = resolved.Users
	}

	page := FollowingsPage{NextCursor: resolved.nextCursor()}
	dropped := 0
	for _, raw := range rawUsers {
		user, ok := RawUser{raw}.TryExtract()
		if !ok {
			dropped++
			continue
		}
		page.Users = append(page.Users, user)
	}

	if dropped > 0 {
		c.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"dropped": dropped,
		}).Debug("Dropped malformed user payloads from page")
	}

	return page, nil
}
