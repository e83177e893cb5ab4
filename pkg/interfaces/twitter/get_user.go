package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// GetUserByHandle fetches a single user profile by handle. It returns
// (nil, nil) when the response carries no extractable profile, which the
// caller treats as "no usable item" rather than an error.
func (c *Client) GetUserByHandle(ctx context.Context, handle string) (*UserProfile, error) {
	query := url.Values{}
	query.Set("userName", handle)

	body, err := c.get(ctx, "/twitter/user/info", query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", handle, err)
	}

	return extractSingleUser(body)
}

// GetUserByID fetches a single user profile by platform user ID
func (c *Client) GetUserByID(ctx context.Context, id string) (*UserProfile, error) {
	query := url.Values{}
	query.Set("userId", id)

	body, err := c.get(ctx, "/twitter/user/info", query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user id %s: %w", id, err)
	}

	return extractSingleUser(body)
}

func extractSingleUser(body []byte) (*UserProfile, error) {
	// The profile may arrive at the top level or under "data".
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	candidates := []json.RawMessage{body}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		candidates = append([]json.RawMessage{envelope.Data}, candidates...)
	}

	for _, raw := range candidates {
		if user, ok := (RawUser{raw}).TryExtract(); ok {
			return &user, nil
		}
	}
	return nil, nil
}
