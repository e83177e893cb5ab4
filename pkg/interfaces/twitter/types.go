package twitter

import (
	"encoding/json"
)

// Tweet is the normalized post record produced by extraction
type Tweet struct {
	ID           string
	AuthorID     string
	AuthorHandle string
	Text         string
	// CreatedAt keeps the platform's native string form
	CreatedAt string

	LikeCount     int
	RetweetCount  int
	ReplyCount    int
	QuoteCount    int
	BookmarkCount int
	ViewCount     int

	MediaURLs []string
}

// UserProfile is the normalized account record produced by extraction
type UserProfile struct {
	ID             string
	Handle         string
	Name           string
	Bio            string
	AvatarURL      string
	FollowersCount int
	FollowingCount int
	PostsCount     int
}

// RawTweet is one listing element whose shape may drift between upstream
// schema revisions. TryExtract runs a small ordered list of extraction
// strategies and stops at the first that yields a usable record; a payload
// no strategy understands extracts nothing and is skipped upstream.
type RawTweet struct {
	json.RawMessage
}

// RawUser is the account counterpart of RawTweet
type RawUser struct {
	json.RawMessage
}

type tweetStrategy func(json.RawMessage) (Tweet, bool)

var tweetStrategies = []tweetStrategy{
	extractModernTweet,
	extractWrappedTweet,
	extractLegacyTweet,
}

// TryExtract attempts each known tweet shape in order
func (r RawTweet) TryExtract() (Tweet, bool) {
	for _, strategy := range tweetStrategies {
		if tweet, ok := strategy(r.RawMessage); ok {
			return tweet, true
		}
	}
	return Tweet{}, false
}

// extractModernTweet handles the current flat shape:
// {"id": "...", "text": "...", "createdAt": "...", "likeCount": 1, "author": {...}}
func extractModernTweet(raw json.RawMessage) (Tweet, bool) {
	var payload struct {
		ID            string `json:"id"`
		Text          string `json:"text"`
		CreatedAt     string `json:"createdAt"`
		LikeCount     int    `json:"likeCount"`
		RetweetCount  int    `json:"retweetCount"`
		ReplyCount    int    `json:"replyCount"`
		QuoteCount    int    `json:"quoteCount"`
		BookmarkCount int    `json:"bookmarkCount"`
		ViewCount     int    `json:"viewCount"`
		Author        struct {
			ID       string `json:"id"`
			UserName string `json:"userName"`
		} `json:"author"`
		ExtendedEntities struct {
			Media []struct {
				MediaURLHTTPS string `json:"media_url_https"`
			} `json:"media"`
		} `json:"extendedEntities"`
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return Tweet{}, false
	}
	if payload.ID == "" || payload.CreatedAt == "" {
		return Tweet{}, false
	}

	tweet := Tweet{
		ID:            payload.ID,
		AuthorID:      payload.Author.ID,
		AuthorHandle:  payload.Author.UserName,
		Text:          payload.Text,
		CreatedAt:     payload.CreatedAt,
		LikeCount:     payload.LikeCount,
		RetweetCount:  payload.RetweetCount,
		ReplyCount:    payload.ReplyCount,
		QuoteCount:    payload.QuoteCount,
		BookmarkCount: payload.BookmarkCount,
		ViewCount:     payload.ViewCount,
	}
	for _, m := range payload.ExtendedEntities.Media {
		if m.MediaURLHTTPS != "" {
			tweet.MediaURLs = append(tweet.MediaURLs, m.MediaURLHTTPS)
		}
	}
	return tweet, true
}

// extractWrappedTweet handles listings that nest the record one level down:
// {"tweet": { ...modern shape... }}
func extractWrappedTweet(raw json.RawMessage) (Tweet, bool) {
	var payload struct {
		Tweet json.RawMessage `json:"tweet"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Tweet) == 0 {
		return Tweet{}, false
	}
	return extractModernTweet(payload.Tweet)
}

// extractLegacyTweet handles the v1-style shape some endpoints still emit:
// {"id_str": "...", "full_text": "...", "favorite_count": 1, "user": {...}}
func extractLegacyTweet(raw json.RawMessage) (Tweet, bool) {
	var payload struct {
		IDStr         string `json:"id_str"`
		FullText      string `json:"full_text"`
		CreatedAt     string `json:"created_at"`
		FavoriteCount int    `json:"favorite_count"`
		RetweetCount  int    `json:"retweet_count"`
		ReplyCount    int    `json:"reply_count"`
		QuoteCount    int    `json:"quote_count"`
		User          struct {
			IDStr      string `json:"id_str"`
			ScreenName string `json:"screen_name"`
		} `json:"user"`
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return Tweet{}, false
	}
	if payload.IDStr == "" || payload.CreatedAt == "" {
		return Tweet{}, false
	}

	return Tweet{
		ID:           payload.IDStr,
		AuthorID:     payload.User.IDStr,
		AuthorHandle: payload.User.ScreenName,
		Text:         payload.FullText,
		CreatedAt:    payload.CreatedAt,
		LikeCount:    payload.FavoriteCount,
		RetweetCount: payload.RetweetCount,
		ReplyCount:   payload.ReplyCount,
		QuoteCount:   payload.QuoteCount,
	}, true
}

type userStrategy func(json.RawMessage) (UserProfile, bool)

var userStrategies = []userStrategy{
	extractModernUser,
	extractLegacyUser,
}

// TryExtract attempts each known user shape in order
func (r RawUser) TryExtract() (UserProfile, bool) {
	for _, strategy := range userStrategies {
		if user, ok := strategy(r.RawMessage); ok {
			return user, true
		}
	}
	return UserProfile{}, false
}

func extractModernUser(raw json.RawMessage) (UserProfile, bool) {
	var payload struct {
		ID             string `json:"id"`
		UserName       string `json:"userName"`
		Name           string `json:"name"`
		Description    string `json:"description"`
		ProfilePicture string `json:"profilePicture"`
		Followers      int    `json:"followers"`
		Following      int    `json:"following"`
		StatusesCount  int    `json:"statusesCount"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return UserProfile{}, false
	}
	if payload.ID == "" || payload.UserName == "" {
		return UserProfile{}, false
	}
	return UserProfile{
		ID:             payload.ID,
		Handle:         payload.UserName,
		Name:           payload.Name,
		Bio:            payload.Description,
		AvatarURL:      payload.ProfilePicture,
		FollowersCount: payload.Followers,
		FollowingCount: payload.Following,
		PostsCount:     payload.StatusesCount,
	}, true
}

func extractLegacyUser(raw json.RawMessage) (UserProfile, bool) {
	var payload struct {
		IDStr           string `json:"id_str"`
		ScreenName      string `json:"screen_name"`
		Name            string `json:"name"`
		Description     string `json:"description"`
		ProfileImageURL string `json:"profile_image_url_https"`
		FollowersCount  int    `json:"followers_count"`
		FriendsCount    int    `json:"friends_count"`
		StatusesCount   int    `json:"statuses_count"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return UserProfile{}, false
	}
	if payload.IDStr == "" || payload.ScreenName == "" {
		return UserProfile{}, false
	}
	return UserProfile{
		ID:             payload.IDStr,
		Handle:         payload.ScreenName,
		Name:           payload.Name,
		Bio:            payload.Description,
		AvatarURL:      payload.ProfileImageURL,
		FollowersCount: payload.FollowersCount,
		FollowingCount: payload.FriendsCount,
		PostsCount:     payload.StatusesCount,
	}, true
}
