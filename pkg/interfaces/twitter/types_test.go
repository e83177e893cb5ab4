package twitter_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/calebmoore/tweetwatch/pkg/interfaces/twitter"
)

func rawTweet(s string) twitter.RawTweet {
	return twitter.RawTweet{RawMessage: json.RawMessage(s)}
}

func rawUser(s string) twitter.RawUser {
	return twitter.RawUser{RawMessage: json.RawMessage(s)}
}

var _ = Describe("RawTweet extraction", func() {
	It("extracts the current flat shape", func() {
		tweet, ok := rawTweet(`{
			"id": "123",
			"text": "hello world",
			"createdAt": "2026-08-29T10:00:00Z",
			"likeCount": 5,
			"retweetCount": 2,
			"replyCount": 1,
			"viewCount": 900,
			"author": {"id": "u1", "userName": "alice"},
			"extendedEntities": {"media": [
				{"media_url_https": "https://pbs.example/a.jpg"},
				{"media_url_https": "https://pbs.example/b.jpg"}
			]}
		}`).TryExtract()

		Expect(ok).To(BeTrue())
		Expect(tweet.ID).To(Equal("123"))
		Expect(tweet.Text).To(Equal("hello world"))
		Expect(tweet.CreatedAt).To(Equal("2026-08-29T10:00:00Z"))
		Expect(tweet.LikeCount).To(Equal(5))
		Expect(tweet.ViewCount).To(Equal(900))
		Expect(tweet.AuthorID).To(Equal("u1"))
		Expect(tweet.AuthorHandle).To(Equal("alice"))
		Expect(tweet.MediaURLs).To(HaveLen(2))
	})

	It("unwraps records nested under a tweet key", func() {
		tweet, ok := rawTweet(`{"tweet": {
			"id": "456",
			"text": "wrapped",
			"createdAt": "2026-08-29T11:00:00Z",
			"likeCount": 3
		}}`).TryExtract()

		Expect(ok).To(BeTrue())
		Expect(tweet.ID).To(Equal("456"))
		Expect(tweet.Text).To(Equal("wrapped"))
		Expect(tweet.LikeCount).To(Equal(3))
	})

	It("falls back to the legacy v1 shape", func() {
		tweet, ok := rawTweet(`{
			"id_str": "789",
			"full_text": "legacy text",
			"created_at": "Sat Aug 29 10:00:00 +0000 2026",
			"favorite_count": 12,
			"retweet_count": 4,
			"user": {"id_str": "u2", "screen_name": "bob"}
		}`).TryExtract()

		Expect(ok).To(BeTrue())
		Expect(tweet.ID).To(Equal("789"))
		Expect(tweet.Text).To(Equal("legacy text"))
		Expect(tweet.CreatedAt).To(Equal("Sat Aug 29 10:00:00 +0000 2026"))
		Expect(tweet.LikeCount).To(Equal(12))
		Expect(tweet.AuthorHandle).To(Equal("bob"))
	})

	It("rejects records with no usable ID or timestamp", func() {
		_, ok := rawTweet(`{"text": "no id", "likeCount": 1}`).TryExtract()
		Expect(ok).To(BeFalse())

		_, ok = rawTweet(`{"id": "1", "text": "no timestamp"}`).TryExtract()
		Expect(ok).To(BeFalse())
	})

	It("rejects payloads that are not objects", func() {
		_, ok := rawTweet(`"just a string"`).TryExtract()
		Expect(ok).To(BeFalse())

		_, ok = rawTweet(`42`).TryExtract()
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("RawUser extraction", func() {
	It("extracts the current shape", func() {
		user, ok := rawUser(`{
			"id": "u1",
			"userName": "alice",
			"name": "Alice",
			"description": "bio here",
			"profilePicture": "https://pbs.example/p.jpg",
			"followers": 100,
			"following": 50,
			"statusesCount": 1234
		}`).TryExtract()

		Expect(ok).To(BeTrue())
		Expect(user.ID).To(Equal("u1"))
		Expect(user.Handle).To(Equal("alice"))
		Expect(user.Bio).To(Equal("bio here"))
		Expect(user.FollowersCount).To(Equal(100))
		Expect(user.FollowingCount).To(Equal(50))
		Expect(user.PostsCount).To(Equal(1234))
	})

	It("falls back to the legacy shape", func() {
		user, ok := rawUser(`{
			"id_str": "u2",
			"screen_name": "bob",
			"followers_count": 9,
			"friends_count": 8,
			"statuses_count": 7
		}`).TryExtract()

		Expect(ok).To(BeTrue())
		Expect(user.ID).To(Equal("u2"))
		Expect(user.Handle).To(Equal("bob"))
		Expect(user.FollowersCount).To(Equal(9))
		Expect(user.FollowingCount).To(Equal(8))
	})

	It("rejects records without an ID and handle", func() {
		_, ok := rawUser(`{"name": "Anonymous"}`).TryExtract()
		Expect(ok).To(BeFalse())
	})
})
