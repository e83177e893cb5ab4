package store_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/calebmoore/tweetwatch/pkg/db"
	"github.com/calebmoore/tweetwatch/pkg/db/models"
	"github.com/calebmoore/tweetwatch/pkg/store"
)

var _ = Describe("Store", func() {
	var st *store.Store

	BeforeEach(func() {
		logger := logrus.New()
		logger.SetLevel(logrus.PanicLevel)

		database, err := db.OpenInMemory(logger)
		Expect(err).NotTo(HaveOccurred(), "Failed to open in-memory database")
		st = store.New(database, logger)
	})

	Describe("post lookups", func() {
		It("returns nil without error for an unknown ID", func() {
			post, err := st.GetPost("missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(post).To(BeNil())
		})

		It("round-trips an inserted post", func() {
			err := st.InsertPost(models.Post{
				ID:          "p1",
				AuthorID:    "u1",
				Text:        "hello",
				PublishedAt: "2026-08-29T10:00:00Z",
				LikeCount:   5,
				CollectedAt: time.Now(),
			})
			Expect(err).NotTo(HaveOccurred())

			post, err := st.GetPost("p1")
			Expect(err).NotTo(HaveOccurred())
			Expect(post).NotTo(BeNil())
			Expect(post.Text).To(Equal("hello"))
			Expect(post.LikeCount).To(Equal(5))
		})
	})

	Describe("UpdatePostCounters", func() {
		BeforeEach(func() {
			Expect(st.InsertPost(models.Post{
				ID:          "p1",
				AuthorID:    "u1",
				Text:        "original text",
				PublishedAt: "2026-08-29T10:00:00Z",
				LikeCount:   5,
				CollectedAt: time.Now(),
			})).To(Succeed())
		})

		It("rewrites counters and collected_at only", func() {
			err := st.UpdatePostCounters(models.Post{
				ID:          "p1",
				Text:        "attempted rewrite",
				LikeCount:   7,
				ViewCount:   100,
				CollectedAt: time.Now(),
			})
			Expect(err).NotTo(HaveOccurred())

			post, err := st.GetPost("p1")
			Expect(err).NotTo(HaveOccurred())
			Expect(post.LikeCount).To(Equal(7))
			Expect(post.ViewCount).To(Equal(100))
			Expect(post.Text).To(Equal("original text"), "text must never change after insert")
			Expect(post.PublishedAt).To(Equal("2026-08-29T10:00:00Z"))
		})
	})

	Describe("GetPostsByTimeRange", func() {
		insert := func(id, publishedAt string) {
			Expect(st.InsertPost(models.Post{
				ID:          id,
				AuthorID:    "u1",
				PublishedAt: publishedAt,
				CollectedAt: time.Now(),
			})).To(Succeed())
		}

		BeforeEach(func() {
			insert("before", "2026-08-29T09:59:59Z")
			insert("at-start", "2026-08-29T10:00:00Z")
			insert("inside", "2026-08-29T11:30:00Z")
			insert("at-end", "2026-08-29T12:00:00Z")
			insert("after", "2026-08-29T12:00:01Z")
		})

		It("includes both boundary timestamps", func() {
			start := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
			end := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

			posts, err := st.GetPostsByTimeRange(start, end)
			Expect(err).NotTo(HaveOccurred())

			ids := make([]string, len(posts))
			for i, p := range posts {
				ids[i] = p.ID
			}
			Expect(ids).To(ConsistOf("at-start", "inside", "at-end"))
		})

		It("parses the legacy platform timestamp format", func() {
			insert("legacy", "Sat Aug 29 11:00:00 +0000 2026")

			start := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
			end := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

			posts, err := st.GetPostsByTimeRange(start, end)
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(HaveLen(4))
		})

		It("skips rows with unparseable timestamps instead of failing", func() {
			insert("garbage", "not a timestamp")

			start := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
			end := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

			posts, err := st.GetPostsByTimeRange(start, end)
			Expect(err).NotTo(HaveOccurred())
			for _, p := range posts {
				Expect(p.ID).NotTo(Equal("garbage"))
			}
		})
	})

	Describe("PurgePostsBefore", func() {
		It("deletes only posts published strictly before the cutoff", func() {
			Expect(st.InsertPost(models.Post{ID: "old", AuthorID: "u1", PublishedAt: "2026-08-01T00:00:00Z", CollectedAt: time.Now()})).To(Succeed())
			Expect(st.InsertPost(models.Post{ID: "edge", AuthorID: "u1", PublishedAt: "2026-08-15T00:00:00Z", CollectedAt: time.Now()})).To(Succeed())
			Expect(st.InsertPost(models.Post{ID: "fresh", AuthorID: "u1", PublishedAt: "2026-08-20T00:00:00Z", CollectedAt: time.Now()})).To(Succeed())

			cutoff := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
			dropped, err := st.PurgePostsBefore(cutoff)
			Expect(err).NotTo(HaveOccurred())
			Expect(dropped).To(Equal(int64(1)))

			edge, err := st.GetPost("edge")
			Expect(err).NotTo(HaveOccurred())
			Expect(edge).NotTo(BeNil(), "a post published exactly at the cutoff survives")
		})
	})

	Describe("account tracking", func() {
		BeforeEach(func() {
			Expect(st.InsertAccount(models.Account{
				ID:        "u1",
				Handle:    "alice",
				IsTracked: true,
				UpdatedAt: time.Now(),
			})).To(Succeed())
			Expect(st.InsertAccount(models.Account{
				ID:          "u2",
				Handle:      "bob",
				IsFollowing: true,
				UpdatedAt:   time.Now(),
			})).To(Succeed())
		})

		It("lists only tracked accounts", func() {
			tracked, err := st.GetTrackedAccounts()
			Expect(err).NotTo(HaveOccurred())
			Expect(tracked).To(HaveLen(1))
			Expect(tracked[0].ID).To(Equal("u1"))
		})

		It("untracks through SetTracked", func() {
			Expect(st.SetTracked("u1", false)).To(Succeed())

			tracked, err := st.GetTrackedAccounts()
			Expect(err).NotTo(HaveOccurred())
			Expect(tracked).To(BeEmpty())
		})

		It("rejects SetTracked for unknown accounts", func() {
			Expect(st.SetTracked("missing", true)).NotTo(Succeed())
		})

		It("finds accounts by handle", func() {
			account, err := st.GetAccountByHandle("bob")
			Expect(err).NotTo(HaveOccurred())
			Expect(account).NotTo(BeNil())
			Expect(account.ID).To(Equal("u2"))
		})
	})

	Describe("summaries", func() {
		now := time.Now()

		It("returns nil without error when no summary exists yet", func() {
			latest, err := st.GetLatestSummary(models.PeriodShort)
			Expect(err).NotTo(HaveOccurred())
			Expect(latest).To(BeNil())
		})

		It("appends rows and reports the newest as latest", func() {
			first, err := st.SaveSummary(models.PeriodShort, "first", now.Add(-2*time.Hour), now.Add(-time.Hour), 3, models.SummarySuccess)
			Expect(err).NotTo(HaveOccurred())

			second, err := st.SaveSummary(models.PeriodShort, "second", now.Add(-time.Hour), now, 5, models.SummarySuccess)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).To(BeNumerically(">", first.ID))

			latest, err := st.GetLatestSummary(models.PeriodShort)
			Expect(err).NotTo(HaveOccurred())
			Expect(latest.Content).To(Equal("second"))
		})

		It("scopes lookups by period", func() {
			short, err := st.SaveSummary(models.PeriodShort, "hourly", now.Add(-time.Hour), now, 1, models.SummarySuccess)
			Expect(err).NotTo(HaveOccurred())
			_, err = st.SaveSummary(models.PeriodLong, "daily", now.Add(-24*time.Hour), now, 9, models.SummarySuccess)
			Expect(err).NotTo(HaveOccurred())

			found, err := st.GetSummaryByID(models.PeriodLong, short.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil(), "an ID from another period must not match")

			latest, err := st.GetLatestSummary(models.PeriodLong)
			Expect(err).NotTo(HaveOccurred())
			Expect(latest.Content).To(Equal("daily"))
		})

		It("pages history newest first", func() {
			for i := 0; i < 5; i++ {
				_, err := st.SaveSummary(models.PeriodMedium, "run", now, now, i, models.SummarySuccess)
				Expect(err).NotTo(HaveOccurred())
			}

			page, err := st.GetSummaryHistory(models.PeriodMedium, 2, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(page).To(HaveLen(2))
			Expect(page[0].PostCount).To(Equal(4))
			Expect(page[1].PostCount).To(Equal(3))

			next, err := st.GetSummaryHistory(models.PeriodMedium, 2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(next).To(HaveLen(2))
			Expect(next[0].PostCount).To(Equal(2))
		})
	})
})
