package pagination_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/calebmoore/tweetwatch/pkg/pagination"
)

// scriptedFetch replays a fixed page sequence, ignoring the cursor passed in
func scriptedFetch(pages []pagination.Page[string]) pagination.FetchFunc[string] {
	call := 0
	return func(ctx context.Context, cursor string) (pagination.Page[string], error) {
		if call >= len(pages) {
			return pagination.Page[string]{}, fmt.Errorf("fetch called %d times, only %d pages scripted", call+1, len(pages))
		}
		page := pages[call]
		call++
		return page, nil
	}
}

var _ = Describe("Walker", func() {
	var (
		ctx    context.Context
		logger *logrus.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	})

	newWalker := func(cfg pagination.Config) *pagination.Walker[string] {
		cfg.Logger = logger
		return pagination.NewWalker[string](cfg)
	}

	Describe("walking a well-behaved listing", func() {
		It("concatenates items in page order and stops at the empty cursor", func() {
			fetch := scriptedFetch([]pagination.Page[string]{
				{Items: []string{"a", "b"}, NextCursor: "c1"},
				{Items: []string{"c"}, NextCursor: "c2"},
				{Items: []string{"d", "e"}, NextCursor: ""},
			})

			items, res, err := newWalker(pagination.Config{}).Walk(ctx, fetch, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(Equal([]string{"a", "b", "c", "d", "e"}))
			Expect(res.PagesProcessed).To(Equal(3))
			Expect(res.TotalItems).To(Equal(5))
			Expect(res.EmptyPages).To(BeZero())
			Expect(res.Reason).To(Equal(pagination.StopEnd))
			Expect(res.HasMore).To(BeFalse())
		})

		It("treats a single empty page with no cursor as a normal end", func() {
			fetch := scriptedFetch([]pagination.Page[string]{
				{Items: nil, NextCursor: ""},
			})

			items, res, err := newWalker(pagination.Config{}).Walk(ctx, fetch, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
			Expect(res.PagesProcessed).To(Equal(1))
			Expect(res.EmptyPages).To(Equal(1))
			Expect(res.Reason).To(Equal(pagination.StopEnd))
		})
	})

	Describe("a cursor that stops advancing", func() {
		It("gives up after the repeat limit and reports more data upstream", func() {
			fetch := scriptedFetch([]pagination.Page[string]{
				{Items: []string{"a"}, NextCursor: "stuck"},
				{Items: []string{"b"}, NextCursor: "stuck"},
				{Items: []string{"c"}, NextCursor: "stuck"},
			})

			items, res, err := newWalker(pagination.Config{MaxRepeatedCursor: 2}).Walk(ctx, fetch, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(Equal([]string{"a", "b", "c"}))
			Expect(res.PagesProcessed).To(Equal(3))
			Expect(res.Reason).To(Equal(pagination.StopRepeatedCursor))
			Expect(res.HasMore).To(BeTrue())
		})

		It("resets the repeat counter when the cursor advances again", func() {
			fetch := scriptedFetch([]pagination.Page[string]{
				{Items: []string{"a"}, NextCursor: "c1"},
				{Items: []string{"b"}, NextCursor: "c1"},
				{Items: []string{"c"}, NextCursor: "c2"},
				{Items: []string{"d"}, NextCursor: ""},
			})

			items, res, err := newWalker(pagination.Config{MaxRepeatedCursor: 2}).Walk(ctx, fetch, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(4))
			Expect(res.Reason).To(Equal(pagination.StopEnd))
		})
	})

	Describe("an empty tail with live cursors", func() {
		It("gives up after the empty-page limit and treats the listing as exhausted", func() {
			fetch := scriptedFetch([]pagination.Page[string]{
				{Items: []string{"a"}, NextCursor: "c1"},
				{Items: nil, NextCursor: "c2"},
				{Items: nil, NextCursor: "c3"},
				{Items: nil, NextCursor: "c4"},
			})

			items, res, err := newWalker(pagination.Config{MaxEmptyPages: 3}).Walk(ctx, fetch, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(Equal([]string{"a"}))
			Expect(res.PagesProcessed).To(Equal(4))
			Expect(res.EmptyPages).To(Equal(3))
			Expect(res.Reason).To(Equal(pagination.StopEmptyPages))
			Expect(res.HasMore).To(BeFalse())
		})

		It("resets the empty run when items reappear", func() {
			fetch := scriptedFetch([]pagination.Page[string]{
				{Items: nil, NextCursor: "c1"},
				{Items: nil, NextCursor: "c2"},
				{Items: []string{"a"}, NextCursor: "c3"},
				{Items: nil, NextCursor: "c4"},
				{Items: nil, NextCursor: "c5"},
				{Items: []string{"b"}, NextCursor: ""},
			})

			items, res, err := newWalker(pagination.Config{MaxEmptyPages: 3}).Walk(ctx, fetch, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(Equal([]string{"a", "b"}))
			Expect(res.EmptyPages).To(Equal(4))
			Expect(res.Reason).To(Equal(pagination.StopEnd))
		})
	})

	Describe("the absolute page cap", func() {
		It("stops a listing that never ends", func() {
			call := 0
			fetch := func(ctx context.Context, cursor string) (pagination.Page[string], error) {
				call++
				return pagination.Page[string]{
					Items:      []string{fmt.Sprintf("item-%d", call)},
					NextCursor: fmt.Sprintf("c%d", call),
				}, nil
			}

			items, res, err := newWalker(pagination.Config{MaxPages: 5}).Walk(ctx, fetch, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(5))
			Expect(res.PagesProcessed).To(Equal(5))
			Expect(res.Reason).To(Equal(pagination.StopMaxPages))
			Expect(res.HasMore).To(BeTrue())
		})
	})

	Describe("fetch failures", func() {
		It("aborts the walk and returns the items collected so far", func() {
			fetchErr := errors.New("upstream exploded")
			call := 0
			fetch := func(ctx context.Context, cursor string) (pagination.Page[string], error) {
				call++
				if call == 2 {
					return pagination.Page[string]{}, fetchErr
				}
				return pagination.Page[string]{Items: []string{"a"}, NextCursor: "c1"}, nil
			}

			items, res, err := newWalker(pagination.Config{}).Walk(ctx, fetch, "")
			Expect(err).To(MatchError(fetchErr))
			Expect(items).To(Equal([]string{"a"}))
			Expect(res.PagesProcessed).To(Equal(1))
			Expect(res.HasMore).To(BeTrue())
		})
	})

	Describe("cancellation", func() {
		It("stops before fetching when the context is done", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			fetch := func(ctx context.Context, cursor string) (pagination.Page[string], error) {
				Fail("fetch must not be called after cancellation")
				return pagination.Page[string]{}, nil
			}

			items, res, err := newWalker(pagination.Config{}).Walk(canceled, fetch, "")
			Expect(err).To(MatchError(context.Canceled))
			Expect(items).To(BeEmpty())
			Expect(res.Reason).To(Equal(pagination.StopCanceled))
			Expect(res.HasMore).To(BeTrue())
		})
	})
})
