// Package pagination implements a cursor walk over unreliable listing APIs.
//
// Upstream cursor-based listings misbehave at the tail of a relationship
// graph: they return empty pages with a valid cursor, or loop on the same
// cursor forever. The walker encodes three independent give-up heuristics
// (empty-page limit, repeated-cursor limit, absolute page cap) so each
// failure mode can be tuned and logged on its own.
package pagination

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Default limits applied when a Config field is zero
const (
	DefaultMaxPages          = 20
	DefaultMaxEmptyPages     = 3
	DefaultMaxRepeatedCursor = 2
)

// Page is one fetched page of a cursor-paginated listing. An empty
// NextCursor means the listing is exhausted.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// FetchFunc retrieves a single page for the given cursor. An empty cursor
// requests the first page. Errors are fatal to the walk: the walker never
// swallows a failed page, callers decide whether to retry the whole walk.
type FetchFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// Config holds the termination limits for a walk
type Config struct {
	// MaxPages is the absolute safety valve on pages fetched
	MaxPages int
	// MaxEmptyPages is the number of consecutive zero-item pages
	// tolerated before giving up
	MaxEmptyPages int
	// MaxRepeatedCursor is the number of identical-cursor repeats
	// tolerated before giving up
	MaxRepeatedCursor int

	Logger *logrus.Logger
}

func (c Config) withDefaults() Config {
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.MaxEmptyPages <= 0 {
		c.MaxEmptyPages = DefaultMaxEmptyPages
	}
	if c.MaxRepeatedCursor <= 0 {
		c.MaxRepeatedCursor = DefaultMaxRepeatedCursor
	}
	if c.Logger == nil {
		c.Logger = logrus.New()
	}
	return c
}

// StopReason describes why a walk terminated
type StopReason string

const (
	StopEnd            StopReason = "end_of_listing"
	StopEmptyPages     StopReason = "empty_page_limit"
	StopRepeatedCursor StopReason = "repeated_cursor"
	StopMaxPages       StopReason = "max_pages"
	StopCanceled       StopReason = "canceled"
)

// Result describes a completed walk
type Result struct {
	PagesProcessed int
	EmptyPages     int
	TotalItems     int
	Elapsed        time.Duration
	Reason         StopReason

	// HasMore reports whether the upstream still advertised a cursor when
	// the walk gave up. A walk that ran into the empty-page limit reports
	// false: a tail of empty pages is treated as an exhausted listing.
	HasMore bool
}

// Walker enumerates a cursor-paginated listing to completion
type Walker[T any] struct {
	cfg    Config
	logger *logrus.Logger
}

// NewWalker creates a Walker with the given limits, applying defaults for
// zero fields
func NewWalker[T any](cfg Config) *Walker[T] {
	cfg = cfg.withDefaults()
	return &Walker[T]{cfg: cfg, logger: cfg.Logger}
}

// Walk repeatedly invokes fetch until a termination condition is met and
// returns the concatenation of all items in page order. The walker performs
// no IO of its own; rate-limit delays between pages belong in the fetch
// function. A fetch error aborts the walk and is returned along with the
// items collected so far.
func (w *Walker[T]) Walk(ctx context.Context, fetch FetchFunc[T], startCursor string) ([]T, Result, error) {
	start := time.Now()

	var (
		items     []T
		res       Result
		cursor    = startCursor
		emptyRun  int
		repeatRun int
	)

	log := w.logger.WithFields(logrus.Fields{
		"max_pages":           w.cfg.MaxPages,
		"max_empty_pages":     w.cfg.MaxEmptyPages,
		"max_repeated_cursor": w.cfg.MaxRepeatedCursor,
	})

	for {
		if err := ctx.Err(); err != nil {
			res.Reason = StopCanceled
			res.HasMore = true
			res.Elapsed = time.Since(start)
			return items, res, err
		}

		page, err := fetch(ctx, cursor)
		if err != nil {
			res.Elapsed = time.Since(start)
			res.HasMore = true
			return items, res, err
		}

		res.PagesProcessed++
		items = append(items, page.Items...)
		res.TotalItems = len(items)

		if len(page.Items) == 0 {
			emptyRun++
			res.EmptyPages++
		} else {
			emptyRun = 0
		}

		next := page.NextCursor

		// Reached the end of the listing.
		if next == "" {
			res.Reason = StopEnd
			break
		}

		// Upstream handed back the cursor we just used: it is not
		// advancing. Tolerate a bounded number of repeats.
		if next == cursor {
			repeatRun++
			if repeatRun >= w.cfg.MaxRepeatedCursor {
				log.WithFields(logrus.Fields{
					"cursor":  next,
					"repeats": repeatRun,
				}).Warn("Cursor not advancing, giving up walk")
				res.Reason = StopRepeatedCursor
				res.HasMore = true
				break
			}
		} else {
			repeatRun = 0
		}

		// A run of empty pages with a live cursor: transient gaps are
		// tolerated up to the limit, then the tail is declared empty.
		if len(page.Items) == 0 && emptyRun >= w.cfg.MaxEmptyPages {
			log.WithField("empty_pages", emptyRun).Warn("Empty page limit reached, giving up walk")
			res.Reason = StopEmptyPages
			break
		}

		if res.PagesProcessed >= w.cfg.MaxPages {
			log.WithField("pages", res.PagesProcessed).Warn("Page cap reached, giving up walk")
			res.Reason = StopMaxPages
			res.HasMore = true
			break
		}

		cursor = next
	}

	res.Elapsed = time.Since(start)

	log.WithFields(logrus.Fields{
		"pages":       res.PagesProcessed,
		"empty_pages": res.EmptyPages,
		"items":       res.TotalItems,
		"elapsed":     res.Elapsed.String(),
		"reason":      res.Reason,
		"has_more":    res.HasMore,
	}).Debug("Pagination walk finished")

	return items, res, nil
}
