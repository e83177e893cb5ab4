package models

import (
	"time"
)

// Post represents the database model for a collected post.
//
// The platform-assigned ID is the primary key and never changes after
// insertion. PublishedAt keeps the platform's native string form; it is
// parsed at query time, not at write time. Only the engagement counters
// and CollectedAt mutate after the first insert.
type Post struct {
	ID string `gorm:"primaryKey;column:id"`

	// Author Information
	AuthorID     string `gorm:"column:author_id;index;not null"`
	AuthorHandle string `gorm:"column:author_handle"`

	// Content
	Text        string `gorm:"column:text"`
	PublishedAt string `gorm:"column:published_at;index"`
	MediaURLs   string `gorm:"column:media_urls"`

	// Engagement Counters
	LikeCount     int `gorm:"column:like_count;default:0"`
	RetweetCount  int `gorm:"column:retweet_count;default:0"`
	ReplyCount    int `gorm:"column:reply_count;default:0"`
	QuoteCount    int `gorm:"column:quote_count;default:0"`
	BookmarkCount int `gorm:"column:bookmark_count;default:0"`
	ViewCount     int `gorm:"column:view_count;default:0"`

	// Operational Fields
	CollectedAt time.Time `gorm:"column:collected_at;not null"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// CountersDiffer reports whether any engagement counter differs from other.
// Text, author and timestamp fields are deliberately excluded: differences
// there are treated as upstream API noise, not edits.
func (p Post) CountersDiffer(other Post) bool {
	return p.LikeCount != other.LikeCount ||
		p.RetweetCount != other.RetweetCount ||
		p.ReplyCount != other.ReplyCount ||
		p.QuoteCount != other.QuoteCount ||
		p.BookmarkCount != other.BookmarkCount ||
		p.ViewCount != other.ViewCount
}
