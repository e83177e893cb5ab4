package models

import (
	"time"
)

// Account represents the database model for a discovered account.
//
// The platform user ID is stable; the handle may change over time. Profile
// fields are fully overwritten on every sighting since they legitimately
// change, unlike post counters which only grow.
type Account struct {
	ID     string `gorm:"primaryKey;column:id"`
	Handle string `gorm:"column:handle;index"`
	Name   string `gorm:"column:name"`
	Bio    string `gorm:"column:bio"`

	// Public Metrics
	FollowersCount int `gorm:"column:followers_count;default:0"`
	FollowingCount int `gorm:"column:following_count;default:0"`
	PostsCount     int `gorm:"column:posts_count;default:0"`

	AvatarURL string `gorm:"column:avatar_url"`

	// IsFollowing records the relationship to the reference account.
	// IsTracked marks accounts whose posts are actively polled. The two
	// flags are independent.
	IsFollowing bool `gorm:"column:is_following;default:false"`
	IsTracked   bool `gorm:"column:is_tracked;default:false"`

	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (Account) TableName() string {
	return "accounts"
}
