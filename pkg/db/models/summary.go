package models

import (
	"time"
)

// SummaryPeriod is the rolling window a summary covers
type SummaryPeriod string

const (
	PeriodShort  SummaryPeriod = "short"
	PeriodMedium SummaryPeriod = "medium"
	PeriodLong   SummaryPeriod = "long"
)

// SummaryStatus records the outcome of a generation run
type SummaryStatus string

const (
	SummarySuccess SummaryStatus = "success"
	SummaryEmpty   SummaryStatus = "empty"
	SummaryError   SummaryStatus = "error"
)

// Summary represents one generated summary over a time window. Rows are
// append-only: regenerating a window creates a new row, history is never
// mutated or deleted.
type Summary struct {
	ID          uint          `gorm:"primaryKey;autoIncrement;column:id"`
	Period      SummaryPeriod `gorm:"column:period;index;not null"`
	Content     string        `gorm:"column:content"`
	WindowStart time.Time     `gorm:"column:window_start;not null"`
	WindowEnd   time.Time     `gorm:"column:window_end;not null"`
	PostCount   int           `gorm:"column:post_count;default:0"`
	Status      SummaryStatus `gorm:"column:status;not null"`
	CreatedAt   time.Time     `gorm:"column:created_at;not null"`
}

// TableName specifies the table name for GORM
func (Summary) TableName() string {
	return "summaries"
}

// ValidPeriod reports whether s names a known summary period
func ValidPeriod(s string) bool {
	switch SummaryPeriod(s) {
	case PeriodShort, PeriodMedium, PeriodLong:
		return true
	}
	return false
}
