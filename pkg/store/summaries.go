package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/calebmoore/tweetwatch/pkg/db/models"
)

// SaveSummary appends a new summary row. Summary history is append-only:
// regeneration creates new rows, existing rows are never mutated.
func (s *Store) SaveSummary(period models.SummaryPeriod, content string, windowStart, windowEnd time.Time, postCount int, status models.SummaryStatus) (*models.Summary, error) {
	summary := models.Summary{
		Period:      period,
		Content:     content,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		PostCount:   postCount,
		Status:      status,
		CreatedAt:   time.Now(),
	}
	if err := s.db.Create(&summary).Error; err != nil {
		return nil, fmt.Errorf("failed to save %s summary: %w", period, err)
	}
	return &summary, nil
}

// GetLatestSummary returns the most recent summary for a period, or
// (nil, nil) when none has been generated yet.
func (s *Store) GetLatestSummary(period models.SummaryPeriod) (*models.Summary, error) {
	var summary models.Summary
	result := s.db.Where("period = ?", period).
		Order("id DESC").
		First(&summary)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch latest %s summary: %w", period, result.Error)
	}
	return &summary, nil
}

// GetSummaryByID returns a specific summary for a period, or (nil, nil)
// when no such row exists.
func (s *Store) GetSummaryByID(period models.SummaryPeriod, id uint) (*models.Summary, error) {
	var summary models.Summary
	result := s.db.Where("period = ? AND id = ?", period, id).First(&summary)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch summary %d: %w", id, result.Error)
	}
	return &summary, nil
}

// GetSummaryHistory returns summaries for a period, newest first
func (s *Store) GetSummaryHistory(period models.SummaryPeriod, limit, offset int) ([]models.Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	var summaries []models.Summary
	err := s.db.Where("period = ?", period).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s summary history: %w", period, err)
	}
	return summaries, nil
}
