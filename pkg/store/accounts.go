package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/calebmoore/tweetwatch/pkg/db/models"
)

// GetAccount looks up an account by platform user ID. It returns (nil, nil)
// when no row exists.
func (s *Store) GetAccount(id string) (*models.Account, error) {
	var account models.Account
	result := s.db.Where("id = ?", id).First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up account %s: %w", id, result.Error)
	}
	return &account, nil
}

// InsertAccount creates a new account row
func (s *Store) InsertAccount(account models.Account) error {
	if err := s.db.Create(&account).Error; err != nil {
		return fmt.Errorf("failed to insert account %s: %w", account.ID, err)
	}
	return nil
}

// UpdateAccount overwrites every mutable field of an existing account.
// Unlike post counters, profile fields (handle, bio, counts, avatar) change
// legitimately over time, so no selective diffing is done.
func (s *Store) UpdateAccount(account models.Account) error {
	result := s.db.Model(&models.Account{}).
		Where("id = ?", account.ID).
		Updates(map[string]interface{}{
			"handle":          account.Handle,
			"name":            account.Name,
			"bio":             account.Bio,
			"followers_count": account.FollowersCount,
			"following_count": account.FollowingCount,
			"posts_count":     account.PostsCount,
			"avatar_url":      account.AvatarURL,
			"is_following":    account.IsFollowing,
			"is_tracked":      account.IsTracked,
			"updated_at":      account.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update account %s: %w", account.ID, result.Error)
	}
	return nil
}

// SetTracked flips the is_tracked flag explicitly. Discovery-path overwrites
// never downgrade the flag; this is the only way to untrack an account.
func (s *Store) SetTracked(id string, tracked bool) error {
	result := s.db.Model(&models.Account{}).
		Where("id = ?", id).
		Update("is_tracked", tracked)
	if result.Error != nil {
		return fmt.Errorf("failed to set tracked flag for account %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("account %s not found", id)
	}
	return nil
}

// GetTrackedAccounts returns all accounts flagged is_tracked
func (s *Store) GetTrackedAccounts() ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.Where("is_tracked = ?", true).Order("handle").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch tracked accounts: %w", err)
	}
	return accounts, nil
}

// GetAllAccounts returns every known account
func (s *Store) GetAllAccounts() ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.Order("handle").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	return accounts, nil
}

// GetAccountByHandle looks up an account by its current handle. Handles can
// change over time; ID lookups are authoritative.
func (s *Store) GetAccountByHandle(handle string) (*models.Account, error) {
	var account models.Account
	result := s.db.Where("handle = ?", handle).First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up account by handle %s: %w", handle, result.Error)
	}
	return &account, nil
}
