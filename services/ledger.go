package services

import (
	"time"

	"vibe-economy-system/models"

	"gorm.io/gorm"
)

// LedgerService owns the append-only RewardTransaction table. Entries are
// written exactly once per request that reaches commit and are never updated
// afterwards, except for the archive watermark.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// Append writes one ledger entry inside the caller's transaction.
func Append(tx *gorm.DB, entry *models.RewardTransaction) error {
	return tx.Create(entry).Error
}

// RecentByUser returns the newest entries for a user, bounded.
func (s *LedgerService) RecentByUser(externalUserID string, limit int) ([]models.RewardTransaction, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var entries []models.RewardTransaction
	err := s.DB.
		Where("external_user_id = ?", externalUserID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// Flagged returns entries awaiting manual review, newest first.
func (s *LedgerService) Flagged(limit int) ([]models.RewardTransaction, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	var entries []models.RewardTransaction
	err := s.DB.
		Where("review_status = ?", models.ReviewStatusFlagged).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// UnarchivedBefore returns committed entries older than cutoff that the
// archive worker has not yet exported.
func (s *LedgerService) UnarchivedBefore(cutoff time.Time, limit int) ([]models.RewardTransaction, error) {
	var entries []models.RewardTransaction
	err := s.DB.
		Where("archived = ? AND created_at < ?", false, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// MarkArchived stamps exported entries so the next archive run skips them.
func (s *LedgerService) MarkArchived(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.DB.Model(&models.RewardTransaction{}).
		Where("id IN ?", ids).
		Update("archived", true).Error
}
