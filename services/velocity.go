package services

import (
	"fmt"

	"vibe-economy-system/models"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// VelocityLimiter enforces sliding-window rate limits per action type. It runs
// as a cheap non-transactional read before the award transaction — defense in
// depth, not a hard guarantee.
type VelocityLimiter struct {
	DB     *gorm.DB
	Config *EconomyConfig
	Clock  clockwork.Clock
}

func NewVelocityLimiter(db *gorm.DB, cfg *EconomyConfig, clock clockwork.Clock) *VelocityLimiter {
	return &VelocityLimiter{DB: db, Config: cfg, Clock: clock}
}

// Check returns a RateLimitError when the user has already performed the action
// at or above its configured limit inside the sliding window. Reads a bounded
// recent history (newest first), never the full ledger.
func (l *VelocityLimiter) Check(externalUserID, action string) error {
	limit, ok := l.Config.VelocityLimits[action]
	if !ok {
		return nil
	}

	var recent []models.RewardTransaction
	if err := l.DB.
		Select("created_at").
		Where("external_user_id = ? AND action = ?", externalUserID, action).
		Order("created_at DESC").
		Limit(l.Config.VelocityHistoryLimit).
		Find(&recent).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	windowStart := l.Clock.Now().Add(-limit.Window)
	count := 0
	for _, entry := range recent {
		if entry.CreatedAt.Before(windowStart) {
			break // newest-first: everything after this is older
		}
		count++
	}

	if count >= limit.Max {
		return &RateLimitError{Action: action, Limit: limit.Max, Window: limit.Window}
	}
	return nil
}
