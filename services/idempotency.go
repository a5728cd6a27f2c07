package services

import (
	"errors"

	"vibe-economy-system/models"

	"gorm.io/gorm"
)

// IdempotencyGuard dedupes repeated award requests by (user, key). The
// pre-check here is advisory — read-only and outside the transaction; the race
// between two concurrent duplicates is closed by the unique ledger index on
// (external_user_id, idempotency_key), so semantics stay exactly-once.
type IdempotencyGuard struct {
	DB *gorm.DB
}

func NewIdempotencyGuard(db *gorm.DB) *IdempotencyGuard {
	return &IdempotencyGuard{DB: db}
}

// Lookup returns the original ledger entry for (user, key), or nil when the
// request is new. A request without a key is always treated as new — the
// caller accepts duplicate risk.
func (g *IdempotencyGuard) Lookup(externalUserID string, idempotencyKey *string) (*models.RewardTransaction, error) {
	if idempotencyKey == nil || *idempotencyKey == "" {
		return nil, nil
	}
	var entry models.RewardTransaction
	err := g.DB.
		Where("external_user_id = ? AND idempotency_key = ?", externalUserID, *idempotencyKey).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ErrPersistence
	}
	return &entry, nil
}
