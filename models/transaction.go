package models

import "time"

// ReviewStatus is the fraud-review disposition of a ledger entry.
type ReviewStatus string

const (
	ReviewStatusPending    ReviewStatus = "pending"
	ReviewStatusApproved   ReviewStatus = "approved"
	ReviewStatusFlagged    ReviewStatus = "flagged"
	ReviewStatusRolledBack ReviewStatus = "rolled_back"
)

// RewardTransaction is one immutable, append-only ledger entry. Exactly one is
// written per request that reaches commit; aborted requests write none, and
// duplicate replays reference the original entry instead of creating a new one.
type RewardTransaction struct {
	ID             string `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	ExternalUserID string `gorm:"index;uniqueIndex:idx_user_idem_key;not null" json:"external_user_id"`
	Action         string `gorm:"index;not null" json:"action"`

	XPChange    int64 `json:"xp_change"`
	CoinsChange int64 `json:"coins_change"`
	GemsChange  int64 `json:"gems_change"`

	// Nullable so keyless requests never collide; the unique index on
	// (external_user_id, idempotency_key) closes the duplicate-commit race.
	IdempotencyKey *string `gorm:"uniqueIndex:idx_user_idem_key" json:"idempotency_key,omitempty"`

	DeviceFingerprint string                 `json:"device_fingerprint,omitempty"`
	IPAddress         string                 `json:"ip_address,omitempty"`
	Metadata          map[string]interface{} `gorm:"serializer:json;type:jsonb" json:"metadata,omitempty"`

	ReviewStatus ReviewStatus `gorm:"type:varchar(16);default:'approved';index" json:"review_status"`
	IsFraudulent bool         `gorm:"default:false" json:"is_fraudulent"`

	// Set by the nightly archive worker once the entry has been exported to R2.
	Archived bool `gorm:"default:false;index" json:"-"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
