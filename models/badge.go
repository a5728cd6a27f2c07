package models

import (
	"time"
)

// BadgeType: static catalog entry (injected via EconomyConfig, persisted for lookups)
type BadgeType struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	Code        string    `gorm:"uniqueIndex;not null" json:"code"` // slugified name, e.g. "tier-gold"
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	IconURL     string    `gorm:"type:text" json:"icon_url"`
	Rarity      string    `gorm:"type:varchar(16);default:'common'" json:"rarity"` // common, rare, epic, legendary
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserBadge: awarded instance. Unique per (user, code) — issuance is idempotent.
type UserBadge struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	ExternalUserID string    `gorm:"uniqueIndex:idx_user_badge;not null" json:"external_user_id"`
	BadgeCode      string    `gorm:"uniqueIndex:idx_user_badge;not null" json:"badge_code"`
	AwardedAt      time.Time `gorm:"autoCreateTime" json:"awarded_at"`
	Metadata       string    `gorm:"type:jsonb" json:"metadata,omitempty"` // e.g. {"tier": 3}
}
