package models

import "time"

type MissionType string

const (
	MissionTypeDaily  MissionType = "daily"
	MissionTypeWeekly MissionType = "weekly"
)

// MissionReward is the payout granted when a completed mission is claimed.
type MissionReward struct {
	XP        int64  `json:"xp"`
	Coins     int64  `json:"coins"`
	Gems      int64  `json:"gems"`
	BadgeCode string `json:"badge_code,omitempty"`
}

// Mission is one active goal for one user. Lists are wholesale-replaced at reset
// boundaries, then mutated in place until claimed.
//
// Invariants: 0 <= Current <= Target; Claimed implies IsCompleted.
type Mission struct {
	ID             string      `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	ExternalUserID string      `gorm:"index:idx_user_missions;not null" json:"external_user_id"`
	Type           MissionType `gorm:"index:idx_user_missions;type:varchar(8);not null" json:"type"`
	TemplateID     string      `gorm:"not null" json:"template_id"`

	Title         string `json:"title"`
	TriggerAction string `gorm:"index" json:"trigger_action"` // e.g. "post_vibe"

	Target  int64 `gorm:"not null" json:"target"`
	Current int64 `gorm:"default:0" json:"current"`

	IsCompleted bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Claiming is a separate, explicit, one-time transition.
	Claimed   bool       `gorm:"default:false" json:"claimed"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`

	Reward MissionReward `gorm:"serializer:json;type:jsonb" json:"reward"`

	Timestamps
}
