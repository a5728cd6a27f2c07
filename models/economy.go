package models

import (
	"time"

	"gorm.io/gorm"
)

// AccountStatus reflects sanction state. Accounts are never deleted — bans are flags.
type AccountStatus string

const (
	AccountStatusActive      AccountStatus = "active"
	AccountStatusUnderReview AccountStatus = "under_review"
	AccountStatusSuspended   AccountStatus = "suspended"
	AccountStatusBanned      AccountStatus = "banned"
)

// UserEconomyState is the per-user virtual economy (denormalized for performance).
// Mutated exclusively through the reward orchestrator — single logical writer path.
type UserEconomyState struct {
	ID             string `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	// Core balances. XP is monotonic; level/tier are pure derivations of XP and are
	// recomputed on every write, never set independently.
	XP    int64 `json:"xp" gorm:"default:0"`
	Coins int64 `json:"coins" gorm:"default:0"`
	Gems  int64 `json:"gems" gorm:"default:0"`
	Level int   `json:"level" gorm:"default:1"`
	Tier  int   `json:"tier" gorm:"default:1"` // Bronze(1)→Silver(2)→Gold(3)→Platinum(4)→Diamond(5)

	// Daily earning counters, reset on calendar-day rollover (UTC).
	DailyCoinsEarned  int64            `json:"daily_coins_earned" gorm:"default:0"`
	DailyXPEarned     int64            `json:"daily_xp_earned" gorm:"default:0"`
	DailyActionXP     map[string]int64 `json:"daily_action_xp" gorm:"serializer:json;type:jsonb"` // per-action sub-caps, e.g. react_vibe
	LastDailyCapReset time.Time        `json:"last_daily_cap_reset"`

	// Mission list reset watermarks.
	LastDailyMissionReset  time.Time `json:"last_daily_mission_reset"`
	LastWeeklyMissionReset time.Time `json:"last_weekly_mission_reset"`

	// Fraud bookkeeping.
	FraudFlags    int           `json:"fraud_flags" gorm:"default:0"`
	AccountStatus AccountStatus `json:"account_status" gorm:"type:varchar(16);default:'active';index"`

	// Optimistic concurrency token — bumped on every committed award/claim.
	Version int64 `json:"-" gorm:"default:0"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
