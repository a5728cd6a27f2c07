package models

import "time"

// DailyStat aggregates one user's earnings for one UTC calendar day. Written by
// every successful award; read as the peer sample for cohort anomaly detection.
type DailyStat struct {
	ID             string `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex:idx_user_stat_date;not null" json:"external_user_id"`
	StatDate       string `gorm:"uniqueIndex:idx_user_stat_date;index;type:varchar(10);not null" json:"stat_date"` // "2006-01-02" (UTC)

	CoinsEarned  int64            `gorm:"default:0" json:"coins_earned"`
	XPEarned     int64            `gorm:"default:0" json:"xp_earned"`
	ActionCounts map[string]int64 `gorm:"serializer:json;type:jsonb" json:"action_counts"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
