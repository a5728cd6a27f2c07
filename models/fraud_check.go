package models

import "time"

type FraudSeverity string

const (
	FraudSeverityLow      FraudSeverity = "low"
	FraudSeverityModerate FraudSeverity = "moderate"
	FraudSeverityHigh     FraudSeverity = "high"
	FraudSeverityCritical FraudSeverity = "critical"
)

// FraudCheck is an append-only audit record written whenever an anomaly is
// detected — durably, even when the triggering reward itself is aborted.
type FraudCheck struct {
	ID             string `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`
	CheckType      string `gorm:"not null" json:"check_type"` // e.g. "cohort_median"

	FlagReason string        `gorm:"type:text" json:"flag_reason"`
	Severity   FraudSeverity `gorm:"type:varchar(16);not null;index" json:"severity"`

	AutoResolved bool `gorm:"default:false" json:"auto_resolved"`
	ManualReview bool `gorm:"default:false" json:"manual_review"`

	// Snapshot of the numbers that tripped the check (totals, median, ratio).
	Metadata map[string]interface{} `gorm:"serializer:json;type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
