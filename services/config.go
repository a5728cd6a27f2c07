package services

import (
	"time"

	"vibe-economy-system/models"
)

// RewardAmounts is a currency triple used by reward tables and bonuses.
type RewardAmounts struct {
	XP    int64 `json:"xp"`
	Coins int64 `json:"coins"`
	Gems  int64 `json:"gems"`
}

// VelocityLimit caps repetitions of one action inside a sliding window.
type VelocityLimit struct {
	Max    int
	Window time.Duration
}

// MissionTemplate is a catalog entry supplied by the mission collaborator.
// Mission lists are wholesale-rebuilt from these at reset boundaries.
type MissionTemplate struct {
	ID            string
	Title         string
	TriggerAction string
	Target        int64
	Reward        models.MissionReward
}

// BadgeSpec is a catalog entry; its stable code is derived from the name (slug).
type BadgeSpec struct {
	Name        string
	Description string
	Rarity      string
	IconURL     string
}

// AnomalyConfig tunes the cohort median check. SampleSize is deliberately a
// bounded sample of the same-day population, not the full population.
type AnomalyConfig struct {
	SampleSize int // peer DailyStat records to read, tunable

	Multiplier float64 // flag when user total > Multiplier × cohort median

	// Floors below which nothing is flagged — avoids false positives on
	// low-activity days where the median is tiny.
	MinCoinsFloor int64
	MinXPFloor    int64

	// Severity ladder, graded by how far above Multiplier×median the user is.
	ModerateRatio float64
	HighRatio     float64
	CriticalRatio float64
}

// SanctionConfig tunes escalation from accumulated fraud signals.
type SanctionConfig struct {
	// Flags (including the current one) required before a high/critical check
	// escalates account status instead of just flagging the transaction.
	EscalationThreshold int
}

// EconomyConfig carries every tunable of the reward pipeline. It is injected
// into the orchestrator rather than read from globals so tests can substitute
// deterministic fixtures.
type EconomyConfig struct {
	// Base reward per action type. Unknown actions are rejected up front.
	ActionRewards map[string]RewardAmounts

	// Modifiers.
	FirstPostBonus  RewardAmounts
	StreakThreshold int // streak days required for the streak bonus
	StreakBonus     RewardAmounts

	// Daily earning ceilings (UTC calendar day).
	DailyCoinCap      int64
	DailyXPCap        int64
	DailyActionXPCaps map[string]int64 // per-action XP sub-caps, e.g. react_vibe

	// Velocity limits per action, enforced pre-transaction.
	VelocityLimits       map[string]VelocityLimit
	VelocityHistoryLimit int // bounded recent-history read, newest first

	Anomaly  AnomalyConfig
	Sanction SanctionConfig

	// Transaction retry bounds for optimistic-concurrency conflicts.
	TxMaxAttempts int
	TxRetryDelay  time.Duration

	// Catalogs (collaborator-supplied content).
	DailyMissionTemplates  []MissionTemplate
	WeeklyMissionTemplates []MissionTemplate
	Badges                 []BadgeSpec
	TierBadgeNames         map[int]string // tier → badge name, issued on tier change
}

// DefaultEconomyConfig returns the production tuning (overridable via env in main).
func DefaultEconomyConfig() *EconomyConfig {
	return &EconomyConfig{
		ActionRewards: map[string]RewardAmounts{
			"post_vibe":    {XP: 50, Coins: 10},
			"react_vibe":   {XP: 5, Coins: 1},
			"comment_vibe": {XP: 15, Coins: 3},
			"share_vibe":   {XP: 25, Coins: 5},
			"daily_login":  {XP: 20, Coins: 5},
		},
		FirstPostBonus:  RewardAmounts{XP: 25, Coins: 5},
		StreakThreshold: 3,
		StreakBonus:     RewardAmounts{XP: 15, Coins: 3},

		DailyCoinCap: 200,
		DailyXPCap:   1000,
		DailyActionXPCaps: map[string]int64{
			"react_vibe":   100,
			"comment_vibe": 300,
		},

		VelocityLimits: map[string]VelocityLimit{
			"post_vibe":    {Max: 10, Window: time.Hour},
			"react_vibe":   {Max: 20, Window: time.Minute},
			"comment_vibe": {Max: 30, Window: time.Hour},
			"share_vibe":   {Max: 10, Window: time.Hour},
			"daily_login":  {Max: 2, Window: time.Hour},
		},
		VelocityHistoryLimit: 200,

		Anomaly: AnomalyConfig{
			SampleSize:    100,
			Multiplier:    2.0,
			MinCoinsFloor: 50,
			MinXPFloor:    250,
			ModerateRatio: 1.25, // 2.5× the cohort median
			HighRatio:     1.5,  // 3× the cohort median
			CriticalRatio: 2.5,  // 5× the cohort median
		},
		Sanction: SanctionConfig{
			EscalationThreshold: 3,
		},

		TxMaxAttempts: 3,
		TxRetryDelay:  50 * time.Millisecond,

		DailyMissionTemplates: []MissionTemplate{
			{ID: "daily_poster", Title: "Share a Vibe", TriggerAction: "post_vibe", Target: 1,
				Reward: models.MissionReward{XP: 50, Coins: 20}},
			{ID: "daily_reactor", Title: "React 10 Times", TriggerAction: "react_vibe", Target: 10,
				Reward: models.MissionReward{XP: 40, Coins: 15}},
			{ID: "daily_commenter", Title: "Leave 3 Comments", TriggerAction: "comment_vibe", Target: 3,
				Reward: models.MissionReward{XP: 45, Coins: 15}},
		},
		WeeklyMissionTemplates: []MissionTemplate{
			{ID: "weekly_poster", Title: "Post 7 Vibes This Week", TriggerAction: "post_vibe", Target: 7,
				Reward: models.MissionReward{XP: 300, Coins: 100, Gems: 5}},
			{ID: "weekly_social", Title: "React 50 Times This Week", TriggerAction: "react_vibe", Target: 50,
				Reward: models.MissionReward{XP: 200, Coins: 75, Gems: 2}},
		},

		Badges: []BadgeSpec{
			{Name: "Tier Silver", Description: "Reached Silver tier", Rarity: "common"},
			{Name: "Tier Gold", Description: "Reached Gold tier", Rarity: "rare"},
			{Name: "Tier Platinum", Description: "Reached Platinum tier", Rarity: "epic"},
			{Name: "Tier Diamond", Description: "Reached Diamond tier", Rarity: "legendary"},
			{Name: "Week One Streak", Description: "Seven-day activity streak", Rarity: "rare"},
		},
		TierBadgeNames: map[int]string{
			2: "Tier Silver",
			3: "Tier Gold",
			4: "Tier Platinum",
			5: "Tier Diamond",
		},
	}
}
