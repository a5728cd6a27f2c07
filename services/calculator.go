package services

import (
	"vibe-economy-system/models"
)

// AwardMetadata is the caller-supplied context for a reward request.
type AwardMetadata struct {
	IsFirstPostToday  bool                   `json:"isFirstPostToday"`
	StreakDays        int                    `json:"streakDays"`
	DeviceFingerprint string                 `json:"deviceFingerprint,omitempty"`
	IPAddress         string                 `json:"ipAddress,omitempty"`
	Extra             map[string]interface{} `json:"extra,omitempty"`
}

// RewardOutcome is the calculator's verdict for one action.
type RewardOutcome struct {
	XP          int64
	Coins       int64
	Gems        int64
	Blocked     bool
	BlockReason string
}

// CalculateReward computes the clipped reward for an action. Nominal value is
// the base table entry plus modifiers; the final amounts are clipped to the
// lesser of nominal and remaining cap headroom. Zero headroom still succeeds
// with zero yield — diminishing returns, not failure. Mission progress is
// unaffected by clipping.
func CalculateReward(cfg *EconomyConfig, state *models.UserEconomyState, action string, meta AwardMetadata) RewardOutcome {
	if state.AccountStatus == models.AccountStatusSuspended || state.AccountStatus == models.AccountStatusBanned {
		return RewardOutcome{Blocked: true, BlockReason: "account is " + string(state.AccountStatus)}
	}

	base, ok := cfg.ActionRewards[action]
	if !ok {
		return RewardOutcome{Blocked: true, BlockReason: "unknown action " + action}
	}

	nominal := base
	if action == "post_vibe" && meta.IsFirstPostToday {
		nominal.XP += cfg.FirstPostBonus.XP
		nominal.Coins += cfg.FirstPostBonus.Coins
		nominal.Gems += cfg.FirstPostBonus.Gems
	}
	if cfg.StreakThreshold > 0 && meta.StreakDays >= cfg.StreakThreshold {
		nominal.XP += cfg.StreakBonus.XP
		nominal.Coins += cfg.StreakBonus.Coins
		nominal.Gems += cfg.StreakBonus.Gems
	}

	// Exact clipping against today's remaining headroom.
	xp := minInt64(nominal.XP, XPHeadroom(cfg, state, action))
	coins := minInt64(nominal.Coins, CoinHeadroom(cfg, state))

	// Gems have no daily cap — they only come from rare rewards.
	return RewardOutcome{XP: xp, Coins: coins, Gems: nominal.Gems}
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
