package services

import (
	"time"

	"vibe-economy-system/models"
)

// sameUTCDay compares calendar dates in UTC; all day boundaries in the economy
// use this fixed timezone.
func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func utcDateString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ResetDailyCountersIfNeeded zeroes the daily earning counters when the stored
// reset date differs from now. Runs inside the award transaction so reset and
// award commit atomically. Returns true when a reset happened.
func ResetDailyCountersIfNeeded(state *models.UserEconomyState, now time.Time) bool {
	if sameUTCDay(state.LastDailyCapReset, now) {
		return false
	}
	state.DailyCoinsEarned = 0
	state.DailyXPEarned = 0
	state.DailyActionXP = map[string]int64{}
	state.LastDailyCapReset = now.UTC()
	return true
}

// CoinHeadroom returns how many more coins the user may earn today.
func CoinHeadroom(cfg *EconomyConfig, state *models.UserEconomyState) int64 {
	return clampNonNegative(cfg.DailyCoinCap - state.DailyCoinsEarned)
}

// XPHeadroom returns remaining global daily XP, further narrowed by the
// action's sub-cap when one is configured (e.g. reactions).
func XPHeadroom(cfg *EconomyConfig, state *models.UserEconomyState, action string) int64 {
	headroom := clampNonNegative(cfg.DailyXPCap - state.DailyXPEarned)
	if subCap, ok := cfg.DailyActionXPCaps[action]; ok {
		subRoom := clampNonNegative(subCap - state.DailyActionXP[action])
		if subRoom < headroom {
			headroom = subRoom
		}
	}
	return headroom
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
