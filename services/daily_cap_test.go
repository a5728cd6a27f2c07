package services

import (
	"testing"
	"time"

	"vibe-economy-system/models"
)

func TestResetDailyCountersIfNeeded(t *testing.T) {
	day1 := time.Date(2026, time.March, 14, 23, 50, 0, 0, time.UTC)
	day2 := time.Date(2026, time.March, 15, 0, 5, 0, 0, time.UTC)

	state := &models.UserEconomyState{
		DailyCoinsEarned:  120,
		DailyXPEarned:     800,
		DailyActionXP:     map[string]int64{"react_vibe": 90},
		LastDailyCapReset: day1,
	}

	if ResetDailyCountersIfNeeded(state, day1) {
		t.Fatalf("same calendar day must not reset")
	}
	if state.DailyCoinsEarned != 120 {
		t.Fatalf("counters changed without reset")
	}

	if !ResetDailyCountersIfNeeded(state, day2) {
		t.Fatalf("day rollover must reset")
	}
	if state.DailyCoinsEarned != 0 || state.DailyXPEarned != 0 || len(state.DailyActionXP) != 0 {
		t.Fatalf("counters not zeroed: %+v", state)
	}
	if !sameUTCDay(state.LastDailyCapReset, day2) {
		t.Fatalf("reset watermark not advanced")
	}
}

func TestResetUsesUTCCalendar(t *testing.T) {
	// 23:30 UTC and 00:30 UTC next day are different days even though less
	// than an hour apart.
	a := time.Date(2026, time.March, 14, 23, 30, 0, 0, time.UTC)
	b := a.Add(time.Hour)
	state := &models.UserEconomyState{LastDailyCapReset: a}
	if !ResetDailyCountersIfNeeded(state, b) {
		t.Fatalf("expected reset across midnight UTC")
	}
}

func TestHeadroom(t *testing.T) {
	cfg := DefaultEconomyConfig()
	state := &models.UserEconomyState{
		DailyCoinsEarned: 150,
		DailyXPEarned:    900,
		DailyActionXP:    map[string]int64{"react_vibe": 95},
	}

	if got := CoinHeadroom(cfg, state); got != cfg.DailyCoinCap-150 {
		t.Fatalf("coin headroom = %d", got)
	}
	if got := XPHeadroom(cfg, state, "post_vibe"); got != cfg.DailyXPCap-900 {
		t.Fatalf("xp headroom = %d", got)
	}
	// Sub-cap narrows the global headroom.
	if got := XPHeadroom(cfg, state, "react_vibe"); got != cfg.DailyActionXPCaps["react_vibe"]-95 {
		t.Fatalf("react xp headroom = %d", got)
	}

	// Never negative, even if counters somehow exceed caps.
	over := &models.UserEconomyState{DailyCoinsEarned: cfg.DailyCoinCap + 10, DailyXPEarned: cfg.DailyXPCap + 10}
	if CoinHeadroom(cfg, over) != 0 || XPHeadroom(cfg, over, "post_vibe") != 0 {
		t.Fatalf("headroom must clamp at zero")
	}
}
