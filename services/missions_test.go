package services

import (
	"errors"
	"testing"
	"time"

	"vibe-economy-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func seedMission(t *testing.T, db *gorm.DB, userID string, target int64) *models.Mission {
	t.Helper()
	mission := &models.Mission{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		Type:           models.MissionTypeWeekly,
		TemplateID:     "weekly_poster",
		Title:          "Post 7 Vibes This Week",
		TriggerAction:  "post_vibe",
		Target:         target,
		Reward:         models.MissionReward{XP: 300, Coins: 100, Gems: 5},
	}
	if err := db.Create(mission).Error; err != nil {
		t.Fatalf("seed mission: %v", err)
	}
	return mission
}

func TestIncrementMissionsCompletesExactlyOnTarget(t *testing.T) {
	db := openTestDB(t)
	seedMission(t, db, "user-1", 7)
	now := testEpoch

	for i := 1; i <= 7; i++ {
		completed, err := IncrementMissions(db, "user-1", "post_vibe", 1, now)
		if err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
		if i < 7 && len(completed) != 0 {
			t.Fatalf("completed early on increment %d", i)
		}
		if i == 7 {
			if len(completed) != 1 {
				t.Fatalf("expected completion on 7th increment, got %d", len(completed))
			}
			if completed[0].CompletedAt == nil {
				t.Fatalf("completion time not stamped")
			}
		}
	}

	// Further increments clamp at target and never re-complete.
	completed, err := IncrementMissions(db, "user-1", "post_vibe", 5, now)
	if err != nil {
		t.Fatalf("post-completion increment: %v", err)
	}
	if len(completed) != 0 {
		t.Fatalf("completion must fire exactly once")
	}
	var mission models.Mission
	if err := db.Where("external_user_id = ?", "user-1").First(&mission).Error; err != nil {
		t.Fatalf("reload mission: %v", err)
	}
	if mission.Current != mission.Target {
		t.Fatalf("current %d exceeded target %d", mission.Current, mission.Target)
	}
}

func TestIncrementMissionsClampsOvershoot(t *testing.T) {
	db := openTestDB(t)
	seedMission(t, db, "user-1", 3)

	completed, err := IncrementMissions(db, "user-1", "post_vibe", 10, testEpoch)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if len(completed) != 1 {
		t.Fatalf("overshoot must still complete once")
	}
	if completed[0].Current != 3 {
		t.Fatalf("current must clamp at target, got %d", completed[0].Current)
	}
}

func TestIncrementMissionsIgnoresOtherActions(t *testing.T) {
	db := openTestDB(t)
	seedMission(t, db, "user-1", 3)

	if _, err := IncrementMissions(db, "user-1", "react_vibe", 1, testEpoch); err != nil {
		t.Fatalf("increment: %v", err)
	}
	var mission models.Mission
	if err := db.Where("external_user_id = ?", "user-1").First(&mission).Error; err != nil {
		t.Fatalf("reload mission: %v", err)
	}
	if mission.Current != 0 {
		t.Fatalf("non-matching action advanced the mission")
	}
}

func TestMarkMissionClaimedIsOneTime(t *testing.T) {
	db := openTestDB(t)
	mission := seedMission(t, db, "user-1", 1)
	if _, err := IncrementMissions(db, "user-1", "post_vibe", 1, testEpoch); err != nil {
		t.Fatalf("increment: %v", err)
	}

	var fresh models.Mission
	if err := db.First(&fresh, "id = ?", mission.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if err := markMissionClaimed(db, &fresh, testEpoch); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if !fresh.Claimed || fresh.ClaimedAt == nil {
		t.Fatalf("claim transition not recorded")
	}

	if err := markMissionClaimed(db, &fresh, testEpoch); !errors.Is(err, ErrMissionAlreadyClaimed) {
		t.Fatalf("second claim must fail with ErrMissionAlreadyClaimed, got %v", err)
	}
}

func TestResetMissionsIfDue(t *testing.T) {
	db := openTestDB(t)
	cfg := DefaultEconomyConfig()
	now := testEpoch

	state := &models.UserEconomyState{
		ID:             uuid.NewString(),
		ExternalUserID: "user-1",
		DailyActionXP:  map[string]int64{},
	}
	seedState(t, db, state)

	// Zero watermarks: both lists populate.
	if err := ResetMissionsIfDue(db, cfg, state, now); err != nil {
		t.Fatalf("reset: %v", err)
	}
	var daily, weekly int64
	db.Model(&models.Mission{}).Where("external_user_id = ? AND type = ?", "user-1", models.MissionTypeDaily).Count(&daily)
	db.Model(&models.Mission{}).Where("external_user_id = ? AND type = ?", "user-1", models.MissionTypeWeekly).Count(&weekly)
	if daily != int64(len(cfg.DailyMissionTemplates)) || weekly != int64(len(cfg.WeeklyMissionTemplates)) {
		t.Fatalf("templates not instantiated: daily=%d weekly=%d", daily, weekly)
	}

	// Advance progress, then roll one day: daily list is wholesale-replaced,
	// weekly untouched.
	if _, err := IncrementMissions(db, "user-1", "post_vibe", 1, now); err != nil {
		t.Fatalf("increment: %v", err)
	}
	nextDay := now.Add(24 * time.Hour)
	if err := ResetMissionsIfDue(db, cfg, state, nextDay); err != nil {
		t.Fatalf("reset next day: %v", err)
	}
	var dailyPoster models.Mission
	if err := db.Where("external_user_id = ? AND template_id = ?", "user-1", "daily_poster").
		First(&dailyPoster).Error; err != nil {
		t.Fatalf("reload daily mission: %v", err)
	}
	if dailyPoster.Current != 0 || dailyPoster.IsCompleted {
		t.Fatalf("daily mission not reset: %+v", dailyPoster)
	}
	var weeklyPoster models.Mission
	if err := db.Where("external_user_id = ? AND template_id = ?", "user-1", "weekly_poster").
		First(&weeklyPoster).Error; err != nil {
		t.Fatalf("reload weekly mission: %v", err)
	}
	if weeklyPoster.Current != 1 {
		t.Fatalf("weekly mission must survive a daily reset, got current=%d", weeklyPoster.Current)
	}

	// Seven days later the weekly list replaces too.
	nextWeek := now.Add(7 * 24 * time.Hour)
	if err := ResetMissionsIfDue(db, cfg, state, nextWeek); err != nil {
		t.Fatalf("reset next week: %v", err)
	}
	weeklyPoster = models.Mission{} // clear stale primary key so First doesn't filter on the replaced row's ID
	if err := db.Where("external_user_id = ? AND template_id = ?", "user-1", "weekly_poster").
		First(&weeklyPoster).Error; err != nil {
		t.Fatalf("reload weekly mission: %v", err)
	}
	if weeklyPoster.Current != 0 {
		t.Fatalf("weekly mission not reset after 7 days")
	}
}
