package services

import (
	"path/filepath"
	"testing"
	"time"

	"vibe-economy-system/models"

	"github.com/jonboulle/clockwork"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "economy_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.UserEconomyState{},
		&models.Mission{},
		&models.RewardTransaction{},
		&models.DailyStat{},
		&models.FraudCheck{},
		&models.BadgeType{},
		&models.UserBadge{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// openBareDB opens a database with no schema, for exercising store-failure
// paths.
func openBareDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "bare.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open bare db: %v", err)
	}
	return db
}

var testEpoch = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

func newTestOrchestrator(t *testing.T) (*RewardOrchestrator, *clockwork.FakeClock) {
	t.Helper()
	db := openTestDB(t)
	clock := clockwork.NewFakeClockAt(testEpoch)
	return NewRewardOrchestrator(db, DefaultEconomyConfig(), clock), clock
}

func seedState(t *testing.T, db *gorm.DB, state *models.UserEconomyState) {
	t.Helper()
	if state.DailyActionXP == nil {
		state.DailyActionXP = map[string]int64{}
	}
	if err := db.Create(state).Error; err != nil {
		t.Fatalf("seed state: %v", err)
	}
}

func loadState(t *testing.T, db *gorm.DB, userID string) *models.UserEconomyState {
	t.Helper()
	var state models.UserEconomyState
	if err := db.Where("external_user_id = ?", userID).First(&state).Error; err != nil {
		t.Fatalf("load state for %s: %v", userID, err)
	}
	return &state
}
