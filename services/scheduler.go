// services/scheduler.go
package services

import (
	"log"
	"time"

	"vibe-economy-system/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// StatRetentionDays is how long cohort DailyStat rows are kept. The anomaly
// detector only ever reads the current day, so old rows are pure weight.
const StatRetentionDays = 30

// StartMaintenanceScheduler prunes expired DailyStat rows once a day.
func StartMaintenanceScheduler(db *gorm.DB, clock clockwork.Clock) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		return nil, err
	}
	sched.Start()

	_, err = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			cutoff := utcDateString(clock.Now().AddDate(0, 0, -StatRetentionDays))
			result := db.Where("stat_date < ?", cutoff).Delete(&models.DailyStat{})
			if result.Error != nil {
				log.Printf("[Scheduler] DailyStat prune failed: %v", result.Error)
				return
			}
			if result.RowsAffected > 0 {
				log.Printf("✅ Pruned %d DailyStat rows older than %s", result.RowsAffected, cutoff)
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	return sched, nil
}
