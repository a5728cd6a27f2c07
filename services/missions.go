package services

import (
	"time"

	"vibe-economy-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// daysBetweenUTC counts whole calendar days between two instants' UTC dates.
func daysBetweenUTC(from, to time.Time) int {
	fy, fm, fd := from.UTC().Date()
	ty, tm, td := to.UTC().Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

// ResetMissionsIfDue wholesale-replaces mission lists that crossed their reset
// boundary: day rollover for daily missions, ≥7 calendar days for weekly.
// Runs inside the award transaction; the watermarks on state commit with it.
func ResetMissionsIfDue(tx *gorm.DB, cfg *EconomyConfig, state *models.UserEconomyState, now time.Time) error {
	if !sameUTCDay(state.LastDailyMissionReset, now) {
		if err := replaceMissions(tx, state.ExternalUserID, models.MissionTypeDaily, cfg.DailyMissionTemplates); err != nil {
			return err
		}
		state.LastDailyMissionReset = now.UTC()
	}
	if state.LastWeeklyMissionReset.IsZero() || daysBetweenUTC(state.LastWeeklyMissionReset, now) >= 7 {
		if err := replaceMissions(tx, state.ExternalUserID, models.MissionTypeWeekly, cfg.WeeklyMissionTemplates); err != nil {
			return err
		}
		state.LastWeeklyMissionReset = now.UTC()
	}
	return nil
}

func replaceMissions(tx *gorm.DB, externalUserID string, missionType models.MissionType, templates []MissionTemplate) error {
	if err := tx.
		Where("external_user_id = ? AND type = ?", externalUserID, missionType).
		Delete(&models.Mission{}).Error; err != nil {
		return err
	}
	for _, tpl := range templates {
		mission := models.Mission{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			Type:           missionType,
			TemplateID:     tpl.ID,
			Title:          tpl.Title,
			TriggerAction:  tpl.TriggerAction,
			Target:         tpl.Target,
			Reward:         tpl.Reward,
		}
		if err := tx.Create(&mission).Error; err != nil {
			return err
		}
	}
	return nil
}

// IncrementMissions advances every unclaimed mission triggered by action,
// clamping Current at Target. The first time Current reaches Target the
// mission flips to completed and the completion time is stamped — exactly
// once. Returns the missions completed by this call.
func IncrementMissions(tx *gorm.DB, externalUserID, action string, by int64, now time.Time) ([]models.Mission, error) {
	var missions []models.Mission
	if err := tx.
		Where("external_user_id = ? AND trigger_action = ? AND claimed = ?", externalUserID, action, false).
		Find(&missions).Error; err != nil {
		return nil, err
	}

	var completed []models.Mission
	for i := range missions {
		m := &missions[i]
		if m.IsCompleted {
			continue
		}
		m.Current += by
		if m.Current > m.Target {
			m.Current = m.Target
		}
		if m.Current >= m.Target {
			m.IsCompleted = true
			completedAt := now.UTC()
			m.CompletedAt = &completedAt
			completed = append(completed, *m)
		}
		if err := tx.Save(m).Error; err != nil {
			return nil, err
		}
	}
	return completed, nil
}

// markMissionClaimed performs the one-time claimed transition with an
// optimistic guard: the UPDATE only matches while claimed is still false, so a
// racing second claim loses and gets ErrMissionAlreadyClaimed.
func markMissionClaimed(tx *gorm.DB, mission *models.Mission, now time.Time) error {
	claimedAt := now.UTC()
	result := tx.Model(&models.Mission{}).
		Where("id = ? AND claimed = ?", mission.ID, false).
		Updates(map[string]interface{}{"claimed": true, "claimed_at": claimedAt})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMissionAlreadyClaimed
	}
	mission.Claimed = true
	mission.ClaimedAt = &claimedAt
	return nil
}
