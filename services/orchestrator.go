package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"vibe-economy-system/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// RewardOrchestrator composes the full award pipeline into one atomic
// operation per request: idempotency pre-check → velocity limit → transaction
// { daily reset → calculate → apply → progression → missions → anomaly →
// sanction } → ledger append → response.
type RewardOrchestrator struct {
	DB     *gorm.DB
	Config *EconomyConfig
	Clock  clockwork.Clock

	Idempotency *IdempotencyGuard
	Velocity    *VelocityLimiter
	Anomaly     *AnomalyDetector
	Badges      *BadgeService
}

func NewRewardOrchestrator(db *gorm.DB, cfg *EconomyConfig, clock clockwork.Clock) *RewardOrchestrator {
	return &RewardOrchestrator{
		DB:          db,
		Config:      cfg,
		Clock:       clock,
		Idempotency: NewIdempotencyGuard(db),
		Velocity:    NewVelocityLimiter(db, cfg, clock),
		Anomaly:     NewAnomalyDetector(db, cfg),
		Badges:      NewBadgeService(db, cfg),
	}
}

// AwardResult is the response for AwardReward.
type AwardResult struct {
	Success     bool  `json:"success"`
	IsDuplicate bool  `json:"isDuplicate,omitempty"`
	XPGained    int64 `json:"xpGained"`
	CoinsGained int64 `json:"coinsGained"`
	GemsGained  int64 `json:"gemsGained"`

	NewXP    int64 `json:"newXP,omitempty"`
	NewCoins int64 `json:"newCoins,omitempty"`
	NewGems  int64 `json:"newGems,omitempty"`

	NewLevel    int  `json:"newLevel,omitempty"`
	NewTier     int  `json:"newTier,omitempty"`
	LeveledUp   bool `json:"leveledUp,omitempty"`
	TierChanged bool `json:"tierChanged,omitempty"`

	NewBadges         []string         `json:"newBadges,omitempty"`
	MissionsCompleted []models.Mission `json:"missionsCompleted,omitempty"`
}

// ClaimResult is the response for ClaimMission.
type ClaimResult struct {
	XPGained    int64  `json:"xpGained"`
	CoinsGained int64  `json:"coinsGained"`
	GemsGained  int64  `json:"gemsGained"`
	BadgeEarned string `json:"badgeEarned,omitempty"`

	NewXP     int64 `json:"newXP"`
	NewCoins  int64 `json:"newCoins"`
	NewGems   int64 `json:"newGems"`
	NewLevel  int   `json:"newLevel"`
	NewTier   int   `json:"newTier"`
	LeveledUp bool  `json:"leveledUp"`
}

// sanctionAbort carries the escalator's verdict out of the rolled-back
// transaction so the audit trail can be written durably afterwards.
type sanctionAbort struct {
	assessment *AnomalyAssessment
	decision   SanctionDecision
}

func (e *sanctionAbort) Error() string { return "sanction abort" }

// EnsureEconomyState loads or lazily creates the per-user state (idempotent).
func (o *RewardOrchestrator) EnsureEconomyState(tx *gorm.DB, externalUserID string) (*models.UserEconomyState, error) {
	var state models.UserEconomyState
	err := tx.Where("external_user_id = ?", externalUserID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := o.Clock.Now().UTC()
		state = models.UserEconomyState{
			ID:                uuid.NewString(),
			ExternalUserID:    externalUserID,
			Level:             1,
			Tier:              1,
			DailyActionXP:     map[string]int64{},
			LastDailyCapReset: now,
			AccountStatus:     models.AccountStatusActive,
		}
		if err := tx.Create(&state).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrConflict // concurrent first touch, retry wins the row
			}
			return nil, err
		}
		return &state, nil
	}
	if err != nil {
		return nil, err
	}
	if state.DailyActionXP == nil {
		state.DailyActionXP = map[string]int64{}
	}
	return &state, nil
}

// AwardReward converts one user action into economy mutations, exactly once
// per idempotency key.
func (o *RewardOrchestrator) AwardReward(externalUserID, action string, meta AwardMetadata, idempotencyKey *string) (*AwardResult, error) {
	if externalUserID == "" {
		return nil, &ValidationError{Field: "userId", Reason: "missing"}
	}
	if _, ok := o.Config.ActionRewards[action]; !ok {
		return nil, &ValidationError{Field: "action", Reason: "unknown action " + action}
	}

	// Advisory pre-checks, outside the transaction for latency. The
	// idempotency race is closed again inside by the unique ledger index.
	if original, err := o.Idempotency.Lookup(externalUserID, idempotencyKey); err != nil {
		return nil, err
	} else if original != nil {
		return duplicateReplay(original), nil
	}
	if err := o.Velocity.Check(externalUserID, action); err != nil {
		return nil, err
	}

	var result *AwardResult
	var abort *sanctionAbort

	err := o.withConflictRetry(func() error {
		abort = nil
		return o.DB.Transaction(func(tx *gorm.DB) error {
			res, err := o.attemptAward(tx, externalUserID, action, meta, idempotencyKey)
			if err != nil {
				var sa *sanctionAbort
				if errors.As(err, &sa) {
					abort = sa
				}
				return err
			}
			result = res
			return nil
		})
	})

	if abort != nil {
		// Hard abort path: the reward rolled back, but the audit trail is
		// must-succeed.
		if persistErr := o.withConflictRetry(func() error { return o.persistSanction(externalUserID, abort) }); persistErr != nil {
			log.Printf("❌ [SANCTION] Failed to persist sanction audit for %s: %v", externalUserID, persistErr)
		}
		return nil, &FraudSanctionError{NewStatus: abort.decision.NewStatus, Severity: abort.assessment.Severity}
	}
	if err != nil {
		// A concurrent duplicate lost the commit race: answer with the
		// surviving entry instead of an error.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if original, lookupErr := o.Idempotency.Lookup(externalUserID, idempotencyKey); lookupErr == nil && original != nil {
				return duplicateReplay(original), nil
			}
		}
		return nil, err
	}
	return result, nil
}

func (o *RewardOrchestrator) attemptAward(tx *gorm.DB, externalUserID, action string, meta AwardMetadata, idempotencyKey *string) (*AwardResult, error) {
	now := o.Clock.Now()

	state, err := o.EnsureEconomyState(tx, externalUserID)
	if err != nil {
		return nil, err
	}
	loadedVersion := state.Version

	ResetDailyCountersIfNeeded(state, now)
	if err := ResetMissionsIfDue(tx, o.Config, state, now); err != nil {
		return nil, err
	}

	outcome := CalculateReward(o.Config, state, action, meta)
	if outcome.Blocked {
		return nil, &BlockedError{Reason: outcome.BlockReason}
	}

	oldXP := state.XP
	state.XP += outcome.XP
	state.Coins += outcome.Coins
	state.Gems += outcome.Gems
	state.DailyXPEarned += outcome.XP
	state.DailyCoinsEarned += outcome.Coins
	if _, capped := o.Config.DailyActionXPCaps[action]; capped {
		state.DailyActionXP[action] += outcome.XP
	}

	report := AdvanceProgression(oldXP, state.XP)
	state.Level = report.NewLevel
	state.Tier = report.NewTier

	var newBadges []string
	if report.TierChanged {
		if code := o.Badges.TierBadgeCode(report.NewTier); code != "" {
			issued, err := IssueBadge(tx, externalUserID, code, fmt.Sprintf(`{"tier": %d}`, report.NewTier))
			if err != nil {
				return nil, err
			}
			if issued {
				newBadges = append(newBadges, code)
			}
		}
	}

	// Clipping never stalls missions: progress advances even at zero yield.
	completed, err := IncrementMissions(tx, externalUserID, action, 1, now)
	if err != nil {
		return nil, err
	}

	if err := o.upsertDailyStat(tx, externalUserID, action, outcome, now); err != nil {
		return nil, err
	}

	reviewStatus := models.ReviewStatusApproved
	isFraudulent := false

	// Cohort check on post-award totals. A stalled or failing sample read
	// skips detection and still applies the reward.
	assessment, anomalyErr := o.Anomaly.Evaluate(externalUserID, utcDateString(now), state.DailyCoinsEarned, state.DailyXPEarned)
	if anomalyErr != nil {
		log.Printf("⚠️ [ANOMALY] Skipping cohort check for %s: %v", externalUserID, anomalyErr)
	} else if assessment.IsFraudulent {
		state.FraudFlags++
		decision := DecideSanction(o.Config, state.AccountStatus, assessment.Severity, state.FraudFlags)
		if decision.Abort {
			return nil, &sanctionAbort{assessment: assessment, decision: decision}
		}
		reviewStatus = models.ReviewStatusFlagged
		isFraudulent = true
		if err := writeFraudCheck(tx, externalUserID, assessment, false); err != nil {
			return nil, err
		}
		log.Printf("🚩 [ANOMALY] Flagged %s (%s): %s", externalUserID, assessment.Severity, assessment.FlagReason)
	}

	if err := o.writeState(tx, state, loadedVersion); err != nil {
		return nil, err
	}

	entry := models.RewardTransaction{
		ID:                uuid.NewString(),
		ExternalUserID:    externalUserID,
		Action:            action,
		XPChange:          outcome.XP,
		CoinsChange:       outcome.Coins,
		GemsChange:        outcome.Gems,
		IdempotencyKey:    normalizeKey(idempotencyKey),
		DeviceFingerprint: meta.DeviceFingerprint,
		IPAddress:         meta.IPAddress,
		Metadata:          meta.Extra,
		ReviewStatus:      reviewStatus,
		IsFraudulent:      isFraudulent,
		CreatedAt:         now.UTC(),
	}
	if err := Append(tx, &entry); err != nil {
		return nil, err
	}

	log.Printf("🎮 Reward applied: %s %s → +%dxp +%dc +%dg (Lvl=%d, Tier=%s)",
		externalUserID, action, outcome.XP, outcome.Coins, outcome.Gems,
		report.NewLevel, TierName(report.NewTier))

	return &AwardResult{
		Success:           true,
		XPGained:          outcome.XP,
		CoinsGained:       outcome.Coins,
		GemsGained:        outcome.Gems,
		NewXP:             state.XP,
		NewCoins:          state.Coins,
		NewGems:           state.Gems,
		NewLevel:          report.NewLevel,
		NewTier:           report.NewTier,
		LeveledUp:         report.LeveledUp,
		TierChanged:       report.TierChanged,
		NewBadges:         newBadges,
		MissionsCompleted: completed,
	}, nil
}

// ClaimMission grants a completed mission's reward exactly once, in its own
// transaction. Mission payouts bypass daily earning caps — caps govern
// action earning, not claims.
func (o *RewardOrchestrator) ClaimMission(externalUserID, missionID string, missionType models.MissionType) (*ClaimResult, error) {
	if externalUserID == "" {
		return nil, &ValidationError{Field: "userId", Reason: "missing"}
	}

	var result *ClaimResult
	err := o.withConflictRetry(func() error {
		return o.DB.Transaction(func(tx *gorm.DB) error {
			res, err := o.attemptClaim(tx, externalUserID, missionID, missionType)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (o *RewardOrchestrator) attemptClaim(tx *gorm.DB, externalUserID, missionID string, missionType models.MissionType) (*ClaimResult, error) {
	now := o.Clock.Now()

	state, err := o.EnsureEconomyState(tx, externalUserID)
	if err != nil {
		return nil, err
	}
	if state.AccountStatus == models.AccountStatusSuspended || state.AccountStatus == models.AccountStatusBanned {
		return nil, &BlockedError{Reason: "account is " + string(state.AccountStatus)}
	}
	loadedVersion := state.Version

	var mission models.Mission
	err = tx.Where("id = ? AND external_user_id = ? AND type = ?", missionID, externalUserID, missionType).
		First(&mission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMissionNotFound
	}
	if err != nil {
		return nil, err
	}
	if !mission.IsCompleted {
		return nil, ErrMissionNotCompleted
	}
	if mission.Claimed {
		return nil, ErrMissionAlreadyClaimed
	}
	if err := markMissionClaimed(tx, &mission, now); err != nil {
		return nil, err
	}

	reward := mission.Reward
	oldXP := state.XP
	state.XP += reward.XP
	state.Coins += reward.Coins
	state.Gems += reward.Gems

	report := AdvanceProgression(oldXP, state.XP)
	state.Level = report.NewLevel
	state.Tier = report.NewTier

	badgeEarned := ""
	if reward.BadgeCode != "" {
		issued, err := IssueBadge(tx, externalUserID, reward.BadgeCode, fmt.Sprintf(`{"mission": %q}`, mission.TemplateID))
		if err != nil {
			return nil, err
		}
		if issued {
			badgeEarned = reward.BadgeCode
		}
	}
	if report.TierChanged {
		if code := o.Badges.TierBadgeCode(report.NewTier); code != "" {
			if _, err := IssueBadge(tx, externalUserID, code, fmt.Sprintf(`{"tier": %d}`, report.NewTier)); err != nil {
				return nil, err
			}
		}
	}

	if err := o.writeState(tx, state, loadedVersion); err != nil {
		return nil, err
	}

	entry := models.RewardTransaction{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		Action:         "claim_mission",
		XPChange:       reward.XP,
		CoinsChange:    reward.Coins,
		GemsChange:     reward.Gems,
		Metadata: map[string]interface{}{
			"mission_id":  mission.ID,
			"template_id": mission.TemplateID,
			"type":        string(mission.Type),
		},
		ReviewStatus: models.ReviewStatusApproved,
		CreatedAt:    now.UTC(),
	}
	if err := Append(tx, &entry); err != nil {
		return nil, err
	}

	log.Printf("🏁 Mission claimed: %s %s → +%dxp +%dc +%dg",
		externalUserID, mission.TemplateID, reward.XP, reward.Coins, reward.Gems)

	return &ClaimResult{
		XPGained:    reward.XP,
		CoinsGained: reward.Coins,
		GemsGained:  reward.Gems,
		BadgeEarned: badgeEarned,
		NewXP:       state.XP,
		NewCoins:    state.Coins,
		NewGems:     state.Gems,
		NewLevel:    report.NewLevel,
		NewTier:     report.NewTier,
		LeveledUp:   report.LeveledUp,
	}, nil
}

// writeState commits the mutated state iff nobody else committed since load.
func (o *RewardOrchestrator) writeState(tx *gorm.DB, state *models.UserEconomyState, loadedVersion int64) error {
	state.Version = loadedVersion + 1
	result := tx.Model(&models.UserEconomyState{}).
		Where("id = ? AND version = ?", state.ID, loadedVersion).
		Select("xp", "coins", "gems", "level", "tier",
			"daily_coins_earned", "daily_xp_earned", "daily_action_xp", "last_daily_cap_reset",
			"last_daily_mission_reset", "last_weekly_mission_reset",
			"fraud_flags", "account_status", "version").
		Updates(state)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (o *RewardOrchestrator) upsertDailyStat(tx *gorm.DB, externalUserID, action string, outcome RewardOutcome, now time.Time) error {
	date := utcDateString(now)
	var stat models.DailyStat
	err := tx.Where("external_user_id = ? AND stat_date = ?", externalUserID, date).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stat = models.DailyStat{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			StatDate:       date,
			CoinsEarned:    outcome.Coins,
			XPEarned:       outcome.XP,
			ActionCounts:   map[string]int64{action: 1},
		}
		if err := tx.Create(&stat).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrConflict
			}
			return err
		}
		return nil
	}
	if err != nil {
		return err
	}
	stat.CoinsEarned += outcome.Coins
	stat.XPEarned += outcome.XP
	if stat.ActionCounts == nil {
		stat.ActionCounts = map[string]int64{}
	}
	stat.ActionCounts[action]++
	return tx.Save(&stat).Error
}

// persistSanction durably records the fraud check, flag count and status
// transition after the reward transaction rolled back.
func (o *RewardOrchestrator) persistSanction(externalUserID string, abort *sanctionAbort) error {
	return o.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.UserEconomyState{}).
			Where("external_user_id = ?", externalUserID).
			Updates(map[string]interface{}{
				"fraud_flags":    gorm.Expr("fraud_flags + 1"),
				"account_status": abort.decision.NewStatus,
				"version":        gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// The state row was created inside the rolled-back transaction.
			// Recreate it so the status transition survives.
			state := models.UserEconomyState{
				ID:                uuid.NewString(),
				ExternalUserID:    externalUserID,
				Level:             1,
				Tier:              1,
				DailyActionXP:     map[string]int64{},
				LastDailyCapReset: o.Clock.Now().UTC(),
				FraudFlags:        1,
				AccountStatus:     abort.decision.NewStatus,
				Version:           1,
			}
			if err := tx.Create(&state).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrConflict
				}
				return err
			}
		}
		if err := writeFraudCheck(tx, externalUserID, abort.assessment, true); err != nil {
			return err
		}
		log.Printf("⛔ [SANCTION] %s → %s (severity=%s)", externalUserID, abort.decision.NewStatus, abort.assessment.Severity)
		return nil
	})
}

func writeFraudCheck(tx *gorm.DB, externalUserID string, assessment *AnomalyAssessment, manualReview bool) error {
	check := models.FraudCheck{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		CheckType:      "cohort_median",
		FlagReason:     assessment.FlagReason,
		Severity:       assessment.Severity,
		AutoResolved:   !manualReview,
		ManualReview:   manualReview,
		Metadata:       assessment.Metadata,
	}
	return tx.Create(&check).Error
}

// withConflictRetry retries optimistic-concurrency collisions with bounded
// backoff before surfacing them as a transient error.
func (o *RewardOrchestrator) withConflictRetry(fn func() error) error {
	attempts := o.Config.TxMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if !errors.Is(err, ErrConflict) {
			return err
		}
		o.Clock.Sleep(o.Config.TxRetryDelay * time.Duration(i+1))
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

func duplicateReplay(original *models.RewardTransaction) *AwardResult {
	return &AwardResult{
		Success:     true,
		IsDuplicate: true,
		XPGained:    original.XPChange,
		CoinsGained: original.CoinsChange,
		GemsGained:  original.GemsChange,
	}
}

func normalizeKey(key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	return key
}
