package services

import (
	"fmt"
	"sort"

	"vibe-economy-system/models"

	"gorm.io/gorm"
)

// AnomalyAssessment is the cohort detector's verdict on one user's day.
type AnomalyAssessment struct {
	IsFraudulent bool
	Severity     models.FraudSeverity
	FlagReason   string
	Metadata     map[string]interface{}
}

// AnomalyDetector flags suspicious earning by comparing a user's post-award
// daily totals against the median of a bounded same-day peer sample. The
// sample read is unsynchronized — this is a heuristic, not a correctness path.
type AnomalyDetector struct {
	DB     *gorm.DB
	Config *EconomyConfig
}

func NewAnomalyDetector(db *gorm.DB, cfg *EconomyConfig) *AnomalyDetector {
	return &AnomalyDetector{DB: db, Config: cfg}
}

// Evaluate compares coinsTotal/xpTotal against the cohort median for date.
// A store failure here is returned so the caller can skip detection and still
// apply the reward — availability over fraud accuracy.
func (d *AnomalyDetector) Evaluate(externalUserID, date string, coinsTotal, xpTotal int64) (*AnomalyAssessment, error) {
	var peers []models.DailyStat
	if err := d.DB.
		Select("coins_earned", "xp_earned").
		Where("stat_date = ? AND external_user_id <> ?", date, externalUserID).
		Limit(d.Config.Anomaly.SampleSize).
		Find(&peers).Error; err != nil {
		return nil, err
	}
	if len(peers) == 0 {
		return &AnomalyAssessment{}, nil
	}

	coins := make([]int64, len(peers))
	xp := make([]int64, len(peers))
	for i, p := range peers {
		coins[i] = p.CoinsEarned
		xp[i] = p.XPEarned
	}
	coinMedian := median(coins)
	xpMedian := median(xp)

	cfg := d.Config.Anomaly
	coinRatio := thresholdRatio(coinsTotal, coinMedian, cfg.Multiplier, cfg.MinCoinsFloor)
	xpRatio := thresholdRatio(xpTotal, xpMedian, cfg.Multiplier, cfg.MinXPFloor)

	ratio := coinRatio
	dimension := "coins"
	if xpRatio > ratio {
		ratio = xpRatio
		dimension = "xp"
	}
	if ratio < 1 {
		return &AnomalyAssessment{}, nil
	}

	severity := models.FraudSeverityLow
	switch {
	case ratio >= cfg.CriticalRatio:
		severity = models.FraudSeverityCritical
	case ratio >= cfg.HighRatio:
		severity = models.FraudSeverityHigh
	case ratio >= cfg.ModerateRatio:
		severity = models.FraudSeverityModerate
	}

	return &AnomalyAssessment{
		IsFraudulent: true,
		Severity:     severity,
		FlagReason: fmt.Sprintf("daily %s earning exceeds %.1fx cohort median (sample of %d)",
			dimension, cfg.Multiplier, len(peers)),
		Metadata: map[string]interface{}{
			"coins_total": coinsTotal,
			"xp_total":    xpTotal,
			"coin_median": coinMedian,
			"xp_median":   xpMedian,
			"ratio":       ratio,
			"sample_size": len(peers),
			"flagged_on":  dimension,
		},
	}, nil
}

// thresholdRatio returns how far total sits above the flag threshold
// (multiplier × median, floored). Values < 1 mean "not anomalous".
func thresholdRatio(total, med int64, multiplier float64, floor int64) float64 {
	if total < floor {
		return 0
	}
	threshold := float64(med) * multiplier
	if threshold < float64(floor) {
		threshold = float64(floor)
	}
	if threshold <= 0 {
		return 0
	}
	return float64(total) / threshold
}

// median sorts a copy; middle value, or mean of the two middles for even counts.
func median(values []int64) int64 {
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
