package services

import (
	"vibe-economy-system/models"
)

// SanctionDecision is the escalator's verdict for one flagged award.
type SanctionDecision struct {
	// FlagTransaction: commit the reward but mark its ledger entry flagged.
	FlagTransaction bool
	// Abort: discard the entire reward mutation. The FraudCheck record and the
	// account status change still persist.
	Abort     bool
	NewStatus models.AccountStatus
}

// DecideSanction applies the escalation table. fraudFlags is the accumulated
// count including the current check.
//
//	low/moderate                      → flag the transaction, account stays active
//	high/critical, flags < threshold  → flag the transaction
//	high, flags ≥ threshold           → abort + step the status ladder
//	critical, flags ≥ threshold       → abort + step at least to suspended
func DecideSanction(cfg *EconomyConfig, current models.AccountStatus, severity models.FraudSeverity, fraudFlags int) SanctionDecision {
	switch severity {
	case models.FraudSeverityHigh, models.FraudSeverityCritical:
	default:
		return SanctionDecision{FlagTransaction: true, NewStatus: current}
	}

	if fraudFlags < cfg.Sanction.EscalationThreshold {
		return SanctionDecision{FlagTransaction: true, NewStatus: current}
	}

	next := nextStatus(current)
	if severity == models.FraudSeverityCritical && next == models.AccountStatusUnderReview {
		next = models.AccountStatusSuspended
	}
	return SanctionDecision{Abort: true, NewStatus: next}
}

func nextStatus(current models.AccountStatus) models.AccountStatus {
	switch current {
	case models.AccountStatusActive:
		return models.AccountStatusUnderReview
	case models.AccountStatusUnderReview:
		return models.AccountStatusSuspended
	default:
		return models.AccountStatusBanned
	}
}
