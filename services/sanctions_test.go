package services

import (
	"testing"

	"vibe-economy-system/models"
)

func TestDecideSanction(t *testing.T) {
	cfg := DefaultEconomyConfig() // escalation threshold 3

	tests := []struct {
		name       string
		current    models.AccountStatus
		severity   models.FraudSeverity
		fraudFlags int
		wantFlag   bool
		wantAbort  bool
		wantStatus models.AccountStatus
	}{
		{
			name:       "low severity only flags",
			current:    models.AccountStatusActive,
			severity:   models.FraudSeverityLow,
			fraudFlags: 10,
			wantFlag:   true,
			wantStatus: models.AccountStatusActive,
		},
		{
			name:       "moderate severity only flags",
			current:    models.AccountStatusActive,
			severity:   models.FraudSeverityModerate,
			fraudFlags: 10,
			wantFlag:   true,
			wantStatus: models.AccountStatusActive,
		},
		{
			name:       "high severity below threshold flags",
			current:    models.AccountStatusActive,
			severity:   models.FraudSeverityHigh,
			fraudFlags: 2,
			wantFlag:   true,
			wantStatus: models.AccountStatusActive,
		},
		{
			name:       "high severity at threshold escalates to review",
			current:    models.AccountStatusActive,
			severity:   models.FraudSeverityHigh,
			fraudFlags: 3,
			wantAbort:  true,
			wantStatus: models.AccountStatusUnderReview,
		},
		{
			name:       "critical skips straight to suspension",
			current:    models.AccountStatusActive,
			severity:   models.FraudSeverityCritical,
			fraudFlags: 3,
			wantAbort:  true,
			wantStatus: models.AccountStatusSuspended,
		},
		{
			name:       "repeat offender under review gets suspended",
			current:    models.AccountStatusUnderReview,
			severity:   models.FraudSeverityHigh,
			fraudFlags: 4,
			wantAbort:  true,
			wantStatus: models.AccountStatusSuspended,
		},
		{
			name:       "suspended offender gets banned",
			current:    models.AccountStatusSuspended,
			severity:   models.FraudSeverityCritical,
			fraudFlags: 9,
			wantAbort:  true,
			wantStatus: models.AccountStatusBanned,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := DecideSanction(cfg, tt.current, tt.severity, tt.fraudFlags)
			if decision.FlagTransaction != tt.wantFlag {
				t.Fatalf("FlagTransaction = %v, want %v", decision.FlagTransaction, tt.wantFlag)
			}
			if decision.Abort != tt.wantAbort {
				t.Fatalf("Abort = %v, want %v", decision.Abort, tt.wantAbort)
			}
			if decision.NewStatus != tt.wantStatus {
				t.Fatalf("NewStatus = %s, want %s", decision.NewStatus, tt.wantStatus)
			}
		})
	}
}
