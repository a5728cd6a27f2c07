package services

import (
	"testing"
	"time"

	"vibe-economy-system/models"

	"github.com/google/uuid"
)

func seedLedgerEntry(t *testing.T, svc *LedgerService, userID string, createdAt time.Time, status models.ReviewStatus) string {
	t.Helper()
	entry := models.RewardTransaction{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		Action:         "post_vibe",
		XPChange:       50,
		CoinsChange:    10,
		ReviewStatus:   status,
		CreatedAt:      createdAt,
	}
	if err := Append(svc.DB, &entry); err != nil {
		t.Fatalf("seed ledger entry: %v", err)
	}
	return entry.ID
}

func TestLedgerUnarchivedBefore(t *testing.T) {
	svc := NewLedgerService(openTestDB(t))
	old := testEpoch.Add(-48 * time.Hour)
	recent := testEpoch

	oldID := seedLedgerEntry(t, svc, "user-1", old, models.ReviewStatusApproved)
	seedLedgerEntry(t, svc, "user-1", recent, models.ReviewStatusApproved)

	cutoff := testEpoch.Add(-24 * time.Hour)
	entries, err := svc.UnarchivedBefore(cutoff, 100)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != oldID {
		t.Fatalf("expected only the old entry, got %d", len(entries))
	}

	if err := svc.MarkArchived([]string{oldID}); err != nil {
		t.Fatalf("mark archived: %v", err)
	}
	entries, err = svc.UnarchivedBefore(cutoff, 100)
	if err != nil {
		t.Fatalf("requery: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("archived entry reappeared")
	}
}

func TestLedgerFlagged(t *testing.T) {
	svc := NewLedgerService(openTestDB(t))
	seedLedgerEntry(t, svc, "user-1", testEpoch, models.ReviewStatusApproved)
	flaggedID := seedLedgerEntry(t, svc, "user-2", testEpoch, models.ReviewStatusFlagged)

	entries, err := svc.Flagged(0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != flaggedID {
		t.Fatalf("expected one flagged entry")
	}
}

func TestLedgerRecentByUserIsBounded(t *testing.T) {
	svc := NewLedgerService(openTestDB(t))
	for i := 0; i < 30; i++ {
		seedLedgerEntry(t, svc, "user-1", testEpoch.Add(time.Duration(i)*time.Minute), models.ReviewStatusApproved)
	}

	entries, err := svc.RecentByUser("user-1", 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 10 {
		t.Fatalf("limit not applied: %d", len(entries))
	}
	// Newest first.
	if entries[0].CreatedAt.Before(entries[9].CreatedAt) {
		t.Fatalf("entries not ordered newest first")
	}
}
