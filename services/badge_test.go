package services

import (
	"testing"

	"vibe-economy-system/models"
)

func TestBadgeCode(t *testing.T) {
	if got := BadgeCode("Tier Gold"); got != "tier-gold" {
		t.Fatalf("BadgeCode = %q", got)
	}
	if got := BadgeCode("Week One Streak"); got != "week-one-streak" {
		t.Fatalf("BadgeCode = %q", got)
	}
}

func TestEnsureCatalogIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	svc := NewBadgeService(db, DefaultEconomyConfig())

	if err := svc.EnsureCatalog(); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := svc.EnsureCatalog(); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var count int64
	db.Model(&models.BadgeType{}).Count(&count)
	if count != int64(len(svc.Config.Badges)) {
		t.Fatalf("catalog rows = %d, want %d", count, len(svc.Config.Badges))
	}
}

func TestIssueBadgeIdempotent(t *testing.T) {
	db := openTestDB(t)

	issued, err := IssueBadge(db, "user-1", "tier-silver", `{"tier": 2}`)
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}
	if !issued {
		t.Fatalf("first issue must report issued")
	}

	issued, err = IssueBadge(db, "user-1", "tier-silver", `{"tier": 2}`)
	if err != nil {
		t.Fatalf("repeat issue: %v", err)
	}
	if issued {
		t.Fatalf("repeat issue must be a no-op")
	}

	var count int64
	db.Model(&models.UserBadge{}).Where("external_user_id = ?", "user-1").Count(&count)
	if count != 1 {
		t.Fatalf("badge rows = %d, want 1", count)
	}
}

func TestTierBadgeCode(t *testing.T) {
	svc := NewBadgeService(nil, DefaultEconomyConfig())
	if got := svc.TierBadgeCode(3); got != "tier-gold" {
		t.Fatalf("tier 3 badge = %q", got)
	}
	if got := svc.TierBadgeCode(1); got != "" {
		t.Fatalf("tier 1 has no badge, got %q", got)
	}
}
