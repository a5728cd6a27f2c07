package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
)

func TestVelocityCheckStoreFailure(t *testing.T) {
	limiter := NewVelocityLimiter(openBareDB(t), DefaultEconomyConfig(), clockwork.NewFakeClockAt(testEpoch))

	err := limiter.Check("user-1", "react_vibe")
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	// The underlying cause stays in the message for diagnosis.
	if err.Error() == ErrPersistence.Error() {
		t.Fatalf("store error discarded: %v", err)
	}
	if !strings.Contains(err.Error(), ErrPersistence.Error()) {
		t.Fatalf("wrapped error lost the sentinel text: %v", err)
	}
}

func TestVelocityCheckUnlimitedAction(t *testing.T) {
	// Actions without a configured limit never touch the store.
	limiter := NewVelocityLimiter(openBareDB(t), DefaultEconomyConfig(), clockwork.NewFakeClockAt(testEpoch))
	if err := limiter.Check("user-1", "claim_mission"); err != nil {
		t.Fatalf("unlimited action must pass: %v", err)
	}
}
