package services

import (
	"errors"
	"fmt"
	"time"

	"vibe-economy-system/models"
)

var (
	// ErrConflict is an internal optimistic-concurrency collision. Retried up to
	// TxMaxAttempts before being surfaced as a transient failure.
	ErrConflict = errors.New("economy state version conflict")

	// ErrPersistence marks store unavailability — retryable by the caller.
	ErrPersistence = errors.New("persistence failure")

	ErrMissionNotFound       = errors.New("mission not found")
	ErrMissionNotCompleted   = errors.New("mission is not completed yet")
	ErrMissionAlreadyClaimed = errors.New("mission reward already claimed")
)

// RateLimitError rejects a request before any state is touched. Produces no
// ledger entry.
type RateLimitError struct {
	Action string
	Limit  int
	Window time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("slow down — %s is limited to %d per %s", e.Action, e.Limit, e.Window)
}

// ValidationError covers unknown actions and malformed requests, pre-transaction.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// BlockedError is the reward calculator declining — terminal, no mutation.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return "action blocked: " + e.Reason
}

// FraudSanctionError aborts the economic mutation after the sanction escalator
// decides. The account status change and FraudCheck record still persist.
// The message is intentionally generic — detection internals stay hidden.
type FraudSanctionError struct {
	NewStatus models.AccountStatus
	Severity  models.FraudSeverity
}

func (e *FraudSanctionError) Error() string {
	return "this action could not be completed"
}
