package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"vibe-economy-system/services"
	"vibe-economy-system/utils"

	"github.com/jonboulle/clockwork"
)

// archiveBatchSize bounds one export pass; leftovers picked up next cycle.
const archiveBatchSize = 5000

// LedgerArchiveWorker exports settled RewardTransactions to R2 as JSONL,
// one object per run. The ledger rows stay in the database (append-only);
// the export is an off-site copy of the audit trail.
type LedgerArchiveWorker struct {
	Ledger *services.LedgerService
	Clock  clockwork.Clock
}

func NewLedgerArchiveWorker(ledger *services.LedgerService, clock clockwork.Clock) *LedgerArchiveWorker {
	return &LedgerArchiveWorker{Ledger: ledger, Clock: clock}
}

// RunOnce exports entries older than the start of the current UTC day.
func (w *LedgerArchiveWorker) RunOnce(ctx context.Context) error {
	now := w.Clock.Now().UTC()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	entries, err := w.Ledger.UnarchivedBefore(cutoff, archiveBatchSize)
	if err != nil {
		return fmt.Errorf("failed to query unarchived entries: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("failed to encode ledger entry %s: %w", entry.ID, err)
		}
		ids = append(ids, entry.ID)
	}

	key := fmt.Sprintf("ledger/%s/%d.jsonl", cutoff.AddDate(0, 0, -1).Format("2006-01-02"), now.UnixNano())
	if err := utils.UploadBytesToR2(ctx, key, buf.Bytes(), "application/x-ndjson"); err != nil {
		return err
	}

	if err := w.Ledger.MarkArchived(ids); err != nil {
		return fmt.Errorf("uploaded %s but failed to mark entries archived: %w", key, err)
	}

	log.Printf("✅ Archived %d ledger entries → %s", len(entries), key)
	return nil
}

// PollLedgerArchive runs the export on an interval until ctx is cancelled.
func PollLedgerArchive(ctx context.Context, worker *LedgerArchiveWorker, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Ledger archive worker stopping...")
			return
		case <-ticker.C:
			if err := worker.RunOnce(ctx); err != nil {
				log.Printf("[LedgerArchive] run failed: %v", err)
			}
		}
	}
}
