package recordsetchange

import (
	"context"
	"fmt"

	"github.com/poyrazK/cloudDNS/internal/core/domain"
	"github.com/poyrazK/cloudDNS/internal/core/ports"
)

// BatchUpdater is the Batch Fan-Out Updater (C6): it locates the batch(es)
// linked to a RecordSetChange and patches only the sub-changes it owns,
// preserving every other sub-change byte-for-byte.
type BatchUpdater struct {
	batches ports.BatchChangeRepository
}

func NewBatchUpdater(batches ports.BatchChangeRepository) *BatchUpdater {
	return &BatchUpdater{batches: batches}
}

// Update patches every SingleChange named by change.SingleBatchChangeIDs
// across whichever BatchChanges own them, using a read-modify-write per
// batch, and persists each whole batch. Batches the change does not touch
// are never loaded.
func (u *BatchUpdater) Update(ctx context.Context, change *domain.RecordSetChange) error {
	if len(change.SingleBatchChangeIDs) == 0 {
		return nil
	}

	owned := make(map[string]bool, len(change.SingleBatchChangeIDs))
	for _, id := range change.SingleBatchChangeIDs {
		owned[id] = true
	}

	batches, err := u.batches.FindBatchChangesForSingleChanges(ctx, change.SingleBatchChangeIDs)
	if err != nil {
		return fmt.Errorf("locating batch changes for record set change %s: %w", change.ID, err)
	}

	success := change.Status == domain.RSChangeComplete

	for _, batch := range batches {
		for i := range batch.Changes {
			sc := &batch.Changes[i]
			if !owned[sc.ID] {
				continue // not ours: leave byte-identical
			}
			sc.RecordChangeID = change.ID
			if success {
				sc.Status = domain.SingleChangeComplete
				sc.RecordSetID = change.RecordSet.ID
				sc.SystemMessage = ""
			} else {
				sc.Status = domain.SingleChangeFailed
				sc.SystemMessage = change.SystemMessage
			}
		}

		if _, err := u.batches.SaveBatchChange(ctx, batch); err != nil {
			return fmt.Errorf("saving batch change %s for record set change %s: %w", batch.ID, change.ID, err)
		}
	}

	return nil
}
