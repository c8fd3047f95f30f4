package recordsetchange

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/poyrazK/cloudDNS/internal/core/domain"
	"github.com/poyrazK/cloudDNS/internal/core/ports"
)

// Finalizer is the Change-Set Finalizer (C5): it converts a handler outcome
// into a persisted ChangeSet.
type Finalizer struct {
	recordSets ports.RecordSetRepository
	changes    ports.RecordChangeRepository
}

func NewFinalizer(recordSets ports.RecordSetRepository, changes ports.RecordChangeRepository) *Finalizer {
	return &Finalizer{recordSets: recordSets, changes: changes}
}

// Finalize mutates change in place to its terminal status, wraps it in a
// singleton ChangeSet, and writes it in the mandated order: the record-set
// projection first, then the audit log. Both writes happen regardless of
// success or failure; a write error here is an InfrastructureError (spec
// §7) and is returned as a plain error rather than folded into the change.
func (f *Finalizer) Finalize(ctx context.Context, change *domain.RecordSetChange, success bool, systemMessage string) (*domain.ChangeSet, error) {
	if success {
		change.RecordSet.Status = domain.RecordSetActive
		change.Status = domain.RSChangeComplete
		change.SystemMessage = ""
	} else {
		change.RecordSet.Status = domain.RecordSetInactive
		change.Status = domain.RSChangeFailed
		change.SystemMessage = systemMessage
	}

	cs := &domain.ChangeSet{
		ID:               uuid.New().String(),
		ZoneID:           change.Zone.ID,
		Status:           domain.ChangeSetComplete,
		Changes:          []domain.RecordSetChange{*change},
		CreatedTimestamp: time.Now(),
	}

	if _, err := f.recordSets.Apply(ctx, cs); err != nil {
		return nil, fmt.Errorf("applying record set projection for change %s: %w", change.ID, err)
	}
	if _, err := f.changes.Save(ctx, cs); err != nil {
		return nil, fmt.Errorf("saving record change audit entry for change %s: %w", change.ID, err)
	}

	return cs, nil
}
