package recordsetchange

import (
	"context"
	"fmt"

	"github.com/poyrazK/cloudDNS/internal/core/domain"
	"github.com/poyrazK/cloudDNS/internal/core/ports"
)

// Classify implements the Processing-Status Classifier (C1): it compares the
// change's desired post-state against live DNS state and yields
// ReadyToApply, AlreadyApplied, or Failure(reason).
func Classify(ctx context.Context, change *domain.RecordSetChange, connector ports.DnsConnector) domain.ProcessingStatus {
	live, dnsErr := connector.DnsResolve(ctx, change.RecordSet.Name, change.Zone.Name, change.RecordSet.Type)
	if dnsErr != nil {
		return domain.StatusFailure(dnsErr.Message)
	}

	switch change.ChangeType {
	case domain.ChangeCreate:
		return classifyCreate(change, live)
	case domain.ChangeUpdate:
		return classifyUpdate(change, live)
	case domain.ChangeDelete:
		return classifyDelete(live)
	default:
		return domain.StatusFailure(fmt.Sprintf("unknown change type %q", change.ChangeType))
	}
}

func classifyCreate(change *domain.RecordSetChange, live []domain.RecordSet) domain.ProcessingStatus {
	if len(live) == 0 {
		return domain.StatusReadyToApply()
	}
	if recordSetContains(live, change.RecordSet) {
		return domain.StatusAlreadyApplied()
	}
	return domain.StatusFailure("record already exists and differs")
}

func classifyUpdate(change *domain.RecordSetChange, live []domain.RecordSet) domain.ProcessingStatus {
	if len(live) == 0 {
		// Drift accepted when nothing is live: the backend has already lost
		// the record the change expected to find and update.
		return domain.StatusReadyToApply()
	}
	if recordSetContains(live, change.RecordSet) {
		return domain.StatusAlreadyApplied()
	}
	if change.Updates != nil && recordSetContains(live, *change.Updates) {
		return domain.StatusReadyToApply()
	}
	return domain.StatusFailure("out of sync with the DNS backend; sync this zone to resolve the conflict")
}

func classifyDelete(live []domain.RecordSet) domain.ProcessingStatus {
	if len(live) == 0 {
		return domain.StatusAlreadyApplied()
	}
	return domain.StatusReadyToApply()
}
