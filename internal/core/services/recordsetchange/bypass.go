package recordsetchange

import (
	"context"
	"strings"

	"github.com/poyrazK/cloudDNS/internal/core/domain"
	"github.com/poyrazK/cloudDNS/internal/core/ports"
)

// ShouldBypass implements the Wildcard/NS Bypass Rule (C2): validation and
// verification are skipped when the target name matches a wildcard label
// for this zone and type, or when the change is against an NS record set.
//
// Authoritative resolution against wildcard entries returns synthesised
// answers that cannot distinguish pre- and post-state; NS changes at a zone
// apex/delegation boundary likewise confuse verification.
func ShouldBypass(ctx context.Context, change *domain.RecordSetChange, repo ports.RecordSetRepository) (bool, error) {
	if change.RecordSet.Type == domain.TypeNS {
		return true, nil
	}

	wildcardName := wildcardFormOf(change.RecordSet.Name)
	existing, err := repo.GetRecordSets(ctx, change.Zone.ID, wildcardName, change.RecordSet.Type)
	if err != nil {
		return false, err
	}
	return len(existing) > 0, nil
}

// wildcardFormOf rewrites a record name to its wildcard form by replacing
// the leftmost label with "*". A name that is already a wildcard is
// returned unchanged.
func wildcardFormOf(name string) string {
	trimmed := strings.TrimSuffix(name, ".")
	labels := strings.SplitN(trimmed, ".", 2)
	if labels[0] == "*" {
		return name
	}
	if len(labels) == 1 {
		return "*."
	}
	return "*." + labels[1] + "."
}
