package ports

import (
	"context"

	"github.com/poyrazK/cloudDNS/internal/core/domain"
)

// DnsErrorCode enumerates the RFC 2136 response codes the connector surfaces
// as failures, plus a catch-all for transport-level problems.
type DnsErrorCode string

const (
	DnsRefused      DnsErrorCode = "Refused"
	DnsNotAuthorized DnsErrorCode = "NotAuthorized"
	DnsServerFailure DnsErrorCode = "ServerFailure"
	DnsFormatError  DnsErrorCode = "FormatError"
	DnsNotZone      DnsErrorCode = "NotZone"
	DnsTransportError DnsErrorCode = "TransportError"
)

// DnsError is the failure variant returned by DnsConnector operations.
type DnsError struct {
	Code    DnsErrorCode
	Message string
}

func (e *DnsError) Error() string { return string(e.Code) + ": " + e.Message }

// DnsResponse is the success variant of a dnsUpdate call.
type DnsResponse struct {
	Code string // e.g. "NoError"
}

// DnsConnector is the DNS wire-protocol capability the handler drives. It is
// an external collaborator (spec §6): this core never constructs DNS
// packets itself, it only calls these two operations.
type DnsConnector interface {
	// DnsResolve performs an authoritative lookup of (name, zoneName, type)
	// against the zone's primary. A nil error with an empty slice means the
	// name/type genuinely has no records today (not a lookup failure).
	DnsResolve(ctx context.Context, name, zoneName string, rtype domain.RecordType) ([]domain.RecordSet, *DnsError)

	// DnsUpdate submits an RFC-2136-style update for the change and reports
	// the server's response code.
	DnsUpdate(ctx context.Context, change *domain.RecordSetChange) (*DnsResponse, *DnsError)
}

// RecordSetRepository persists the authoritative record-set projection and
// backs the Wildcard/NS Bypass Rule's repository lookup (C2).
type RecordSetRepository interface {
	Apply(ctx context.Context, cs *domain.ChangeSet) (*domain.ChangeSet, error)
	GetRecordSets(ctx context.Context, zoneID, name string, rtype domain.RecordType) ([]domain.RecordSet, error)
}

// RecordChangeRepository is the audit log of record-set mutations.
type RecordChangeRepository interface {
	Save(ctx context.Context, cs *domain.ChangeSet) (*domain.ChangeSet, error)
}

// BatchChangeRepository persists user-submitted batches of SingleChanges.
type BatchChangeRepository interface {
	GetBatchChange(ctx context.Context, id string) (*domain.BatchChange, error) // nil, nil if not found

	// FindBatchChangesForSingleChanges locates the batch(es) that own any of
	// the given SingleChange ids, grouped one BatchChange per owning batch.
	// Used by the Batch Fan-Out Updater (C6) to resolve "the linked batch"
	// for a RecordSetChange's singleBatchChangeIds.
	FindBatchChangesForSingleChanges(ctx context.Context, singleChangeIDs []string) ([]*domain.BatchChange, error)

	SaveBatchChange(ctx context.Context, batch *domain.BatchChange) (*domain.BatchChange, error)
}
