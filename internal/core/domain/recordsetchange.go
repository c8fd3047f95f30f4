package domain

import "time"

// ChangeType is the kind of mutation a RecordSetChange carries out.
type ChangeType string

const (
	ChangeCreate ChangeType = "Create"
	ChangeUpdate ChangeType = "Update"
	ChangeDelete ChangeType = "Delete"
)

// RecordSetStatus is the lifecycle state of a record set as tracked by the platform.
type RecordSetStatus string

const (
	RecordSetPending  RecordSetStatus = "Pending"
	RecordSetActive   RecordSetStatus = "Active"
	RecordSetInactive RecordSetStatus = "Inactive"
)

// ChangeStatus is the lifecycle state of a RecordSetChange.
type ChangeStatus string

const (
	RSChangePending  ChangeStatus = "Pending"
	RSChangeComplete ChangeStatus = "Complete"
	RSChangeFailed   ChangeStatus = "Failed"
)

// RData is a single resource-record-data value belonging to a RecordSet,
// held as one raw string whatever the record's Type.
type RData struct {
	Value string `json:"value"` // the raw RDATA string (IP, domain name, quoted TXT, "pri weight port target", ...)
}

// RecordSet is the desired or observed state of a (name, type) pair in a zone.
type RecordSet struct {
	ID     string          `json:"id,omitempty"`
	ZoneID string          `json:"zone_id"`
	Name   string          `json:"name"`
	Type   RecordType      `json:"type"`
	TTL    int             `json:"ttl"`
	Class  string          `json:"class,omitempty"` // RFC 2136 class, defaults to "IN"
	Status RecordSetStatus `json:"status,omitempty"`
	Records []RData        `json:"records"`
}

// RecordSetChangeZone is the minimal zone reference a RecordSetChange needs.
type RecordSetChangeZone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RecordSetChange is one pending DNS record-set mutation intention.
//
// Updates carries the record set as currently believed to exist (the
// "from" image) and is only populated for ChangeUpdate.
type RecordSetChange struct {
	ID         string              `json:"id"`
	ChangeType ChangeType          `json:"change_type"`
	Zone       RecordSetChangeZone `json:"zone"`
	RecordSet  RecordSet           `json:"record_set"`
	Updates    *RecordSet          `json:"updates,omitempty"`

	SingleBatchChangeIDs []string `json:"single_batch_change_ids,omitempty"`

	Status        ChangeStatus `json:"status"`
	SystemMessage string       `json:"system_message,omitempty"`

	CreatedTimestamp time.Time `json:"created_timestamp"`
}

// ChangeSetStatus is the lifecycle state of a persisted ChangeSet.
type ChangeSetStatus string

const (
	ChangeSetPending  ChangeSetStatus = "Pending"
	ChangeSetApplied  ChangeSetStatus = "Applied"
	ChangeSetComplete ChangeSetStatus = "Complete"
)

// ChangeSet is an atomic journal entry wrapping one or more RecordSetChanges.
//
// The handler in this package always produces a singleton-change ChangeSet
// whose Status is always Complete: success and failure are both "complete"
// at the change-set level, and the per-change Status distinguishes them.
type ChangeSet struct {
	ID               string             `json:"id"`
	ZoneID           string             `json:"zone_id"`
	Status           ChangeSetStatus    `json:"status"`
	Changes          []RecordSetChange  `json:"changes"`
	CreatedTimestamp time.Time          `json:"created_timestamp"`
}

// SingleChangeStatus is the lifecycle state of one row in a BatchChange.
type SingleChangeStatus string

const (
	SingleChangePending  SingleChangeStatus = "Pending"
	SingleChangeComplete SingleChangeStatus = "Complete"
	SingleChangeFailed   SingleChangeStatus = "Failed"
)

// SingleChange is one row of a user's batch submission, corresponding to one
// desired RDATA add/delete. Many of these may be serviced by one
// RecordSetChange, via RecordSetChange.SingleBatchChangeIDs.
type SingleChange struct {
	ID            string             `json:"id"`
	ZoneID        string             `json:"zone_id"`
	ZoneName      string             `json:"zone_name"`
	RecordName    string             `json:"record_name"`
	FQDN          string             `json:"fqdn"`
	Type          RecordType         `json:"type"`
	TTL           int                `json:"ttl"`
	RData         string             `json:"rdata"`
	Status        SingleChangeStatus `json:"status"`
	RecordChangeID string            `json:"record_change_id,omitempty"`
	RecordSetID    string            `json:"record_set_id,omitempty"`
	SystemMessage  string            `json:"system_message,omitempty"`
}

// BatchChange is a user-submitted group of SingleChanges.
type BatchChange struct {
	ID               string         `json:"id"`
	TenantID         string         `json:"tenant_id"`
	Changes          []SingleChange `json:"changes"`
	CreatedTimestamp time.Time      `json:"created_timestamp"`
}

// ProcessingStatusKind is the tag of the ProcessingStatus sum type.
type ProcessingStatusKind string

const (
	ReadyToApply   ProcessingStatusKind = "ReadyToApply"
	AlreadyApplied ProcessingStatusKind = "AlreadyApplied"
	ProcessingFailure ProcessingStatusKind = "Failure"
)

// ProcessingStatus is the ephemeral result of classifying a RecordSetChange
// against live DNS state (C1) or of a verify attempt (C3). It is a tagged
// union: Message is only meaningful when Kind == ProcessingFailure.
type ProcessingStatus struct {
	Kind    ProcessingStatusKind
	Message string
}

func StatusReadyToApply() ProcessingStatus { return ProcessingStatus{Kind: ReadyToApply} }
func StatusAlreadyApplied() ProcessingStatus { return ProcessingStatus{Kind: AlreadyApplied} }
func StatusFailure(message string) ProcessingStatus {
	return ProcessingStatus{Kind: ProcessingFailure, Message: message}
}

func (p ProcessingStatus) IsFailure() bool { return p.Kind == ProcessingFailure }
