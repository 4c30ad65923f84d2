package domain

import (
	"encoding/json"
	"time"
)

// AuditEventType names the state change an audit record documents.
type AuditEventType string

const (
	AuditAccountCreated       AuditEventType = "ACCOUNT_CREATED"
	AuditAccountStatusChanged AuditEventType = "ACCOUNT_STATUS_CHANGED"
	AuditBalanceUpdated       AuditEventType = "BALANCE_UPDATED"
	AuditEntryCreated         AuditEventType = "JOURNAL_ENTRY_CREATED"
	AuditEntryPosted          AuditEventType = "JOURNAL_ENTRY_POSTED"
	AuditEntryApproved        AuditEventType = "JOURNAL_ENTRY_APPROVED"
	AuditEntryRejected        AuditEventType = "JOURNAL_ENTRY_REJECTED"
	AuditEntryReversed        AuditEventType = "JOURNAL_ENTRY_REVERSED"
	AuditTxnProcessed         AuditEventType = "TRANSACTION_PROCESSED"
	AuditTxnReversed          AuditEventType = "TRANSACTION_REVERSED"
	AuditTxnReconciled        AuditEventType = "TRANSACTION_RECONCILED"
)

// AuditSeverity grades an audit event.
type AuditSeverity string

const (
	SeverityInfo     AuditSeverity = "INFO"
	SeverityWarning  AuditSeverity = "WARNING"
	SeverityCritical AuditSeverity = "CRITICAL"
)

// AuditLogEntry is one append-only record of a state change. Records form a
// hash chain: Hash is computed over the canonical content including
// PreviousHash, so altering any stored field of record K invalidates the
// chain for all records >= K. Sequence, PreviousHash and Hash are assigned at
// persistence time under a global ordering lock.
type AuditLogEntry struct {
	AuditID       string          `json:"auditID"` // Primary key (UUID)
	Sequence      int64           `json:"sequence"`
	EventType     AuditEventType  `json:"eventType"`
	Severity      AuditSeverity   `json:"severity"`
	EntityType    string          `json:"entityType"` // ACCOUNT, JOURNAL_ENTRY, TRANSACTION
	EntityID      string          `json:"entityID"`
	BeforeState   json.RawMessage `json:"beforeState,omitempty"`
	AfterState    json.RawMessage `json:"afterState,omitempty"`
	ChangedFields []string        `json:"changedFields,omitempty"`
	PerformedBy   string          `json:"performedBy"`
	RequestID     string          `json:"requestID,omitempty"`
	SourceIP      string          `json:"sourceIP,omitempty"`
	Reference     string          `json:"reference,omitempty"` // Business reference (txn ID, entry number)
	RecordedAt    time.Time       `json:"recordedAt"`
	PreviousHash  string          `json:"previousHash"`
	Hash          string          `json:"hash"`
}

// Entity type names used in audit records.
const (
	EntityAccount      = "ACCOUNT"
	EntityJournalEntry = "JOURNAL_ENTRY"
	EntityTransaction  = "TRANSACTION"
)

// NewAuditEvent builds an unchained audit record; the audit repository
// assigns sequence, previous hash and hash when it persists the record.
func NewAuditEvent(eventType AuditEventType, severity AuditSeverity, entityType, entityID, performedBy string, now time.Time) AuditLogEntry {
	return AuditLogEntry{
		EventType:   eventType,
		Severity:    severity,
		EntityType:  entityType,
		EntityID:    entityID,
		PerformedBy: performedBy,
		RecordedAt:  now,
	}
}

// WithStates attaches before/after snapshots and the changed-field list.
func (e AuditLogEntry) WithStates(before, after any, changedFields ...string) AuditLogEntry {
	if before != nil {
		if raw, err := json.Marshal(before); err == nil {
			e.BeforeState = raw
		}
	}
	if after != nil {
		if raw, err := json.Marshal(after); err == nil {
			e.AfterState = raw
		}
	}
	e.ChangedFields = changedFields
	return e
}

// WithReference attaches a business reference to the record.
func (e AuditLogEntry) WithReference(ref string) AuditLogEntry {
	e.Reference = ref
	return e
}
