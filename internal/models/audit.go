package models

import (
	"encoding/json"
	"time"
)

// AuditLog is the persistence model for an append-only audit row.
// The table carries a trigger that rejects UPDATE and DELETE.
type AuditLog struct {
	AuditID       string          `db:"audit_id"`
	Sequence      int64           `db:"sequence"`
	EventType     string          `db:"event_type"`
	Severity      string          `db:"severity"`
	EntityType    string          `db:"entity_type"`
	EntityID      string          `db:"entity_id"`
	BeforeState   json.RawMessage `db:"before_state"`
	AfterState    json.RawMessage `db:"after_state"`
	ChangedFields []string        `db:"changed_fields"`
	PerformedBy   string          `db:"performed_by"`
	RequestID     string          `db:"request_id"`
	SourceIP      string          `db:"source_ip"`
	Reference     string          `db:"reference"`
	RecordedAt    time.Time       `db:"recorded_at"`
	PreviousHash  string          `db:"previous_hash"`
	Hash          string          `db:"hash"`
}
