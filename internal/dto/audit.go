package dto

import (
	"encoding/json"
	"time"

	"github.com/velopay/ledger-core/internal/core/domain"
)

// AuditLogResponse defines the data returned for an audit record.
type AuditLogResponse struct {
	AuditID       string          `json:"auditID"`
	Sequence      int64           `json:"sequence"`
	EventType     string          `json:"eventType"`
	Severity      string          `json:"severity"`
	EntityType    string          `json:"entityType"`
	EntityID      string          `json:"entityID"`
	BeforeState   json.RawMessage `json:"beforeState,omitempty"`
	AfterState    json.RawMessage `json:"afterState,omitempty"`
	ChangedFields []string        `json:"changedFields,omitempty"`
	PerformedBy   string          `json:"performedBy"`
	RecordedAt    time.Time       `json:"recordedAt"`
	PreviousHash  string          `json:"previousHash"`
	Hash          string          `json:"hash"`
}

// ChainVerificationResponse reports the result of an audit chain check.
type ChainVerificationResponse struct {
	Valid        bool   `json:"valid"`
	CheckedCount int    `json:"checkedCount"`
	FirstBroken  *int64 `json:"firstBrokenSequence,omitempty"`
}

// ToAuditLogResponse converts a domain audit record to its DTO.
func ToAuditLogResponse(e *domain.AuditLogEntry) AuditLogResponse {
	return AuditLogResponse{
		AuditID:       e.AuditID,
		Sequence:      e.Sequence,
		EventType:     string(e.EventType),
		Severity:      string(e.Severity),
		EntityType:    e.EntityType,
		EntityID:      e.EntityID,
		BeforeState:   e.BeforeState,
		AfterState:    e.AfterState,
		ChangedFields: e.ChangedFields,
		PerformedBy:   e.PerformedBy,
		RecordedAt:    e.RecordedAt,
		PreviousHash:  e.PreviousHash,
		Hash:          e.Hash,
	}
}

// ToAuditLogResponses converts a slice of audit records to DTOs.
func ToAuditLogResponses(entries []domain.AuditLogEntry) []AuditLogResponse {
	responses := make([]AuditLogResponse, len(entries))
	for i := range entries {
		responses[i] = ToAuditLogResponse(&entries[i])
	}
	return responses
}
