package mapping

import (
	"github.com/velopay/ledger-core/internal/core/domain"
	"github.com/velopay/ledger-core/internal/models"
)

// ToModelAuditLog converts a domain AuditLogEntry to a model AuditLog.
func ToModelAuditLog(d domain.AuditLogEntry) models.AuditLog {
	return models.AuditLog{
		AuditID:       d.AuditID,
		Sequence:      d.Sequence,
		EventType:     string(d.EventType),
		Severity:      string(d.Severity),
		EntityType:    d.EntityType,
		EntityID:      d.EntityID,
		BeforeState:   d.BeforeState,
		AfterState:    d.AfterState,
		ChangedFields: d.ChangedFields,
		PerformedBy:   d.PerformedBy,
		RequestID:     d.RequestID,
		SourceIP:      d.SourceIP,
		Reference:     d.Reference,
		RecordedAt:    d.RecordedAt,
		PreviousHash:  d.PreviousHash,
		Hash:          d.Hash,
	}
}

// ToDomainAuditLog converts a model AuditLog to a domain AuditLogEntry.
func ToDomainAuditLog(m models.AuditLog) domain.AuditLogEntry {
	return domain.AuditLogEntry{
		AuditID:       m.AuditID,
		Sequence:      m.Sequence,
		EventType:     domain.AuditEventType(m.EventType),
		Severity:      domain.AuditSeverity(m.Severity),
		EntityType:    m.EntityType,
		EntityID:      m.EntityID,
		BeforeState:   m.BeforeState,
		AfterState:    m.AfterState,
		ChangedFields: m.ChangedFields,
		PerformedBy:   m.PerformedBy,
		RequestID:     m.RequestID,
		SourceIP:      m.SourceIP,
		Reference:     m.Reference,
		RecordedAt:    m.RecordedAt,
		PreviousHash:  m.PreviousHash,
		Hash:          m.Hash,
	}
}

// ToDomainAuditLogSlice converts model audit rows to domain records.
func ToDomainAuditLogSlice(ms []models.AuditLog) []domain.AuditLogEntry {
	ds := make([]domain.AuditLogEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAuditLog(m)
	}
	return ds
}
