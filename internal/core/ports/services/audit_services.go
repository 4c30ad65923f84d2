package services

import (
	"context"

	"github.com/velopay/ledger-core/internal/core/domain"
	"github.com/velopay/ledger-core/internal/dto"
)

// AuditReaderSvc defines read operations for the audit trail
type AuditReaderSvc interface {
	// GetAuditByID retrieves one audit record.
	GetAuditByID(ctx context.Context, auditID string) (*domain.AuditLogEntry, error)

	// GetEntityHistory retrieves the audit history of one entity, oldest
	// first.
	GetEntityHistory(ctx context.Context, entityType string, entityID string, limit int) ([]domain.AuditLogEntry, error)
}

// AuditWriterSvc defines the append operation. The trail is append-only;
// update and delete do not exist.
type AuditWriterSvc interface {
	// RecordEvent appends one audit record to the chain and returns it with
	// sequence and hashes assigned.
	RecordEvent(ctx context.Context, entry domain.AuditLogEntry) (*domain.AuditLogEntry, error)
}

// AuditVerifierSvc defines integrity checks over the chain
type AuditVerifierSvc interface {
	// VerifyRecord recomputes one record's hash against its stored value.
	VerifyRecord(ctx context.Context, auditID string) (bool, error)

	// VerifyChain walks the chain from fromSequence and reports the first
	// broken link, if any.
	VerifyChain(ctx context.Context, fromSequence int64, limit int) (*dto.ChainVerificationResponse, error)
}

// AuditSvcFacade combines all audit-related service interfaces
type AuditSvcFacade interface {
	AuditReaderSvc
	AuditWriterSvc
	AuditVerifierSvc
}
