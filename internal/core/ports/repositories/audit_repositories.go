package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/velopay/ledger-core/internal/core/domain"
)

// AuditReader defines read operations for the audit trail.
type AuditReader interface {
	// FindAuditByID retrieves one audit record.
	FindAuditByID(ctx context.Context, auditID string) (*domain.AuditLogEntry, error)

	// ListByEntity retrieves audit records for one entity, oldest first.
	ListByEntity(ctx context.Context, entityType string, entityID string, limit int) ([]domain.AuditLogEntry, error)

	// ListBySequence retrieves records in chain order starting at
	// fromSequence (inclusive). Used for chain verification.
	ListBySequence(ctx context.Context, fromSequence int64, limit int) ([]domain.AuditLogEntry, error)
}

// AuditAppender defines the only write operation the audit trail has.
// The audit_logs table rejects UPDATE and DELETE at the storage level; no
// mutating method exists on purpose.
type AuditAppender interface {
	// Append persists the records in its own transaction, chaining each to
	// the latest stored hash under the global ordering lock. It returns the
	// records with sequence, previous hash and hash assigned.
	Append(ctx context.Context, entries ...domain.AuditLogEntry) ([]domain.AuditLogEntry, error)

	// AppendInTx is Append within a caller-managed transaction, so the audit
	// record commits or aborts with the business mutation it documents.
	AppendInTx(ctx context.Context, tx pgx.Tx, entries []domain.AuditLogEntry) ([]domain.AuditLogEntry, error)
}

// AuditRepositoryFacade combines the audit repository interfaces.
type AuditRepositoryFacade interface {
	AuditReader
	AuditAppender
}
