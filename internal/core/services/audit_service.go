package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/velopay/ledger-core/internal/apperrors"
	"github.com/velopay/ledger-core/internal/core/domain"
	portsrepo "github.com/velopay/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/velopay/ledger-core/internal/core/ports/services"
	"github.com/velopay/ledger-core/internal/dto"
	"github.com/velopay/ledger-core/internal/middleware"
	"github.com/velopay/ledger-core/internal/utils/hashing"
)

// auditService provides read and verification access to the hash-chained
// audit trail. Records are append-only; the service exposes no mutation
// beyond RecordEvent.
type auditService struct {
	auditRepo portsrepo.AuditRepositoryFacade
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo portsrepo.AuditRepositoryFacade) portssvc.AuditSvcFacade {
	return &auditService{auditRepo: auditRepo}
}

// Ensure auditService implements the portssvc.AuditSvcFacade interface
var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// GetAuditByID retrieves one audit record.
func (s *auditService) GetAuditByID(ctx context.Context, auditID string) (*domain.AuditLogEntry, error) {
	return s.auditRepo.FindAuditByID(ctx, auditID)
}

// GetEntityHistory retrieves the audit history of one entity, oldest first.
func (s *auditService) GetEntityHistory(ctx context.Context, entityType string, entityID string, limit int) ([]domain.AuditLogEntry, error) {
	switch entityType {
	case domain.EntityAccount, domain.EntityJournalEntry, domain.EntityTransaction:
	default:
		return nil, fmt.Errorf("%w: unknown entity type %s", apperrors.ErrValidation, entityType)
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return s.auditRepo.ListByEntity(ctx, entityType, entityID, limit)
}

// RecordEvent appends one audit record to the chain.
func (s *auditService) RecordEvent(ctx context.Context, entry domain.AuditLogEntry) (*domain.AuditLogEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if entry.EventType == "" || entry.EntityType == "" || entry.EntityID == "" {
		return nil, fmt.Errorf("%w: audit records require eventType, entityType and entityID", apperrors.ErrValidation)
	}
	if entry.AuditID == "" {
		entry.AuditID = uuid.NewString()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}

	appended, err := s.auditRepo.Append(ctx, entry)
	if err != nil {
		logger.Error("Failed to append audit record",
			slog.String("entity_type", entry.EntityType),
			slog.String("entity_id", entry.EntityID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return &appended[0], nil
}

// VerifyRecord recomputes one record's hash against its stored value.
func (s *auditService) VerifyRecord(ctx context.Context, auditID string) (bool, error) {
	entry, err := s.auditRepo.FindAuditByID(ctx, auditID)
	if err != nil {
		return false, err
	}
	return hashing.Verify(*entry), nil
}

// VerifyChain walks the chain from fromSequence and reports the first broken
// link, if any.
func (s *auditService) VerifyChain(ctx context.Context, fromSequence int64, limit int) (*dto.ChainVerificationResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if fromSequence < 1 {
		fromSequence = 1
	}
	if limit <= 0 || limit > 10000 {
		limit = 1000
	}

	records, err := s.auditRepo.ListBySequence(ctx, fromSequence, limit)
	if err != nil {
		return nil, err
	}

	resp := &dto.ChainVerificationResponse{
		Valid:        true,
		CheckedCount: len(records),
	}
	anchor := hashing.GenesisHash
	if len(records) > 0 && records[0].Sequence > 1 {
		// Mid-chain windows anchor on the stored previous hash; the full
		// sweep from sequence 1 still proves it back to genesis.
		anchor = records[0].PreviousHash
	}
	if broken := hashing.VerifyChainFrom(records, anchor); broken >= 0 {
		seq := records[broken].Sequence
		resp.Valid = false
		resp.FirstBroken = &seq
		logger.Error("Audit chain verification failed",
			slog.Int64("first_broken_sequence", seq),
			slog.String("audit_id", records[broken].AuditID),
		)
	}
	return resp, nil
}
