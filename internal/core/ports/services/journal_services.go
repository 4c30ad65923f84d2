package services

import (
	"context"

	"github.com/velopay/ledger-core/internal/core/domain"
	"github.com/velopay/ledger-core/internal/dto"
)

// JournalReaderSvc defines read operations for journal entries
type JournalReaderSvc interface {
	// GetEntryByID retrieves a journal entry with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries, newest first.
	ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error)
}

// JournalWriterSvc defines write operations for journal entries
type JournalWriterSvc interface {
	// CreateEntry validates and persists a new entry. Depending on the
	// approval rules the entry lands as DRAFT or PENDING_APPROVAL; balances
	// never change here.
	CreateEntry(ctx context.Context, req dto.CreateJournalEntryRequest, creatorID string) (*domain.JournalEntry, error)

	// PostEntry posts a draft entry: re-validates balance, checks account
	// eligibility, applies balance changes atomically, and stamps PostedAt.
	PostEntry(ctx context.Context, entryID string, actorID string) (*domain.JournalEntry, error)

	// ApproveEntry approves a pending entry and immediately posts it.
	ApproveEntry(ctx context.Context, entryID string, approverID string, req dto.ApprovalRequest) (*domain.JournalEntry, error)

	// RejectEntry rejects a pending entry, returning it to DRAFT.
	RejectEntry(ctx context.Context, entryID string, approverID string, req dto.ApprovalRequest) (*domain.JournalEntry, error)

	// ReverseEntry creates and posts a mirror-image entry for a posted one,
	// linking the pair. Reversing twice fails.
	ReverseEntry(ctx context.Context, entryID string, req dto.ReverseJournalEntryRequest, actorID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
