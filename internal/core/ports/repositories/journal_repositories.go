package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/velopay/ledger-core/internal/core/domain"
)

// JournalEntryReader defines read operations for journal entry data.
type JournalEntryReader interface {
	// FindEntryByID retrieves a journal entry header (without lines).
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves all lines of one entry.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// FindPostedLinesByAccountID retrieves every line of every POSTED entry
	// referencing the account, in posting order. Used for balance replay.
	FindPostedLinesByAccountID(ctx context.Context, accountID string) ([]domain.JournalLine, error)

	// ListEntries retrieves a paginated list of entries, newest first.
	ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error)
}

// JournalEntryWriter defines write operations for journal entry data.
type JournalEntryWriter interface {
	// SaveEntry persists a draft or pending-approval entry with its lines and
	// the creation audit record. No balances change.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, audit domain.AuditLogEntry) error

	// PostEntry runs the full posting as one transaction: upsert the entry as
	// POSTED, lock the affected accounts, apply the net balance changes with
	// floor checks, insert the lines, and append the audit records. When
	// original is set the original entry is marked REVERSED with back-links.
	PostEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, audits []domain.AuditLogEntry, original *domain.JournalEntry) error

	// UpdateApproval records an approval decision on a pending entry.
	UpdateApproval(ctx context.Context, entryID string, approval domain.ApprovalStatus, approver string, now time.Time, audit domain.AuditLogEntry) error
}

// JournalTransactionSupport defines posting inside a caller-managed
// transaction, for units that also write other record sets.
type JournalTransactionSupport interface {
	// PostEntryInTx is PostEntry within the given transaction.
	PostEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, audits []domain.AuditLogEntry, original *domain.JournalEntry) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalEntryReader
	JournalEntryWriter
	JournalTransactionSupport
}
