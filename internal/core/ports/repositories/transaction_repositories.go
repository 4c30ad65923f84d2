package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/velopay/ledger-core/internal/core/domain"
)

// TransactionReader defines read operations for business transactions.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByAccountID retrieves transactions touching an account,
	// newest first.
	ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, offset int) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for business transactions.
type TransactionWriter interface {
	// SaveTransactionWithEntry persists the transaction and posts its
	// generated journal entry as one transaction: on success the record is
	// COMPLETED; on any failure nothing is visible.
	SaveTransactionWithEntry(ctx context.Context, txn domain.Transaction, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, audits []domain.AuditLogEntry) error

	// SaveReversalWithEntry persists the mirrored reversal transaction, posts
	// the reversal entry, and marks the original transaction and entry
	// REVERSED with back-links, all in one transaction.
	SaveReversalWithEntry(ctx context.Context, reversal domain.Transaction, original domain.Transaction, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, audits []domain.AuditLogEntry) error

	// UpdateReconciliationStatus records a reconciliation decision.
	UpdateReconciliationStatus(ctx context.Context, transactionID string, status domain.ReconciliationStatus, audit domain.AuditLogEntry, actor string, now time.Time) error
}

// TransactionTransactionSupport defines recording inside a caller-managed
// transaction, for flows that also provision accounts in the same unit.
type TransactionTransactionSupport interface {
	// SaveTransactionWithEntryInTx is SaveTransactionWithEntry within the
	// given transaction.
	SaveTransactionWithEntryInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, audits []domain.AuditLogEntry) error
}

// TransactionRepositoryFacade combines the transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
	TransactionTransactionSupport
}
