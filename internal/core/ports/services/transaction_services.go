package services

import (
	"context"

	"github.com/velopay/ledger-core/internal/core/domain"
	"github.com/velopay/ledger-core/internal/dto"
)

// TransactionReaderSvc defines read operations for business transactions
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves a specific transaction.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByAccount retrieves transactions touching an account.
	ListTransactionsByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.Transaction, error)
}

// TransactionWriterSvc defines write operations for business transactions
type TransactionWriterSvc interface {
	// ProcessTransaction validates the request, generates the balanced
	// journal entry for the transaction type, and posts both atomically.
	ProcessTransaction(ctx context.Context, req dto.CreateTransactionRequest, actorID string) (*domain.Transaction, error)

	// ReverseTransaction creates a mirrored compensating transaction with its
	// own reversal entry and links the pair. Only COMPLETED transactions
	// reverse, and only once.
	ReverseTransaction(ctx context.Context, transactionID string, req dto.ReverseTransactionRequest, actorID string) (*domain.Transaction, error)

	// MarkReconciled records the outcome of matching a transaction against an
	// external statement.
	MarkReconciled(ctx context.Context, transactionID string, status domain.ReconciliationStatus, actorID string) error
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
