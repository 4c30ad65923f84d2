package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo     AccountRepositoryFacade
	JournalRepo     JournalRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
	AuditRepo       AuditRepositoryFacade
	TxManager       TransactionManager
}

// TransactionManager exposes the storage engine's atomic multi-record unit.
// Operations spanning several repositories run inside a single transaction
// obtained here and passed to the repositories' *InTx methods.
type TransactionManager interface {
	// WithTx begins a transaction, runs fn, and commits; any error from fn
	// rolls everything back.
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}
