package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/velopay/ledger-core/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// FindAccountByOwner retrieves an owner's account of the given type and
	// currency, or ErrNotFound.
	FindAccountByOwner(ctx context.Context, userID string, accountType domain.AccountType, currency string) (*domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account and its creation audit record in one
	// transaction.
	SaveAccount(ctx context.Context, account domain.Account, audit domain.AuditLogEntry) error

	// UpdateAccountStatus transitions the account lifecycle status.
	UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, audit domain.AuditLogEntry, actor string, now time.Time) error

	// ApplyBucketDeltas locks the account row, applies the deltas with floor
	// checks, persists the new bucket values and the audit record in one
	// transaction, and returns the updated account. A subtract that would
	// breach the account's floor fails with ErrInsufficientBalance and
	// mutates nothing.
	ApplyBucketDeltas(ctx context.Context, accountID string, deltas []domain.BucketDelta, audit domain.AuditLogEntry, actor string, now time.Time) (*domain.Account, error)
}

// AccountTransactionSupport defines operations used inside a caller-managed
// transaction, for atomic units spanning several record sets.
type AccountTransactionSupport interface {
	// SaveAccountInTx persists a new account within the given transaction.
	SaveAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error

	// FindAccountsByIDsForUpdate selects accounts in deterministic order and
	// locks them for update within a transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateBalancesInTx writes the current/available buckets of the given
	// (already locked and validated) accounts within a transaction.
	UpdateBalancesInTx(ctx context.Context, tx pgx.Tx, accounts map[string]domain.Account, actor string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
