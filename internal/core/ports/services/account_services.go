package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/velopay/ledger-core/internal/core/domain"
	"github.com/velopay/ledger-core/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts by their IDs.
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// GetBalance reports a single balance bucket of an account.
	GetBalance(ctx context.Context, accountID string, bucket domain.BalanceBucket) (decimal.Decimal, error)

	// GetBalances reports every balance bucket of an account.
	GetBalances(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account with zero balances.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error)

	// SuspendAccount marks an account suspended; its balances stay intact but
	// it no longer accepts postings.
	SuspendAccount(ctx context.Context, accountID string, actorID string) error

	// ReactivateAccount returns a suspended account to active.
	ReactivateAccount(ctx context.Context, accountID string, actorID string) error

	// CloseAccount closes an account. Only accounts with zero balances in
	// every bucket may close.
	CloseAccount(ctx context.Context, accountID string, actorID string) error
}

// BalanceOperatorSvc defines the direct balance bucket operations.
type BalanceOperatorSvc interface {
	// AddToBalance credits amount to one bucket.
	AddToBalance(ctx context.Context, accountID string, bucket domain.BalanceBucket, amount decimal.Decimal, reference string, actorID string) (*domain.Account, error)

	// SubtractFromBalance debits amount from one bucket, honouring the
	// account's floor.
	SubtractFromBalance(ctx context.Context, accountID string, bucket domain.BalanceBucket, amount decimal.Decimal, reference string, actorID string) (*domain.Account, error)

	// TransferBetweenBuckets moves amount between two buckets of one account
	// atomically, e.g. available to reserved when placing a hold.
	TransferBetweenBuckets(ctx context.Context, accountID string, from domain.BalanceBucket, to domain.BalanceBucket, amount decimal.Decimal, reference string, actorID string) (*domain.Account, error)
}

// AccountCalculatorSvc defines calculation operations for account data
type AccountCalculatorSvc interface {
	// RecalculateBalance replays every posted journal line against the
	// account and reports the replayed current balance alongside the stored
	// one, for drift detection.
	RecalculateBalance(ctx context.Context, accountID string) (stored decimal.Decimal, replayed decimal.Decimal, err error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	BalanceOperatorSvc
	AccountCalculatorSvc
}
