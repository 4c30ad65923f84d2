package services

import (
	"context"

	"github.com/velopay/ledger-core/internal/core/domain"
	"github.com/velopay/ledger-core/internal/dto"
)

// LedgerOperatorSvc defines the high-level ledger flows that cross module
// boundaries. Each flow provisions missing system accounts, generates and
// posts the journal entry, and records the business transaction in one
// atomic unit.
type LedgerOperatorSvc interface {
	// ProcessAssetDeposit books a confirmed external deposit against the
	// user's asset account and base-currency wallet, provisioning both on
	// first use.
	ProcessAssetDeposit(ctx context.Context, req dto.AssetDepositRequest, actorID string) (*domain.Transaction, error)

	// ProcessBitcoinPurchase exchanges a user's fiat for BTC. The user's
	// base-currency wallet must already exist; the purchase amount moves to
	// system cash, the configured fee accrues in the fiat reserve, and BTC
	// moves from the system reserve to the user's crypto wallet.
	ProcessBitcoinPurchase(ctx context.Context, req dto.BitcoinPurchaseRequest, actorID string) (*domain.Transaction, error)
}

// LedgerProvisionerSvc defines idempotent account provisioning used by the
// operator flows and exposed for setup tooling.
type LedgerProvisionerSvc interface {
	// EnsureUserAccount finds or creates a user's account of the given type
	// and currency.
	EnsureUserAccount(ctx context.Context, userID string, accountType domain.AccountType, currency string, actorID string) (*domain.Account, error)

	// EnsureSystemAccount finds or creates the singleton system account of
	// the given type and currency.
	EnsureSystemAccount(ctx context.Context, accountType domain.AccountType, currency string, actorID string) (*domain.Account, error)
}

// LedgerSvcFacade combines the orchestration interfaces
type LedgerSvcFacade interface {
	LedgerOperatorSvc
	LedgerProvisionerSvc
}
