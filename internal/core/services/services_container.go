package services

import (
	"github.com/shopspring/decimal"

	portsrepo "github.com/velopay/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/velopay/ledger-core/internal/core/ports/services"
)

// ContainerConfig carries the tunables the services need.
type ContainerConfig struct {
	ApprovalThreshold  decimal.Decimal
	BaseCurrency       string
	TransferFeePercent decimal.Decimal
}

// NewServiceContainer wires every service with its repositories and returns
// the container the handlers consume.
func NewServiceContainer(repos portsrepo.RepositoryProvider, publisher portssvc.EventPublisher, cfg ContainerConfig) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account:     NewAccountService(repos.AccountRepo, repos.JournalRepo, publisher),
		Journal:     NewJournalService(repos.JournalRepo, repos.AccountRepo, publisher, cfg.ApprovalThreshold),
		Transaction: NewTransactionService(repos.TransactionRepo, repos.AccountRepo, repos.JournalRepo, publisher),
		Audit:       NewAuditService(repos.AuditRepo),
		Ledger:      NewLedgerService(repos, publisher, cfg.BaseCurrency, cfg.TransferFeePercent),
	}
}
