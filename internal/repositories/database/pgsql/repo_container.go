package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/velopay/ledger-core/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	auditRepo := newPgxAuditRepository(dbPool)
	accountRepo := newPgxAccountRepository(dbPool, auditRepo)
	journalRepo := newPgxJournalRepository(dbPool, accountRepo, auditRepo)
	transactionRepo := newPgxTransactionRepository(dbPool, journalRepo, auditRepo)

	return portsrepo.RepositoryProvider{
		AccountRepo:     accountRepo,
		JournalRepo:     journalRepo,
		TransactionRepo: transactionRepo,
		AuditRepo:       auditRepo,
		TxManager:       newPgxTransactionManager(dbPool),
	}
}
