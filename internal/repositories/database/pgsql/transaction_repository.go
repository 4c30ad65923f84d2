package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/velopay/ledger-core/internal/apperrors"
	"github.com/velopay/ledger-core/internal/core/domain"
	portsrepo "github.com/velopay/ledger-core/internal/core/ports/repositories"
	"github.com/velopay/ledger-core/internal/models"
	"github.com/velopay/ledger-core/internal/utils/mapping"
)

const transactionColumns = `transaction_id, transaction_type, status, amount, currency, from_account_id, to_account_id, description, business_transaction_id, user_id, journal_entry_id, risk_score, compliance_status, reconciliation_status, parent_transaction_id, reversal_transaction_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRepository struct {
	BaseRepository
	journalRepo portsrepo.JournalRepositoryFacade
	auditRepo   portsrepo.AuditAppender
}

// newPgxTransactionRepository creates a new repository for business
// transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool, journalRepo portsrepo.JournalRepositoryFacade, auditRepo portsrepo.AuditAppender) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		journalRepo:    journalRepo,
		auditRepo:      auditRepo,
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransactionRow(row pgx.Row) (*models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.TransactionType,
		&m.Status,
		&m.Amount,
		&m.Currency,
		&m.FromAccountID,
		&m.ToAccountID,
		&m.Description,
		&m.BusinessTransactionID,
		&m.UserID,
		&m.JournalEntryID,
		&m.RiskScore,
		&m.ComplianceStatus,
		&m.ReconciliationStatus,
		&m.ParentTransactionID,
		&m.ReversalTransactionID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindTransactionByID retrieves a transaction by its unique identifier.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	m, err := scanTransactionRow(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	txn := mapping.ToDomainTransaction(*m)
	return &txn, nil
}

// ListTransactionsByAccountID retrieves transactions touching an account,
// newest first.
func (r *PgxTransactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, offset int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE from_account_id = $1 OR to_account_id = $1
		ORDER BY created_at DESC, transaction_id
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		m, err := scanTransactionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, mapping.ToDomainTransaction(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transaction rows: %w", err)
	}
	return txns, nil
}

func (r *PgxTransactionRepository) insertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.TransactionType,
		m.Status,
		m.Amount,
		m.Currency,
		m.FromAccountID,
		m.ToAccountID,
		m.Description,
		m.BusinessTransactionID,
		m.UserID,
		m.JournalEntryID,
		m.RiskScore,
		m.ComplianceStatus,
		m.ReconciliationStatus,
		m.ParentTransactionID,
		m.ReversalTransactionID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: transaction %s already exists", apperrors.ErrDuplicate, m.TransactionID)
		}
		return fmt.Errorf("failed to save transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// SaveTransactionWithEntry persists the transaction and posts its generated
// journal entry as one transaction.
func (r *PgxTransactionRepository) SaveTransactionWithEntry(ctx context.Context, txn domain.Transaction, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, audits []domain.AuditLogEntry) error {
	return r.runInTx(ctx, func(tx pgx.Tx) error {
		return r.SaveTransactionWithEntryInTx(ctx, tx, txn, entry, lines, balanceChanges, audits)
	})
}

// SaveTransactionWithEntryInTx is SaveTransactionWithEntry within the given
// transaction.
func (r *PgxTransactionRepository) SaveTransactionWithEntryInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, audits []domain.AuditLogEntry) error {
	if err := r.insertTransactionInTx(ctx, tx, txn); err != nil {
		return err
	}
	return r.journalRepo.PostEntryInTx(ctx, tx, entry, lines, balanceChanges, audits, nil)
}

// SaveReversalWithEntry persists the mirrored reversal transaction, posts the
// reversal entry, and marks the original transaction and entry REVERSED with
// back-links, all in one transaction.
func (r *PgxTransactionRepository) SaveReversalWithEntry(ctx context.Context, reversal domain.Transaction, original domain.Transaction, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, audits []domain.AuditLogEntry) error {
	return r.runInTx(ctx, func(tx pgx.Tx) error {
		if err := r.insertTransactionInTx(ctx, tx, reversal); err != nil {
			return err
		}

		originalEntry := domain.JournalEntry{JournalEntryID: original.JournalEntryID}
		if err := r.journalRepo.PostEntryInTx(ctx, tx, entry, lines, balanceChanges, audits, &originalEntry); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE transactions
			SET status = $2, reversal_transaction_id = $3, last_updated_at = $4, last_updated_by = $5
			WHERE transaction_id = $1 AND status = 'COMPLETED' AND reversal_transaction_id IS NULL;
		`, original.TransactionID, string(domain.TxnReversed), reversal.TransactionID, reversal.LastUpdatedAt, reversal.LastUpdatedBy)
		if err != nil {
			return fmt.Errorf("failed to mark transaction %s reversed: %w", original.TransactionID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: transaction %s is no longer reversible", apperrors.ErrConflict, original.TransactionID)
		}
		return nil
	})
}

// UpdateReconciliationStatus records a reconciliation decision.
func (r *PgxTransactionRepository) UpdateReconciliationStatus(ctx context.Context, transactionID string, status domain.ReconciliationStatus, audit domain.AuditLogEntry, actor string, now time.Time) error {
	return r.runInTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE transactions
			SET reconciliation_status = $2, last_updated_at = $3, last_updated_by = $4
			WHERE transaction_id = $1;
		`, transactionID, string(status), now, actor)
		if err != nil {
			return fmt.Errorf("failed to update reconciliation of transaction %s: %w", transactionID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		_, err = r.auditRepo.AppendInTx(ctx, tx, []domain.AuditLogEntry{audit})
		return err
	})
}
