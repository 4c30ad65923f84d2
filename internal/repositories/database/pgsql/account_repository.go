package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velopay/ledger-core/internal/apperrors"
	"github.com/velopay/ledger-core/internal/core/domain"
	portsrepo "github.com/velopay/ledger-core/internal/core/ports/repositories"
	"github.com/velopay/ledger-core/internal/models"
	"github.com/velopay/ledger-core/internal/utils/mapping"
)

const accountColumns = `account_id, account_number, account_name, account_type, account_category, currency, currency_type, current_balance, available_balance, pending_balance, reserved_balance, frozen_balance, escrow_balance, allow_negative_balance, credit_limit, minimum_balance, maximum_balance, status, user_id, entity_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
	auditRepo portsrepo.AuditAppender
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool, auditRepo portsrepo.AuditAppender) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}, auditRepo: auditRepo}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccountRow(row pgx.Row) (*models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.AccountNumber,
		&m.AccountName,
		&m.AccountType,
		&m.AccountCategory,
		&m.Currency,
		&m.CurrencyType,
		&m.CurrentBalance,
		&m.AvailableBalance,
		&m.PendingBalance,
		&m.ReservedBalance,
		&m.FrozenBalance,
		&m.EscrowBalance,
		&m.AllowNegativeBalance,
		&m.CreditLimit,
		&m.MinimumBalance,
		&m.MaximumBalance,
		&m.Status,
		&m.UserID,
		&m.EntityID,
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

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	m, err := scanAccountRow(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	acc := mapping.ToDomainAccount(*m)
	return &acc, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`

	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	return collectAccountRows(rows)
}

func collectAccountRows(rows pgx.Rows) (map[string]domain.Account, error) {
	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		acc := mapping.ToDomainAccount(*m)
		accountsMap[acc.AccountID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account rows: %w", err)
	}
	return accountsMap, nil
}

// FindAccountByOwner retrieves an owner's account of the given type and
// currency. The owner matches either a user ID or a system entity ID.
func (r *PgxAccountRepository) FindAccountByOwner(ctx context.Context, userID string, accountType domain.AccountType, currency string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE (user_id = $1 OR entity_id = $1) AND account_type = $2 AND currency = $3
		ORDER BY created_at ASC
		LIMIT 1;
	`
	m, err := scanAccountRow(r.Pool.QueryRow(ctx, query, userID, string(accountType), currency))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no %s account in %s for owner %s", apperrors.ErrNotFound, accountType, currency, userID)
		}
		return nil, fmt.Errorf("failed to find account for owner %s: %w", userID, err)
	}
	acc := mapping.ToDomainAccount(*m)
	return &acc, nil
}

// ListAccounts retrieves a paginated list of accounts.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY created_at DESC, account_id
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		m, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, mapping.ToDomainAccount(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account rows: %w", err)
	}
	return accounts, nil
}

// SaveAccount inserts a new account and its creation audit record in one
// transaction.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account, audit domain.AuditLogEntry) error {
	return r.runInTx(ctx, func(tx pgx.Tx) error {
		if err := r.SaveAccountInTx(ctx, tx, account); err != nil {
			return err
		}
		_, err := r.auditRepo.AppendInTx(ctx, tx, []domain.AuditLogEntry{audit})
		return err
	})
}

// SaveAccountInTx inserts a new account within the given transaction.
func (r *PgxAccountRepository) SaveAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24);
	`
	_, err := tx.Exec(ctx, query,
		m.AccountID,
		m.AccountNumber,
		m.AccountName,
		m.AccountType,
		m.AccountCategory,
		m.Currency,
		m.CurrencyType,
		m.CurrentBalance,
		m.AvailableBalance,
		m.PendingBalance,
		m.ReservedBalance,
		m.FrozenBalance,
		m.EscrowBalance,
		m.AllowNegativeBalance,
		m.CreditLimit,
		m.MinimumBalance,
		m.MaximumBalance,
		m.Status,
		m.UserID,
		m.EntityID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// UpdateAccountStatus transitions the account lifecycle status.
func (r *PgxAccountRepository) UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, audit domain.AuditLogEntry, actor string, now time.Time) error {
	return r.runInTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE accounts
			SET status = $2, last_updated_at = $3, last_updated_by = $4
			WHERE account_id = $1;
		`, accountID, string(status), now, actor)
		if err != nil {
			return fmt.Errorf("failed to update status of account %s: %w", accountID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		_, err = r.auditRepo.AppendInTx(ctx, tx, []domain.AuditLogEntry{audit})
		return err
	})
}

// ApplyBucketDeltas locks the account row, applies the deltas with floor
// checks, and persists the new bucket values and the audit record in one
// transaction.
func (r *PgxAccountRepository) ApplyBucketDeltas(ctx context.Context, accountID string, deltas []domain.BucketDelta, audit domain.AuditLogEntry, actor string, now time.Time) (*domain.Account, error) {
	var updated domain.Account
	err := r.runInTx(ctx, func(tx pgx.Tx) error {
		locked, err := r.FindAccountsByIDsForUpdate(ctx, tx, []string{accountID})
		if err != nil {
			return err
		}
		account, ok := locked[accountID]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}

		for _, d := range deltas {
			next := account.BucketValue(d.Bucket).Add(d.Delta)
			if next.LessThan(account.Floor(d.Bucket)) {
				return fmt.Errorf("%w: %s bucket of account %s would fall below its floor", apperrors.ErrInsufficientBalance, d.Bucket, accountID)
			}
			account.SetBucketValue(d.Bucket, next)
		}
		account.LastUpdatedAt = now
		account.LastUpdatedBy = actor

		_, err = tx.Exec(ctx, `
			UPDATE accounts
			SET current_balance = $2, available_balance = $3, pending_balance = $4,
			    reserved_balance = $5, frozen_balance = $6, escrow_balance = $7,
			    last_updated_at = $8, last_updated_by = $9
			WHERE account_id = $1;
		`, accountID,
			account.CurrentBalance, account.AvailableBalance, account.PendingBalance,
			account.ReservedBalance, account.FrozenBalance, account.EscrowBalance,
			now, actor,
		)
		if err != nil {
			return fmt.Errorf("failed to update balances of account %s: %w", accountID, err)
		}

		if _, err := r.auditRepo.AppendInTx(ctx, tx, []domain.AuditLogEntry{audit}); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// FindAccountsByIDsForUpdate selects accounts in deterministic ID order and
// locks them for update. Sorting keeps concurrent multi-account postings
// acquiring locks in the same order, which prevents deadlocks.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	sorted := make([]string, len(accountIDs))
	copy(sorted, accountIDs)
	sort.Strings(sorted)

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	defer rows.Close()

	return collectAccountRows(rows)
}

// UpdateBalancesInTx writes the current and available buckets of the given
// accounts within a transaction. Callers hold row locks on every account.
func (r *PgxAccountRepository) UpdateBalancesInTx(ctx context.Context, tx pgx.Tx, accounts map[string]domain.Account, actor string, now time.Time) error {
	query := `
		UPDATE accounts
		SET current_balance = $2, available_balance = $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $1;
	`
	for id, account := range accounts {
		tag, err := tx.Exec(ctx, query, id, account.CurrentBalance, account.AvailableBalance, now, actor)
		if err != nil {
			return fmt.Errorf("failed to update balances of account %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	return nil
}
