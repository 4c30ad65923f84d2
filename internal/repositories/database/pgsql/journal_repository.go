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

const entryColumns = `journal_entry_id, entry_number, entry_type, description, currency, status, total_debits, total_credits, approval_status, approved_by, approved_at, original_entry_id, reversal_entry_id, business_transaction_id, posted_at, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, journal_entry_id, account_id, debit_credit, amount, currency, description, created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
	auditRepo   portsrepo.AuditAppender
}

// newPgxJournalRepository creates a new repository for journal entry data.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade, auditRepo portsrepo.AuditAppender) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
		auditRepo:      auditRepo,
	}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func scanEntryRow(row pgx.Row) (*models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.JournalEntryID,
		&m.EntryNumber,
		&m.EntryType,
		&m.Description,
		&m.Currency,
		&m.Status,
		&m.TotalDebits,
		&m.TotalCredits,
		&m.ApprovalStatus,
		&m.ApprovedBy,
		&m.ApprovedAt,
		&m.OriginalEntryID,
		&m.ReversalEntryID,
		&m.BusinessTransactionID,
		&m.PostedAt,
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

func scanLineRow(row pgx.Row) (*models.JournalLine, error) {
	var m models.JournalLine
	err := row.Scan(
		&m.LineID,
		&m.JournalEntryID,
		&m.AccountID,
		&m.DebitCredit,
		&m.Amount,
		&m.Currency,
		&m.Description,
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

// FindEntryByID retrieves a journal entry header by its ID.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE journal_entry_id = $1;`

	m, err := scanEntryRow(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}
	entry := mapping.ToDomainJournalEntry(*m)
	return &entry, nil
}

// FindLinesByEntryID retrieves all lines of one entry.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE journal_entry_id = $1 ORDER BY created_at, line_id;`

	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines of entry %s: %w", entryID, err)
	}
	defer rows.Close()
	return collectLineRows(rows)
}

// FindPostedLinesByAccountID retrieves every line of every posted entry
// referencing the account, in posting order. Entries later reversed still
// count; their reversal entries carry the offsetting lines.
func (r *PgxJournalRepository) FindPostedLinesByAccountID(ctx context.Context, accountID string) ([]domain.JournalLine, error) {
	query := `
		SELECT l.line_id, l.journal_entry_id, l.account_id, l.debit_credit, l.amount, l.currency, l.description, l.created_at, l.created_by, l.last_updated_at, l.last_updated_by
		FROM journal_lines l
		JOIN journal_entries e ON e.journal_entry_id = l.journal_entry_id
		WHERE l.account_id = $1 AND e.status IN ('POSTED', 'REVERSED')
		ORDER BY e.posted_at, l.line_id;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query posted lines for account %s: %w", accountID, err)
	}
	defer rows.Close()
	return collectLineRows(rows)
}

func collectLineRows(rows pgx.Rows) ([]domain.JournalLine, error) {
	var ms []models.JournalLine
	for rows.Next() {
		m, err := scanLineRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal line row: %w", err)
		}
		ms = append(ms, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal line rows: %w", err)
	}
	return mapping.ToDomainJournalLineSlice(ms), nil
}

// ListEntries retrieves a paginated list of entries, newest first.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		ORDER BY created_at DESC, journal_entry_id
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		m, err := scanEntryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		entries = append(entries, mapping.ToDomainJournalEntry(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal entry rows: %w", err)
	}
	return entries, nil
}

func (r *PgxJournalRepository) upsertEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	query := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (journal_entry_id) DO UPDATE SET
			status = EXCLUDED.status,
			total_debits = EXCLUDED.total_debits,
			total_credits = EXCLUDED.total_credits,
			approval_status = EXCLUDED.approval_status,
			approved_by = EXCLUDED.approved_by,
			approved_at = EXCLUDED.approved_at,
			posted_at = EXCLUDED.posted_at,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := tx.Exec(ctx, query,
		m.JournalEntryID,
		m.EntryNumber,
		m.EntryType,
		m.Description,
		m.Currency,
		m.Status,
		m.TotalDebits,
		m.TotalCredits,
		m.ApprovalStatus,
		m.ApprovedBy,
		m.ApprovedAt,
		m.OriginalEntryID,
		m.ReversalEntryID,
		m.BusinessTransactionID,
		m.PostedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation (entry_number)
			return fmt.Errorf("%w: journal entry number %s already exists", apperrors.ErrDuplicate, m.EntryNumber)
		}
		return fmt.Errorf("failed to save journal entry %s: %w", m.JournalEntryID, err)
	}
	return nil
}

func (r *PgxJournalRepository) insertLinesInTx(ctx context.Context, tx pgx.Tx, lines []domain.JournalLine) error {
	query := `
		INSERT INTO journal_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (line_id) DO NOTHING;
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		m := mapping.ToModelJournalLine(line)
		batch.Queue(query,
			m.LineID,
			m.JournalEntryID,
			m.AccountID,
			m.DebitCredit,
			m.Amount,
			m.Currency,
			m.Description,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range lines {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert journal line: %w", err)
		}
	}
	return nil
}

// SaveEntry persists a draft or pending-approval entry with its lines and the
// creation audit record. No balances change.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, audit domain.AuditLogEntry) error {
	return r.runInTx(ctx, func(tx pgx.Tx) error {
		if err := r.upsertEntryInTx(ctx, tx, entry); err != nil {
			return err
		}
		if err := r.insertLinesInTx(ctx, tx, lines); err != nil {
			return err
		}
		_, err := r.auditRepo.AppendInTx(ctx, tx, []domain.AuditLogEntry{audit})
		return err
	})
}

// PostEntry runs the full posting as one transaction.
func (r *PgxJournalRepository) PostEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, audits []domain.AuditLogEntry, original *domain.JournalEntry) error {
	return r.runInTx(ctx, func(tx pgx.Tx) error {
		return r.PostEntryInTx(ctx, tx, entry, lines, balanceChanges, audits, original)
	})
}

// PostEntryInTx applies a posting within a caller-managed transaction: it
// locks the affected accounts in deterministic order, applies the net
// balance changes with floor checks, writes the entry and lines, marks the
// original entry reversed when given, and appends the audit records.
func (r *PgxJournalRepository) PostEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, audits []domain.AuditLogEntry, original *domain.JournalEntry) error {
	accountIDs := make([]string, 0, len(balanceChanges))
	for id := range balanceChanges {
		accountIDs = append(accountIDs, id)
	}

	locked, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return err
	}

	now := entry.LastUpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if err := applyBalanceChanges(locked, accountIDs, balanceChanges); err != nil {
		return err
	}

	if err := r.accountRepo.UpdateBalancesInTx(ctx, tx, locked, entry.LastUpdatedBy, now); err != nil {
		return err
	}
	if err := r.upsertEntryInTx(ctx, tx, entry); err != nil {
		return err
	}
	if err := r.insertLinesInTx(ctx, tx, lines); err != nil {
		return err
	}

	if original != nil {
		tag, err := tx.Exec(ctx, `
			UPDATE journal_entries
			SET status = $2, reversal_entry_id = $3, last_updated_at = $4, last_updated_by = $5
			WHERE journal_entry_id = $1 AND status = 'POSTED';
		`, original.JournalEntryID, string(domain.EntryReversed), entry.JournalEntryID, now, entry.LastUpdatedBy)
		if err != nil {
			return fmt.Errorf("failed to mark entry %s reversed: %w", original.JournalEntryID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: entry %s is no longer POSTED", apperrors.ErrConflict, original.JournalEntryID)
		}
	}

	_, err = r.auditRepo.AppendInTx(ctx, tx, audits)
	return err
}

// applyBalanceChanges folds the net posting changes into the locked accounts.
// Current and available move together on a posting, and a negative change
// must keep both buckets at or above their floors: available runs below
// current whenever funds are frozen or reserved, so checking current alone
// would let a posting overdraw the frozen portion.
func applyBalanceChanges(locked map[string]domain.Account, accountIDs []string, balanceChanges map[string]decimal.Decimal) error {
	for _, id := range accountIDs {
		account, ok := locked[id]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		change := balanceChanges[id]
		nextCurrent := account.CurrentBalance.Add(change)
		nextAvailable := account.AvailableBalance.Add(change)
		if change.IsNegative() {
			if nextCurrent.LessThan(account.Floor(domain.BucketCurrent)) {
				return fmt.Errorf("%w: account %s cannot absorb change %s", apperrors.ErrInsufficientBalance, id, change.String())
			}
			if nextAvailable.LessThan(account.Floor(domain.BucketAvailable)) {
				return fmt.Errorf("%w: available balance of account %s cannot absorb change %s", apperrors.ErrInsufficientBalance, id, change.String())
			}
		}
		account.CurrentBalance = nextCurrent
		account.AvailableBalance = nextAvailable
		locked[id] = account
	}
	return nil
}

// UpdateApproval records an approval decision on a pending entry. Rejection
// returns the entry to DRAFT.
func (r *PgxJournalRepository) UpdateApproval(ctx context.Context, entryID string, approval domain.ApprovalStatus, approver string, now time.Time, audit domain.AuditLogEntry) error {
	status := domain.EntryPendingApproval
	if approval == domain.ApprovalRejected {
		status = domain.EntryDraft
	}
	return r.runInTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE journal_entries
			SET approval_status = $2, approved_by = $3, approved_at = $4, status = $5, last_updated_at = $4, last_updated_by = $3
			WHERE journal_entry_id = $1 AND status = 'PENDING_APPROVAL';
		`, entryID, string(approval), approver, now, string(status))
		if err != nil {
			return fmt.Errorf("failed to update approval of entry %s: %w", entryID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: entry %s is not pending approval", apperrors.ErrConflict, entryID)
		}
		_, err = r.auditRepo.AppendInTx(ctx, tx, []domain.AuditLogEntry{audit})
		return err
	})
}
