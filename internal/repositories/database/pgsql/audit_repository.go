package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velopay/ledger-core/internal/apperrors"
	"github.com/velopay/ledger-core/internal/core/domain"
	portsrepo "github.com/velopay/ledger-core/internal/core/ports/repositories"
	"github.com/velopay/ledger-core/internal/models"
	"github.com/velopay/ledger-core/internal/utils/hashing"
	"github.com/velopay/ledger-core/internal/utils/mapping"
)

// auditChainLockKey is the advisory lock key serializing appends so the hash
// chain has a single global order.
const auditChainLockKey = int64(0x4C454447) // "LEDG"

const auditColumns = `audit_id, sequence, event_type, severity, entity_type, entity_id, before_state, after_state, changed_fields, performed_by, request_id, source_ip, reference, recorded_at, previous_hash, hash`

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for the audit trail.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxAuditRepository implements portsrepo.AuditRepositoryFacade
var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

func scanAuditRow(row pgx.Row) (*models.AuditLog, error) {
	var m models.AuditLog
	err := row.Scan(
		&m.AuditID,
		&m.Sequence,
		&m.EventType,
		&m.Severity,
		&m.EntityType,
		&m.EntityID,
		&m.BeforeState,
		&m.AfterState,
		&m.ChangedFields,
		&m.PerformedBy,
		&m.RequestID,
		&m.SourceIP,
		&m.Reference,
		&m.RecordedAt,
		&m.PreviousHash,
		&m.Hash,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindAuditByID retrieves one audit record.
func (r *PgxAuditRepository) FindAuditByID(ctx context.Context, auditID string) (*domain.AuditLogEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_logs WHERE audit_id = $1;`

	m, err := scanAuditRow(r.Pool.QueryRow(ctx, query, auditID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find audit record %s: %w", auditID, err)
	}
	entry := mapping.ToDomainAuditLog(*m)
	return &entry, nil
}

// ListByEntity retrieves audit records for one entity, oldest first.
func (r *PgxAuditRepository) ListByEntity(ctx context.Context, entityType string, entityID string, limit int) ([]domain.AuditLogEntry, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY sequence ASC
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records for %s %s: %w", entityType, entityID, err)
	}
	defer rows.Close()
	return collectAuditRows(rows)
}

// ListBySequence retrieves records in chain order starting at fromSequence.
func (r *PgxAuditRepository) ListBySequence(ctx context.Context, fromSequence int64, limit int) ([]domain.AuditLogEntry, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		WHERE sequence >= $1
		ORDER BY sequence ASC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, fromSequence, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records from sequence %d: %w", fromSequence, err)
	}
	defer rows.Close()
	return collectAuditRows(rows)
}

func collectAuditRows(rows pgx.Rows) ([]domain.AuditLogEntry, error) {
	var ms []models.AuditLog
	for rows.Next() {
		m, err := scanAuditRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		ms = append(ms, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit rows: %w", err)
	}
	return mapping.ToDomainAuditLogSlice(ms), nil
}

// Append persists the records in their own transaction.
func (r *PgxAuditRepository) Append(ctx context.Context, entries ...domain.AuditLogEntry) ([]domain.AuditLogEntry, error) {
	var appended []domain.AuditLogEntry
	err := r.runInTx(ctx, func(tx pgx.Tx) error {
		var err error
		appended, err = r.AppendInTx(ctx, tx, entries)
		return err
	})
	if err != nil {
		return nil, err
	}
	return appended, nil
}

// AppendInTx chains and inserts the records within a caller-managed
// transaction. The advisory lock serializes concurrent appenders for the rest
// of the transaction, so chained hashes cannot interleave.
func (r *PgxAuditRepository) AppendInTx(ctx context.Context, tx pgx.Tx, entries []domain.AuditLogEntry) ([]domain.AuditLogEntry, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1);`, auditChainLockKey); err != nil {
		return nil, fmt.Errorf("failed to acquire audit chain lock: %w", err)
	}

	prevHash := hashing.GenesisHash
	err := tx.QueryRow(ctx, `SELECT hash FROM audit_logs ORDER BY sequence DESC LIMIT 1;`).Scan(&prevHash)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read audit chain head: %w", err)
	}

	insert := `
		INSERT INTO audit_logs (audit_id, event_type, severity, entity_type, entity_id, before_state, after_state, changed_fields, performed_by, request_id, source_ip, reference, recorded_at, previous_hash, hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING sequence;
	`

	out := make([]domain.AuditLogEntry, len(entries))
	for i, entry := range entries {
		if entry.AuditID == "" {
			entry.AuditID = uuid.NewString()
		}
		if entry.RecordedAt.IsZero() {
			entry.RecordedAt = time.Now().UTC()
		}
		entry.PreviousHash = prevHash
		entry.Hash = hashing.ComputeHash(entry)

		m := mapping.ToModelAuditLog(entry)
		err := tx.QueryRow(ctx, insert,
			m.AuditID,
			m.EventType,
			m.Severity,
			m.EntityType,
			m.EntityID,
			m.BeforeState,
			m.AfterState,
			m.ChangedFields,
			m.PerformedBy,
			m.RequestID,
			m.SourceIP,
			m.Reference,
			m.RecordedAt,
			m.PreviousHash,
			m.Hash,
		).Scan(&entry.Sequence)
		if err != nil {
			return nil, fmt.Errorf("failed to append audit record for %s %s: %w", entry.EntityType, entry.EntityID, err)
		}

		prevHash = entry.Hash
		out[i] = entry
	}
	return out, nil
}
