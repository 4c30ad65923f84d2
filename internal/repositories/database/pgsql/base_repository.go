package pgsql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velopay/ledger-core/internal/apperrors"
	portsrepo "github.com/velopay/ledger-core/internal/core/ports/repositories"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// runInTx begins a transaction, runs fn, and commits; any error from fn rolls
// everything back. Shared by every repository's non-InTx write path.
func (r *BaseRepository) runInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// PgxTransactionManager exposes the pool's atomic multi-record unit to the
// service layer.
type PgxTransactionManager struct {
	BaseRepository
}

// newPgxTransactionManager creates the transaction manager.
func newPgxTransactionManager(pool *pgxpool.Pool) portsrepo.TransactionManager {
	return &PgxTransactionManager{BaseRepository{Pool: pool}}
}

// Ensure PgxTransactionManager implements portsrepo.TransactionManager
var _ portsrepo.TransactionManager = (*PgxTransactionManager)(nil)

// WithTx begins a transaction, runs fn, and commits; any error from fn rolls
// everything back.
func (m *PgxTransactionManager) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return m.runInTx(ctx, fn)
}
