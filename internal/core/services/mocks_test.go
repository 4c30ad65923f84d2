package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/velopay/ledger-core/internal/core/domain"
	portsrepo "github.com/velopay/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/velopay/ledger-core/internal/core/ports/services"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByOwner(ctx context.Context, userID string, accountType domain.AccountType, currency string) (*domain.Account, error) {
	args := m.Called(ctx, userID, accountType, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account, audit domain.AuditLogEntry) error {
	args := m.Called(ctx, account, audit)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, audit domain.AuditLogEntry, actor string, now time.Time) error {
	args := m.Called(ctx, accountID, status, audit, actor, now)
	return args.Error(0)
}

func (m *MockAccountRepository) ApplyBucketDeltas(ctx context.Context, accountID string, deltas []domain.BucketDelta, audit domain.AuditLogEntry, actor string, now time.Time) (*domain.Account, error) {
	args := m.Called(ctx, accountID, deltas, audit, actor, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	args := m.Called(ctx, tx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateBalancesInTx(ctx context.Context, tx pgx.Tx, accounts map[string]domain.Account, actor string, now time.Time) error {
	args := m.Called(ctx, tx, accounts, actor, now)
	return args.Error(0)
}

// --- Mock JournalRepository ---

type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) FindPostedLinesByAccountID(ctx context.Context, accountID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, audit domain.AuditLogEntry) error {
	args := m.Called(ctx, entry, lines, audit)
	return args.Error(0)
}

func (m *MockJournalRepository) PostEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, audits []domain.AuditLogEntry, original *domain.JournalEntry) error {
	args := m.Called(ctx, entry, lines, balanceChanges, audits, original)
	return args.Error(0)
}

func (m *MockJournalRepository) UpdateApproval(ctx context.Context, entryID string, approval domain.ApprovalStatus, approver string, now time.Time, audit domain.AuditLogEntry) error {
	args := m.Called(ctx, entryID, approval, approver, now, audit)
	return args.Error(0)
}

func (m *MockJournalRepository) PostEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, audits []domain.AuditLogEntry, original *domain.JournalEntry) error {
	args := m.Called(ctx, tx, entry, lines, balanceChanges, audits, original)
	return args.Error(0)
}

// --- Mock TransactionRepository ---

type MockTransactionRepository struct {
	mock.Mock
}

var _ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, offset int) ([]domain.Transaction, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransactionWithEntry(ctx context.Context, txn domain.Transaction, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, audits []domain.AuditLogEntry) error {
	args := m.Called(ctx, txn, entry, lines, balanceChanges, audits)
	return args.Error(0)
}

func (m *MockTransactionRepository) SaveReversalWithEntry(ctx context.Context, reversal domain.Transaction, original domain.Transaction, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, audits []domain.AuditLogEntry) error {
	args := m.Called(ctx, reversal, original, entry, lines, balanceChanges, audits)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateReconciliationStatus(ctx context.Context, transactionID string, status domain.ReconciliationStatus, audit domain.AuditLogEntry, actor string, now time.Time) error {
	args := m.Called(ctx, transactionID, status, audit, actor, now)
	return args.Error(0)
}

func (m *MockTransactionRepository) SaveTransactionWithEntryInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, audits []domain.AuditLogEntry) error {
	args := m.Called(ctx, tx, txn, entry, lines, balanceChanges, audits)
	return args.Error(0)
}

// --- Mock AuditRepository ---

type MockAuditRepository struct {
	mock.Mock
}

var _ portsrepo.AuditRepositoryFacade = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) FindAuditByID(ctx context.Context, auditID string) (*domain.AuditLogEntry, error) {
	args := m.Called(ctx, auditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditLogEntry), args.Error(1)
}

func (m *MockAuditRepository) ListByEntity(ctx context.Context, entityType string, entityID string, limit int) ([]domain.AuditLogEntry, error) {
	args := m.Called(ctx, entityType, entityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditLogEntry), args.Error(1)
}

func (m *MockAuditRepository) ListBySequence(ctx context.Context, fromSequence int64, limit int) ([]domain.AuditLogEntry, error) {
	args := m.Called(ctx, fromSequence, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditLogEntry), args.Error(1)
}

func (m *MockAuditRepository) Append(ctx context.Context, entries ...domain.AuditLogEntry) ([]domain.AuditLogEntry, error) {
	args := m.Called(ctx, entries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditLogEntry), args.Error(1)
}

func (m *MockAuditRepository) AppendInTx(ctx context.Context, tx pgx.Tx, entries []domain.AuditLogEntry) ([]domain.AuditLogEntry, error) {
	args := m.Called(ctx, tx, entries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditLogEntry), args.Error(1)
}

// --- Mock TransactionManager ---

// MockTxManager runs the unit of work against a nil pgx.Tx; the repositories
// underneath are mocks and never touch it.
type MockTxManager struct {
	mock.Mock
}

var _ portsrepo.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(nil)
}

// --- Mock EventPublisher ---

type MockEventPublisher struct {
	mock.Mock
}

var _ portssvc.EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.Event) {
	m.Called(ctx, event)
}
