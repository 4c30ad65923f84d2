package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velopay/ledger-core/internal/apperrors"
	"github.com/velopay/ledger-core/internal/core/domain"
	portsrepo "github.com/velopay/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/velopay/ledger-core/internal/core/ports/services"
	"github.com/velopay/ledger-core/internal/dto"
	"github.com/velopay/ledger-core/internal/middleware"
	"github.com/velopay/ledger-core/internal/utils/accounting"
)

// transactionService records business-level movements of value. Every
// transaction owns exactly one generated journal entry; the pair is written
// in one atomic unit.
type transactionService struct {
	txnRepo     portsrepo.TransactionRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	journalRepo portsrepo.JournalRepositoryFacade
	publisher   portssvc.EventPublisher
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(txnRepo portsrepo.TransactionRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade, publisher portssvc.EventPublisher) portssvc.TransactionSvcFacade {
	return &transactionService{
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		publisher:   publisher,
	}
}

// Ensure transactionService implements the portssvc.TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// GetTransactionByID retrieves a specific transaction.
func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.txnRepo.FindTransactionByID(ctx, transactionID)
}

// ListTransactionsByAccount retrieves transactions touching an account.
func (s *transactionService) ListTransactionsByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return s.txnRepo.ListTransactionsByAccountID(ctx, accountID, limit, offset)
}

// resolveParties loads and validates the accounts a transaction touches. For
// DEPOSIT and WITHDRAWAL the missing counterpart defaults to the system cash
// account for the currency.
func (s *transactionService) resolveParties(ctx context.Context, req dto.CreateTransactionRequest) (from *domain.Account, to *domain.Account, err error) {
	lookup := func(id *string) (*domain.Account, error) {
		if id == nil {
			return nil, nil
		}
		if *id == "" {
			return nil, fmt.Errorf("%w: account IDs must not be empty", apperrors.ErrValidation)
		}
		return s.accountRepo.FindAccountByID(ctx, *id)
	}
	systemCash := func() (*domain.Account, error) {
		acc, err := s.accountRepo.FindAccountByOwner(ctx, domain.SystemEntityID, domain.SystemCash, req.Currency)
		if err != nil {
			return nil, fmt.Errorf("%w: no system cash account for %s", apperrors.ErrValidation, req.Currency)
		}
		return acc, nil
	}

	switch req.TransactionType {
	case domain.Transfer, domain.Purchase:
		if req.FromAccountID == nil || req.ToAccountID == nil {
			return nil, nil, fmt.Errorf("%w: %s requires both fromAccountID and toAccountID", apperrors.ErrValidation, req.TransactionType)
		}
		if *req.FromAccountID == *req.ToAccountID {
			return nil, nil, fmt.Errorf("%w: fromAccountID and toAccountID must differ", apperrors.ErrValidation)
		}
		if from, err = lookup(req.FromAccountID); err != nil {
			return nil, nil, err
		}
		to, err = lookup(req.ToAccountID)
	case domain.Deposit:
		if req.ToAccountID == nil {
			return nil, nil, fmt.Errorf("%w: DEPOSIT requires toAccountID", apperrors.ErrValidation)
		}
		if to, err = lookup(req.ToAccountID); err != nil {
			return nil, nil, err
		}
		if from, err = lookup(req.FromAccountID); err != nil {
			return nil, nil, err
		}
		if from == nil {
			from, err = systemCash()
		}
	case domain.Withdrawal:
		if req.FromAccountID == nil {
			return nil, nil, fmt.Errorf("%w: WITHDRAWAL requires fromAccountID", apperrors.ErrValidation)
		}
		if from, err = lookup(req.FromAccountID); err != nil {
			return nil, nil, err
		}
		if to, err = lookup(req.ToAccountID); err != nil {
			return nil, nil, err
		}
		if to == nil {
			to, err = systemCash()
		}
	default:
		return nil, nil, fmt.Errorf("%w: unsupported transaction type %s", apperrors.ErrValidation, req.TransactionType)
	}
	if err != nil {
		return nil, nil, err
	}

	for _, account := range []*domain.Account{from, to} {
		if account.Status != domain.AccountActive {
			return nil, nil, fmt.Errorf("%w: account %s is %s", apperrors.ErrConflict, account.AccountID, account.Status)
		}
		if account.Currency != req.Currency {
			return nil, nil, fmt.Errorf("%w: account %s is denominated in %s, transaction in %s", apperrors.ErrValidation, account.AccountID, account.Currency, req.Currency)
		}
	}
	return from, to, nil
}

// ProcessTransaction validates the request, generates the balanced journal
// entry for the transaction type, and records both atomically.
func (s *transactionService) ProcessTransaction(ctx context.Context, req dto.CreateTransactionRequest, actorID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if !domain.IsValidCurrencyCode(req.Currency) {
		return nil, fmt.Errorf("%w: invalid currency code %s", apperrors.ErrValidation, req.Currency)
	}

	from, to, err := s.resolveParties(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transactionID := uuid.NewString()
	entryID := uuid.NewString()

	entryType := domain.EntryStandard
	if req.TransactionType == domain.Transfer || req.TransactionType == domain.Purchase {
		entryType = domain.EntryTransfer
	}

	// Value leaves the source as a credit and arrives at the destination as
	// a debit; the sign convention per account category is applied below.
	lines := []domain.JournalLine{
		{
			LineID:         uuid.NewString(),
			JournalEntryID: entryID,
			AccountID:      to.AccountID,
			DebitCredit:    domain.Debit,
			Amount:         req.Amount,
			Currency:       req.Currency,
			Description:    req.Description,
			AuditFields:    domain.NewAuditFields(actorID, now),
		},
		{
			LineID:         uuid.NewString(),
			JournalEntryID: entryID,
			AccountID:      from.AccountID,
			DebitCredit:    domain.Credit,
			Amount:         req.Amount,
			Currency:       req.Currency,
			Description:    req.Description,
			AuditFields:    domain.NewAuditFields(actorID, now),
		},
	}

	entry := domain.JournalEntry{
		JournalEntryID:        entryID,
		EntryNumber:           newEntryNumber("JE", now, entryID),
		EntryType:             entryType,
		Description:           req.Description,
		Currency:              req.Currency,
		Status:                domain.EntryPosted,
		Lines:                 lines,
		ApprovalStatus:        domain.ApprovalNotRequired,
		BusinessTransactionID: req.BusinessTransactionID,
		PostedAt:              &now,
		AuditFields:           domain.NewAuditFields(actorID, now),
	}
	entry.CalculateTotals()

	categories := map[string]domain.AccountCategory{
		from.AccountID: from.AccountCategory,
		to.AccountID:   to.AccountCategory,
	}
	changes, err := accounting.BalanceChanges(lines, categories)
	if err != nil {
		return nil, err
	}

	fromID := from.AccountID
	toID := to.AccountID
	txn := domain.Transaction{
		TransactionID:         transactionID,
		TransactionType:       req.TransactionType,
		Status:                domain.TxnCompleted,
		Amount:                req.Amount,
		Currency:              req.Currency,
		FromAccountID:         &fromID,
		ToAccountID:           &toID,
		Description:           req.Description,
		BusinessTransactionID: req.BusinessTransactionID,
		UserID:                req.UserID,
		JournalEntryID:        entryID,
		ComplianceStatus:      domain.ComplianceCleared,
		ReconciliationStatus:  domain.Unreconciled,
		AuditFields:           domain.NewAuditFields(actorID, now),
	}

	audits := []domain.AuditLogEntry{
		domain.NewAuditEvent(domain.AuditTxnProcessed, domain.SeverityInfo, domain.EntityTransaction, transactionID, actorID, now).
			WithStates(nil, txn, "status", "journalEntryID").
			WithReference(req.BusinessTransactionID),
		domain.NewAuditEvent(domain.AuditEntryPosted, domain.SeverityInfo, domain.EntityJournalEntry, entryID, actorID, now).
			WithStates(nil, entry, "status", "postedAt").
			WithReference(entry.EntryNumber),
	}

	if err := s.txnRepo.SaveTransactionWithEntry(ctx, txn, entry, lines, changes, audits); err != nil {
		logger.Error("Transaction processing failed",
			slog.String("transaction_id", transactionID),
			slog.String("type", string(req.TransactionType)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", apperrors.ErrProcessingFailed, err)
	}

	logger.Info("Transaction processed",
		slog.String("transaction_id", transactionID),
		slog.String("type", string(req.TransactionType)),
		slog.String("amount", req.Amount.String()),
		slog.String("currency", req.Currency),
	)
	if s.publisher != nil {
		s.publisher.Publish(ctx, domain.NewEvent(domain.EventTransactionProcessed, transactionID, now).
			With("type", string(req.TransactionType)).
			With("amount", req.Amount.String()).
			With("currency", req.Currency))
	}
	return &txn, nil
}

// ReverseTransaction creates a mirrored compensating transaction with its own
// reversal entry and links the pair.
func (s *transactionService) ReverseTransaction(ctx context.Context, transactionID string, req dto.ReverseTransactionRequest, actorID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.TxnCompleted {
		return nil, fmt.Errorf("%w: only COMPLETED transactions can be reversed, transaction %s is %s", apperrors.ErrConflict, transactionID, original.Status)
	}
	if original.ReversalTransactionID != nil {
		return nil, fmt.Errorf("%w: transaction %s was already reversed by %s", apperrors.ErrConflict, transactionID, *original.ReversalTransactionID)
	}

	originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, original.JournalEntryID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reversalTxnID := uuid.NewString()
	reversalEntryID := uuid.NewString()

	lines := make([]domain.JournalLine, len(originalLines))
	accountIDs := make([]string, 0, len(originalLines))
	for i, line := range originalLines {
		lines[i] = domain.JournalLine{
			LineID:         uuid.NewString(),
			JournalEntryID: reversalEntryID,
			AccountID:      line.AccountID,
			DebitCredit:    accounting.ReversalSide(line.DebitCredit),
			Amount:         line.Amount,
			Currency:       line.Currency,
			Description:    req.Reason,
			AuditFields:    domain.NewAuditFields(actorID, now),
		}
		accountIDs = append(accountIDs, line.AccountID)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, err
	}
	categories := make(map[string]domain.AccountCategory, len(accounts))
	for id, account := range accounts {
		categories[id] = account.AccountCategory
	}
	changes, err := accounting.BalanceChanges(lines, categories)
	if err != nil {
		return nil, err
	}

	entry := domain.JournalEntry{
		JournalEntryID:        reversalEntryID,
		EntryNumber:           newEntryNumber("REV", now, reversalEntryID),
		EntryType:             domain.EntryCorrecting,
		Description:           fmt.Sprintf("Reversal of transaction %s: %s", transactionID, req.Reason),
		Currency:              original.Currency,
		Status:                domain.EntryPosted,
		Lines:                 lines,
		ApprovalStatus:        domain.ApprovalNotRequired,
		OriginalEntryID:       &original.JournalEntryID,
		BusinessTransactionID: original.BusinessTransactionID,
		PostedAt:              &now,
		AuditFields:           domain.NewAuditFields(actorID, now),
	}
	entry.CalculateTotals()

	reversal := domain.Transaction{
		TransactionID:         reversalTxnID,
		TransactionType:       domain.Reversal,
		Status:                domain.TxnCompleted,
		Amount:                original.Amount,
		Currency:              original.Currency,
		FromAccountID:         original.ToAccountID,
		ToAccountID:           original.FromAccountID,
		Description:           fmt.Sprintf("Reversal of %s: %s", transactionID, req.Reason),
		BusinessTransactionID: original.BusinessTransactionID,
		UserID:                original.UserID,
		JournalEntryID:        reversalEntryID,
		ComplianceStatus:      domain.ComplianceCleared,
		ReconciliationStatus:  domain.Unreconciled,
		ParentTransactionID:   &original.TransactionID,
		AuditFields:           domain.NewAuditFields(actorID, now),
	}

	audits := []domain.AuditLogEntry{
		domain.NewAuditEvent(domain.AuditTxnReversed, domain.SeverityWarning, domain.EntityTransaction, transactionID, actorID, now).
			WithStates(nil, map[string]string{"reason": req.Reason, "reversalTransactionID": reversalTxnID}, "status", "reversalTransactionID").
			WithReference(original.BusinessTransactionID),
		domain.NewAuditEvent(domain.AuditEntryPosted, domain.SeverityInfo, domain.EntityJournalEntry, reversalEntryID, actorID, now).
			WithStates(nil, entry, "status", "postedAt").
			WithReference(entry.EntryNumber),
	}

	if err := s.txnRepo.SaveReversalWithEntry(ctx, reversal, *original, entry, lines, changes, audits); err != nil {
		logger.Error("Transaction reversal failed",
			slog.String("transaction_id", transactionID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", apperrors.ErrProcessingFailed, err)
	}

	logger.Info("Transaction reversed",
		slog.String("original_transaction_id", transactionID),
		slog.String("reversal_transaction_id", reversalTxnID),
	)
	if s.publisher != nil {
		s.publisher.Publish(ctx, domain.NewEvent(domain.EventTransactionProcessed, reversalTxnID, now).
			With("type", string(domain.Reversal)).
			With("parentTransactionID", transactionID).
			With("amount", original.Amount.String()))
	}
	return &reversal, nil
}

// MarkReconciled records the outcome of matching a transaction against an
// external statement.
func (s *transactionService) MarkReconciled(ctx context.Context, transactionID string, status domain.ReconciliationStatus, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if status != domain.Reconciled && status != domain.Disputed {
		return fmt.Errorf("%w: reconciliation outcome must be RECONCILED or DISPUTED", apperrors.ErrValidation)
	}
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if txn.Status != domain.TxnCompleted && txn.Status != domain.TxnReversed {
		return fmt.Errorf("%w: transaction %s is %s and cannot be reconciled", apperrors.ErrConflict, transactionID, txn.Status)
	}

	now := time.Now().UTC()
	severity := domain.SeverityInfo
	if status == domain.Disputed {
		severity = domain.SeverityWarning
	}
	audit := domain.NewAuditEvent(domain.AuditTxnReconciled, severity, domain.EntityTransaction, transactionID, actorID, now).
		WithStates(map[string]string{"reconciliationStatus": string(txn.ReconciliationStatus)}, map[string]string{"reconciliationStatus": string(status)}, "reconciliationStatus")

	if err := s.txnRepo.UpdateReconciliationStatus(ctx, transactionID, status, audit, actorID, now); err != nil {
		return err
	}
	logger.Info("Transaction reconciliation recorded",
		slog.String("transaction_id", transactionID),
		slog.String("outcome", string(status)),
	)
	return nil
}
