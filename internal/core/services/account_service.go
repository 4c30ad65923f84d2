package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
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

// accountService provides account registry and balance bucket operations.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	journalRepo portsrepo.JournalRepositoryFacade
	publisher   portssvc.EventPublisher
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade, publisher portssvc.EventPublisher) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		publisher:   publisher,
	}
}

// Ensure accountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// inferCurrencyType picks a currency type from the account subtype when the
// caller did not supply one.
func inferCurrencyType(accountType domain.AccountType) domain.CurrencyType {
	switch accountType {
	case domain.CryptoAssets:
		return domain.Crypto
	case domain.PreciousMetals:
		return domain.Commodity
	default:
		return domain.Fiat
	}
}

// buildAccountNumber derives the human-readable account number.
func buildAccountNumber(accountType domain.AccountType, currency string, accountID string) string {
	short := strings.ToUpper(strings.ReplaceAll(accountID, "-", ""))
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s-%s-%s", accountType, currency, short)
}

// CreateAccount validates the request and persists a new account with zero
// balances in every bucket.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	category := domain.CategoryForType(req.AccountType)
	if category == "" {
		return nil, fmt.Errorf("%w: unknown account type %s", apperrors.ErrValidation, req.AccountType)
	}
	if req.AccountCategory != "" && req.AccountCategory != category {
		return nil, fmt.Errorf("%w: account type %s belongs to category %s, not %s", apperrors.ErrValidation, req.AccountType, category, req.AccountCategory)
	}
	if !domain.IsValidCurrencyCode(req.Currency) {
		return nil, fmt.Errorf("%w: invalid currency code %s", apperrors.ErrValidation, req.Currency)
	}
	if req.CreditLimit != nil && req.CreditLimit.IsNegative() {
		return nil, fmt.Errorf("%w: credit limit must not be negative", apperrors.ErrValidation)
	}

	currencyType := req.CurrencyType
	if currencyType == "" {
		currencyType = inferCurrencyType(req.AccountType)
	}

	userID := req.UserID
	entityID := req.EntityID
	switch req.AccountType {
	case domain.UserWallet, domain.CryptoAssets, domain.PreciousMetals:
		if userID == "" {
			return nil, fmt.Errorf("%w: user accounts require a userID", apperrors.ErrValidation)
		}
	default:
		if entityID == "" {
			entityID = domain.SystemEntityID
		}
	}

	now := time.Now().UTC()
	accountID := uuid.NewString()

	account := domain.Account{
		AccountID:            accountID,
		AccountNumber:        buildAccountNumber(req.AccountType, req.Currency, accountID),
		AccountName:          req.AccountName,
		AccountType:          req.AccountType,
		AccountCategory:      category,
		Currency:             req.Currency,
		CurrencyType:         currencyType,
		CurrentBalance:       decimal.Zero,
		AvailableBalance:     decimal.Zero,
		PendingBalance:       decimal.Zero,
		ReservedBalance:      decimal.Zero,
		FrozenBalance:        decimal.Zero,
		EscrowBalance:        decimal.Zero,
		AllowNegativeBalance: req.AllowNegativeBalance,
		CreditLimit:          req.CreditLimit,
		MinimumBalance:       req.MinimumBalance,
		MaximumBalance:       req.MaximumBalance,
		Status:               domain.AccountActive,
		UserID:               userID,
		EntityID:             entityID,
		AuditFields:          domain.NewAuditFields(creatorID, now),
	}

	audit := domain.NewAuditEvent(domain.AuditAccountCreated, domain.SeverityInfo, domain.EntityAccount, accountID, creatorID, now).
		WithStates(nil, account, "accountID", "accountNumber", "status").
		WithReference(account.AccountNumber)

	if err := s.accountRepo.SaveAccount(ctx, account, audit); err != nil {
		logger.Error("Failed to save account", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Account created",
		slog.String("account_id", accountID),
		slog.String("account_type", string(req.AccountType)),
		slog.String("currency", req.Currency),
	)

	if s.publisher != nil {
		s.publisher.Publish(ctx, domain.NewEvent(domain.EventAccountCreated, accountID, now).
			With("accountType", string(req.AccountType)).
			With("currency", req.Currency))
	}
	return &account, nil
}

// GetAccountByID retrieves a specific account by its unique identifier.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

// GetAccountsByIDs retrieves multiple accounts by their IDs.
func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
}

// GetBalance reports a single balance bucket of an account.
func (s *accountService) GetBalance(ctx context.Context, accountID string, bucket domain.BalanceBucket) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.BucketValue(bucket), nil
}

// GetBalances reports every balance bucket of an account.
func (s *accountService) GetBalances(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

// ListAccounts retrieves a paginated list of accounts.
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return s.accountRepo.ListAccounts(ctx, limit, offset)
}

// SuspendAccount marks an active account suspended.
func (s *accountService) SuspendAccount(ctx context.Context, accountID string, actorID string) error {
	return s.transitionStatus(ctx, accountID, actorID, domain.AccountSuspended)
}

// ReactivateAccount returns a suspended account to active.
func (s *accountService) ReactivateAccount(ctx context.Context, accountID string, actorID string) error {
	return s.transitionStatus(ctx, accountID, actorID, domain.AccountActive)
}

// CloseAccount closes an account once every bucket is zero.
func (s *accountService) CloseAccount(ctx context.Context, accountID string, actorID string) error {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Status == domain.AccountClosed {
		return fmt.Errorf("%w: account %s is already closed", apperrors.ErrConflict, accountID)
	}
	buckets := []domain.BalanceBucket{
		domain.BucketCurrent, domain.BucketAvailable, domain.BucketPending,
		domain.BucketReserved, domain.BucketFrozen, domain.BucketEscrow,
	}
	for _, b := range buckets {
		if !account.BucketValue(b).IsZero() {
			return fmt.Errorf("%w: account %s has a non-zero %s balance", apperrors.ErrConflict, accountID, b)
		}
	}
	return s.transitionStatus(ctx, accountID, actorID, domain.AccountClosed)
}

func (s *accountService) transitionStatus(ctx context.Context, accountID string, actorID string, target domain.AccountStatus) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Status == target {
		return fmt.Errorf("%w: account %s is already %s", apperrors.ErrConflict, accountID, target)
	}
	if account.Status == domain.AccountClosed {
		return fmt.Errorf("%w: closed account %s cannot change status", apperrors.ErrConflict, accountID)
	}

	now := time.Now().UTC()
	before := *account
	after := *account
	after.Status = target

	audit := domain.NewAuditEvent(domain.AuditAccountStatusChanged, domain.SeverityWarning, domain.EntityAccount, accountID, actorID, now).
		WithStates(before, after, "status")

	if err := s.accountRepo.UpdateAccountStatus(ctx, accountID, target, audit, actorID, now); err != nil {
		return err
	}
	logger.Info("Account status changed",
		slog.String("account_id", accountID),
		slog.String("from", string(account.Status)),
		slog.String("to", string(target)),
	)
	return nil
}

// AddToBalance credits amount to one bucket of an account.
func (s *accountService) AddToBalance(ctx context.Context, accountID string, bucket domain.BalanceBucket, amount decimal.Decimal, reference string, actorID string) (*domain.Account, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	return s.applyDeltas(ctx, accountID, []domain.BucketDelta{{Bucket: bucket, Delta: amount}}, reference, actorID)
}

// SubtractFromBalance debits amount from one bucket of an account.
func (s *accountService) SubtractFromBalance(ctx context.Context, accountID string, bucket domain.BalanceBucket, amount decimal.Decimal, reference string, actorID string) (*domain.Account, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	return s.applyDeltas(ctx, accountID, []domain.BucketDelta{{Bucket: bucket, Delta: amount.Neg()}}, reference, actorID)
}

// TransferBetweenBuckets moves amount between two buckets of one account.
func (s *accountService) TransferBetweenBuckets(ctx context.Context, accountID string, from domain.BalanceBucket, to domain.BalanceBucket, amount decimal.Decimal, reference string, actorID string) (*domain.Account, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if from == to {
		return nil, fmt.Errorf("%w: source and target bucket must differ", apperrors.ErrValidation)
	}
	deltas := []domain.BucketDelta{
		{Bucket: from, Delta: amount.Neg()},
		{Bucket: to, Delta: amount},
	}
	return s.applyDeltas(ctx, accountID, deltas, reference, actorID)
}

func (s *accountService) applyDeltas(ctx context.Context, accountID string, deltas []domain.BucketDelta, reference string, actorID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Status != domain.AccountActive {
		return nil, fmt.Errorf("%w: account %s is %s", apperrors.ErrConflict, accountID, account.Status)
	}

	now := time.Now().UTC()
	changed := make([]string, 0, len(deltas))
	for _, d := range deltas {
		changed = append(changed, strings.ToLower(string(d.Bucket))+"Balance")
	}
	audit := domain.NewAuditEvent(domain.AuditBalanceUpdated, domain.SeverityInfo, domain.EntityAccount, accountID, actorID, now).
		WithStates(account, nil, changed...).
		WithReference(reference)

	updated, err := s.accountRepo.ApplyBucketDeltas(ctx, accountID, deltas, audit, actorID, now)
	if err != nil {
		logger.Warn("Balance update rejected", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return nil, err
	}
	return updated, nil
}

// RecalculateBalance replays every posted journal line against the account and
// reports the replayed current balance alongside the stored one.
func (s *accountService) RecalculateBalance(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	lines, err := s.journalRepo.FindPostedLinesByAccountID(ctx, accountID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	replayed := decimal.Zero
	for _, line := range lines {
		signed, err := accounting.SignedAmount(line, account.AccountCategory)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		replayed = replayed.Add(signed)
	}
	return account.CurrentBalance, replayed, nil
}
