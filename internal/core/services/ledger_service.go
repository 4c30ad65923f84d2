package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/velopay/ledger-core/internal/apperrors"
	"github.com/velopay/ledger-core/internal/core/domain"
	portsrepo "github.com/velopay/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/velopay/ledger-core/internal/core/ports/services"
	"github.com/velopay/ledger-core/internal/dto"
	"github.com/velopay/ledger-core/internal/middleware"
	"github.com/velopay/ledger-core/internal/utils/accounting"
)

// ledgerService orchestrates the cross-module flows: it provisions missing
// accounts, generates the journal entries, and records the business
// transaction in one atomic unit per flow.
type ledgerService struct {
	repos        portsrepo.RepositoryProvider
	publisher    portssvc.EventPublisher
	baseCurrency string
	feePercent   decimal.Decimal
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(repos portsrepo.RepositoryProvider, publisher portssvc.EventPublisher, baseCurrency string, feePercent decimal.Decimal) portssvc.LedgerSvcFacade {
	return &ledgerService{
		repos:        repos,
		publisher:    publisher,
		baseCurrency: baseCurrency,
		feePercent:   feePercent,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// provisionAccount builds a zero-balance account owned by ownerUser or, when
// ownerUser is empty, by the system entity.
func provisionAccount(ownerUser string, accountType domain.AccountType, currency string, actorID string, now time.Time) domain.Account {
	accountID := uuid.NewString()
	name := fmt.Sprintf("%s %s", accountType, currency)
	entityID := ""
	allowNegative := false
	if ownerUser == "" {
		entityID = domain.SystemEntityID
		name = fmt.Sprintf("System %s %s", accountType, currency)
		// System accounts are issuance points: value enters circulation by
		// crediting them, so their book balance may run negative.
		allowNegative = true
	}
	return domain.Account{
		AccountID:            accountID,
		AccountNumber:        buildAccountNumber(accountType, currency, accountID),
		AccountName:          name,
		AccountType:          accountType,
		AccountCategory:      domain.CategoryForType(accountType),
		Currency:             currency,
		CurrencyType:         inferCurrencyType(accountType),
		CurrentBalance:       decimal.Zero,
		AvailableBalance:     decimal.Zero,
		PendingBalance:       decimal.Zero,
		ReservedBalance:      decimal.Zero,
		FrozenBalance:        decimal.Zero,
		EscrowBalance:        decimal.Zero,
		AllowNegativeBalance: allowNegative,
		Status:               domain.AccountActive,
		UserID:               ownerUser,
		EntityID:             entityID,
		AuditFields:          domain.NewAuditFields(actorID, now),
	}
}

// EnsureUserAccount finds or creates a user's account of the given type and
// currency.
func (s *ledgerService) EnsureUserAccount(ctx context.Context, userID string, accountType domain.AccountType, currency string, actorID string) (*domain.Account, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userID is required", apperrors.ErrValidation)
	}
	account, err := s.repos.AccountRepo.FindAccountByOwner(ctx, userID, accountType, currency)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	created := provisionAccount(userID, accountType, currency, actorID, now)
	audit := domain.NewAuditEvent(domain.AuditAccountCreated, domain.SeverityInfo, domain.EntityAccount, created.AccountID, actorID, now).
		WithStates(nil, created, "accountID", "status").
		WithReference(created.AccountNumber)
	if err := s.repos.AccountRepo.SaveAccount(ctx, created, audit); err != nil {
		return nil, err
	}
	return &created, nil
}

// EnsureSystemAccount finds or creates the singleton system account of the
// given type and currency.
func (s *ledgerService) EnsureSystemAccount(ctx context.Context, accountType domain.AccountType, currency string, actorID string) (*domain.Account, error) {
	account, err := s.repos.AccountRepo.FindAccountByOwner(ctx, domain.SystemEntityID, accountType, currency)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	created := provisionAccount("", accountType, currency, actorID, now)
	audit := domain.NewAuditEvent(domain.AuditAccountCreated, domain.SeverityInfo, domain.EntityAccount, created.AccountID, actorID, now).
		WithStates(nil, created, "accountID", "status").
		WithReference(created.AccountNumber)
	if err := s.repos.AccountRepo.SaveAccount(ctx, created, audit); err != nil {
		return nil, err
	}
	return &created, nil
}

// ensureAccountInTx finds an owner's account or creates it inside the given
// transaction. ownerUser empty means the system entity.
func (s *ledgerService) ensureAccountInTx(ctx context.Context, tx pgx.Tx, ownerUser string, accountType domain.AccountType, currency string, actorID string, now time.Time) (*domain.Account, error) {
	owner := ownerUser
	if owner == "" {
		owner = domain.SystemEntityID
	}
	account, err := s.repos.AccountRepo.FindAccountByOwner(ctx, owner, accountType, currency)
	if err == nil {
		if account.Status != domain.AccountActive {
			return nil, fmt.Errorf("%w: account %s is %s", apperrors.ErrConflict, account.AccountID, account.Status)
		}
		return account, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	created := provisionAccount(ownerUser, accountType, currency, actorID, now)
	if err := s.repos.AccountRepo.SaveAccountInTx(ctx, tx, created); err != nil {
		return nil, err
	}
	return &created, nil
}

// assetWalletType maps an external asset type label to the account subtype
// that holds deposits of that asset.
func assetWalletType(assetType string) (domain.AccountType, error) {
	switch assetType {
	case string(domain.PreciousMetals):
		return domain.PreciousMetals, nil
	case string(domain.CryptoAssets):
		return domain.CryptoAssets, nil
	default:
		return "", fmt.Errorf("%w: unsupported asset type %s", apperrors.ErrValidation, assetType)
	}
}

// ProcessAssetDeposit books a confirmed external deposit: the user's asset
// account takes the valuation as a debit and the user's base-currency wallet
// is credited. Both accounts are provisioned on first use.
func (s *ledgerService) ProcessAssetDeposit(ctx context.Context, req dto.AssetDepositRequest, actorID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	assetAccountType, err := assetWalletType(req.AssetType)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transactionID := uuid.NewString()
	entryID := uuid.NewString()
	var txn domain.Transaction

	err = s.repos.TxManager.WithTx(ctx, func(tx pgx.Tx) error {
		assetAccount, err := s.ensureAccountInTx(ctx, tx, req.UserID, assetAccountType, req.Currency, actorID, now)
		if err != nil {
			return err
		}
		wallet, err := s.ensureAccountInTx(ctx, tx, req.UserID, domain.UserWallet, s.baseCurrency, actorID, now)
		if err != nil {
			return err
		}

		description := fmt.Sprintf("Asset deposit %s (%s %s)", req.DepositID, req.Amount.String(), req.Currency)
		lines := []domain.JournalLine{
			newLine(entryID, assetAccount.AccountID, domain.Debit, req.Amount, req.Currency, description, actorID, now),
			newLine(entryID, wallet.AccountID, domain.Credit, req.Amount, req.Currency, description, actorID, now),
		}

		entry := domain.JournalEntry{
			JournalEntryID:        entryID,
			EntryNumber:           newEntryNumber("JE", now, entryID),
			EntryType:             domain.EntryStandard,
			Description:           description,
			Currency:              req.Currency,
			Status:                domain.EntryPosted,
			Lines:                 lines,
			ApprovalStatus:        domain.ApprovalNotRequired,
			BusinessTransactionID: req.DepositID,
			PostedAt:              &now,
			AuditFields:           domain.NewAuditFields(actorID, now),
		}
		entry.CalculateTotals()

		categories := map[string]domain.AccountCategory{
			assetAccount.AccountID: assetAccount.AccountCategory,
			wallet.AccountID:       wallet.AccountCategory,
		}
		changes, err := accounting.BalanceChanges(lines, categories)
		if err != nil {
			return err
		}

		walletID := wallet.AccountID
		assetID := assetAccount.AccountID
		txn = domain.Transaction{
			TransactionID:         transactionID,
			TransactionType:       domain.Deposit,
			Status:                domain.TxnCompleted,
			Amount:                req.Amount,
			Currency:              req.Currency,
			FromAccountID:         &walletID,
			ToAccountID:           &assetID,
			Description:           description,
			BusinessTransactionID: req.DepositID,
			UserID:                req.UserID,
			JournalEntryID:        entryID,
			ComplianceStatus:      domain.ComplianceCleared,
			ReconciliationStatus:  domain.Unreconciled,
			AuditFields:           domain.NewAuditFields(actorID, now),
		}

		audits := []domain.AuditLogEntry{
			domain.NewAuditEvent(domain.AuditTxnProcessed, domain.SeverityInfo, domain.EntityTransaction, transactionID, actorID, now).
				WithStates(nil, txn, "status", "journalEntryID").
				WithReference(req.DepositID),
			domain.NewAuditEvent(domain.AuditEntryPosted, domain.SeverityInfo, domain.EntityJournalEntry, entryID, actorID, now).
				WithStates(nil, entry, "status", "postedAt").
				WithReference(entry.EntryNumber),
		}

		return s.repos.TransactionRepo.SaveTransactionWithEntryInTx(ctx, tx, txn, entry, lines, changes, audits)
	})
	if err != nil {
		logger.Error("Asset deposit failed",
			slog.String("deposit_id", req.DepositID),
			slog.String("user_id", req.UserID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", apperrors.ErrProcessingFailed, err)
	}

	logger.Info("Asset deposit processed",
		slog.String("transaction_id", transactionID),
		slog.String("deposit_id", req.DepositID),
		slog.String("amount", req.Amount.String()),
		slog.String("currency", req.Currency),
	)
	if s.publisher != nil {
		s.publisher.Publish(ctx, domain.NewEvent(domain.EventTransactionProcessed, transactionID, now).
			With("type", string(domain.Deposit)).
			With("depositID", req.DepositID).
			With("amount", req.Amount.String()).
			With("currency", req.Currency))
	}
	return &txn, nil
}

// ProcessBitcoinPurchase exchanges a user's fiat for BTC. The base-currency
// wallet must already exist; the crypto wallet and system accounts are
// provisioned on first use. The fiat leg moves the purchase amount into
// system cash and the fee into the fiat reserve; the crypto leg moves BTC
// from the system reserve into the user's crypto wallet. Both legs commit or
// abort together.
func (s *ledgerService) ProcessBitcoinPurchase(ctx context.Context, req dto.BitcoinPurchaseRequest, actorID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.FiatAmount.LessThanOrEqual(decimal.Zero) || req.CryptoAmount.LessThanOrEqual(decimal.Zero) || req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: fiatAmount, cryptoAmount and rate must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	transactionID := uuid.NewString()
	fiatEntryID := uuid.NewString()
	cryptoEntryID := uuid.NewString()
	fee := req.FiatAmount.Mul(s.feePercent).Round(8)
	total := req.FiatAmount.Add(fee)
	var txn domain.Transaction

	err := s.repos.TxManager.WithTx(ctx, func(tx pgx.Tx) error {
		// The base-currency wallet is the funding source and must already
		// exist; a missing wallet is the caller's error, not a provisioning
		// case.
		fiatWallet, err := s.repos.AccountRepo.FindAccountByOwner(ctx, req.UserID, domain.UserWallet, s.baseCurrency)
		if err != nil {
			return err
		}
		if fiatWallet.Status != domain.AccountActive {
			return fmt.Errorf("%w: account %s is %s", apperrors.ErrConflict, fiatWallet.AccountID, fiatWallet.Status)
		}
		cryptoWallet, err := s.ensureAccountInTx(ctx, tx, req.UserID, domain.CryptoAssets, btcCurrency, actorID, now)
		if err != nil {
			return err
		}
		systemCash, err := s.ensureAccountInTx(ctx, tx, "", domain.SystemCash, s.baseCurrency, actorID, now)
		if err != nil {
			return err
		}
		fiatReserve, err := s.ensureAccountInTx(ctx, tx, "", domain.Reserve, s.baseCurrency, actorID, now)
		if err != nil {
			return err
		}
		btcReserve, err := s.ensureAccountInTx(ctx, tx, "", domain.Reserve, btcCurrency, actorID, now)
		if err != nil {
			return err
		}

		description := fmt.Sprintf("BTC purchase: %s %s at %s", req.CryptoAmount.String(), btcCurrency, req.Rate.String())

		// Fiat leg: the wallet pays purchase amount plus fee. Cash takes
		// exactly the purchase consideration; the fee accrues in the fiat
		// reserve until the periodic fee settlement entry moves it to
		// revenue.
		fiatLines := []domain.JournalLine{
			newLine(fiatEntryID, fiatWallet.AccountID, domain.Credit, total, s.baseCurrency, description, actorID, now),
			newLine(fiatEntryID, systemCash.AccountID, domain.Debit, req.FiatAmount, s.baseCurrency, description, actorID, now),
		}
		if fee.IsPositive() {
			fiatLines = append(fiatLines,
				newLine(fiatEntryID, fiatReserve.AccountID, domain.Debit, fee, s.baseCurrency, "Purchase fee", actorID, now),
			)
		}
		fiatEntry := domain.JournalEntry{
			JournalEntryID:        fiatEntryID,
			EntryNumber:           newEntryNumber("JE", now, fiatEntryID),
			EntryType:             domain.EntryTransfer,
			Description:           description,
			Currency:              s.baseCurrency,
			Status:                domain.EntryPosted,
			Lines:                 fiatLines,
			ApprovalStatus:        domain.ApprovalNotRequired,
			BusinessTransactionID: transactionID,
			PostedAt:              &now,
			AuditFields:           domain.NewAuditFields(actorID, now),
		}
		fiatEntry.CalculateTotals()

		// Crypto leg: BTC leaves the reserve for the user's wallet.
		cryptoLines := []domain.JournalLine{
			newLine(cryptoEntryID, cryptoWallet.AccountID, domain.Debit, req.CryptoAmount, btcCurrency, description, actorID, now),
			newLine(cryptoEntryID, btcReserve.AccountID, domain.Credit, req.CryptoAmount, btcCurrency, description, actorID, now),
		}
		cryptoEntry := domain.JournalEntry{
			JournalEntryID:        cryptoEntryID,
			EntryNumber:           newEntryNumber("JE", now, cryptoEntryID),
			EntryType:             domain.EntryTransfer,
			Description:           description,
			Currency:              btcCurrency,
			Status:                domain.EntryPosted,
			Lines:                 cryptoLines,
			ApprovalStatus:        domain.ApprovalNotRequired,
			BusinessTransactionID: transactionID,
			PostedAt:              &now,
			AuditFields:           domain.NewAuditFields(actorID, now),
		}
		cryptoEntry.CalculateTotals()

		categories := map[string]domain.AccountCategory{
			fiatWallet.AccountID:   fiatWallet.AccountCategory,
			systemCash.AccountID:   systemCash.AccountCategory,
			fiatReserve.AccountID:  fiatReserve.AccountCategory,
			cryptoWallet.AccountID: cryptoWallet.AccountCategory,
			btcReserve.AccountID:   btcReserve.AccountCategory,
		}
		fiatChanges, err := accounting.BalanceChanges(fiatLines, categories)
		if err != nil {
			return err
		}
		cryptoChanges, err := accounting.BalanceChanges(cryptoLines, categories)
		if err != nil {
			return err
		}

		fromID := fiatWallet.AccountID
		toID := cryptoWallet.AccountID
		txn = domain.Transaction{
			TransactionID:        transactionID,
			TransactionType:      domain.Purchase,
			Status:               domain.TxnCompleted,
			Amount:               req.FiatAmount,
			Currency:             s.baseCurrency,
			FromAccountID:        &fromID,
			ToAccountID:          &toID,
			Description:          description,
			UserID:               req.UserID,
			JournalEntryID:       fiatEntryID,
			ComplianceStatus:     domain.ComplianceCleared,
			ReconciliationStatus: domain.Unreconciled,
			AuditFields:          domain.NewAuditFields(actorID, now),
		}

		fiatAudits := []domain.AuditLogEntry{
			domain.NewAuditEvent(domain.AuditTxnProcessed, domain.SeverityInfo, domain.EntityTransaction, transactionID, actorID, now).
				WithStates(nil, txn, "status", "journalEntryID").
				WithReference(transactionID),
			domain.NewAuditEvent(domain.AuditEntryPosted, domain.SeverityInfo, domain.EntityJournalEntry, fiatEntryID, actorID, now).
				WithStates(nil, fiatEntry, "status", "postedAt").
				WithReference(fiatEntry.EntryNumber),
		}
		if err := s.repos.TransactionRepo.SaveTransactionWithEntryInTx(ctx, tx, txn, fiatEntry, fiatLines, fiatChanges, fiatAudits); err != nil {
			return err
		}

		cryptoAudits := []domain.AuditLogEntry{
			domain.NewAuditEvent(domain.AuditEntryPosted, domain.SeverityInfo, domain.EntityJournalEntry, cryptoEntryID, actorID, now).
				WithStates(nil, cryptoEntry, "status", "postedAt").
				WithReference(cryptoEntry.EntryNumber),
		}
		return s.repos.JournalRepo.PostEntryInTx(ctx, tx, cryptoEntry, cryptoLines, cryptoChanges, cryptoAudits, nil)
	})
	if err != nil {
		logger.Error("Bitcoin purchase failed",
			slog.String("user_id", req.UserID),
			slog.String("fiat_amount", req.FiatAmount.String()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", apperrors.ErrProcessingFailed, err)
	}

	logger.Info("Bitcoin purchase processed",
		slog.String("transaction_id", transactionID),
		slog.String("user_id", req.UserID),
		slog.String("fiat_amount", req.FiatAmount.String()),
		slog.String("crypto_amount", req.CryptoAmount.String()),
		slog.String("fee", fee.String()),
	)
	if s.publisher != nil {
		s.publisher.Publish(ctx, domain.NewEvent(domain.EventTransactionProcessed, transactionID, now).
			With("type", string(domain.Purchase)).
			With("fiatAmount", req.FiatAmount.String()).
			With("cryptoAmount", req.CryptoAmount.String()).
			With("fee", fee.String()))
	}
	return &txn, nil
}

// btcCurrency is the ticker used for Bitcoin-denominated accounts.
const btcCurrency = "BTC"

func newLine(entryID, accountID string, side domain.DebitCredit, amount decimal.Decimal, currency, description, actorID string, now time.Time) domain.JournalLine {
	return domain.JournalLine{
		LineID:         uuid.NewString(),
		JournalEntryID: entryID,
		AccountID:      accountID,
		DebitCredit:    side,
		Amount:         amount,
		Currency:       currency,
		Description:    description,
		AuditFields:    domain.NewAuditFields(actorID, now),
	}
}
