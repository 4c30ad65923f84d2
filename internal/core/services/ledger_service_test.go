package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/velopay/ledger-core/internal/apperrors"
	"github.com/velopay/ledger-core/internal/core/domain"
	portsrepo "github.com/velopay/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/velopay/ledger-core/internal/core/ports/services"
	"github.com/velopay/ledger-core/internal/core/services"
	"github.com/velopay/ledger-core/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockJournalRepo *MockJournalRepository
	mockTxnRepo     *MockTransactionRepository
	mockAuditRepo   *MockAuditRepository
	mockTxManager   *MockTxManager
	mockPublisher   *MockEventPublisher
	service         portssvc.LedgerSvcFacade
	userID          string
	actorID         string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.mockTxManager = new(MockTxManager)
	suite.mockPublisher = new(MockEventPublisher)

	repos := portsrepo.RepositoryProvider{
		AccountRepo:     suite.mockAccountRepo,
		JournalRepo:     suite.mockJournalRepo,
		TransactionRepo: suite.mockTxnRepo,
		AuditRepo:       suite.mockAuditRepo,
		TxManager:       suite.mockTxManager,
	}
	suite.service = services.NewLedgerService(repos, suite.mockPublisher, "USD", decimal.NewFromFloat(0.01))

	suite.userID = uuid.NewString()
	suite.actorID = uuid.NewString()
}

func (suite *LedgerServiceTestSuite) activeAccount(owner string, accountType domain.AccountType, currency string) *domain.Account {
	category := domain.CategoryForType(accountType)
	account := &domain.Account{
		AccountID:       uuid.NewString(),
		AccountType:     accountType,
		AccountCategory: category,
		Currency:        currency,
		Status:          domain.AccountActive,
	}
	if owner == domain.SystemEntityID {
		account.EntityID = owner
	} else {
		account.UserID = owner
	}
	return account
}

func (suite *LedgerServiceTestSuite) TestEnsureUserAccount_Existing() {
	ctx := context.Background()
	existing := suite.activeAccount(suite.userID, domain.UserWallet, "USD")

	suite.mockAccountRepo.On("FindAccountByOwner", ctx, suite.userID, domain.UserWallet, "USD").Return(existing, nil).Once()

	account, err := suite.service.EnsureUserAccount(ctx, suite.userID, domain.UserWallet, "USD", suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(existing.AccountID, account.AccountID)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestEnsureUserAccount_CreatesWhenMissing() {
	ctx := context.Background()

	suite.mockAccountRepo.On("FindAccountByOwner", ctx, suite.userID, domain.UserWallet, "USD").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account"), mock.AnythingOfType("domain.AuditLogEntry")).
		Run(func(args mock.Arguments) {
			account := args.Get(1).(domain.Account)
			suite.Equal(suite.userID, account.UserID)
			suite.Equal(domain.AccountActive, account.Status)
			suite.True(account.CurrentBalance.IsZero())
			suite.False(account.AllowNegativeBalance)
		}).
		Return(nil).Once()

	account, err := suite.service.EnsureUserAccount(ctx, suite.userID, domain.UserWallet, "USD", suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(suite.userID, account.UserID)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestEnsureSystemAccount_OwnedBySystem() {
	ctx := context.Background()

	suite.mockAccountRepo.On("FindAccountByOwner", ctx, domain.SystemEntityID, domain.SystemCash, "USD").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account"), mock.AnythingOfType("domain.AuditLogEntry")).
		Run(func(args mock.Arguments) {
			account := args.Get(1).(domain.Account)
			suite.Equal(domain.SystemEntityID, account.EntityID)
			suite.Empty(account.UserID)
			// System accounts issue value and must be able to run negative,
			// or the first credit against a fresh reserve would bounce off
			// its floor.
			suite.True(account.AllowNegativeBalance)
		}).
		Return(nil).Once()

	_, err := suite.service.EnsureSystemAccount(ctx, domain.SystemCash, "USD", suite.actorID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestProcessAssetDeposit_Success() {
	ctx := context.Background()
	assetAccount := suite.activeAccount(suite.userID, domain.PreciousMetals, "USD")
	wallet := suite.activeAccount(suite.userID, domain.UserWallet, "USD")
	req := dto.AssetDepositRequest{
		UserID:    suite.userID,
		DepositID: uuid.NewString(),
		AssetType: string(domain.PreciousMetals),
		Amount:    decimal.NewFromInt(300),
		Currency:  "USD",
	}

	suite.mockTxManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByOwner", ctx, suite.userID, domain.PreciousMetals, "USD").Return(assetAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByOwner", ctx, suite.userID, domain.UserWallet, "USD").Return(wallet, nil).Once()
	suite.mockTxnRepo.On("SaveTransactionWithEntryInTx", ctx, nil, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), mock.AnythingOfType("map[string]decimal.Decimal"), mock.AnythingOfType("[]domain.AuditLogEntry")).
		Run(func(args mock.Arguments) {
			entry := args.Get(3).(domain.JournalEntry)
			lines := args.Get(4).([]domain.JournalLine)
			changes := args.Get(5).(map[string]decimal.Decimal)
			suite.Equal(domain.EntryPosted, entry.Status)
			// The asset account takes the valuation as a debit; the wallet
			// is credited.
			suite.Require().Len(lines, 2)
			suite.Equal(assetAccount.AccountID, lines[0].AccountID)
			suite.Equal(domain.Debit, lines[0].DebitCredit)
			suite.Equal(wallet.AccountID, lines[1].AccountID)
			suite.Equal(domain.Credit, lines[1].DebitCredit)
			suite.True(changes[assetAccount.AccountID].Equal(decimal.NewFromInt(300)))
			suite.True(changes[wallet.AccountID].Equal(decimal.NewFromInt(-300)))
		}).
		Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.AnythingOfType("domain.Event")).Return().Once()

	txn, err := suite.service.ProcessAssetDeposit(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.TxnCompleted, txn.Status)
	suite.Equal(domain.Deposit, txn.TransactionType)
	suite.Equal(&wallet.AccountID, txn.FromAccountID)
	suite.Equal(&assetAccount.AccountID, txn.ToAccountID)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestProcessAssetDeposit_ProvisionsMissingAccounts() {
	ctx := context.Background()
	req := dto.AssetDepositRequest{
		UserID:    suite.userID,
		DepositID: uuid.NewString(),
		AssetType: string(domain.CryptoAssets),
		Amount:    decimal.NewFromInt(40),
		Currency:  "USD",
	}

	suite.mockTxManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByOwner", ctx, suite.userID, domain.CryptoAssets, "USD").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("FindAccountByOwner", ctx, suite.userID, domain.UserWallet, "USD").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("SaveAccountInTx", ctx, nil, mock.AnythingOfType("domain.Account")).Return(nil).Twice()
	suite.mockTxnRepo.On("SaveTransactionWithEntryInTx", ctx, nil, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.AnythingOfType("domain.Event")).Return().Once()

	_, err := suite.service.ProcessAssetDeposit(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestProcessAssetDeposit_UnknownAssetType() {
	ctx := context.Background()
	req := dto.AssetDepositRequest{
		UserID:    suite.userID,
		DepositID: uuid.NewString(),
		AssetType: "REAL_ESTATE",
		Amount:    decimal.NewFromInt(1),
		Currency:  "USD",
	}

	_, err := suite.service.ProcessAssetDeposit(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxManager.AssertNotCalled(suite.T(), "WithTx", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestProcessBitcoinPurchase_FeeAndBothLegs() {
	ctx := context.Background()
	fiatWallet := suite.activeAccount(suite.userID, domain.UserWallet, "USD")
	cryptoWallet := suite.activeAccount(suite.userID, domain.CryptoAssets, "BTC")
	systemCash := suite.activeAccount(domain.SystemEntityID, domain.SystemCash, "USD")
	fiatReserve := suite.activeAccount(domain.SystemEntityID, domain.Reserve, "USD")
	btcReserve := suite.activeAccount(domain.SystemEntityID, domain.Reserve, "BTC")
	req := dto.BitcoinPurchaseRequest{
		UserID:       suite.userID,
		FiatAmount:   decimal.NewFromInt(1000),
		CryptoAmount: decimal.NewFromFloat(0.02),
		Rate:         decimal.NewFromInt(50000),
	}

	suite.mockTxManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByOwner", ctx, suite.userID, domain.UserWallet, "USD").Return(fiatWallet, nil).Once()
	suite.mockAccountRepo.On("FindAccountByOwner", ctx, suite.userID, domain.CryptoAssets, "BTC").Return(cryptoWallet, nil).Once()
	suite.mockAccountRepo.On("FindAccountByOwner", ctx, domain.SystemEntityID, domain.SystemCash, "USD").Return(systemCash, nil).Once()
	suite.mockAccountRepo.On("FindAccountByOwner", ctx, domain.SystemEntityID, domain.Reserve, "USD").Return(fiatReserve, nil).Once()
	suite.mockAccountRepo.On("FindAccountByOwner", ctx, domain.SystemEntityID, domain.Reserve, "BTC").Return(btcReserve, nil).Once()

	suite.mockTxnRepo.On("SaveTransactionWithEntryInTx", ctx, nil, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), mock.AnythingOfType("map[string]decimal.Decimal"), mock.AnythingOfType("[]domain.AuditLogEntry")).
		Run(func(args mock.Arguments) {
			entry := args.Get(3).(domain.JournalEntry)
			lines := args.Get(4).([]domain.JournalLine)
			changes := args.Get(5).(map[string]decimal.Decimal)
			// Fee is 1% of 1000: the wallet pays 1010, cash takes the 1000
			// purchase amount and the 10 fee accrues in the fiat reserve.
			suite.Require().Len(lines, 3)
			suite.True(entry.TotalDebits.Equal(decimal.NewFromInt(1010)))
			suite.True(entry.IsBalanced())
			suite.Equal(fiatWallet.AccountID, lines[0].AccountID)
			suite.Equal(domain.Credit, lines[0].DebitCredit)
			suite.True(lines[0].Amount.Equal(decimal.NewFromInt(1010)))
			suite.Equal(systemCash.AccountID, lines[1].AccountID)
			suite.True(lines[1].Amount.Equal(decimal.NewFromInt(1000)))
			suite.Equal(fiatReserve.AccountID, lines[2].AccountID)
			suite.True(lines[2].Amount.Equal(decimal.NewFromInt(10)))
			suite.True(changes[fiatWallet.AccountID].Equal(decimal.NewFromInt(-1010)))
			suite.True(changes[systemCash.AccountID].Equal(decimal.NewFromInt(1000)))
			suite.True(changes[fiatReserve.AccountID].Equal(decimal.NewFromInt(10)))
		}).
		Return(nil).Once()
	suite.mockJournalRepo.On("PostEntryInTx", ctx, nil, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), mock.AnythingOfType("map[string]decimal.Decimal"), mock.AnythingOfType("[]domain.AuditLogEntry"), (*domain.JournalEntry)(nil)).
		Run(func(args mock.Arguments) {
			entry := args.Get(2).(domain.JournalEntry)
			changes := args.Get(4).(map[string]decimal.Decimal)
			suite.Equal("BTC", entry.Currency)
			suite.True(changes[cryptoWallet.AccountID].Equal(req.CryptoAmount))
			suite.True(changes[btcReserve.AccountID].Equal(req.CryptoAmount.Neg()))
		}).
		Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.AnythingOfType("domain.Event")).Return().Once()

	txn, err := suite.service.ProcessBitcoinPurchase(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.Purchase, txn.TransactionType)
	suite.Equal(&fiatWallet.AccountID, txn.FromAccountID)
	suite.Equal(&cryptoWallet.AccountID, txn.ToAccountID)
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestProcessBitcoinPurchase_MissingWallet() {
	ctx := context.Background()
	req := dto.BitcoinPurchaseRequest{
		UserID:       suite.userID,
		FiatAmount:   decimal.NewFromInt(100),
		CryptoAmount: decimal.NewFromFloat(0.002),
		Rate:         decimal.NewFromInt(50000),
	}

	suite.mockTxManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByOwner", ctx, suite.userID, domain.UserWallet, "USD").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.ProcessBitcoinPurchase(ctx, req, suite.actorID)

	suite.Require().Error(err)
	// The funding wallet is never provisioned here; its absence surfaces as
	// a not-found failure.
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Equal(apperrors.CodeAccountNotFound, apperrors.CodeFor(err))
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccountInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactionWithEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestProcessBitcoinPurchase_SuspendedWallet() {
	ctx := context.Background()
	fiatWallet := suite.activeAccount(suite.userID, domain.UserWallet, "USD")
	fiatWallet.Status = domain.AccountSuspended
	req := dto.BitcoinPurchaseRequest{
		UserID:       suite.userID,
		FiatAmount:   decimal.NewFromInt(100),
		CryptoAmount: decimal.NewFromFloat(0.002),
		Rate:         decimal.NewFromInt(50000),
	}

	suite.mockTxManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByOwner", ctx, suite.userID, domain.UserWallet, "USD").Return(fiatWallet, nil).Once()

	_, err := suite.service.ProcessBitcoinPurchase(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrProcessingFailed)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactionWithEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestProcessBitcoinPurchase_NonPositiveAmounts() {
	ctx := context.Background()
	req := dto.BitcoinPurchaseRequest{
		UserID:       suite.userID,
		FiatAmount:   decimal.Zero,
		CryptoAmount: decimal.NewFromFloat(0.01),
		Rate:         decimal.NewFromInt(50000),
	}

	_, err := suite.service.ProcessBitcoinPurchase(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
