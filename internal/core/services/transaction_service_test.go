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
	portssvc "github.com/velopay/ledger-core/internal/core/ports/services"
	"github.com/velopay/ledger-core/internal/core/services"
	"github.com/velopay/ledger-core/internal/dto"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	mockTxnRepo     *MockTransactionRepository
	mockAccountRepo *MockAccountRepository
	mockJournalRepo *MockJournalRepository
	mockPublisher   *MockEventPublisher
	service         portssvc.TransactionSvcFacade
	walletAccount   domain.Account
	cashAccount     domain.Account
	actorID         string
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockPublisher = new(MockEventPublisher)
	suite.service = services.NewTransactionService(suite.mockTxnRepo, suite.mockAccountRepo, suite.mockJournalRepo, suite.mockPublisher)

	suite.actorID = uuid.NewString()
	suite.walletAccount = domain.Account{
		AccountID:       uuid.NewString(),
		AccountType:     domain.UserWallet,
		AccountCategory: domain.Asset,
		Currency:        "USD",
		Status:          domain.AccountActive,
	}
	suite.cashAccount = domain.Account{
		AccountID:       uuid.NewString(),
		AccountType:     domain.SystemCash,
		AccountCategory: domain.Asset,
		Currency:        "USD",
		Status:          domain.AccountActive,
		EntityID:        domain.SystemEntityID,
	}
}

func (suite *TransactionServiceTestSuite) TestProcessTransaction_Transfer() {
	ctx := context.Background()
	other := suite.cashAccount
	req := dto.CreateTransactionRequest{
		TransactionType: domain.Transfer,
		Amount:          decimal.NewFromInt(25),
		Currency:        "USD",
		FromAccountID:   &suite.walletAccount.AccountID,
		ToAccountID:     &other.AccountID,
		Description:     "move funds",
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.walletAccount.AccountID).Return(&suite.walletAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, other.AccountID).Return(&other, nil).Once()
	suite.mockTxnRepo.On("SaveTransactionWithEntry", ctx, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), mock.AnythingOfType("map[string]decimal.Decimal"), mock.AnythingOfType("[]domain.AuditLogEntry")).
		Run(func(args mock.Arguments) {
			entry := args.Get(2).(domain.JournalEntry)
			lines := args.Get(3).([]domain.JournalLine)
			changes := args.Get(4).(map[string]decimal.Decimal)
			suite.Equal(domain.EntryTransfer, entry.EntryType)
			suite.Equal(domain.EntryPosted, entry.Status)
			suite.Require().Len(lines, 2)
			suite.Equal(domain.Debit, lines[0].DebitCredit)
			suite.Equal(other.AccountID, lines[0].AccountID)
			suite.True(changes[suite.walletAccount.AccountID].Equal(decimal.NewFromInt(-25)))
			suite.True(changes[other.AccountID].Equal(decimal.NewFromInt(25)))
		}).
		Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.AnythingOfType("domain.Event")).Return().Once()

	txn, err := suite.service.ProcessTransaction(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.TxnCompleted, txn.Status)
	suite.Equal(domain.Unreconciled, txn.ReconciliationStatus)
	suite.NotEmpty(txn.JournalEntryID)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestProcessTransaction_DepositDefaultsSystemCash() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		TransactionType: domain.Deposit,
		Amount:          decimal.NewFromInt(50),
		Currency:        "USD",
		ToAccountID:     &suite.walletAccount.AccountID,
		Description:     "wire in",
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.walletAccount.AccountID).Return(&suite.walletAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByOwner", ctx, domain.SystemEntityID, domain.SystemCash, "USD").Return(&suite.cashAccount, nil).Once()
	suite.mockTxnRepo.On("SaveTransactionWithEntry", ctx, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), mock.AnythingOfType("map[string]decimal.Decimal"), mock.AnythingOfType("[]domain.AuditLogEntry")).
		Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.AnythingOfType("domain.Event")).Return().Once()

	txn, err := suite.service.ProcessTransaction(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(&suite.cashAccount.AccountID, txn.FromAccountID)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestProcessTransaction_NoSystemCash() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		TransactionType: domain.Deposit,
		Amount:          decimal.NewFromInt(50),
		Currency:        "CHF",
		ToAccountID:     &suite.walletAccount.AccountID,
		Description:     "wire in",
	}
	chfWallet := suite.walletAccount
	chfWallet.Currency = "CHF"

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.walletAccount.AccountID).Return(&chfWallet, nil).Once()
	suite.mockAccountRepo.On("FindAccountByOwner", ctx, domain.SystemEntityID, domain.SystemCash, "CHF").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.ProcessTransaction(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestProcessTransaction_SameAccount() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		TransactionType: domain.Transfer,
		Amount:          decimal.NewFromInt(5),
		Currency:        "USD",
		FromAccountID:   &suite.walletAccount.AccountID,
		ToAccountID:     &suite.walletAccount.AccountID,
		Description:     "self",
	}

	_, err := suite.service.ProcessTransaction(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestProcessTransaction_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		TransactionType: domain.Transfer,
		Amount:          decimal.NewFromInt(-1),
		Currency:        "USD",
		FromAccountID:   &suite.walletAccount.AccountID,
		ToAccountID:     &suite.cashAccount.AccountID,
		Description:     "bad",
	}

	_, err := suite.service.ProcessTransaction(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestProcessTransaction_RepositoryFailure() {
	ctx := context.Background()
	other := suite.cashAccount
	req := dto.CreateTransactionRequest{
		TransactionType: domain.Transfer,
		Amount:          decimal.NewFromInt(25),
		Currency:        "USD",
		FromAccountID:   &suite.walletAccount.AccountID,
		ToAccountID:     &other.AccountID,
		Description:     "move funds",
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.walletAccount.AccountID).Return(&suite.walletAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, other.AccountID).Return(&other, nil).Once()
	suite.mockTxnRepo.On("SaveTransactionWithEntry", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(apperrors.ErrInsufficientBalance).Once()

	_, err := suite.service.ProcessTransaction(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrProcessingFailed)
	// The repository's sentinel stays reachable through the wrap, so the
	// loser of a concurrent overdraft race surfaces the right code.
	suite.ErrorIs(err, apperrors.ErrInsufficientBalance)
	suite.Equal(apperrors.CodeInsufficientBalance, apperrors.CodeFor(err))
	suite.mockPublisher.AssertNotCalled(suite.T(), "Publish", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestProcessTransaction_EmptyAccountID() {
	ctx := context.Background()
	empty := ""
	req := dto.CreateTransactionRequest{
		TransactionType: domain.Transfer,
		Amount:          decimal.NewFromInt(25),
		Currency:        "USD",
		FromAccountID:   &empty,
		ToAccountID:     &suite.cashAccount.AccountID,
		Description:     "move funds",
	}

	_, err := suite.service.ProcessTransaction(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FindAccountByID", mock.Anything, mock.Anything)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactionWithEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) completedTransaction() *domain.Transaction {
	fromID := suite.walletAccount.AccountID
	toID := suite.cashAccount.AccountID
	return &domain.Transaction{
		TransactionID:        uuid.NewString(),
		TransactionType:      domain.Transfer,
		Status:               domain.TxnCompleted,
		Amount:               decimal.NewFromInt(25),
		Currency:             "USD",
		FromAccountID:        &fromID,
		ToAccountID:          &toID,
		JournalEntryID:       uuid.NewString(),
		ReconciliationStatus: domain.Unreconciled,
	}
}

func (suite *TransactionServiceTestSuite) TestReverseTransaction_MirrorsLines() {
	ctx := context.Background()
	original := suite.completedTransaction()
	originalLines := []domain.JournalLine{
		{LineID: uuid.NewString(), JournalEntryID: original.JournalEntryID, AccountID: suite.cashAccount.AccountID, DebitCredit: domain.Debit, Amount: decimal.NewFromInt(25), Currency: "USD"},
		{LineID: uuid.NewString(), JournalEntryID: original.JournalEntryID, AccountID: suite.walletAccount.AccountID, DebitCredit: domain.Credit, Amount: decimal.NewFromInt(25), Currency: "USD"},
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, original.TransactionID).Return(original, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, original.JournalEntryID).Return(originalLines, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).
		Return(map[string]domain.Account{
			suite.walletAccount.AccountID: suite.walletAccount,
			suite.cashAccount.AccountID:   suite.cashAccount,
		}, nil).Once()
	suite.mockTxnRepo.On("SaveReversalWithEntry", ctx, mock.AnythingOfType("domain.Transaction"), *original, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), mock.AnythingOfType("map[string]decimal.Decimal"), mock.AnythingOfType("[]domain.AuditLogEntry")).
		Run(func(args mock.Arguments) {
			reversal := args.Get(1).(domain.Transaction)
			entry := args.Get(3).(domain.JournalEntry)
			lines := args.Get(4).([]domain.JournalLine)
			suite.Equal(domain.Reversal, reversal.TransactionType)
			suite.Equal(&original.TransactionID, reversal.ParentTransactionID)
			suite.Equal(original.ToAccountID, reversal.FromAccountID)
			suite.Equal(domain.EntryCorrecting, entry.EntryType)
			suite.Equal(domain.Credit, lines[0].DebitCredit)
			suite.Equal(domain.Debit, lines[1].DebitCredit)
		}).
		Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.AnythingOfType("domain.Event")).Return().Once()

	reversal, err := suite.service.ReverseTransaction(ctx, original.TransactionID, dto.ReverseTransactionRequest{Reason: "chargeback"}, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.TxnCompleted, reversal.Status)
	suite.True(reversal.Amount.Equal(original.Amount))
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestReverseTransaction_AlreadyReversed() {
	ctx := context.Background()
	original := suite.completedTransaction()
	existing := uuid.NewString()
	original.ReversalTransactionID = &existing

	suite.mockTxnRepo.On("FindTransactionByID", ctx, original.TransactionID).Return(original, nil).Once()

	_, err := suite.service.ReverseTransaction(ctx, original.TransactionID, dto.ReverseTransactionRequest{Reason: "dup"}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *TransactionServiceTestSuite) TestReverseTransaction_NotCompleted() {
	ctx := context.Background()
	original := suite.completedTransaction()
	original.Status = domain.TxnReversed

	suite.mockTxnRepo.On("FindTransactionByID", ctx, original.TransactionID).Return(original, nil).Once()

	_, err := suite.service.ReverseTransaction(ctx, original.TransactionID, dto.ReverseTransactionRequest{Reason: "late"}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *TransactionServiceTestSuite) TestMarkReconciled_Success() {
	ctx := context.Background()
	txn := suite.completedTransaction()

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()
	suite.mockTxnRepo.On("UpdateReconciliationStatus", ctx, txn.TransactionID, domain.Reconciled, mock.AnythingOfType("domain.AuditLogEntry"), suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.MarkReconciled(ctx, txn.TransactionID, domain.Reconciled, suite.actorID)

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestMarkReconciled_InvalidOutcome() {
	ctx := context.Background()

	err := suite.service.MarkReconciled(ctx, uuid.NewString(), domain.Unreconciled, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestMarkReconciled_PendingTransaction() {
	ctx := context.Background()
	txn := suite.completedTransaction()
	txn.Status = domain.TxnPending

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	err := suite.service.MarkReconciled(ctx, txn.TransactionID, domain.Disputed, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
