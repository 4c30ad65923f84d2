package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/velopay/ledger-core/internal/apperrors"
	"github.com/velopay/ledger-core/internal/core/domain"
	portssvc "github.com/velopay/ledger-core/internal/core/ports/services"
	"github.com/velopay/ledger-core/internal/core/services"
	"github.com/velopay/ledger-core/internal/utils/hashing"
)

type AuditServiceTestSuite struct {
	suite.Suite
	mockAuditRepo *MockAuditRepository
	service       portssvc.AuditSvcFacade
}

func (suite *AuditServiceTestSuite) SetupTest() {
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.service = services.NewAuditService(suite.mockAuditRepo)
}

// chain builds n valid hash-chained records starting at the given sequence
// and anchor.
func (suite *AuditServiceTestSuite) chain(n int, fromSequence int64, anchor string) []domain.AuditLogEntry {
	records := make([]domain.AuditLogEntry, n)
	prev := anchor
	for i := range records {
		rec := domain.AuditLogEntry{
			AuditID:      uuid.NewString(),
			Sequence:     fromSequence + int64(i),
			EventType:    domain.AuditBalanceUpdated,
			Severity:     domain.SeverityInfo,
			EntityType:   domain.EntityAccount,
			EntityID:     uuid.NewString(),
			PerformedBy:  "tester",
			RecordedAt:   time.Now().UTC(),
			PreviousHash: prev,
		}
		rec.Hash = hashing.ComputeHash(rec)
		prev = rec.Hash
		records[i] = rec
	}
	return records
}

func (suite *AuditServiceTestSuite) TestVerifyChain_ValidFromGenesis() {
	ctx := context.Background()
	records := suite.chain(5, 1, hashing.GenesisHash)

	suite.mockAuditRepo.On("ListBySequence", ctx, int64(1), 1000).Return(records, nil).Once()

	resp, err := suite.service.VerifyChain(ctx, 1, 0)

	suite.Require().NoError(err)
	suite.True(resp.Valid)
	suite.Equal(5, resp.CheckedCount)
	suite.Nil(resp.FirstBroken)
}

func (suite *AuditServiceTestSuite) TestVerifyChain_TamperedRecord() {
	ctx := context.Background()
	records := suite.chain(5, 1, hashing.GenesisHash)
	records[2].PerformedBy = "intruder"

	suite.mockAuditRepo.On("ListBySequence", ctx, int64(1), 1000).Return(records, nil).Once()

	resp, err := suite.service.VerifyChain(ctx, 1, 0)

	suite.Require().NoError(err)
	suite.False(resp.Valid)
	suite.Require().NotNil(resp.FirstBroken)
	suite.Equal(int64(3), *resp.FirstBroken)
}

func (suite *AuditServiceTestSuite) TestVerifyChain_BrokenLink() {
	ctx := context.Background()
	records := suite.chain(4, 1, hashing.GenesisHash)
	records[1].PreviousHash = hashing.GenesisHash
	records[1].Hash = hashing.ComputeHash(records[1])

	suite.mockAuditRepo.On("ListBySequence", ctx, int64(1), 1000).Return(records, nil).Once()

	resp, err := suite.service.VerifyChain(ctx, 1, 0)

	suite.Require().NoError(err)
	suite.False(resp.Valid)
	suite.Require().NotNil(resp.FirstBroken)
	suite.Equal(int64(2), *resp.FirstBroken)
}

func (suite *AuditServiceTestSuite) TestVerifyChain_MidChainWindow() {
	ctx := context.Background()
	anchor := hashing.ComputeHash(domain.AuditLogEntry{AuditID: uuid.NewString()})
	records := suite.chain(3, 10, anchor)

	suite.mockAuditRepo.On("ListBySequence", ctx, int64(10), 1000).Return(records, nil).Once()

	resp, err := suite.service.VerifyChain(ctx, 10, 0)

	suite.Require().NoError(err)
	suite.True(resp.Valid)
	suite.Equal(3, resp.CheckedCount)
}

func (suite *AuditServiceTestSuite) TestVerifyChain_EmptyWindow() {
	ctx := context.Background()

	suite.mockAuditRepo.On("ListBySequence", ctx, int64(1), 1000).Return([]domain.AuditLogEntry{}, nil).Once()

	resp, err := suite.service.VerifyChain(ctx, 0, -5)

	suite.Require().NoError(err)
	suite.True(resp.Valid)
	suite.Equal(0, resp.CheckedCount)
}

func (suite *AuditServiceTestSuite) TestVerifyRecord() {
	ctx := context.Background()
	records := suite.chain(1, 1, hashing.GenesisHash)
	rec := records[0]

	suite.mockAuditRepo.On("FindAuditByID", ctx, rec.AuditID).Return(&rec, nil).Once()

	valid, err := suite.service.VerifyRecord(ctx, rec.AuditID)

	suite.Require().NoError(err)
	suite.True(valid)
}

func (suite *AuditServiceTestSuite) TestVerifyRecord_Tampered() {
	ctx := context.Background()
	records := suite.chain(1, 1, hashing.GenesisHash)
	rec := records[0]
	rec.EntityID = uuid.NewString()

	suite.mockAuditRepo.On("FindAuditByID", ctx, rec.AuditID).Return(&rec, nil).Once()

	valid, err := suite.service.VerifyRecord(ctx, rec.AuditID)

	suite.Require().NoError(err)
	suite.False(valid)
}

func (suite *AuditServiceTestSuite) TestRecordEvent_FillsDefaults() {
	ctx := context.Background()
	entry := domain.AuditLogEntry{
		EventType:   domain.AuditAccountCreated,
		Severity:    domain.SeverityInfo,
		EntityType:  domain.EntityAccount,
		EntityID:    uuid.NewString(),
		PerformedBy: "tester",
	}

	suite.mockAuditRepo.On("Append", ctx, mock.AnythingOfType("[]domain.AuditLogEntry")).
		Run(func(args mock.Arguments) {
			entries := args.Get(1).([]domain.AuditLogEntry)
			suite.Require().Len(entries, 1)
			suite.NotEmpty(entries[0].AuditID)
			suite.False(entries[0].RecordedAt.IsZero())
		}).
		Return([]domain.AuditLogEntry{entry}, nil).Once()

	appended, err := suite.service.RecordEvent(ctx, entry)

	suite.Require().NoError(err)
	suite.Require().NotNil(appended)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *AuditServiceTestSuite) TestRecordEvent_MissingEntity() {
	ctx := context.Background()

	_, err := suite.service.RecordEvent(ctx, domain.AuditLogEntry{EventType: domain.AuditAccountCreated})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAuditRepo.AssertNotCalled(suite.T(), "Append", mock.Anything, mock.Anything)
}

func (suite *AuditServiceTestSuite) TestGetEntityHistory_UnknownEntityType() {
	ctx := context.Background()

	_, err := suite.service.GetEntityHistory(ctx, "USER", uuid.NewString(), 10)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestAuditServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuditServiceTestSuite))
}
