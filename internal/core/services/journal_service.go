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

// journalService provides journal entry lifecycle operations.
type journalService struct {
	journalRepo       portsrepo.JournalRepositoryFacade
	accountRepo       portsrepo.AccountRepositoryFacade
	publisher         portssvc.EventPublisher
	approvalThreshold decimal.Decimal
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, publisher portssvc.EventPublisher, approvalThreshold decimal.Decimal) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo:       journalRepo,
		accountRepo:       accountRepo,
		publisher:         publisher,
		approvalThreshold: approvalThreshold,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// newEntryNumber derives a unique human-readable entry number.
func newEntryNumber(prefix string, now time.Time, entryID string) string {
	short := strings.ToUpper(strings.ReplaceAll(entryID, "-", ""))
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), short)
}

// GetEntryByID retrieves a journal entry with its lines.
func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	entry.CalculateTotals()
	return entry, nil
}

// ListEntries retrieves a paginated list of entries, newest first.
func (s *journalService) ListEntries(ctx context.Context, limit int, offset int) ([]domain.JournalEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return s.journalRepo.ListEntries(ctx, limit, offset)
}

// CreateEntry validates a new entry and posts it in the same call unless the
// approval rules require review, in which case it lands as PENDING_APPROVAL
// with no balance effect.
func (s *journalService) CreateEntry(ctx context.Context, req dto.CreateJournalEntryRequest, creatorID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	entryID := uuid.NewString()

	lines := make([]domain.JournalLine, len(req.JournalLines))
	for i, lr := range req.JournalLines {
		lines[i] = domain.JournalLine{
			LineID:         uuid.NewString(),
			JournalEntryID: entryID,
			AccountID:      lr.AccountID,
			DebitCredit:    lr.DebitCredit,
			Amount:         lr.Amount,
			Currency:       lr.Currency,
			Description:    lr.Description,
			AuditFields:    domain.NewAuditFields(creatorID, now),
		}
	}

	if err := accounting.ValidateEntryBalance(lines, req.Currency); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnbalanced, err)
	}
	if _, err := s.loadPostableAccounts(ctx, lines, req.Currency); err != nil {
		return nil, err
	}

	entry := domain.JournalEntry{
		JournalEntryID:        entryID,
		EntryNumber:           newEntryNumber("JE", now, entryID),
		EntryType:             req.EntryType,
		Description:           req.Description,
		Currency:              req.Currency,
		Status:                domain.EntryDraft,
		Lines:                 lines,
		ApprovalStatus:        domain.ApprovalNotRequired,
		BusinessTransactionID: req.BusinessTransactionID,
		AuditFields:           domain.NewAuditFields(creatorID, now),
	}
	entry.CalculateTotals()

	if entry.RequiresApproval(s.approvalThreshold) {
		entry.Status = domain.EntryPendingApproval
		entry.ApprovalStatus = domain.ApprovalPending

		audit := domain.NewAuditEvent(domain.AuditEntryCreated, domain.SeverityInfo, domain.EntityJournalEntry, entryID, creatorID, now).
			WithStates(nil, entry, "status", "totalDebits", "totalCredits").
			WithReference(entry.EntryNumber)
		if err := s.journalRepo.SaveEntry(ctx, entry, lines, audit); err != nil {
			logger.Error("Failed to save journal entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
			return nil, err
		}

		logger.Info("Journal entry awaiting approval",
			slog.String("entry_id", entryID),
			slog.String("total", entry.TotalDebits.String()),
		)
		return &entry, nil
	}

	// No approval needed: the entry posts in the same call.
	audit := domain.NewAuditEvent(domain.AuditEntryCreated, domain.SeverityInfo, domain.EntityJournalEntry, entryID, creatorID, now).
		WithStates(nil, entry, "status", "totalDebits", "totalCredits").
		WithReference(entry.EntryNumber)

	logger.Info("Journal entry created",
		slog.String("entry_id", entryID),
		slog.String("total", entry.TotalDebits.String()),
	)
	return s.post(ctx, &entry, creatorID, []domain.AuditLogEntry{audit})
}

// loadPostableAccounts fetches every account the lines touch and checks
// existence, active status and currency agreement.
func (s *journalService) loadPostableAccounts(ctx context.Context, lines []domain.JournalLine, currency string) (map[string]domain.Account, error) {
	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		accountIDs = append(accountIDs, line.AccountID)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range accountIDs {
		account, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if account.Status != domain.AccountActive {
			return nil, fmt.Errorf("%w: account %s is %s", apperrors.ErrConflict, id, account.Status)
		}
		if account.Currency != currency {
			return nil, fmt.Errorf("%w: account %s is denominated in %s, entry in %s", apperrors.ErrValidation, id, account.Currency, currency)
		}
	}
	return accounts, nil
}

// PostEntry posts a draft entry, applying its balance changes atomically.
func (s *journalService) PostEntry(ctx context.Context, entryID string, actorID string) (*domain.JournalEntry, error) {
	entry, err := s.GetEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	switch entry.Status {
	case domain.EntryDraft:
		// postable
	case domain.EntryPendingApproval:
		return nil, fmt.Errorf("%w: entry %s is pending approval", apperrors.ErrApprovalRequired, entryID)
	default:
		return nil, fmt.Errorf("%w: entry %s is %s", apperrors.ErrConflict, entryID, entry.Status)
	}
	return s.post(ctx, entry, actorID, nil)
}

// post validates and persists the posting of entry. extraAudits precede the
// posted-event record in the audit chain.
func (s *journalService) post(ctx context.Context, entry *domain.JournalEntry, actorID string, extraAudits []domain.AuditLogEntry) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry.CalculateTotals()
	if err := accounting.ValidateEntryBalance(entry.Lines, entry.Currency); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnbalanced, err)
	}
	accounts, err := s.loadPostableAccounts(ctx, entry.Lines, entry.Currency)
	if err != nil {
		return nil, err
	}

	categories := make(map[string]domain.AccountCategory, len(accounts))
	for id, account := range accounts {
		categories[id] = account.AccountCategory
	}
	changes, err := accounting.BalanceChanges(entry.Lines, categories)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	before := *entry
	entry.Status = domain.EntryPosted
	entry.PostedAt = &now
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actorID

	audits := append(extraAudits,
		domain.NewAuditEvent(domain.AuditEntryPosted, domain.SeverityInfo, domain.EntityJournalEntry, entry.JournalEntryID, actorID, now).
			WithStates(before, entry, "status", "postedAt").
			WithReference(entry.EntryNumber))
	for accountID, change := range changes {
		audits = append(audits,
			domain.NewAuditEvent(domain.AuditBalanceUpdated, domain.SeverityInfo, domain.EntityAccount, accountID, actorID, now).
				WithStates(nil, map[string]string{"change": change.String()}, "currentBalance", "availableBalance").
				WithReference(entry.EntryNumber))
	}

	if err := s.journalRepo.PostEntry(ctx, *entry, entry.Lines, changes, audits, nil); err != nil {
		logger.Error("Failed to post journal entry", slog.String("entry_id", entry.JournalEntryID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Journal entry posted",
		slog.String("entry_id", entry.JournalEntryID),
		slog.String("entry_number", entry.EntryNumber),
	)
	if s.publisher != nil {
		s.publisher.Publish(ctx, domain.NewEvent(domain.EventJournalEntryPosted, entry.JournalEntryID, now).
			With("entryNumber", entry.EntryNumber).
			With("totalDebits", entry.TotalDebits.String()).
			With("currency", entry.Currency))
	}
	return entry, nil
}

// ApproveEntry approves a pending entry and immediately posts it. The
// approver must differ from the entry's creator.
func (s *journalService) ApproveEntry(ctx context.Context, entryID string, approverID string, req dto.ApprovalRequest) (*domain.JournalEntry, error) {
	entry, err := s.GetEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.EntryPendingApproval {
		return nil, fmt.Errorf("%w: entry %s is %s, not pending approval", apperrors.ErrConflict, entryID, entry.Status)
	}
	if entry.CreatedBy == approverID {
		return nil, fmt.Errorf("%w: entries cannot be approved by their creator", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	entry.ApprovalStatus = domain.ApprovalApproved
	entry.ApprovedBy = approverID
	entry.ApprovedAt = &now

	approvalAudit := domain.NewAuditEvent(domain.AuditEntryApproved, domain.SeverityInfo, domain.EntityJournalEntry, entryID, approverID, now).
		WithStates(nil, map[string]string{"notes": req.Notes}, "approvalStatus", "approvedBy").
		WithReference(entry.EntryNumber)

	return s.post(ctx, entry, approverID, []domain.AuditLogEntry{approvalAudit})
}

// RejectEntry rejects a pending entry, returning it to DRAFT.
func (s *journalService) RejectEntry(ctx context.Context, entryID string, approverID string, req dto.ApprovalRequest) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.GetEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.EntryPendingApproval {
		return nil, fmt.Errorf("%w: entry %s is %s, not pending approval", apperrors.ErrConflict, entryID, entry.Status)
	}
	if entry.CreatedBy == approverID {
		return nil, fmt.Errorf("%w: entries cannot be rejected by their creator", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	audit := domain.NewAuditEvent(domain.AuditEntryRejected, domain.SeverityWarning, domain.EntityJournalEntry, entryID, approverID, now).
		WithStates(nil, map[string]string{"notes": req.Notes}, "approvalStatus", "status").
		WithReference(entry.EntryNumber)

	if err := s.journalRepo.UpdateApproval(ctx, entryID, domain.ApprovalRejected, approverID, now, audit); err != nil {
		return nil, err
	}

	logger.Info("Journal entry rejected", slog.String("entry_id", entryID), slog.String("approver", approverID))
	entry.Status = domain.EntryDraft
	entry.ApprovalStatus = domain.ApprovalRejected
	entry.ApprovedBy = approverID
	entry.ApprovedAt = &now
	return entry, nil
}

// ReverseEntry creates and posts a mirror-image entry for a posted one,
// linking the pair. Reversing twice fails.
func (s *journalService) ReverseEntry(ctx context.Context, entryID string, req dto.ReverseJournalEntryRequest, actorID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.GetEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.EntryPosted {
		return nil, fmt.Errorf("%w: only POSTED entries can be reversed, entry %s is %s", apperrors.ErrConflict, entryID, original.Status)
	}
	if original.ReversalEntryID != nil {
		return nil, fmt.Errorf("%w: entry %s was already reversed by %s", apperrors.ErrConflict, entryID, *original.ReversalEntryID)
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()

	lines := make([]domain.JournalLine, len(original.Lines))
	for i, line := range original.Lines {
		lines[i] = domain.JournalLine{
			LineID:         uuid.NewString(),
			JournalEntryID: reversalID,
			AccountID:      line.AccountID,
			DebitCredit:    accounting.ReversalSide(line.DebitCredit),
			Amount:         line.Amount,
			Currency:       line.Currency,
			Description:    line.Description,
			AuditFields:    domain.NewAuditFields(actorID, now),
		}
	}

	reversal := domain.JournalEntry{
		JournalEntryID:        reversalID,
		EntryNumber:           newEntryNumber("REV", now, reversalID),
		EntryType:             original.EntryType,
		Description:           fmt.Sprintf("Reversal of %s: %s", original.EntryNumber, req.Reason),
		Currency:              original.Currency,
		Status:                domain.EntryPosted,
		Lines:                 lines,
		ApprovalStatus:        domain.ApprovalNotRequired,
		OriginalEntryID:       &original.JournalEntryID,
		BusinessTransactionID: original.BusinessTransactionID,
		PostedAt:              &now,
		AuditFields:           domain.NewAuditFields(actorID, now),
	}
	reversal.CalculateTotals()

	// Accounts may be suspended since the original posting; reversals are
	// still allowed so books can be corrected.
	accountIDs := make([]string, 0, len(lines))
	for id := range uniqueAccountIDs(lines) {
		accountIDs = append(accountIDs, id)
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

	audits := []domain.AuditLogEntry{
		domain.NewAuditEvent(domain.AuditEntryReversed, domain.SeverityWarning, domain.EntityJournalEntry, original.JournalEntryID, actorID, now).
			WithStates(nil, map[string]string{"reason": req.Reason, "reversalEntryID": reversalID}, "status", "reversalEntryID").
			WithReference(original.EntryNumber),
		domain.NewAuditEvent(domain.AuditEntryPosted, domain.SeverityInfo, domain.EntityJournalEntry, reversalID, actorID, now).
			WithStates(nil, reversal, "status", "postedAt").
			WithReference(reversal.EntryNumber),
	}

	if err := s.journalRepo.PostEntry(ctx, reversal, lines, changes, audits, original); err != nil {
		logger.Error("Failed to reverse journal entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Journal entry reversed",
		slog.String("original_entry_id", entryID),
		slog.String("reversal_entry_id", reversalID),
	)
	if s.publisher != nil {
		s.publisher.Publish(ctx, domain.NewEvent(domain.EventJournalEntryPosted, reversalID, now).
			With("entryNumber", reversal.EntryNumber).
			With("originalEntryID", original.JournalEntryID).
			With("currency", reversal.Currency))
	}
	return &reversal, nil
}

func uniqueAccountIDs(lines []domain.JournalLine) map[string]struct{} {
	ids := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		ids[line.AccountID] = struct{}{}
	}
	return ids
}
