package mapping

import (
	"github.com/velopay/ledger-core/internal/core/domain"
	"github.com/velopay/ledger-core/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry.
// Lines are mapped separately; the entry row never embeds them.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		JournalEntryID:        d.JournalEntryID,
		EntryNumber:           d.EntryNumber,
		EntryType:             string(d.EntryType),
		Description:           d.Description,
		Currency:              d.Currency,
		Status:                string(d.Status),
		TotalDebits:           d.TotalDebits,
		TotalCredits:          d.TotalCredits,
		ApprovalStatus:        string(d.ApprovalStatus),
		ApprovedBy:            d.ApprovedBy,
		ApprovedAt:            d.ApprovedAt,
		OriginalEntryID:       d.OriginalEntryID,
		ReversalEntryID:       d.ReversalEntryID,
		BusinessTransactionID: d.BusinessTransactionID,
		PostedAt:              d.PostedAt,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		JournalEntryID:        m.JournalEntryID,
		EntryNumber:           m.EntryNumber,
		EntryType:             domain.EntryType(m.EntryType),
		Description:           m.Description,
		Currency:              m.Currency,
		Status:                domain.JournalEntryStatus(m.Status),
		TotalDebits:           m.TotalDebits,
		TotalCredits:          m.TotalCredits,
		ApprovalStatus:        domain.ApprovalStatus(m.ApprovalStatus),
		ApprovedBy:            m.ApprovedBy,
		ApprovedAt:            m.ApprovedAt,
		OriginalEntryID:       m.OriginalEntryID,
		ReversalEntryID:       m.ReversalEntryID,
		BusinessTransactionID: m.BusinessTransactionID,
		PostedAt:              m.PostedAt,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine.
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:         d.LineID,
		JournalEntryID: d.JournalEntryID,
		AccountID:      d.AccountID,
		DebitCredit:    string(d.DebitCredit),
		Amount:         d.Amount,
		Currency:       d.Currency,
		Description:    d.Description,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine.
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:         m.LineID,
		JournalEntryID: m.JournalEntryID,
		AccountID:      m.AccountID,
		DebitCredit:    domain.DebitCredit(m.DebitCredit),
		Amount:         m.Amount,
		Currency:       m.Currency,
		Description:    m.Description,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalLineSlice converts model lines to domain lines.
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalLine(m)
	}
	return ds
}
