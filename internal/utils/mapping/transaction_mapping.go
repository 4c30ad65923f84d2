package mapping

import (
	"github.com/velopay/ledger-core/internal/core/domain"
	"github.com/velopay/ledger-core/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:         d.TransactionID,
		TransactionType:       string(d.TransactionType),
		Status:                string(d.Status),
		Amount:                d.Amount,
		Currency:              d.Currency,
		FromAccountID:         d.FromAccountID,
		ToAccountID:           d.ToAccountID,
		Description:           d.Description,
		BusinessTransactionID: d.BusinessTransactionID,
		UserID:                d.UserID,
		JournalEntryID:        d.JournalEntryID,
		RiskScore:             d.RiskScore,
		ComplianceStatus:      string(d.ComplianceStatus),
		ReconciliationStatus:  string(d.ReconciliationStatus),
		ParentTransactionID:   d.ParentTransactionID,
		ReversalTransactionID: d.ReversalTransactionID,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:         m.TransactionID,
		TransactionType:       domain.TransactionType(m.TransactionType),
		Status:                domain.TransactionStatus(m.Status),
		Amount:                m.Amount,
		Currency:              m.Currency,
		FromAccountID:         m.FromAccountID,
		ToAccountID:           m.ToAccountID,
		Description:           m.Description,
		BusinessTransactionID: m.BusinessTransactionID,
		UserID:                m.UserID,
		JournalEntryID:        m.JournalEntryID,
		RiskScore:             m.RiskScore,
		ComplianceStatus:      domain.ComplianceStatus(m.ComplianceStatus),
		ReconciliationStatus:  domain.ReconciliationStatus(m.ReconciliationStatus),
		ParentTransactionID:   m.ParentTransactionID,
		ReversalTransactionID: m.ReversalTransactionID,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}
