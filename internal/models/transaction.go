package models

import (
	"github.com/shopspring/decimal"
)

// Transaction is the persistence model for a business transaction row.
type Transaction struct {
	TransactionID         string          `db:"transaction_id"`
	TransactionType       string          `db:"transaction_type"`
	Status                string          `db:"status"`
	Amount                decimal.Decimal `db:"amount"`
	Currency              string          `db:"currency"`
	FromAccountID         *string         `db:"from_account_id"`
	ToAccountID           *string         `db:"to_account_id"`
	Description           string          `db:"description"`
	BusinessTransactionID string          `db:"business_transaction_id"`
	UserID                string          `db:"user_id"`
	JournalEntryID        string          `db:"journal_entry_id"`
	RiskScore             int             `db:"risk_score"`
	ComplianceStatus      string          `db:"compliance_status"`
	ReconciliationStatus  string          `db:"reconciliation_status"`
	ParentTransactionID   *string         `db:"parent_transaction_id"`
	ReversalTransactionID *string         `db:"reversal_transaction_id"`
	AuditFields
}
