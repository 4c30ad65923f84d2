package domain

import "github.com/shopspring/decimal"

// TransactionType classifies a business-level movement of value.
type TransactionType string

const (
	Transfer   TransactionType = "TRANSFER"
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
	Purchase   TransactionType = "PURCHASE"
	Reversal   TransactionType = "REVERSAL"
)

// TransactionStatus tracks a transaction through its lifecycle.
type TransactionStatus string

const (
	TxnPending   TransactionStatus = "PENDING"
	TxnCompleted TransactionStatus = "COMPLETED"
	TxnFailed    TransactionStatus = "FAILED"
	TxnReversed  TransactionStatus = "REVERSED"
)

// ReconciliationStatus tracks matching against an external statement of record.
type ReconciliationStatus string

const (
	Unreconciled ReconciliationStatus = "UNRECONCILED"
	Reconciled   ReconciliationStatus = "RECONCILED"
	Disputed     ReconciliationStatus = "DISPUTED"
)

// ComplianceStatus is a snapshot of the compliance decision for a transaction.
type ComplianceStatus string

const (
	ComplianceCleared ComplianceStatus = "CLEARED"
	ComplianceFlagged ComplianceStatus = "FLAGGED"
	ComplianceReview  ComplianceStatus = "UNDER_REVIEW"
)

// Transaction represents a single business-level movement of value.
// It owns exactly one generated journal entry by reference (JournalEntryID),
// never by embedding.
type Transaction struct {
	TransactionID         string            `json:"transactionID"` // Primary key (UUID)
	TransactionType       TransactionType   `json:"transactionType"`
	Status                TransactionStatus `json:"status"`
	Amount                decimal.Decimal   `json:"amount"` // Positive value
	Currency              string            `json:"currency"`
	FromAccountID         *string           `json:"fromAccountID,omitempty"`
	ToAccountID           *string           `json:"toAccountID,omitempty"`
	Description           string            `json:"description"`
	BusinessTransactionID string            `json:"businessTransactionID,omitempty"` // Caller correlation ID
	UserID                string            `json:"userID,omitempty"`
	JournalEntryID        string            `json:"journalEntryID"` // FK -> JournalEntry
	RiskScore             int               `json:"riskScore"`
	ComplianceStatus      ComplianceStatus  `json:"complianceStatus"`
	ReconciliationStatus  ReconciliationStatus `json:"reconciliationStatus"`
	ParentTransactionID   *string           `json:"parentTransactionID,omitempty"`   // Set on reversal transactions
	ReversalTransactionID *string           `json:"reversalTransactionID,omitempty"` // Set on reversed transactions
	AuditFields
}
