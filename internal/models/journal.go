package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the persistence model for a journal entry row.
type JournalEntry struct {
	JournalEntryID        string          `db:"journal_entry_id"`
	EntryNumber           string          `db:"entry_number"`
	EntryType             string          `db:"entry_type"`
	Description           string          `db:"description"`
	Currency              string          `db:"currency"`
	Status                string          `db:"status"`
	TotalDebits           decimal.Decimal `db:"total_debits"`
	TotalCredits          decimal.Decimal `db:"total_credits"`
	ApprovalStatus        string          `db:"approval_status"`
	ApprovedBy            string          `db:"approved_by"`
	ApprovedAt            *time.Time      `db:"approved_at"`
	OriginalEntryID       *string         `db:"original_entry_id"`
	ReversalEntryID       *string         `db:"reversal_entry_id"`
	BusinessTransactionID string          `db:"business_transaction_id"`
	PostedAt              *time.Time      `db:"posted_at"`
	AuditFields
}

// JournalLine is the persistence model for a single posting row.
type JournalLine struct {
	LineID         string          `db:"line_id"`
	JournalEntryID string          `db:"journal_entry_id"`
	AccountID      string          `db:"account_id"`
	DebitCredit    string          `db:"debit_credit"`
	Amount         decimal.Decimal `db:"amount"`
	Currency       string          `db:"currency"`
	Description    string          `db:"description"`
	AuditFields
}
