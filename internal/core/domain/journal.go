package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntryStatus indicates the state of a journal entry.
type JournalEntryStatus string

const (
	EntryDraft           JournalEntryStatus = "DRAFT"
	EntryPendingApproval JournalEntryStatus = "PENDING_APPROVAL"
	EntryPosted          JournalEntryStatus = "POSTED"
	EntryReversed        JournalEntryStatus = "REVERSED"
)

// EntryType classifies a journal entry by origin.
type EntryType string

const (
	EntryStandard   EntryType = "STANDARD"
	EntryTransfer   EntryType = "TRANSFER"
	EntryAdjusting  EntryType = "ADJUSTING"
	EntryCorrecting EntryType = "CORRECTING"
	EntryClosing    EntryType = "CLOSING"
)

// DebitCredit indicates the side of a journal line.
type DebitCredit string

const (
	Debit  DebitCredit = "DEBIT"
	Credit DebitCredit = "CREDIT"
)

// ApprovalStatus tracks the approval workflow of an entry.
type ApprovalStatus string

const (
	ApprovalNotRequired ApprovalStatus = "NOT_REQUIRED"
	ApprovalPending     ApprovalStatus = "PENDING"
	ApprovalApproved    ApprovalStatus = "APPROVED"
	ApprovalRejected    ApprovalStatus = "REJECTED"
)

// JournalLine is a single posting within a journal entry, affecting one account.
type JournalLine struct {
	LineID         string          `json:"lineID"`         // Primary key (UUID)
	JournalEntryID string          `json:"journalEntryID"` // FK -> JournalEntry
	AccountID      string          `json:"accountID"`      // FK -> Account
	DebitCredit    DebitCredit     `json:"debitCredit"`
	Amount         decimal.Decimal `json:"amount"` // Positive value
	Currency       string          `json:"currency"`
	Description    string          `json:"description,omitempty"`
	AuditFields
}

// JournalEntry is an atomic set of >=2 balanced postings.
// Related entities (original/reversal entries, business transaction) are
// referenced by ID, never embedded.
type JournalEntry struct {
	JournalEntryID        string             `json:"journalEntryID"` // Primary key (UUID)
	EntryNumber           string             `json:"entryNumber"`    // Unique, e.g. JE-20260828-... or REV-...
	EntryType             EntryType          `json:"entryType"`
	Description           string             `json:"description"`
	Currency              string             `json:"currency"`
	Status                JournalEntryStatus `json:"status"`
	Lines                 []JournalLine      `json:"lines,omitempty"`
	TotalDebits           decimal.Decimal    `json:"totalDebits"`  // Derived, never hand-set
	TotalCredits          decimal.Decimal    `json:"totalCredits"` // Derived, never hand-set
	ApprovalStatus        ApprovalStatus     `json:"approvalStatus"`
	ApprovedBy            string             `json:"approvedBy,omitempty"`
	ApprovedAt            *time.Time         `json:"approvedAt,omitempty"`
	OriginalEntryID       *string            `json:"originalEntryID,omitempty"` // Set on reversal entries
	ReversalEntryID       *string            `json:"reversalEntryID,omitempty"` // Set on reversed entries
	BusinessTransactionID string             `json:"businessTransactionID,omitempty"`
	PostedAt              *time.Time         `json:"postedAt,omitempty"`
	AuditFields
}

// CalculateTotals recomputes TotalDebits and TotalCredits from the lines.
// Must be called before any balance check.
func (e *JournalEntry) CalculateTotals() {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, line := range e.Lines {
		if line.DebitCredit == Debit {
			debits = debits.Add(line.Amount)
		} else {
			credits = credits.Add(line.Amount)
		}
	}
	e.TotalDebits = debits
	e.TotalCredits = credits
}

// IsBalanced reports whether total debits equal total credits.
func (e *JournalEntry) IsBalanced() bool {
	return e.TotalDebits.Equal(e.TotalCredits)
}

// RequiresApproval is computed, not stored: entries at or above the
// configured value threshold, and adjusting/correcting entries, must be
// approved before posting.
func (e *JournalEntry) RequiresApproval(threshold decimal.Decimal) bool {
	if e.EntryType == EntryAdjusting || e.EntryType == EntryCorrecting {
		return true
	}
	return e.TotalDebits.GreaterThanOrEqual(threshold)
}

// IsMutable reports whether the entry's line set may still change.
func (e *JournalEntry) IsMutable() bool {
	return e.Status == EntryDraft || e.Status == EntryPendingApproval
}

// AddLine appends a line to a draft entry and recomputes totals.
func (e *JournalEntry) AddLine(line JournalLine) error {
	if !e.IsMutable() {
		return fmt.Errorf("cannot add line to %s entry %s", e.Status, e.JournalEntryID)
	}
	line.JournalEntryID = e.JournalEntryID
	e.Lines = append(e.Lines, line)
	e.CalculateTotals()
	return nil
}

// RemoveLine deletes a line from a draft entry by ID and recomputes totals.
func (e *JournalEntry) RemoveLine(lineID string) error {
	if !e.IsMutable() {
		return fmt.Errorf("cannot remove line from %s entry %s", e.Status, e.JournalEntryID)
	}
	for i, line := range e.Lines {
		if line.LineID == lineID {
			e.Lines = append(e.Lines[:i], e.Lines[i+1:]...)
			e.CalculateTotals()
			return nil
		}
	}
	return fmt.Errorf("line %s not found on entry %s", lineID, e.JournalEntryID)
}
