package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/velopay/ledger-core/internal/core/domain"
)

// JournalLineRequest is one posting within a CreateJournalEntryRequest.
type JournalLineRequest struct {
	AccountID   string             `json:"accountID" binding:"required"`
	DebitCredit domain.DebitCredit `json:"debitCredit" binding:"required,oneof=DEBIT CREDIT"`
	Amount      decimal.Decimal    `json:"amount" binding:"required"`
	Currency    string             `json:"currency" binding:"required,currencycode"`
	Description string             `json:"description,omitempty"`
}

// CreateJournalEntryRequest defines a manual journal entry.
type CreateJournalEntryRequest struct {
	EntryType             domain.EntryType     `json:"entryType" binding:"required,oneof=STANDARD TRANSFER ADJUSTING CORRECTING CLOSING"`
	Description           string               `json:"description" binding:"required"`
	Currency              string               `json:"currency" binding:"required,currencycode"`
	JournalLines          []JournalLineRequest `json:"journalLines" binding:"required,min=2,dive"`
	BusinessTransactionID string               `json:"businessTransactionID,omitempty"`
	UserID                string               `json:"userID,omitempty"`
}

// ReverseJournalEntryRequest reverses a posted entry.
type ReverseJournalEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
	UserID string `json:"userID,omitempty"`
}

// ApprovalRequest approves or rejects a pending entry.
type ApprovalRequest struct {
	UserID string `json:"userID,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// JournalLineResponse is one posting in a JournalEntryResponse.
type JournalLineResponse struct {
	LineID      string             `json:"lineID"`
	AccountID   string             `json:"accountID"`
	DebitCredit domain.DebitCredit `json:"debitCredit"`
	Amount      string             `json:"amount"`
	Currency    string             `json:"currency"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	JournalEntryID  string                    `json:"journalEntryID"`
	EntryNumber     string                    `json:"entryNumber"`
	EntryType       domain.EntryType          `json:"entryType"`
	Description     string                    `json:"description"`
	Currency        string                    `json:"currency"`
	Status          domain.JournalEntryStatus `json:"status"`
	TotalDebits     string                    `json:"totalDebits"`
	TotalCredits    string                    `json:"totalCredits"`
	ApprovalStatus  domain.ApprovalStatus     `json:"approvalStatus"`
	OriginalEntryID *string                   `json:"originalEntryID,omitempty"`
	ReversalEntryID *string                   `json:"reversalEntryID,omitempty"`
	PostedAt        *time.Time                `json:"postedAt,omitempty"`
	Lines           []JournalLineResponse     `json:"lines,omitempty"`
	CreatedAt       time.Time                 `json:"createdAt"`
	CreatedBy       string                    `json:"createdBy"`
}

// ToJournalLineResponse converts a domain line to its DTO.
func ToJournalLineResponse(line *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:      line.LineID,
		AccountID:   line.AccountID,
		DebitCredit: line.DebitCredit,
		Amount:      line.Amount.String(),
		Currency:    line.Currency,
	}
}

// ToJournalEntryResponse converts a domain entry (with any loaded lines) to its DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		JournalEntryID:  e.JournalEntryID,
		EntryNumber:     e.EntryNumber,
		EntryType:       e.EntryType,
		Description:     e.Description,
		Currency:        e.Currency,
		Status:          e.Status,
		TotalDebits:     e.TotalDebits.String(),
		TotalCredits:    e.TotalCredits.String(),
		ApprovalStatus:  e.ApprovalStatus,
		OriginalEntryID: e.OriginalEntryID,
		ReversalEntryID: e.ReversalEntryID,
		PostedAt:        e.PostedAt,
		CreatedAt:       e.CreatedAt,
		CreatedBy:       e.CreatedBy,
	}
	for i := range e.Lines {
		resp.Lines = append(resp.Lines, ToJournalLineResponse(&e.Lines[i]))
	}
	return resp
}
