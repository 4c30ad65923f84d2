package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/velopay/ledger-core/internal/core/domain"
)

// CreateTransactionRequest defines a business-level movement of value.
type CreateTransactionRequest struct {
	TransactionType       domain.TransactionType `json:"transactionType" binding:"required,oneof=TRANSFER DEPOSIT WITHDRAWAL PURCHASE"`
	Amount                decimal.Decimal        `json:"amount" binding:"required"`
	Currency              string                 `json:"currency" binding:"required,currencycode"`
	FromAccountID         *string                `json:"fromAccountID,omitempty"`
	ToAccountID           *string                `json:"toAccountID,omitempty"`
	Description           string                 `json:"description" binding:"required"`
	BusinessTransactionID string                 `json:"businessTransactionID,omitempty"`
	UserID                string                 `json:"userID,omitempty"`
}

// ReverseTransactionRequest reverses a completed transaction.
type ReverseTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
	UserID string `json:"userID,omitempty"`
}

// ReconcileTransactionRequest records the outcome of statement matching.
type ReconcileTransactionRequest struct {
	Status domain.ReconciliationStatus `json:"status" binding:"required,oneof=RECONCILED DISPUTED"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID         string                      `json:"transactionID"`
	TransactionType       domain.TransactionType      `json:"transactionType"`
	Status                domain.TransactionStatus    `json:"status"`
	Amount                string                      `json:"amount"`
	Currency              string                      `json:"currency"`
	FromAccountID         *string                     `json:"fromAccountID,omitempty"`
	ToAccountID           *string                     `json:"toAccountID,omitempty"`
	Description           string                      `json:"description"`
	BusinessTransactionID string                      `json:"businessTransactionID,omitempty"`
	JournalEntryID        string                      `json:"journalEntryID"`
	ReconciliationStatus  domain.ReconciliationStatus `json:"reconciliationStatus"`
	ParentTransactionID   *string                     `json:"parentTransactionID,omitempty"`
	ReversalTransactionID *string                     `json:"reversalTransactionID,omitempty"`
	CreatedAt             time.Time                   `json:"createdAt"`
}

// ToTransactionResponse converts a domain.Transaction to its DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:         txn.TransactionID,
		TransactionType:       txn.TransactionType,
		Status:                txn.Status,
		Amount:                txn.Amount.String(),
		Currency:              txn.Currency,
		FromAccountID:         txn.FromAccountID,
		ToAccountID:           txn.ToAccountID,
		Description:           txn.Description,
		BusinessTransactionID: txn.BusinessTransactionID,
		JournalEntryID:        txn.JournalEntryID,
		ReconciliationStatus:  txn.ReconciliationStatus,
		ParentTransactionID:   txn.ParentTransactionID,
		ReversalTransactionID: txn.ReversalTransactionID,
		CreatedAt:             txn.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of domain transactions to DTOs.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}
