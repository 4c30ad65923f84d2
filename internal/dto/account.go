package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/velopay/ledger-core/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
// Amounts are decimal strings on the wire; shopspring/decimal parses them
// exactly during binding.
type CreateAccountRequest struct {
	AccountName          string                 `json:"accountName" binding:"required"`
	AccountType          domain.AccountType     `json:"accountType" binding:"required,oneof=USER_WALLET CRYPTO_ASSETS PRECIOUS_METALS SYSTEM_CASH RESERVE SETTLEMENT_PAYABLE RETAINED_EARNINGS FEE_INCOME OPERATING_EXPENSE"`
	AccountCategory      domain.AccountCategory `json:"accountCategory,omitempty" binding:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Currency             string                 `json:"currency" binding:"required,currencycode"`
	CurrencyType         domain.CurrencyType    `json:"currencyType,omitempty" binding:"omitempty,oneof=FIAT CRYPTO COMMODITY"`
	UserID               string                 `json:"userID,omitempty"`
	EntityID             string                 `json:"entityID,omitempty"`
	AllowNegativeBalance bool                   `json:"allowNegativeBalance,omitempty"`
	CreditLimit          *decimal.Decimal       `json:"creditLimit,omitempty"`
	MinimumBalance       *decimal.Decimal       `json:"minimumBalance,omitempty"`
	MaximumBalance       *decimal.Decimal       `json:"maximumBalance,omitempty"`
	Metadata             map[string]string      `json:"metadata,omitempty"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string                 `json:"accountID"`
	AccountNumber   string                 `json:"accountNumber"`
	AccountName     string                 `json:"accountName"`
	AccountType     domain.AccountType     `json:"accountType"`
	AccountCategory domain.AccountCategory `json:"accountCategory"`
	Currency        string                 `json:"currency"`
	CurrencyType    domain.CurrencyType    `json:"currencyType"`
	Balances        BalanceSet             `json:"balances"`
	Status          domain.AccountStatus   `json:"status"`
	UserID          string                 `json:"userID,omitempty"`
	EntityID        string                 `json:"entityID,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	CreatedBy       string                 `json:"createdBy"`
}

// BalanceSet carries the six balance buckets as decimal strings.
type BalanceSet struct {
	Current   string `json:"current"`
	Available string `json:"available"`
	Pending   string `json:"pending"`
	Reserved  string `json:"reserved"`
	Frozen    string `json:"frozen"`
	Escrow    string `json:"escrow"`
}

// BalanceInquiryRequest queries the six-bucket snapshot of an account.
type BalanceInquiryRequest struct {
	AccountID string     `json:"accountID" binding:"required"`
	AsOfDate  *time.Time `json:"asOfDate,omitempty"`
}

// BalanceInquiryResponse is the six-bucket snapshot of an account.
type BalanceInquiryResponse struct {
	AccountID   string     `json:"accountID"`
	AccountName string     `json:"accountName"`
	Currency    string     `json:"currency"`
	Balances    BalanceSet `json:"balances"`
	AsOfDate    time.Time  `json:"asOfDate"`
}

// BalanceOperationRequest moves value on a single account: freeze, unfreeze,
// reserve or release.
type BalanceOperationRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reference string          `json:"reference,omitempty"`
	UserID    string          `json:"userID,omitempty"`
}

// ToBalanceSet converts the account's buckets to decimal strings.
func ToBalanceSet(acc *domain.Account) BalanceSet {
	return BalanceSet{
		Current:   acc.CurrentBalance.String(),
		Available: acc.AvailableBalance.String(),
		Pending:   acc.PendingBalance.String(),
		Reserved:  acc.ReservedBalance.String(),
		Frozen:    acc.FrozenBalance.String(),
		Escrow:    acc.EscrowBalance.String(),
	}
}

// ToAccountResponse converts a domain.Account to an AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		AccountNumber:   acc.AccountNumber,
		AccountName:     acc.AccountName,
		AccountType:     acc.AccountType,
		AccountCategory: acc.AccountCategory,
		Currency:        acc.Currency,
		CurrencyType:    acc.CurrencyType,
		Balances:        ToBalanceSet(acc),
		Status:          acc.Status,
		UserID:          acc.UserID,
		EntityID:        acc.EntityID,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
	}
}

// ToBalanceInquiryResponse builds the balance snapshot DTO.
func ToBalanceInquiryResponse(acc *domain.Account, asOf time.Time) BalanceInquiryResponse {
	return BalanceInquiryResponse{
		AccountID:   acc.AccountID,
		AccountName: acc.AccountName,
		Currency:    acc.Currency,
		Balances:    ToBalanceSet(acc),
		AsOfDate:    asOf,
	}
}
