package models

import (
	"github.com/shopspring/decimal"
)

// AccountCategory is the fundamental accounting classification of an account.
type AccountCategory string

const (
	Asset     AccountCategory = "ASSET"
	Liability AccountCategory = "LIABILITY"
	Equity    AccountCategory = "EQUITY"
	Revenue   AccountCategory = "REVENUE"
	Expense   AccountCategory = "EXPENSE"
)

// Account is the persistence model for a ledger account row.
type Account struct {
	AccountID            string           `db:"account_id"`
	AccountNumber        string           `db:"account_number"`
	AccountName          string           `db:"account_name"`
	AccountType          string           `db:"account_type"`
	AccountCategory      AccountCategory  `db:"account_category"`
	Currency             string           `db:"currency"`
	CurrencyType         string           `db:"currency_type"`
	CurrentBalance       decimal.Decimal  `db:"current_balance"`
	AvailableBalance     decimal.Decimal  `db:"available_balance"`
	PendingBalance       decimal.Decimal  `db:"pending_balance"`
	ReservedBalance      decimal.Decimal  `db:"reserved_balance"`
	FrozenBalance        decimal.Decimal  `db:"frozen_balance"`
	EscrowBalance        decimal.Decimal  `db:"escrow_balance"`
	AllowNegativeBalance bool             `db:"allow_negative_balance"`
	CreditLimit          *decimal.Decimal `db:"credit_limit"`
	MinimumBalance       *decimal.Decimal `db:"minimum_balance"`
	MaximumBalance       *decimal.Decimal `db:"maximum_balance"`
	Status               string           `db:"status"`
	UserID               string           `db:"user_id"`   // Nullable owner reference
	EntityID             string           `db:"entity_id"` // Nullable owner reference
	AuditFields
}
