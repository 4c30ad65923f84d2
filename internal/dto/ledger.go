package dto

import (
	"github.com/shopspring/decimal"
)

// AssetDepositRequest credits a user's wallet against a deposited asset.
// Valuation (amount in the wallet currency) is supplied by the caller.
type AssetDepositRequest struct {
	UserID    string          `json:"userID" binding:"required"`
	DepositID string          `json:"depositID" binding:"required"`
	AssetType string          `json:"assetType" binding:"required,oneof=PRECIOUS_METALS CRYPTO_ASSETS"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Currency  string          `json:"currency" binding:"required,currencycode"`
}

// BitcoinPurchaseRequest settles a fiat-to-Bitcoin purchase for a user.
// The exchange rate is supplied by the caller; the ledger does no pricing.
type BitcoinPurchaseRequest struct {
	UserID       string          `json:"userID" binding:"required"`
	FiatAmount   decimal.Decimal `json:"fiatAmount" binding:"required"`
	CryptoAmount decimal.Decimal `json:"cryptoAmount" binding:"required"`
	Rate         decimal.Decimal `json:"rate" binding:"required"`
}
