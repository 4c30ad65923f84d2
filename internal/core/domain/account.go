package domain

import (
	"regexp"

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

// AccountType subtypes an account within its category.
type AccountType string

const (
	UserWallet        AccountType = "USER_WALLET"
	CryptoAssets      AccountType = "CRYPTO_ASSETS"
	PreciousMetals    AccountType = "PRECIOUS_METALS"
	SystemCash        AccountType = "SYSTEM_CASH"
	Reserve           AccountType = "RESERVE"
	SettlementPayable AccountType = "SETTLEMENT_PAYABLE"
	RetainedEarnings  AccountType = "RETAINED_EARNINGS"
	FeeIncome         AccountType = "FEE_INCOME"
	OperatingExpense  AccountType = "OPERATING_EXPENSE"
)

// CategoryForType maps each account subtype to its accounting category.
// An unknown type maps to the empty category, which fails validation.
func CategoryForType(t AccountType) AccountCategory {
	switch t {
	case UserWallet, CryptoAssets, PreciousMetals, SystemCash, Reserve:
		return Asset
	case SettlementPayable:
		return Liability
	case RetainedEarnings:
		return Equity
	case FeeIncome:
		return Revenue
	case OperatingExpense:
		return Expense
	default:
		return ""
	}
}

// CurrencyType classifies the currency an account is denominated in.
type CurrencyType string

const (
	Fiat      CurrencyType = "FIAT"
	Crypto    CurrencyType = "CRYPTO"
	Commodity CurrencyType = "COMMODITY"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountActive    AccountStatus = "ACTIVE"
	AccountSuspended AccountStatus = "SUSPENDED"
	AccountClosed    AccountStatus = "CLOSED"
)

// SystemEntityID is the owner recorded on platform-held accounts.
const SystemEntityID = "SYSTEM"

// BalanceBucket names one of the six balance views of an account.
type BalanceBucket string

const (
	BucketCurrent   BalanceBucket = "CURRENT"
	BucketAvailable BalanceBucket = "AVAILABLE"
	BucketPending   BalanceBucket = "PENDING"
	BucketReserved  BalanceBucket = "RESERVED"
	BucketFrozen    BalanceBucket = "FROZEN"
	BucketEscrow    BalanceBucket = "ESCROW"
)

// currencyCodePattern: 3-10 uppercase letters (covers ISO fiat, crypto tickers
// and commodity codes like XAU).
var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3,10}$`)

// IsValidCurrencyCode reports whether code has the expected format.
func IsValidCurrencyCode(code string) bool {
	return currencyCodePattern.MatchString(code)
}

// Account represents a financial account within the core domain.
// Accounts reference related entities by opaque IDs only; they never embed
// journal entries or transactions.
type Account struct {
	AccountID            string           `json:"accountID"`     // Primary key (UUID)
	AccountNumber        string           `json:"accountNumber"` // Human-readable, derived from type+currency
	AccountName          string           `json:"accountName"`
	AccountType          AccountType      `json:"accountType"`
	AccountCategory      AccountCategory  `json:"accountCategory"`
	Currency             string           `json:"currency"`
	CurrencyType         CurrencyType     `json:"currencyType"`
	CurrentBalance       decimal.Decimal  `json:"currentBalance"`
	AvailableBalance     decimal.Decimal  `json:"availableBalance"`
	PendingBalance       decimal.Decimal  `json:"pendingBalance"`
	ReservedBalance      decimal.Decimal  `json:"reservedBalance"`
	FrozenBalance        decimal.Decimal  `json:"frozenBalance"`
	EscrowBalance        decimal.Decimal  `json:"escrowBalance"`
	AllowNegativeBalance bool             `json:"allowNegativeBalance"`
	CreditLimit          *decimal.Decimal `json:"creditLimit,omitempty"`
	MinimumBalance       *decimal.Decimal `json:"minimumBalance,omitempty"`
	MaximumBalance       *decimal.Decimal `json:"maximumBalance,omitempty"`
	Status               AccountStatus    `json:"status"`
	UserID               string           `json:"userID,omitempty"`   // Owner (user accounts)
	EntityID             string           `json:"entityID,omitempty"` // Owner (system/corporate accounts)
	AuditFields
}

// BucketValue returns the value of the named balance bucket.
func (a *Account) BucketValue(bucket BalanceBucket) decimal.Decimal {
	switch bucket {
	case BucketCurrent:
		return a.CurrentBalance
	case BucketAvailable:
		return a.AvailableBalance
	case BucketPending:
		return a.PendingBalance
	case BucketReserved:
		return a.ReservedBalance
	case BucketFrozen:
		return a.FrozenBalance
	case BucketEscrow:
		return a.EscrowBalance
	default:
		return decimal.Zero
	}
}

// SetBucketValue overwrites the named balance bucket.
func (a *Account) SetBucketValue(bucket BalanceBucket, v decimal.Decimal) {
	switch bucket {
	case BucketCurrent:
		a.CurrentBalance = v
	case BucketAvailable:
		a.AvailableBalance = v
	case BucketPending:
		a.PendingBalance = v
	case BucketReserved:
		a.ReservedBalance = v
	case BucketFrozen:
		a.FrozenBalance = v
	case BucketEscrow:
		a.EscrowBalance = v
	}
}

// Floor returns the lowest value the given bucket may reach.
// Zero by default; -creditLimit when negative balances are allowed; the
// configured minimum balance applies to the current and available buckets.
func (a *Account) Floor(bucket BalanceBucket) decimal.Decimal {
	floor := decimal.Zero
	if a.AllowNegativeBalance {
		if a.CreditLimit != nil {
			floor = a.CreditLimit.Neg()
		} else {
			floor = unboundedCredit.Neg()
		}
	}
	if a.MinimumBalance != nil && (bucket == BucketCurrent || bucket == BucketAvailable) {
		if a.MinimumBalance.GreaterThan(floor) {
			floor = *a.MinimumBalance
		}
	}
	return floor
}

// CanWithdraw reports whether subtracting amount from the bucket keeps it at
// or above the account's floor.
func (a *Account) CanWithdraw(bucket BalanceBucket, amount decimal.Decimal) bool {
	return a.BucketValue(bucket).Sub(amount).GreaterThanOrEqual(a.Floor(bucket))
}

// unboundedCredit is a practical stand-in for "no credit limit configured".
var unboundedCredit = decimal.New(1, 30)

// BucketDelta is a signed change to a single balance bucket. Bucket
// operations (freeze, reserve, single-bucket updates) are expressed as one or
// more deltas applied atomically under a row lock.
type BucketDelta struct {
	Bucket BalanceBucket
	Delta  decimal.Decimal
}
