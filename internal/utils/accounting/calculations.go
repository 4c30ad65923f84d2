package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/velopay/ledger-core/internal/core/domain"
)

// IsDebitNormal reports whether a debit increases the balance of accounts in
// the given category. Asset and expense families are debit-normal; liability,
// equity and revenue families are credit-normal.
//
// TODO: confirm with accounting that RESERVE subtypes belong on the
// debit-normal side; they currently inherit it through the ASSET category.
func IsDebitNormal(category domain.AccountCategory) (bool, error) {
	switch category {
	case domain.Asset, domain.Expense:
		return true, nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return false, nil
	default:
		return false, fmt.Errorf("unknown account category %q", category)
	}
}

// SignedAmount applies the correct sign to a journal line amount based on the
// account category and the line's side.
// DEBIT to a debit-normal account -> positive; CREDIT -> negative.
// DEBIT to a credit-normal account -> negative; CREDIT -> positive.
func SignedAmount(line domain.JournalLine, category domain.AccountCategory) (decimal.Decimal, error) {
	debitNormal, err := IsDebitNormal(category)
	if err != nil {
		return decimal.Zero, fmt.Errorf("account %s: %w", line.AccountID, err)
	}
	isDebit := line.DebitCredit == domain.Debit
	if isDebit == debitNormal {
		return line.Amount, nil
	}
	return line.Amount.Neg(), nil
}

// ValidateEntryBalance checks the double-entry invariants on a line set:
// at least two lines, at least two distinct accounts, positive amounts, a
// single currency, and equal debit and credit totals.
func ValidateEntryBalance(lines []domain.JournalLine, currency string) error {
	if len(lines) < 2 {
		return fmt.Errorf("journal entry must have at least two lines")
	}

	accounts := make(map[string]struct{}, len(lines))
	debits := decimal.Zero
	credits := decimal.Zero

	for _, line := range lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("line amount must be positive for account %s", line.AccountID)
		}
		if line.Currency != currency {
			return fmt.Errorf("line currency %s does not match entry currency %s for account %s", line.Currency, currency, line.AccountID)
		}
		accounts[line.AccountID] = struct{}{}
		if line.DebitCredit == domain.Debit {
			debits = debits.Add(line.Amount)
		} else {
			credits = credits.Add(line.Amount)
		}
	}

	if len(accounts) < 2 {
		return fmt.Errorf("journal entry must affect at least two different accounts")
	}
	if !debits.Equal(credits) {
		return fmt.Errorf("debits sum %s does not equal credits sum %s", debits.String(), credits.String())
	}
	return nil
}

// BalanceChanges aggregates the net signed balance change per account for a
// set of lines, using each account's category for the sign convention.
func BalanceChanges(lines []domain.JournalLine, categories map[string]domain.AccountCategory) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		category, ok := categories[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("account category not known for account %s", line.AccountID)
		}
		signed, err := SignedAmount(line, category)
		if err != nil {
			return nil, err
		}
		changes[line.AccountID] = changes[line.AccountID].Add(signed)
	}
	return changes, nil
}

// ReversalSide swaps a posting side for reversal entries.
func ReversalSide(side domain.DebitCredit) domain.DebitCredit {
	if side == domain.Debit {
		return domain.Credit
	}
	return domain.Debit
}
