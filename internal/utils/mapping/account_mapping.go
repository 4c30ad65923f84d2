package mapping

import (
	"github.com/velopay/ledger-core/internal/core/domain"
	"github.com/velopay/ledger-core/internal/models"
)

// ToModelAccount converts a domain Account to a model Account.
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:            d.AccountID,
		AccountNumber:        d.AccountNumber,
		AccountName:          d.AccountName,
		AccountType:          string(d.AccountType),
		AccountCategory:      models.AccountCategory(d.AccountCategory),
		Currency:             d.Currency,
		CurrencyType:         string(d.CurrencyType),
		CurrentBalance:       d.CurrentBalance,
		AvailableBalance:     d.AvailableBalance,
		PendingBalance:       d.PendingBalance,
		ReservedBalance:      d.ReservedBalance,
		FrozenBalance:        d.FrozenBalance,
		EscrowBalance:        d.EscrowBalance,
		AllowNegativeBalance: d.AllowNegativeBalance,
		CreditLimit:          d.CreditLimit,
		MinimumBalance:       d.MinimumBalance,
		MaximumBalance:       d.MaximumBalance,
		Status:               string(d.Status),
		UserID:               d.UserID,
		EntityID:             d.EntityID,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:            m.AccountID,
		AccountNumber:        m.AccountNumber,
		AccountName:          m.AccountName,
		AccountType:          domain.AccountType(m.AccountType),
		AccountCategory:      domain.AccountCategory(m.AccountCategory),
		Currency:             m.Currency,
		CurrencyType:         domain.CurrencyType(m.CurrencyType),
		CurrentBalance:       m.CurrentBalance,
		AvailableBalance:     m.AvailableBalance,
		PendingBalance:       m.PendingBalance,
		ReservedBalance:      m.ReservedBalance,
		FrozenBalance:        m.FrozenBalance,
		EscrowBalance:        m.EscrowBalance,
		AllowNegativeBalance: m.AllowNegativeBalance,
		CreditLimit:          m.CreditLimit,
		MinimumBalance:       m.MinimumBalance,
		MaximumBalance:       m.MaximumBalance,
		Status:               domain.AccountStatus(m.Status),
		UserID:               m.UserID,
		EntityID:             m.EntityID,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}
