package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusFrozen AccountStatus = "frozen"
	AccountStatusClosed AccountStatus = "closed"
)

// IsValid reports whether s is a known account status.
func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountStatusActive, AccountStatusFrozen, AccountStatusClosed:
		return true
	default:
		return false
	}
}

// Account represents a ledger account that holds a balance in one currency.
type Account struct {
	ID       string
	Name     string
	Currency string
	Balance  decimal.Decimal
	Status   AccountStatus
	Version  int64
	// AllowNegativeBalance is reserved for issuance/funding accounts.
	AllowNegativeBalance bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CanTransact checks that the account may take part in a transfer.
func (a *Account) CanTransact() error {
	switch a.Status {
	case AccountStatusActive:
		return nil
	case AccountStatusFrozen, AccountStatusClosed:
		return ErrAccountInactive
	default:
		return ErrAccountInactive
	}
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.AllowNegativeBalance {
		return nil
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
