package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType tells which side of the double entry a ledger row is on.
type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// Entry represents a single immutable ledger entry (debit or credit).
// Debits carry a negative Amount, credits a positive one.
type Entry struct {
	CreatedAt              time.Time
	ID                     string
	AccountID              string
	ReferenceID            string
	Type                   EntryType
	Description            string
	Amount                 decimal.Decimal
	AccountPreviousBalance decimal.Decimal
	AccountCurrentBalance  decimal.Decimal
	AccountVersion         int64
}

// NewEntryPair builds the debit and credit rows for one movement. The debit
// lowers from by debitAmount and the credit raises to by creditAmount; for a
// same-currency transfer the two amounts are equal.
func NewEntryPair(
	ids func() string,
	referenceID, description string,
	from *Account, debitAmount decimal.Decimal,
	to *Account, creditAmount decimal.Decimal,
	now time.Time,
) (debit, credit *Entry) {
	debit = &Entry{
		ID:                     ids(),
		AccountID:              from.ID,
		ReferenceID:            referenceID,
		Type:                   EntryTypeDebit,
		Description:            description,
		Amount:                 debitAmount.Neg(),
		AccountPreviousBalance: from.Balance,
		AccountCurrentBalance:  from.ApplyDebit(debitAmount),
		AccountVersion:         from.Version + 1,
		CreatedAt:              now,
	}

	credit = &Entry{
		ID:                     ids(),
		AccountID:              to.ID,
		ReferenceID:            referenceID,
		Type:                   EntryTypeCredit,
		Description:            description,
		Amount:                 creditAmount,
		AccountPreviousBalance: to.Balance,
		AccountCurrentBalance:  to.ApplyCredit(creditAmount),
		AccountVersion:         to.Version + 1,
		CreatedAt:              now,
	}

	return debit, credit
}
