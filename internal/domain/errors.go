package domain

import (
	"errors"
	"fmt"
)

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountInactive   = errors.New("account is not active")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Transfer errors
	ErrSameAccount             = errors.New("cannot transfer to same account")
	ErrInvalidAmount           = errors.New("amount must be a positive number")
	ErrCurrencyMismatch        = errors.New("account currency does not match transfer currency")
	ErrTransferNotFound        = errors.New("transfer not found")
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")

	// FX errors
	ErrSameCurrency = errors.New("source and target currency must differ")
	ErrInvalidRate  = errors.New("exchange rate must be positive")
	ErrRateNotFound = errors.New("exchange rate not available")

	// Settlement errors
	ErrSettlementNotFound      = errors.New("settlement not found")
	ErrInvalidSettlementStatus = errors.New("invalid settlement status")
)

var validationErrors = []error{
	ErrInvalidAmount,
	ErrSameAccount,
	ErrSameCurrency,
	ErrInvalidRate,
	ErrInvalidCurrency,
	ErrInvalidAccountName,
	ErrAmountTooLarge,
	ErrMetadataTooLarge,
	ErrInvalidSettlementStatus,
	ErrInvalidAccountStatus,
}

// IsValidation reports whether err is caused by bad caller input.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// SettlementExecutionError wraps a failure reported by a settlement rail.
type SettlementExecutionError struct {
	SettlementID string
	Err          error
}

func (e *SettlementExecutionError) Error() string {
	return fmt.Sprintf("settlement %s execution failed: %v", e.SettlementID, e.Err)
}

func (e *SettlementExecutionError) Unwrap() error {
	return e.Err
}
