package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the state a transfer is recorded in. Transfers complete
// synchronously, so only one status exists today.
type TransferStatus string

const TransferStatusCompleted TransferStatus = "completed"

// TransferType classifies a transfer.
type TransferType string

const TransferTypeInternal TransferType = "internal"

// Transfer represents a money movement between two accounts.
type Transfer struct {
	CreatedAt      time.Time
	Metadata       map[string]any
	IdempotencyKey *string
	ID             string
	FromAccountID  string
	ToAccountID    string
	Currency       string
	Description    string
	Status         TransferStatus
	Type           TransferType
	Amount         decimal.Decimal
}

// Validate validates transfer request.
func (t *Transfer) Validate() error {
	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccount
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}
