package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/usecase"
)

// Amount accepts a JSON number or a JSON string and keeps its exact text.
type Amount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a number or a numeric string: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name                 string `json:"name"`
	Currency             string `json:"currency"`
	AllowNegativeBalance bool   `json:"allow_negative_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:                 r.Name,
		Currency:             r.Currency,
		AllowNegativeBalance: r.AllowNegativeBalance,
	}
}

// UpdateAccountStatusRequest changes an account's status.
type UpdateAccountStatusRequest struct {
	Status string `json:"status"`
}

// CreateTransferRequest represents a request to create a transfer.
type CreateTransferRequest struct {
	Metadata      map[string]any `json:"metadata,omitempty"`
	FromAccountID string         `json:"from_account_id"`
	ToAccountID   string         `json:"to_account_id"`
	Amount        Amount         `json:"amount"`
	Currency      string         `json:"currency,omitempty"`
	Description   string         `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input. The key comes from the
// Idempotency-Key header.
func (r *CreateTransferRequest) ToUseCaseInput(idempotencyKey string) usecase.TransferFundsInput {
	return usecase.TransferFundsInput{
		Metadata:       r.Metadata,
		FromAccountID:  r.FromAccountID,
		ToAccountID:    r.ToAccountID,
		Amount:         string(r.Amount),
		Currency:       r.Currency,
		IdempotencyKey: idempotencyKey,
		Description:    r.Description,
	}
}

// ForexTransferRequest executes a conversion at a caller supplied quote.
type ForexTransferRequest struct {
	Metadata      map[string]any  `json:"metadata,omitempty"`
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	FromAmount    Amount          `json:"from_amount"`
	FromCurrency  string          `json:"from_currency"`
	ToCurrency    string          `json:"to_currency"`
	Description   string          `json:"description,omitempty"`
	Rate          decimal.Decimal `json:"rate"`
	MarketRate    decimal.Decimal `json:"market_rate"`
	Spread        decimal.Decimal `json:"spread"`
}

// ToUseCaseInput converts to use case input. An empty key lets the
// engine derive one from the parameters.
func (r *ForexTransferRequest) ToUseCaseInput(idempotencyKey string) usecase.ForexTransferInput {
	return usecase.ForexTransferInput{
		Metadata:       r.Metadata,
		FromAccountID:  r.FromAccountID,
		ToAccountID:    r.ToAccountID,
		FromAmount:     string(r.FromAmount),
		FromCurrency:   r.FromCurrency,
		ToCurrency:     r.ToCurrency,
		IdempotencyKey: idempotencyKey,
		Description:    r.Description,
		Rate:           r.Rate,
		MarketRate:     r.MarketRate,
		Spread:         r.Spread,
	}
}

// ConvertRequest quotes and converts in one call.
type ConvertRequest struct {
	Metadata      map[string]any `json:"metadata,omitempty"`
	FromAccountID string         `json:"from_account_id"`
	ToAccountID   string         `json:"to_account_id"`
	FromAmount    Amount         `json:"from_amount"`
	FromCurrency  string         `json:"from_currency"`
	ToCurrency    string         `json:"to_currency"`
	Tier          string         `json:"tier,omitempty"`
	Description   string         `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ConvertRequest) ToUseCaseInput(idempotencyKey string) usecase.ConvertInput {
	return usecase.ConvertInput{
		Metadata:       r.Metadata,
		FromAccountID:  r.FromAccountID,
		ToAccountID:    r.ToAccountID,
		FromAmount:     string(r.FromAmount),
		FromCurrency:   r.FromCurrency,
		ToCurrency:     r.ToCurrency,
		Tier:           r.Tier,
		IdempotencyKey: idempotencyKey,
		Description:    r.Description,
	}
}
