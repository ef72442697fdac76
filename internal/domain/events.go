package domain

import "time"

// Event types
const (
	EventTypeTransferCompleted   = "transfer.completed"
	EventTypeFxTransferCompleted = "fx_transfer.completed"
	EventTypeSettlementCompleted = "settlement.completed"
	EventTypeSettlementFailed    = "settlement.failed"
	EventTypeAccountCreated      = "account.created"
)

// Aggregate types
const (
	AggregateTypeTransfer   = "transfer"
	AggregateTypeFxTransfer = "fx_transfer"
	AggregateTypeSettlement = "settlement"
	AggregateTypeAccount    = "account"
)

// OutboxEvent is a notification written in the same transaction as the
// state change it describes and published later.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransferCompletedEvent payload
type TransferCompletedEvent struct {
	TransferID    string `json:"transfer_id"`
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
}

// FxTransferCompletedEvent payload
type FxTransferCompletedEvent struct {
	FxTransferID  string `json:"fx_transfer_id"`
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	FromAmount    string `json:"from_amount"`
	FromCurrency  string `json:"from_currency"`
	ToAmount      string `json:"to_amount"`
	ToCurrency    string `json:"to_currency"`
	Rate          string `json:"rate"`
}

// SettlementEvent payload, used for both completion and terminal failure.
type SettlementEvent struct {
	SettlementID string `json:"settlement_id"`
	TransferID   string `json:"transfer_id"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
	RetryCount   int    `json:"retry_count"`
	LastError    string `json:"last_error,omitempty"`
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Currency  string `json:"currency"`
}

// Map converts the payload into the generic outbox form.
func (e TransferCompletedEvent) Map() map[string]any {
	return map[string]any{
		"transfer_id":     e.TransferID,
		"from_account_id": e.FromAccountID,
		"to_account_id":   e.ToAccountID,
		"amount":          e.Amount,
		"currency":        e.Currency,
	}
}

// Map converts the payload into the generic outbox form.
func (e FxTransferCompletedEvent) Map() map[string]any {
	return map[string]any{
		"fx_transfer_id":  e.FxTransferID,
		"from_account_id": e.FromAccountID,
		"to_account_id":   e.ToAccountID,
		"from_amount":     e.FromAmount,
		"from_currency":   e.FromCurrency,
		"to_amount":       e.ToAmount,
		"to_currency":     e.ToCurrency,
		"rate":            e.Rate,
	}
}

// Map converts the payload into the generic outbox form.
func (e SettlementEvent) Map() map[string]any {
	m := map[string]any{
		"settlement_id": e.SettlementID,
		"transfer_id":   e.TransferID,
		"amount":        e.Amount,
		"currency":      e.Currency,
		"status":        e.Status,
		"retry_count":   e.RetryCount,
	}
	if e.LastError != "" {
		m["last_error"] = e.LastError
	}
	return m
}

// Map converts the payload into the generic outbox form.
func (e AccountCreatedEvent) Map() map[string]any {
	return map[string]any{
		"account_id": e.AccountID,
		"name":       e.Name,
		"currency":   e.Currency,
	}
}
