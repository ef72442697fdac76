package dto

import (
	"time"

	"github.com/iho/paycore/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Currency             string    `json:"currency"`
	Balance              string    `json:"balance"`
	Status               string    `json:"status"`
	Version              int64     `json:"version"`
	AllowNegativeBalance bool      `json:"allow_negative_balance"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:                   a.ID,
		Name:                 a.Name,
		Currency:             a.Currency,
		Balance:              a.Balance.String(),
		Status:               string(a.Status),
		Version:              a.Version,
		AllowNegativeBalance: a.AllowNegativeBalance,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse is one page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID             string         `json:"id"`
	FromAccountID  string         `json:"from_account_id"`
	ToAccountID    string         `json:"to_account_id"`
	Amount         string         `json:"amount"`
	Currency       string         `json:"currency"`
	Status         string         `json:"status"`
	Type           string         `json:"type"`
	IdempotencyKey *string        `json:"idempotency_key,omitempty"`
	Description    string         `json:"description,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:             t.ID,
		FromAccountID:  t.FromAccountID,
		ToAccountID:    t.ToAccountID,
		Amount:         t.Amount.String(),
		Currency:       t.Currency,
		Status:         string(t.Status),
		Type:           string(t.Type),
		IdempotencyKey: t.IdempotencyKey,
		Description:    t.Description,
		Metadata:       t.Metadata,
		CreatedAt:      t.CreatedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// FxTransferResponse represents a conversion in API responses.
type FxTransferResponse struct {
	ID             string         `json:"id"`
	FromAccountID  string         `json:"from_account_id"`
	ToAccountID    string         `json:"to_account_id"`
	FromAmount     string         `json:"from_amount"`
	FromCurrency   string         `json:"from_currency"`
	ToAmount       string         `json:"to_amount"`
	ToCurrency     string         `json:"to_currency"`
	Rate           string         `json:"rate"`
	MarketRate     string         `json:"market_rate"`
	Spread         string         `json:"spread"`
	IdempotencyKey string         `json:"idempotency_key"`
	Status         string         `json:"status"`
	Description    string         `json:"description,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// FxTransferFromDomain converts a domain conversion to response.
func FxTransferFromDomain(fx *domain.FxTransfer) *FxTransferResponse {
	return &FxTransferResponse{
		ID:             fx.ID,
		FromAccountID:  fx.FromAccountID,
		ToAccountID:    fx.ToAccountID,
		FromAmount:     fx.FromAmount.String(),
		FromCurrency:   fx.FromCurrency,
		ToAmount:       fx.ToAmount.String(),
		ToCurrency:     fx.ToCurrency,
		Rate:           fx.Rate.String(),
		MarketRate:     fx.MarketRate.String(),
		Spread:         fx.Spread.String(),
		IdempotencyKey: fx.IdempotencyKey,
		Status:         string(fx.Status),
		Description:    fx.Description,
		Metadata:       fx.Metadata,
		CreatedAt:      fx.CreatedAt,
	}
}

// FxQuoteResponse is a priced currency pair.
type FxQuoteResponse struct {
	FromCurrency string    `json:"from_currency"`
	ToCurrency   string    `json:"to_currency"`
	MarketRate   string    `json:"market_rate"`
	Spread       string    `json:"spread"`
	Rate         string    `json:"rate"`
	QuotedAt     time.Time `json:"quoted_at"`
}

// FxQuoteFromDomain converts a quote to response.
func FxQuoteFromDomain(q *domain.FxQuote) *FxQuoteResponse {
	return &FxQuoteResponse{
		FromCurrency: q.FromCurrency,
		ToCurrency:   q.ToCurrency,
		MarketRate:   q.MarketRate.String(),
		Spread:       q.Spread.String(),
		Rate:         q.Rate.String(),
		QuotedAt:     q.QuotedAt,
	}
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID                     string    `json:"id"`
	AccountID              string    `json:"account_id"`
	ReferenceID            string    `json:"reference_id"`
	Type                   string    `json:"type"`
	Amount                 string    `json:"amount"`
	AccountPreviousBalance string    `json:"account_previous_balance"`
	AccountCurrentBalance  string    `json:"account_current_balance"`
	AccountVersion         int64     `json:"account_version"`
	Description            string    `json:"description,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:                     e.ID,
		AccountID:              e.AccountID,
		ReferenceID:            e.ReferenceID,
		Type:                   string(e.Type),
		Amount:                 e.Amount.String(),
		AccountPreviousBalance: e.AccountPreviousBalance.String(),
		AccountCurrentBalance:  e.AccountCurrentBalance.String(),
		AccountVersion:         e.AccountVersion,
		Description:            e.Description,
		CreatedAt:              e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// SettlementResponse represents a settlement in API responses.
type SettlementResponse struct {
	ID            string     `json:"id"`
	TransferID    string     `json:"transfer_id"`
	FromAccountID string     `json:"from_account_id"`
	ToAccountID   string     `json:"to_account_id"`
	Amount        string     `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	ScheduledFor  time.Time  `json:"scheduled_for"`
	RetryCount    int        `json:"retry_count"`
	LastError     string     `json:"last_error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// SettlementFromDomain converts a settlement to response; nil stays nil.
func SettlementFromDomain(s *domain.Settlement) *SettlementResponse {
	if s == nil {
		return nil
	}
	return &SettlementResponse{
		ID:            s.ID,
		TransferID:    s.TransferID,
		FromAccountID: s.FromAccountID,
		ToAccountID:   s.ToAccountID,
		Amount:        s.Amount.String(),
		Currency:      s.Currency,
		Status:        string(s.Status),
		ScheduledFor:  s.ScheduledFor,
		RetryCount:    s.RetryCount,
		LastError:     s.LastError,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		CompletedAt:   s.CompletedAt,
	}
}

// SettlementsFromDomain converts settlements to responses.
func SettlementsFromDomain(settlements []*domain.Settlement) []*SettlementResponse {
	result := make([]*SettlementResponse, len(settlements))
	for i, s := range settlements {
		result[i] = SettlementFromDomain(s)
	}
	return result
}

// TransferResultResponse is returned by POST /transfers.
type TransferResultResponse struct {
	Success    bool                `json:"success"`
	Replayed   bool                `json:"replayed"`
	Transfer   *TransferResponse   `json:"transfer"`
	Settlement *SettlementResponse `json:"settlement,omitempty"`
	Entries    []*EntryResponse    `json:"entries,omitempty"`
}

// FxResultResponse is returned by the conversion endpoints.
type FxResultResponse struct {
	Success    bool                `json:"success"`
	Replayed   bool                `json:"replayed"`
	FxTransfer *FxTransferResponse `json:"fx_transfer"`
	Settlement *SettlementResponse `json:"settlement,omitempty"`
	Entries    []*EntryResponse    `json:"entries,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
