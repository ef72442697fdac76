package domain

import "github.com/shopspring/decimal"

// AccountLedgerSummary is an account with the aggregates of its entries.
type AccountLedgerSummary struct {
	AccountID   string
	Name        string
	Currency    string
	Balance     decimal.Decimal
	EntrySum    decimal.Decimal
	DebitTotal  decimal.Decimal // magnitude of DEBIT entries
	CreditTotal decimal.Decimal
	EntryCount  int64
}

// CurrencyTotal is a count and sum of transfers in one currency.
type CurrencyTotal struct {
	Currency string          `json:"currency"`
	Count    int64           `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

// FxVolume is the conversion volume for one currency pair.
type FxVolume struct {
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Count        int64           `json:"count"`
	FromTotal    decimal.Decimal `json:"from_total"`
	ToTotal      decimal.Decimal `json:"to_total"`
}

// AccountActivity is the entry activity of one account over a period.
type AccountActivity struct {
	AccountID  string          `json:"account_id"`
	EntryCount int64           `json:"entry_count"`
	NetAmount  decimal.Decimal `json:"net_amount"`
}
