package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/usecase"
)

// EODReportResponse is the end-of-day report.
type EODReportResponse struct {
	Date            string                   `json:"date"`
	From            time.Time                `json:"from"`
	To              time.Time                `json:"to"`
	TransferCount   int64                    `json:"transfer_count"`
	TransferTotals  []domain.CurrencyTotal   `json:"transfer_totals"`
	FxTransferCount int64                    `json:"fx_transfer_count"`
	FxVolumes       []domain.FxVolume        `json:"fx_volumes"`
	EntryCount      int64                    `json:"entry_count"`
	AccountActivity []domain.AccountActivity `json:"account_activity"`
	GeneratedAt     time.Time                `json:"generated_at"`
}

// EODReportFromUseCase converts the report, replacing nil slices with empty ones.
func EODReportFromUseCase(r *usecase.EODReport) *EODReportResponse {
	resp := &EODReportResponse{
		Date:            r.Date,
		From:            r.From,
		To:              r.To,
		TransferCount:   r.TransferCount,
		TransferTotals:  r.TransferTotals,
		FxTransferCount: r.FxTransferCount,
		FxVolumes:       r.FxVolumes,
		EntryCount:      r.EntryCount,
		AccountActivity: r.AccountActivity,
		GeneratedAt:     r.GeneratedAt,
	}
	if resp.TransferTotals == nil {
		resp.TransferTotals = []domain.CurrencyTotal{}
	}
	if resp.FxVolumes == nil {
		resp.FxVolumes = []domain.FxVolume{}
	}
	if resp.AccountActivity == nil {
		resp.AccountActivity = []domain.AccountActivity{}
	}
	return resp
}

// TrialBalanceLineResponse is one account row.
type TrialBalanceLineResponse struct {
	AccountID   string          `json:"account_id"`
	Name        string          `json:"name"`
	Currency    string          `json:"currency"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Net         decimal.Decimal `json:"net"`
}

// CurrencyTrialBalanceResponse is the per-currency breakdown.
type CurrencyTrialBalanceResponse struct {
	Currency    string          `json:"currency"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Balanced    bool            `json:"balanced"`
}

// TrialBalanceResponse lists debit and credit totals.
type TrialBalanceResponse struct {
	Accounts    []TrialBalanceLineResponse     `json:"accounts"`
	ByCurrency  []CurrencyTrialBalanceResponse `json:"by_currency"`
	TotalDebit  decimal.Decimal                `json:"total_debit"`
	TotalCredit decimal.Decimal                `json:"total_credit"`
	Balanced    bool                           `json:"balanced"`
	GeneratedAt time.Time                      `json:"generated_at"`
}

// TrialBalanceFromUseCase converts a trial balance to response.
func TrialBalanceFromUseCase(tb *usecase.TrialBalance) *TrialBalanceResponse {
	resp := &TrialBalanceResponse{
		Accounts:    make([]TrialBalanceLineResponse, len(tb.Accounts)),
		ByCurrency:  make([]CurrencyTrialBalanceResponse, len(tb.ByCurrency)),
		TotalDebit:  tb.TotalDebit,
		TotalCredit: tb.TotalCredit,
		Balanced:    tb.Balanced,
		GeneratedAt: tb.GeneratedAt,
	}
	for i, l := range tb.Accounts {
		resp.Accounts[i] = TrialBalanceLineResponse(l)
	}
	for i, c := range tb.ByCurrency {
		resp.ByCurrency[i] = CurrencyTrialBalanceResponse(c)
	}
	return resp
}

// ReconciliationResultResponse is one account's reconciliation.
type ReconciliationResultResponse struct {
	AccountID         string          `json:"account_id"`
	Currency          string          `json:"currency"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	IsReconciled      bool            `json:"is_reconciled"`
	LastChecked       time.Time       `json:"last_checked"`
}

// ReconciliationReportResponse lists every account whose balance disagrees
// with its entries.
type ReconciliationReportResponse struct {
	TotalAccounts      int                            `json:"total_accounts"`
	ReconciledAccounts int                            `json:"reconciled_accounts"`
	Discrepancies      []ReconciliationResultResponse `json:"discrepancies"`
	LedgerConsistent   bool                           `json:"ledger_consistent"`
	CheckedAt          time.Time                      `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts the report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	resp := &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      make([]ReconciliationResultResponse, len(r.Discrepancies)),
		LedgerConsistent:   r.LedgerConsistent,
		CheckedAt:          r.CheckedAt,
	}
	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = ReconciliationResultResponse(*d)
	}
	return resp
}

// ConsistencyResponse is the ledger-wide balance check.
type ConsistencyResponse struct {
	Status       string          `json:"status"`
	Consistent   bool            `json:"consistent"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	TotalEntries decimal.Decimal `json:"total_entries"`
	Difference   decimal.Decimal `json:"difference"`
	CheckedAt    time.Time       `json:"checked_at"`
}

// ConsistencyFromUseCase converts a consistency result to response.
func ConsistencyFromUseCase(c *usecase.ConsistencyResult) *ConsistencyResponse {
	status := "consistent"
	if !c.Consistent {
		status = "inconsistent"
	}
	return &ConsistencyResponse{
		Status:       status,
		Consistent:   c.Consistent,
		TotalBalance: c.TotalBalance,
		TotalEntries: c.TotalEntries,
		Difference:   c.Difference,
		CheckedAt:    c.CheckedAt,
	}
}

// SettlementOutcomeResponse is one item of a batch run.
type SettlementOutcomeResponse struct {
	SettlementID string     `json:"settlement_id"`
	Outcome      string     `json:"outcome"`
	Status       string     `json:"status"`
	RetryCount   int        `json:"retry_count"`
	NextAttempt  *time.Time `json:"next_attempt,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// BatchResultResponse summarizes a settlement batch run.
type BatchResultResponse struct {
	Processed int                         `json:"processed"`
	Succeeded int                         `json:"succeeded"`
	Failed    int                         `json:"failed"`
	Skipped   int                         `json:"skipped"`
	Details   []SettlementOutcomeResponse `json:"details"`
}

// BatchResultFromUseCase converts a batch result to response.
func BatchResultFromUseCase(r *usecase.BatchResult) *BatchResultResponse {
	resp := &BatchResultResponse{
		Processed: r.Processed,
		Succeeded: r.Succeeded,
		Failed:    r.Failed,
		Skipped:   r.Skipped,
		Details:   make([]SettlementOutcomeResponse, len(r.Details)),
	}
	for i, d := range r.Details {
		resp.Details[i] = SettlementOutcomeResponse{
			SettlementID: d.SettlementID,
			Outcome:      d.Outcome,
			Status:       string(d.Status),
			RetryCount:   d.RetryCount,
			NextAttempt:  d.NextAttempt,
			Error:        d.Error,
		}
	}
	return resp
}
