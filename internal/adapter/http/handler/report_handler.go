package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/paycore/internal/adapter/http/dto"
	"github.com/iho/paycore/internal/usecase"
)

// ReportService defines the reporting behavior needed by ReportHandler.
type ReportService interface {
	GenerateEODReport(ctx context.Context, date time.Time) (*usecase.EODReport, error)
	GenerateTrialBalance(ctx context.Context) (*usecase.TrialBalance, error)
	ParseReportDate(s string) (time.Time, error)
}

// ReconciliationService defines the reconciliation behavior needed by
// ReportHandler and LedgerHandler.
type ReconciliationService interface {
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
	CheckLedgerConsistency(ctx context.Context) (*usecase.ConsistencyResult, error)
}

// ReportHandler serves read-only accounting reports.
type ReportHandler struct {
	reports   ReportService
	reconcile ReconciliationService
	now       func() time.Time
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports ReportService, reconcile ReconciliationService) *ReportHandler {
	return &ReportHandler{reports: reports, reconcile: reconcile, now: time.Now}
}

// EOD builds the end-of-day report for ?date=YYYY-MM-DD, today by default.
func (h *ReportHandler) EOD(w http.ResponseWriter, r *http.Request) {
	date := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := h.reports.ParseReportDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	report, err := h.reports.GenerateEODReport(r.Context(), date)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EODReportFromUseCase(report))
}

// TrialBalance returns debit and credit totals per account.
func (h *ReportHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	tb, err := h.reports.GenerateTrialBalance(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TrialBalanceFromUseCase(tb))
}

// Reconciliation compares every balance with its entries.
func (h *ReportHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconcile.GenerateReconciliationReport(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}
