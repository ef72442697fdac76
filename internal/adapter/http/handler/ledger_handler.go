package handler

import (
	"net/http"

	"github.com/iho/paycore/internal/adapter/http/dto"
)

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	reconcile ReconciliationService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(reconcile ReconciliationService) *LedgerHandler {
	return &LedgerHandler{reconcile: reconcile}
}

// CheckConsistency answers 200 when the ledger is consistent and 409 when
// balances and entries disagree.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	res, err := h.reconcile.CheckLedgerConsistency(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	status := http.StatusOK
	if !res.Consistent {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.ConsistencyFromUseCase(res))
}
