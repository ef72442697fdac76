package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iho/paycore/internal/adapter/http/dto"
	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/usecase"
)

// SettlementService defines the behavior needed by SettlementHandler.
type SettlementService interface {
	ProcessSettlementBatch(ctx context.Context) (*usecase.BatchResult, error)
	GetSettlement(ctx context.Context, id string) (*domain.Settlement, error)
	ListSettlementsByStatus(ctx context.Context, status string, limit, offset int) ([]*domain.Settlement, error)
}

// SettlementHandler exposes the settlement scheduler.
type SettlementHandler struct {
	settlementUC SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementUC SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementUC: settlementUC}
}

// Process runs one batch of due settlements now.
func (h *SettlementHandler) Process(w http.ResponseWriter, r *http.Request) {
	res, err := h.settlementUC.ProcessSettlementBatch(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchResultFromUseCase(res))
}

// Get retrieves a settlement by ID.
func (h *SettlementHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.settlementUC.GetSettlement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(s))
}

// List lists settlements in a status, PENDING by default.
func (h *SettlementHandler) List(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status == "" {
		status = string(domain.SettlementStatusPending)
	}

	settlements, err := h.settlementUC.ListSettlementsByStatus(
		r.Context(),
		status,
		parseIntQuery(r, "limit", 20),
		parseIntQuery(r, "offset", 0),
	)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementsFromDomain(settlements))
}
