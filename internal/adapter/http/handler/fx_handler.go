package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/adapter/http/dto"
	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/usecase"
)

// FxService defines the behavior needed by FxHandler.
type FxService interface {
	GetExchangeRate(ctx context.Context, from, to string) (*domain.FxQuote, error)
	Quote(ctx context.Context, req usecase.QuoteRequest) (*domain.FxQuote, error)
	ExecuteForexTransfer(ctx context.Context, input usecase.ForexTransferInput) (*usecase.FxResult, error)
	Convert(ctx context.Context, input usecase.ConvertInput) (*usecase.FxResult, error)
	GetForexTransfer(ctx context.Context, id string) (*domain.FxTransfer, error)
}

// FxHandler handles currency conversion requests.
type FxHandler struct {
	fxUC FxService
}

// NewFxHandler creates a new FxHandler.
func NewFxHandler(fxUC FxService) *FxHandler {
	return &FxHandler{fxUC: fxUC}
}

// GetRate quotes a pair. With amount (and optionally tier) the spread is
// priced for that volume.
func (h *FxHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")

	var (
		quote *domain.FxQuote
		err   error
	)
	if amount := q.Get("amount"); amount != "" {
		volume, perr := decimal.NewFromString(amount)
		if perr != nil {
			respondError(w, domain.ErrInvalidAmount)
			return
		}
		quote, err = h.fxUC.Quote(r.Context(), usecase.QuoteRequest{
			FromCurrency: from,
			ToCurrency:   to,
			Volume:       volume,
			Tier:         q.Get("tier"),
		})
	} else {
		quote, err = h.fxUC.GetExchangeRate(r.Context(), from, to)
	}
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FxQuoteFromDomain(quote))
}

// CreateTransfer executes a conversion at the rates in the request body.
func (h *FxHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req dto.ForexTransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.fxUC.ExecuteForexTransfer(r.Context(), req.ToUseCaseInput(r.Header.Get(IdempotencyKeyHeader)))
	h.writeResult(w, res, err)
}

// Convert quotes at the current rate and executes in one call.
func (h *FxHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req dto.ConvertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.fxUC.Convert(r.Context(), req.ToUseCaseInput(r.Header.Get(IdempotencyKeyHeader)))
	h.writeResult(w, res, err)
}

// Get retrieves a conversion by ID.
func (h *FxHandler) Get(w http.ResponseWriter, r *http.Request) {
	fx, err := h.fxUC.GetForexTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FxTransferFromDomain(fx))
}

func (h *FxHandler) writeResult(w http.ResponseWriter, res *usecase.FxResult, err error) {
	if err != nil {
		respondError(w, err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}

	writeJSON(w, status, dto.FxResultResponse{
		Success:    true,
		Replayed:   res.Replayed,
		FxTransfer: dto.FxTransferFromDomain(res.FxTransfer),
		Settlement: dto.SettlementFromDomain(res.Settlement),
		Entries:    dto.EntriesFromDomain(res.Entries),
	})
}
