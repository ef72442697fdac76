package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/paycore/internal/adapter/http/dto"
	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/usecase"
)

type entryServiceStub struct {
	byAccountFn  func(ctx context.Context, input usecase.GetEntriesByAccountInput) ([]*domain.Entry, error)
	byTransferFn func(ctx context.Context, transferID string) ([]*domain.Entry, error)
}

func (s *entryServiceStub) GetEntriesByAccount(ctx context.Context, input usecase.GetEntriesByAccountInput) ([]*domain.Entry, error) {
	return s.byAccountFn(ctx, input)
}

func (s *entryServiceStub) GetEntriesByTransfer(ctx context.Context, transferID string) ([]*domain.Entry, error) {
	return s.byTransferFn(ctx, transferID)
}

func TestEntryHandler_ListByAccount(t *testing.T) {
	var captured usecase.GetEntriesByAccountInput
	h := NewEntryHandler(&entryServiceStub{
		byAccountFn: func(ctx context.Context, input usecase.GetEntriesByAccountInput) ([]*domain.Entry, error) {
			captured = input
			return []*domain.Entry{{ID: "e-1", Type: domain.EntryTypeDebit, Amount: decimal.NewFromInt(-5)}}, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/A/entries?limit=2&offset=4", nil), "id", "A")
	rec := httptest.NewRecorder()
	h.ListByAccount(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.GetEntriesByAccountInput{AccountID: "A", Limit: 2, Offset: 4}, captured)

	var resp []dto.EntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "-5", resp[0].Amount)
	assert.Equal(t, "DEBIT", resp[0].Type)
}

func TestEntryHandler_ListByTransfer(t *testing.T) {
	h := NewEntryHandler(&entryServiceStub{
		byTransferFn: func(ctx context.Context, transferID string) ([]*domain.Entry, error) {
			return []*domain.Entry{
				{ID: "e-1", ReferenceID: transferID, Amount: decimal.NewFromInt(-4)},
				{ID: "e-2", ReferenceID: transferID, Amount: decimal.NewFromInt(4)},
			}, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/transfers/tx-1/entries", nil), "id", "tx-1")
	rec := httptest.NewRecorder()
	h.ListByTransfer(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []dto.EntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "tx-1", resp[1].ReferenceID)
}
