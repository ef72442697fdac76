package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/usecase"
	"github.com/iho/paycore/internal/usecase/mocks"
)

func TestFxUseCase_GetExchangeRate(t *testing.T) {
	h := newHarness(t)

	quote, err := h.fx.GetExchangeRate(context.Background(), "usd", "eur")
	require.NoError(t, err)

	assert.Equal(t, "USD", quote.FromCurrency)
	assert.Equal(t, "EUR", quote.ToCurrency)
	assert.True(t, quote.MarketRate.Equal(dec("0.92")))
	assert.True(t, quote.Spread.Equal(dec("0.02")))
	assert.True(t, quote.Rate.Equal(dec("0.9016")), quote.Rate.String())
	assert.Equal(t, baseTime, quote.QuotedAt)
}

func TestFxUseCase_GetExchangeRateErrors(t *testing.T) {
	h := newHarness(t)

	_, err := h.fx.GetExchangeRate(context.Background(), "USD", "USD")
	assert.ErrorIs(t, err, domain.ErrSameCurrency)

	_, err = h.fx.GetExchangeRate(context.Background(), "USD", "JPY")
	assert.ErrorIs(t, err, domain.ErrRateNotFound)

	_, err = h.fx.GetExchangeRate(context.Background(), "US", "EUR")
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)
}

func TestFxUseCase_QuoteUsesSpreadPolicy(t *testing.T) {
	ctrl := gomock.NewController(t)
	rates := mocks.NewMockRateProvider(ctrl)
	spread := mocks.NewMockSpreadPolicy(ctrl)

	rates.EXPECT().FetchMarketRate(gomock.Any(), "USD", "EUR").Return(dec("0.92"), nil)
	spread.EXPECT().CalculateSpread(usecase.SpreadRequest{
		FromCurrency: "USD",
		ToCurrency:   "EUR",
		Volume:       dec("5000"),
		Tier:         "gold",
	}).Return(dec("0.005"))

	uc := usecase.NewFxUseCase(usecase.FxDependencies{
		Rates:  rates,
		Spread: spread,
		Clock:  mocks.NewFakeClock(baseTime),
		Logger: zerolog.Nop(),
	})

	quote, err := uc.Quote(context.Background(), usecase.QuoteRequest{
		FromCurrency: "USD", ToCurrency: "EUR", Volume: dec("5000"), Tier: "gold",
	})
	require.NoError(t, err)
	assert.True(t, quote.Rate.Equal(dec("0.9154")), quote.Rate.String())
}

func TestFxUseCase_QuoteRejectsNonPositiveMarketRate(t *testing.T) {
	ctrl := gomock.NewController(t)
	rates := mocks.NewMockRateProvider(ctrl)
	rates.EXPECT().FetchMarketRate(gomock.Any(), "USD", "EUR").Return(decimal.Zero, nil)

	uc := usecase.NewFxUseCase(usecase.FxDependencies{Rates: rates, Logger: zerolog.Nop()})

	_, err := uc.GetExchangeRate(context.Background(), "USD", "EUR")
	assert.ErrorIs(t, err, domain.ErrInvalidRate)
}

func fxInput() usecase.ForexTransferInput {
	return usecase.ForexTransferInput{
		FromAccountID: "usd-1",
		ToAccountID:   "eur-1",
		FromAmount:    "100.00",
		FromCurrency:  "USD",
		ToCurrency:    "EUR",
		Rate:          dec("0.9016"),
		MarketRate:    dec("0.92"),
		Spread:        dec("0.02"),
	}
}

func TestExecuteForexTransfer_ConvertsAtRate(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "usd-1", "USD", "1000")
	h.seed(t, "eur-1", "EUR", "0")

	res, err := h.fx.ExecuteForexTransfer(context.Background(), fxInput())
	require.NoError(t, err)
	require.False(t, res.Replayed)

	fx := res.FxTransfer
	assert.True(t, fx.FromAmount.Equal(dec("100")))
	assert.True(t, fx.ToAmount.Equal(dec("90.16")), fx.ToAmount.String())
	assert.Len(t, fx.IdempotencyKey, 64)
	assert.Equal(t, "FX USD→EUR @ 0.9016", fx.Description)

	assert.True(t, h.ledger.Account("usd-1").Balance.Equal(dec("900")))
	assert.True(t, h.ledger.Account("eur-1").Balance.Equal(dec("90.16")))

	require.Len(t, res.Entries, 2)
	assert.True(t, res.Entries[0].Amount.Equal(dec("-100")))
	assert.True(t, res.Entries[1].Amount.Equal(dec("90.16")))
	assert.Equal(t, "FX USD→EUR @ 0.9016", res.Entries[0].Description)

	require.NotNil(t, res.Settlement)
	assert.Equal(t, "USD", res.Settlement.Currency)
	assert.True(t, res.Settlement.Amount.Equal(dec("100")))

	consistency, err := h.reconcile.CheckLedgerConsistency(context.Background())
	require.NoError(t, err)
	assert.True(t, consistency.Consistent)
}

func TestExecuteForexTransfer_RoundsToEightPlaces(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "usd-1", "USD", "10")
	h.seed(t, "eur-1", "EUR", "0")

	in := fxInput()
	in.FromAmount = "1"
	in.Rate = dec("0.123456789")

	res, err := h.fx.ExecuteForexTransfer(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "0.12345679", res.FxTransfer.ToAmount.String())
}

func TestExecuteForexTransfer_DeterministicKeyReplays(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "usd-1", "USD", "1000")
	h.seed(t, "eur-1", "EUR", "0")

	first, err := h.fx.ExecuteForexTransfer(context.Background(), fxInput())
	require.NoError(t, err)

	second, err := h.fx.ExecuteForexTransfer(context.Background(), fxInput())
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.FxTransfer.ID, second.FxTransfer.ID)
	assert.Equal(t, 1, h.ledger.FxTransferCount())
	assert.True(t, h.ledger.Account("usd-1").Balance.Equal(dec("900")))

	// a different amount is a different conversion
	in := fxInput()
	in.FromAmount = "50"
	third, err := h.fx.ExecuteForexTransfer(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, third.Replayed)
	assert.Equal(t, 2, h.ledger.FxTransferCount())
}

func TestExecuteForexTransfer_ExplicitKeyOverridesDerived(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "usd-1", "USD", "1000")
	h.seed(t, "eur-1", "EUR", "0")

	in := fxInput()
	in.IdempotencyKey = "client-key"
	first, err := h.fx.ExecuteForexTransfer(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "client-key", first.FxTransfer.IdempotencyKey)

	in.FromAmount = "20"
	again, err := h.fx.ExecuteForexTransfer(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.FxTransfer.ID, again.FxTransfer.ID)
}

func TestFxIdempotencyKey(t *testing.T) {
	in := fxInput()
	in.Metadata = map[string]any{"b": 2, "a": "x"}

	k1 := usecase.FxIdempotencyKey(in, dec("100"))
	k2 := usecase.FxIdempotencyKey(in, dec("100.00"))
	assert.Equal(t, k1, k2)

	in.Metadata = map[string]any{"a": "x", "b": 2}
	assert.Equal(t, k1, usecase.FxIdempotencyKey(in, dec("100")))

	in.ToAccountID = "eur-2"
	assert.NotEqual(t, k1, usecase.FxIdempotencyKey(in, dec("100")))
}

func TestExecuteForexTransfer_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *usecase.ForexTransferInput)
		wantErr error
	}{
		{"same currency", func(in *usecase.ForexTransferInput) { in.ToCurrency = "USD" }, domain.ErrSameCurrency},
		{"zero rate", func(in *usecase.ForexTransferInput) { in.Rate = decimal.Zero }, domain.ErrInvalidRate},
		{"negative rate", func(in *usecase.ForexTransferInput) { in.Rate = dec("-1") }, domain.ErrInvalidRate},
		{"zero amount", func(in *usecase.ForexTransferInput) { in.FromAmount = "0" }, domain.ErrInvalidAmount},
		{"converted amount rounds to zero", func(in *usecase.ForexTransferInput) {
			in.FromAmount = "0.00000001"
			in.Rate = dec("0.4")
		}, domain.ErrInvalidAmount},
		{"amount beyond stored scale", func(in *usecase.ForexTransferInput) { in.FromAmount = "100.123456789" }, domain.ErrInvalidAmount},
		{"rate beyond stored scale", func(in *usecase.ForexTransferInput) { in.Rate = dec("0.9016000000000000001") }, domain.ErrInvalidRate},
		{"spread beyond stored scale", func(in *usecase.ForexTransferInput) { in.Spread = dec("0.02000000001") }, domain.ErrInvalidRate},
		{"same account", func(in *usecase.ForexTransferInput) { in.ToAccountID = in.FromAccountID }, domain.ErrSameAccount},
		{"account currency does not match", func(in *usecase.ForexTransferInput) { in.ToAccountID = "usd-2" }, domain.ErrCurrencyMismatch},
		{"insufficient funds", func(in *usecase.ForexTransferInput) { in.FromAmount = "5000" }, domain.ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.seed(t, "usd-1", "USD", "1000")
			h.seed(t, "usd-2", "USD", "0")
			h.seed(t, "eur-1", "EUR", "0")

			in := fxInput()
			tt.mutate(&in)

			_, err := h.fx.ExecuteForexTransfer(context.Background(), in)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, h.ledger.FxTransferCount())
			assert.True(t, h.ledger.Account("usd-1").Balance.Equal(dec("1000")))
		})
	}
}

func TestFxUseCase_ConvertQuotesThenExecutes(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "usd-1", "USD", "1000")
	h.seed(t, "eur-1", "EUR", "0")

	res, err := h.fx.Convert(context.Background(), usecase.ConvertInput{
		FromAccountID: "usd-1",
		ToAccountID:   "eur-1",
		FromAmount:    "100",
		FromCurrency:  "USD",
		ToCurrency:    "EUR",
	})
	require.NoError(t, err)
	assert.True(t, res.FxTransfer.Rate.Equal(dec("0.9016")))
	assert.True(t, res.FxTransfer.MarketRate.Equal(dec("0.92")))
	assert.True(t, res.FxTransfer.ToAmount.Equal(dec("90.16")))

	got, err := h.fx.GetForexTransfer(context.Background(), res.FxTransfer.ID)
	require.NoError(t, err)
	assert.Equal(t, res.FxTransfer.ID, got.ID)
}

func TestFxUseCase_ConvertPropagatesRateError(t *testing.T) {
	ctrl := gomock.NewController(t)
	rates := mocks.NewMockRateProvider(ctrl)
	rateErr := errors.New("upstream down")
	rates.EXPECT().FetchMarketRate(gomock.Any(), "USD", "EUR").Return(decimal.Zero, rateErr)

	uc := usecase.NewFxUseCase(usecase.FxDependencies{Rates: rates, Logger: zerolog.Nop()})

	_, err := uc.Convert(context.Background(), usecase.ConvertInput{
		FromAccountID: "a", ToAccountID: "b", FromAmount: "1", FromCurrency: "USD", ToCurrency: "EUR",
	})
	assert.ErrorIs(t, err, rateErr)
}
