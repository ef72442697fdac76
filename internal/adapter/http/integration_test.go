package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/paycore/internal/adapter/fxrate"
	apihttp "github.com/iho/paycore/internal/adapter/http"
	"github.com/iho/paycore/internal/adapter/http/dto"
	"github.com/iho/paycore/internal/adapter/http/handler"
	"github.com/iho/paycore/internal/adapter/http/middleware"
	"github.com/iho/paycore/internal/adapter/rail"
	"github.com/iho/paycore/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/paycore/internal/adapter/repository/redis"
	pginfra "github.com/iho/paycore/internal/infrastructure/postgres"
	"github.com/iho/paycore/internal/usecase"
)

// newIntegrationRouter serves the full API over a real database. Skipped
// unless INTEGRATION_DATABASE_URL points at a disposable PostgreSQL instance.
func newIntegrationRouter(t *testing.T) http.Handler {
	t.Helper()

	url := os.Getenv("INTEGRATION_DATABASE_URL")
	if url == "" {
		t.Skip("INTEGRATION_DATABASE_URL not set")
	}

	ctx := context.Background()
	logger := zerolog.Nop()
	require.NoError(t, pginfra.RunMigrations(url, logger))

	pool, err := pginfra.NewPool(ctx, url, 10, 1)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "TRUNCATE accounts, transfers, fx_transfers, entries, settlements, outbox_events")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	retrier := postgres.NewRetrier(logger, nil)
	ids := postgres.NewULIDGenerator()
	clock := usecase.SystemClock{}

	rates, err := fxrate.ParseRates(map[string]string{"USD/EUR": "0.92"})
	require.NoError(t, err)

	settlements := usecase.NewSettlementUseCase(
		txManager, postgres.NewSettlementRepository(pool), outboxRepo,
		rail.NewInstantExecutor(logger), ids, clock, usecase.DefaultSettlementConfig(), logger, nil,
	)
	transfers := usecase.NewTransferUseCase(
		txManager, accountRepo, postgres.NewTransferRepository(pool), entryRepo,
		outboxRepo, settlements, retrier, ids, clock, logger, nil,
	)
	fx := usecase.NewFxUseCase(usecase.FxDependencies{
		TxManager:   txManager,
		AccountRepo: accountRepo,
		FxRepo:      postgres.NewFxTransferRepository(pool),
		EntryRepo:   entryRepo,
		OutboxRepo:  outboxRepo,
		Settlements: settlements,
		Retrier:     retrier,
		Rates:       rates,
		IDGen:       ids,
		Clock:       clock,
		Logger:      logger,
	})
	reconcile := usecase.NewReconciliationUseCase(reportRepo, postgres.NewLedgerRepository(pool), clock, logger, nil)

	return apihttp.NewRouter(apihttp.RouterConfig{
		AccountHandler:    handler.NewAccountHandler(usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, ids, clock, logger, nil)),
		TransferHandler:   handler.NewTransferHandler(transfers),
		EntryHandler:      handler.NewEntryHandler(usecase.NewEntryUseCase(entryRepo)),
		FxHandler:         handler.NewFxHandler(fx),
		SettlementHandler: handler.NewSettlementHandler(settlements),
		ReportHandler:     handler.NewReportHandler(usecase.NewReportingUseCase(reportRepo, clock, nil), reconcile),
		LedgerHandler:     handler.NewLedgerHandler(reconcile),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:  redisrepo.NewIdempotencyStore(redisClient),
		Logger:            logger,
	})
}

func call(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createAccount(t *testing.T, router http.Handler, name, currency string, allowNegative bool) dto.AccountResponse {
	t.Helper()

	rec := call(t, router, http.MethodPost, "/api/v1/accounts/", dto.CreateAccountRequest{
		Name: name, Currency: currency, AllowNegativeBalance: allowNegative,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var acc dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acc))
	return acc
}

func TestIntegrationAPI(t *testing.T) {
	router := newIntegrationRouter(t)

	fundUSD := createAccount(t, router, "funding-usd", "USD", true)
	alice := createAccount(t, router, "alice", "USD", false)
	bob := createAccount(t, router, "bob", "USD", false)
	aliceEUR := createAccount(t, router, "alice-eur", "EUR", false)

	rec := call(t, router, http.MethodPost, "/api/v1/transfers/", dto.CreateTransferRequest{
		FromAccountID: fundUSD.ID, ToAccountID: alice.ID, Amount: "1000",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	t.Run("transfer and replay", func(t *testing.T) {
		req := dto.CreateTransferRequest{FromAccountID: alice.ID, ToAccountID: bob.ID, Amount: "100.50"}
		headers := map[string]string{middleware.IdempotencyKeyHeader: "api-transfer-1"}

		first := call(t, router, http.MethodPost, "/api/v1/transfers/", req, headers)
		require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

		var created dto.TransferResultResponse
		require.NoError(t, json.Unmarshal(first.Body.Bytes(), &created))
		assert.Equal(t, "100.5", created.Transfer.Amount)
		require.Len(t, created.Entries, 2)

		second := call(t, router, http.MethodPost, "/api/v1/transfers/", req, headers)
		require.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, "true", second.Header().Get(middleware.IdempotencyReplayHeader))

		var replayed dto.TransferResultResponse
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &replayed))
		assert.Equal(t, created.Transfer.ID, replayed.Transfer.ID)

		get := call(t, router, http.MethodGet, "/api/v1/accounts/"+alice.ID, nil, nil)
		var acc dto.AccountResponse
		require.NoError(t, json.Unmarshal(get.Body.Bytes(), &acc))
		assert.True(t, decimal.RequireFromString(acc.Balance).Equal(decimal.RequireFromString("899.5")), acc.Balance)
	})

	t.Run("rejections", func(t *testing.T) {
		rec := call(t, router, http.MethodPost, "/api/v1/transfers/", dto.CreateTransferRequest{
			FromAccountID: bob.ID, ToAccountID: alice.ID, Amount: "5000",
		}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = call(t, router, http.MethodPost, "/api/v1/transfers/", dto.CreateTransferRequest{
			FromAccountID: alice.ID, ToAccountID: alice.ID, Amount: "1",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = call(t, router, http.MethodPost, "/api/v1/transfers/", dto.CreateTransferRequest{
			FromAccountID: alice.ID, ToAccountID: aliceEUR.ID, Amount: "1",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("conversion", func(t *testing.T) {
		rec := call(t, router, http.MethodPost, "/api/v1/fx/convert", dto.ConvertRequest{
			FromAccountID: alice.ID, ToAccountID: aliceEUR.ID, FromAmount: "100", FromCurrency: "USD", ToCurrency: "EUR",
		}, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var res dto.FxResultResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "90.16", res.FxTransfer.ToAmount)
	})

	t.Run("settlement and reports", func(t *testing.T) {
		rec := call(t, router, http.MethodPost, "/api/v1/settlements/process", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var batch dto.BatchResultResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
		assert.Equal(t, 3, batch.Succeeded)
		assert.Zero(t, batch.Failed)

		rec = call(t, router, http.MethodGet, "/api/v1/ledger/consistency", nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = call(t, router, http.MethodGet, "/api/v1/reports/reconciliation", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var recon dto.ReconciliationReportResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recon))
		assert.Empty(t, recon.Discrepancies)

		rec = call(t, router, http.MethodGet, "/api/v1/reports/eod", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var eod dto.EODReportResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eod))
		assert.EqualValues(t, 2, eod.TransferCount)
		assert.EqualValues(t, 1, eod.FxTransferCount)
	})
}
