package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/infrastructure/metrics"
	"github.com/iho/paycore/internal/usecase"
	"github.com/iho/paycore/internal/usecase/mocks"
)

var baseTime = time.Date(2024, 3, 14, 13, 5, 0, 0, time.UTC)

type harness struct {
	ledger      *mocks.Ledger
	clock       *mocks.FakeClock
	ids         *mocks.SequentialIDs
	metrics     *metrics.Metrics
	execute     func(ctx context.Context, s *domain.Settlement) error
	accounts    *usecase.AccountUseCase
	transfers   *usecase.TransferUseCase
	fx          *usecase.FxUseCase
	settlements *usecase.SettlementUseCase
	reconcile   *usecase.ReconciliationUseCase
	reports     *usecase.ReportingUseCase
	entries     *usecase.EntryUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		ledger:  mocks.NewLedger(),
		clock:   mocks.NewFakeClock(baseTime),
		ids:     &mocks.SequentialIDs{Prefix: "id-"},
		metrics: metrics.NewWithRegistry(prometheus.NewRegistry()),
	}
	h.execute = func(context.Context, *domain.Settlement) error { return nil }

	logger := zerolog.Nop()
	l := h.ledger

	cfg := usecase.DefaultSettlementConfig()
	cfg.Retry.Jitter = 0

	h.settlements = usecase.NewSettlementUseCase(
		l.TxManager(), l.SettlementRepo(), l.Outbox(),
		mocks.ExecutorFunc(func(ctx context.Context, s *domain.Settlement) error { return h.execute(ctx, s) }),
		h.ids, h.clock, cfg, logger, h.metrics,
	)

	h.accounts = usecase.NewAccountUseCase(l.TxManager(), l.Accounts(), l.Outbox(), h.ids, h.clock, logger, h.metrics)

	h.transfers = usecase.NewTransferUseCase(
		l.TxManager(), l.Accounts(), l.Transfers(), l.EntryRepo(), l.Outbox(),
		h.settlements, nil, h.ids, h.clock, logger, h.metrics,
	)

	h.fx = usecase.NewFxUseCase(usecase.FxDependencies{
		TxManager:   l.TxManager(),
		AccountRepo: l.Accounts(),
		FxRepo:      l.FxTransfers(),
		EntryRepo:   l.EntryRepo(),
		OutboxRepo:  l.Outbox(),
		Settlements: h.settlements,
		Rates: mocks.StaticRates{
			"USD/EUR": decimal.RequireFromString("0.92"),
			"EUR/USD": decimal.RequireFromString("1.087"),
		},
		IDGen:   h.ids,
		Clock:   h.clock,
		Logger:  logger,
		Metrics: h.metrics,
	})

	h.reconcile = usecase.NewReconciliationUseCase(l.Reports(), l.Reports(), h.clock, logger, h.metrics)
	h.reports = usecase.NewReportingUseCase(l.Reports(), h.clock, time.UTC)
	h.entries = usecase.NewEntryUseCase(l.EntryRepo())

	return h
}

// seed creates account id and funds it from a per-currency account that may
// go negative, so balances stay explained by entries.
func (h *harness) seed(t *testing.T, id, currency, balance string) {
	t.Helper()

	h.ledger.SeedAccount(domain.Account{ID: id, Name: id, Currency: currency})

	amount := decimal.RequireFromString(balance)
	if amount.IsZero() {
		return
	}

	fundID := "fund-" + currency
	if _, err := h.accounts.GetAccount(context.Background(), fundID); err != nil {
		h.ledger.SeedAccount(domain.Account{ID: fundID, Name: fundID, Currency: currency, AllowNegativeBalance: true})
	}

	if _, err := h.transfers.TransferFunds(context.Background(), usecase.TransferFundsInput{
		FromAccountID: fundID,
		ToAccountID:   id,
		Amount:        balance,
		Description:   "funding",
	}); err != nil {
		t.Fatalf("fund %s: %v", id, err)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
