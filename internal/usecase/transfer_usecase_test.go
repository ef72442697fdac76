package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/usecase"
	"github.com/iho/paycore/internal/usecase/mocks"
)

func TestTransferFunds_MovesBalancesAndWritesEntryPair(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "A", "USD", "500.00")
	h.seed(t, "B", "USD", "200.00")

	res, err := h.transfers.TransferFunds(context.Background(), usecase.TransferFundsInput{
		FromAccountID: "A",
		ToAccountID:   "B",
		Amount:        "100.00",
		Currency:      "usd",
		Description:   "rent",
	})
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, domain.TransferStatusCompleted, res.Transfer.Status)
	assert.Equal(t, "USD", res.Transfer.Currency)

	assert.True(t, h.ledger.Account("A").Balance.Equal(dec("400")))
	assert.True(t, h.ledger.Account("B").Balance.Equal(dec("300")))

	entries, err := h.entries.GetEntriesByTransfer(context.Background(), res.Transfer.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
		switch e.AccountID {
		case "A":
			assert.Equal(t, domain.EntryTypeDebit, e.Type)
			assert.True(t, e.Amount.Equal(dec("-100")))
			assert.True(t, e.AccountPreviousBalance.Equal(dec("500")))
			assert.True(t, e.AccountCurrentBalance.Equal(dec("400")))
		case "B":
			assert.Equal(t, domain.EntryTypeCredit, e.Type)
			assert.True(t, e.Amount.Equal(dec("100")))
			assert.True(t, e.AccountCurrentBalance.Equal(dec("300")))
		default:
			t.Fatalf("unexpected entry for %s", e.AccountID)
		}
	}
	assert.True(t, sum.IsZero())

	require.NotNil(t, res.Settlement)
	assert.Equal(t, domain.SettlementStatusPending, res.Settlement.Status)
	assert.Equal(t, baseTime, res.Settlement.ScheduledFor)
	assert.Equal(t, res.Transfer.ID, res.Settlement.TransferID)

	var completed int
	for _, ev := range h.ledger.Events() {
		if ev.EventType == domain.EventTypeTransferCompleted && ev.AggregateID == res.Transfer.ID {
			completed++
			assert.Equal(t, "100", ev.Payload["amount"])
		}
	}
	assert.Equal(t, 1, completed)

	// two funding transfers plus this one
	assert.Equal(t, 3.0, testutil.ToFloat64(h.metrics.TransfersCompleted))
}

func TestTransferFunds_InsufficientFundsLeavesStateUntouched(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "A", "USD", "50.00")
	h.seed(t, "B", "USD", "0")

	entriesBefore := len(h.ledger.Entries())
	transfersBefore := h.ledger.TransferCount()

	_, err := h.transfers.TransferFunds(context.Background(), usecase.TransferFundsInput{
		FromAccountID: "A",
		ToAccountID:   "B",
		Amount:        "100.00",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, "insufficient funds", err.Error())

	assert.True(t, h.ledger.Account("A").Balance.Equal(dec("50")))
	assert.True(t, h.ledger.Account("B").Balance.IsZero())
	assert.Len(t, h.ledger.Entries(), entriesBefore)
	assert.Equal(t, transfersBefore, h.ledger.TransferCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.TransferErrors.WithLabelValues("insufficient_funds")))
}

func TestTransferFunds_IdempotencyKeyReplays(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "A", "USD", "500.00")
	h.seed(t, "B", "USD", "200.00")

	input := usecase.TransferFundsInput{
		FromAccountID:  "A",
		ToAccountID:    "B",
		Amount:         "100.00",
		IdempotencyKey: "tx-1",
	}

	first, err := h.transfers.TransferFunds(context.Background(), input)
	require.NoError(t, err)
	entriesAfterFirst := len(h.ledger.Entries())

	second, err := h.transfers.TransferFunds(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Transfer.ID, second.Transfer.ID)
	assert.Len(t, h.ledger.Entries(), entriesAfterFirst)
	assert.True(t, h.ledger.Account("A").Balance.Equal(dec("400")))
	assert.True(t, h.ledger.Account("B").Balance.Equal(dec("300")))

	ref, err := h.entries.GetEntriesByTransfer(context.Background(), first.Transfer.ID)
	require.NoError(t, err)
	assert.Len(t, ref, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.TransferReplays.WithLabelValues("transfer")))
}

func TestTransferFunds_ConcurrentSameKeyExecutesOnce(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "A", "USD", "1000")
	h.seed(t, "B", "USD", "0")

	const callers = 8
	ids := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := h.transfers.TransferFunds(context.Background(), usecase.TransferFundsInput{
				FromAccountID:  "A",
				ToAccountID:    "B",
				Amount:         "10",
				IdempotencyKey: "same-key",
			})
			errs[i] = err
			if err == nil {
				ids[i] = res.Transfer.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.True(t, h.ledger.Account("A").Balance.Equal(dec("990")))
	assert.True(t, h.ledger.Account("B").Balance.Equal(dec("10")))
}

func TestTransferFunds_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, h *harness)
		input   usecase.TransferFundsInput
		wantErr error
	}{
		{
			name:    "same account",
			input:   usecase.TransferFundsInput{FromAccountID: "A", ToAccountID: "A", Amount: "1"},
			wantErr: domain.ErrSameAccount,
		},
		{
			name:    "zero amount",
			input:   usecase.TransferFundsInput{FromAccountID: "A", ToAccountID: "B", Amount: "0"},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			input:   usecase.TransferFundsInput{FromAccountID: "A", ToAccountID: "B", Amount: "-5"},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "amount below stored precision",
			input:   usecase.TransferFundsInput{FromAccountID: "A", ToAccountID: "B", Amount: "0.000000004"},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "amount beyond stored precision",
			input:   usecase.TransferFundsInput{FromAccountID: "A", ToAccountID: "B", Amount: "100.123456789"},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "malformed amount",
			input:   usecase.TransferFundsInput{FromAccountID: "A", ToAccountID: "B", Amount: "ten"},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "missing account",
			input:   usecase.TransferFundsInput{FromAccountID: "A", ToAccountID: "nope", Amount: "1"},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name:    "currency mismatch between accounts",
			input:   usecase.TransferFundsInput{FromAccountID: "A", ToAccountID: "E", Amount: "1"},
			wantErr: domain.ErrCurrencyMismatch,
		},
		{
			name:    "requested currency differs",
			input:   usecase.TransferFundsInput{FromAccountID: "A", ToAccountID: "B", Amount: "1", Currency: "EUR"},
			wantErr: domain.ErrCurrencyMismatch,
		},
		{
			name: "frozen destination",
			prepare: func(t *testing.T, h *harness) {
				_, err := h.accounts.SetAccountStatus(context.Background(), "B", "frozen")
				require.NoError(t, err)
			},
			input:   usecase.TransferFundsInput{FromAccountID: "A", ToAccountID: "B", Amount: "1"},
			wantErr: domain.ErrAccountInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.seed(t, "A", "USD", "100")
			h.seed(t, "B", "USD", "0")
			h.seed(t, "E", "EUR", "0")
			if tt.prepare != nil {
				tt.prepare(t, h)
			}

			_, err := h.transfers.TransferFunds(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, h.ledger.Account("A").Balance.Equal(dec("100")))
		})
	}
}

func TestTransferFunds_EntryFailureRollsBack(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "A", "USD", "100")
	h.seed(t, "B", "USD", "0")
	entries := len(h.ledger.Entries())

	h.ledger.EntryCreateErr = errors.New("disk full")

	_, err := h.transfers.TransferFunds(context.Background(), usecase.TransferFundsInput{
		FromAccountID: "A", ToAccountID: "B", Amount: "40",
	})
	require.Error(t, err)

	assert.True(t, h.ledger.Account("A").Balance.Equal(dec("100")))
	assert.True(t, h.ledger.Account("B").Balance.IsZero())
	assert.Len(t, h.ledger.Entries(), entries)
	assert.Len(t, h.ledger.Settlements(), 1)
}

func TestTransferFunds_LargeAmountDeferredToWindow(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "A", "USD", "0")
	h.ledger.SeedAccount(domain.Account{ID: "treasury", Name: "treasury", Currency: "USD", AllowNegativeBalance: true})

	res, err := h.transfers.TransferFunds(context.Background(), usecase.TransferFundsInput{
		FromAccountID: "treasury", ToAccountID: "A", Amount: "150000",
	})
	require.NoError(t, err)

	require.NotNil(t, res.Settlement)
	assert.True(t, time.Date(2024, 3, 14, 16, 0, 0, 0, time.UTC).Equal(res.Settlement.ScheduledFor))
	assert.True(t, h.ledger.Account("treasury").Balance.Equal(dec("-150000")))
}

func TestTransferFunds_OppositeConcurrentTransfersConserveTotal(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "A", "USD", "1000")
	h.seed(t, "B", "USD", "1000")

	const rounds = 25
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := h.transfers.TransferFunds(context.Background(), usecase.TransferFundsInput{
				FromAccountID: "A", ToAccountID: "B", Amount: "7",
			})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := h.transfers.TransferFunds(context.Background(), usecase.TransferFundsInput{
				FromAccountID: "B", ToAccountID: "A", Amount: "3",
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	a, b := h.ledger.Account("A"), h.ledger.Account("B")
	assert.True(t, a.Balance.Add(b.Balance).Equal(dec("2000")))
	assert.True(t, a.Balance.Equal(dec("900")))

	consistency, err := h.reconcile.CheckLedgerConsistency(context.Background())
	require.NoError(t, err)
	assert.True(t, consistency.Consistent)
}

func TestTransferFunds_DuplicateKeyRaceReturnsWinner(t *testing.T) {
	ctrl := gomock.NewController(t)

	txMgr := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	accounts := mocks.NewMockAccountRepository(ctrl)
	transfers := mocks.NewMockTransferRepository(ctrl)
	entries := mocks.NewMockEntryRepository(ctrl)
	retrier := mocks.NewMockRetrier(ctrl)

	winner := &domain.Transfer{ID: "winner", Amount: dec("5"), Currency: "USD"}

	gomock.InOrder(
		transfers.EXPECT().GetByIdempotencyKey(gomock.Any(), "k-1").Return(nil, domain.ErrTransferNotFound),
		transfers.EXPECT().GetByIdempotencyKey(gomock.Any(), "k-1").Return(winner, nil),
	)
	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, op func() error) error { return op() },
	)
	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	accounts.EXPECT().GetByIDsForUpdate(gomock.Any(), tx, []string{"a", "b"}).Return([]*domain.Account{
		{ID: "a", Currency: "USD", Status: domain.AccountStatusActive},
		{ID: "b", Currency: "USD", Balance: dec("10"), Status: domain.AccountStatusActive},
	}, nil)
	transfers.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(domain.ErrDuplicateIdempotencyKey)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	uc := usecase.NewTransferUseCase(txMgr, accounts, transfers, entries, nil, nil, retrier,
		&mocks.SequentialIDs{}, mocks.NewFakeClock(baseTime), zerolog.Nop(), nil)

	res, err := uc.TransferFunds(context.Background(), usecase.TransferFundsInput{
		FromAccountID: "b", ToAccountID: "a", Amount: "5", IdempotencyKey: "k-1",
	})
	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, "winner", res.Transfer.ID)
}

func TestTransferUseCase_ListTransfersByAccount(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "A", "USD", "100")
	h.seed(t, "B", "USD", "0")

	for i := 0; i < 3; i++ {
		_, err := h.transfers.TransferFunds(context.Background(), usecase.TransferFundsInput{
			FromAccountID: "A", ToAccountID: "B", Amount: "1",
		})
		require.NoError(t, err)
	}

	list, err := h.transfers.ListTransfersByAccount(context.Background(), usecase.ListTransfersByAccountInput{AccountID: "B"})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	got, err := h.transfers.GetTransfer(context.Background(), list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, list[0].ID, got.ID)

	_, err = h.transfers.GetTransfer(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)
}
