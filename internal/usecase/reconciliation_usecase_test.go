package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/usecase"
	"github.com/iho/paycore/internal/usecase/mocks"
)

func TestReconcileAccount(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "A", "USD", "500")
	h.seed(t, "B", "USD", "0")

	_, err := h.transfers.TransferFunds(context.Background(), usecase.TransferFundsInput{
		FromAccountID: "A", ToAccountID: "B", Amount: "120.5",
	})
	require.NoError(t, err)

	res, err := h.reconcile.ReconcileAccount(context.Background(), "A")
	require.NoError(t, err)
	assert.True(t, res.IsReconciled)
	assert.True(t, res.RecordedBalance.Equal(dec("379.5")))
	assert.True(t, res.CalculatedBalance.Equal(dec("379.5")))
	assert.True(t, res.Difference.IsZero())
	assert.Equal(t, baseTime, res.LastChecked)

	h.ledger.SetBalance("A", dec("380"))

	res, err = h.reconcile.ReconcileAccount(context.Background(), "A")
	require.NoError(t, err)
	assert.False(t, res.IsReconciled)
	assert.True(t, res.Difference.Equal(dec("0.5")))

	_, err = h.reconcile.ReconcileAccount(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestReconcileAccounts_ReportsOnlyDiscrepancies(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "A", "USD", "100")
	h.seed(t, "B", "USD", "100")
	h.seed(t, "C", "EUR", "100")

	discrepancies, err := h.reconcile.ReconcileAccounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, discrepancies)
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.LedgerDiscrepancies))

	h.ledger.SetBalance("B", dec("90"))

	discrepancies, err = h.reconcile.ReconcileAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, discrepancies, 1)
	assert.Equal(t, "B", discrepancies[0].AccountID)
	assert.True(t, discrepancies[0].Difference.Equal(dec("-10")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.LedgerDiscrepancies))
}

func TestCheckLedgerConsistency(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "A", "USD", "100")

	res, err := h.reconcile.CheckLedgerConsistency(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Consistent)
	assert.True(t, res.TotalBalance.IsZero())
	assert.True(t, res.TotalEntries.IsZero())

	h.ledger.SetBalance("A", dec("101"))

	res, err = h.reconcile.CheckLedgerConsistency(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Consistent)
	assert.True(t, res.Difference.Equal(dec("1")))
}

func TestCheckLedgerConsistency_PropagatesError(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerRepository(ctrl)
	boom := errors.New("db down")
	ledger.EXPECT().CheckConsistency(gomock.Any()).Return(dec("0"), dec("0"), boom)

	uc := usecase.NewReconciliationUseCase(mocks.NewMockReportRepository(ctrl), ledger, nil, zerolog.Nop(), nil)

	_, err := uc.CheckLedgerConsistency(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestGenerateReconciliationReport(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "A", "USD", "100")
	h.seed(t, "B", "USD", "50")

	report, err := h.reconcile.GenerateReconciliationReport(context.Background())
	require.NoError(t, err)
	// A, B and the funding account
	assert.Equal(t, 3, report.TotalAccounts)
	assert.Equal(t, 3, report.ReconciledAccounts)
	assert.True(t, report.LedgerConsistent)

	h.ledger.SetBalance("A", dec("0"))

	report, err = h.reconcile.GenerateReconciliationReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.ReconciledAccounts)
	assert.Len(t, report.Discrepancies, 1)
	assert.False(t, report.LedgerConsistent)
}
