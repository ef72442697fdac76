package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/usecase"
	"github.com/iho/paycore/internal/usecase/mocks"
)

func settlementRequest(amount string) domain.SettlementRequest {
	return domain.SettlementRequest{
		TransferID:    "tr-1",
		FromAccountID: "A",
		ToAccountID:   "B",
		Currency:      "USD",
		Amount:        dec(amount),
	}
}

func TestScheduleSettlement(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   time.Time
	}{
		{"small amount settles immediately", "99.99", baseTime},
		{"threshold itself settles immediately", "100000", baseTime},
		{"large amount waits for the next window", "150000", time.Date(2024, 3, 14, 16, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			s, err := h.settlements.ScheduleSettlement(context.Background(), settlementRequest(tt.amount))
			require.NoError(t, err)

			assert.Equal(t, domain.SettlementStatusPending, s.Status)
			assert.True(t, tt.want.Equal(s.ScheduledFor), s.ScheduledFor)
			assert.Zero(t, s.RetryCount)

			stored, err := h.settlements.GetSettlement(context.Background(), s.ID)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(stored.ScheduledFor))
		})
	}
}

func TestScheduleSettlement_RejectsNonPositiveAmount(t *testing.T) {
	h := newHarness(t)

	_, err := h.settlements.ScheduleSettlement(context.Background(), settlementRequest("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Empty(t, h.ledger.Settlements())
}

func TestProcessSettlementBatch_CompletesDueOnly(t *testing.T) {
	h := newHarness(t)

	now, err := h.settlements.ScheduleSettlement(context.Background(), settlementRequest("10"))
	require.NoError(t, err)
	later, err := h.settlements.ScheduleSettlement(context.Background(), settlementRequest("250000"))
	require.NoError(t, err)

	res, err := h.settlements.ProcessSettlementBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Succeeded)
	require.Len(t, res.Details, 1)
	assert.Equal(t, usecase.OutcomeCompleted, res.Details[0].Outcome)

	done := h.ledger.Settlement(now.ID)
	assert.Equal(t, domain.SettlementStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, baseTime, *done.CompletedAt)
	assert.Equal(t, domain.SettlementStatusPending, h.ledger.Settlement(later.ID).Status)

	h.clock.Set(time.Date(2024, 3, 14, 16, 0, 0, 0, time.UTC))
	res, err = h.settlements.ProcessSettlementBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, domain.SettlementStatusCompleted, h.ledger.Settlement(later.ID).Status)

	var completedEvents int
	for _, ev := range h.ledger.Events() {
		if ev.EventType == domain.EventTypeSettlementCompleted {
			completedEvents++
		}
	}
	assert.Equal(t, 2, completedEvents)
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.SettlementOutcomes.WithLabelValues(usecase.OutcomeCompleted)))
}

func TestProcessSettlementBatch_ThreeFailuresMarkFailed(t *testing.T) {
	h := newHarness(t)
	h.execute = func(context.Context, *domain.Settlement) error { return errors.New("rail unavailable") }

	s, err := h.settlements.ScheduleSettlement(context.Background(), settlementRequest("10"))
	require.NoError(t, err)

	res, err := h.settlements.ProcessSettlementBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, usecase.OutcomeRetryScheduled, res.Details[0].Outcome)
	assert.Contains(t, res.Details[0].Error, "rail unavailable")

	first := h.ledger.Settlement(s.ID)
	assert.Equal(t, 1, first.RetryCount)
	assert.Equal(t, domain.SettlementStatusPending, first.Status)
	assert.Equal(t, baseTime.Add(4*time.Minute), first.ScheduledFor)
	assert.Contains(t, first.LastError, "rail unavailable")

	// not yet due
	h.clock.Advance(3 * time.Minute)
	res, err = h.settlements.ProcessSettlementBatch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Details)

	h.clock.Set(first.ScheduledFor)
	_, err = h.settlements.ProcessSettlementBatch(context.Background())
	require.NoError(t, err)

	second := h.ledger.Settlement(s.ID)
	assert.Equal(t, 2, second.RetryCount)
	assert.Equal(t, first.ScheduledFor.Add(8*time.Minute), second.ScheduledFor)

	h.clock.Set(second.ScheduledFor)
	res, err = h.settlements.ProcessSettlementBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeFailed, res.Details[0].Outcome)

	final := h.ledger.Settlement(s.ID)
	assert.Equal(t, domain.SettlementStatusFailed, final.Status)
	assert.Equal(t, 3, final.RetryCount)
	assert.Equal(t, second.ScheduledFor, final.ScheduledFor)

	h.clock.Advance(48 * time.Hour)
	res, err = h.settlements.ProcessSettlementBatch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Details)
	assert.Equal(t, 3, h.ledger.Settlement(s.ID).RetryCount)

	var failedEvents int
	for _, ev := range h.ledger.Events() {
		if ev.EventType == domain.EventTypeSettlementFailed {
			failedEvents++
			assert.Equal(t, 3, ev.Payload["retry_count"])
		}
	}
	assert.Equal(t, 1, failedEvents)
}

func TestProcessSettlementBatch_IsolatesItems(t *testing.T) {
	h := newHarness(t)

	bad, err := h.settlements.ScheduleSettlement(context.Background(), settlementRequest("10"))
	require.NoError(t, err)
	good, err := h.settlements.ScheduleSettlement(context.Background(), settlementRequest("20"))
	require.NoError(t, err)

	h.execute = func(_ context.Context, s *domain.Settlement) error {
		if s.ID == bad.ID {
			return errors.New("declined")
		}
		return nil
	}

	res, err := h.settlements.ProcessSettlementBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)

	assert.Equal(t, domain.SettlementStatusPending, h.ledger.Settlement(bad.ID).Status)
	assert.Equal(t, domain.SettlementStatusCompleted, h.ledger.Settlement(good.ID).Status)
}

func TestProcessSingleSettlement_SkipsLockedRow(t *testing.T) {
	h := newHarness(t)

	s, err := h.settlements.ScheduleSettlement(context.Background(), settlementRequest("10"))
	require.NoError(t, err)

	ctx := context.Background()
	other, err := h.ledger.TxManager().Begin(ctx)
	require.NoError(t, err)
	_, err = h.ledger.SettlementRepo().GetForUpdateSkipLocked(ctx, other, s.ID)
	require.NoError(t, err)

	executed := false
	h.execute = func(context.Context, *domain.Settlement) error {
		executed = true
		return nil
	}

	outcome, err := h.settlements.ProcessSingleSettlement(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeSkipped, outcome.Outcome)
	assert.False(t, executed)

	require.NoError(t, other.Rollback(ctx))

	outcome, err = h.settlements.ProcessSingleSettlement(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeCompleted, outcome.Outcome)
	assert.True(t, executed)
	assert.Equal(t, domain.SettlementStatusCompleted, s.Status)
}

func TestProcessSingleSettlement_SkipsTerminal(t *testing.T) {
	h := newHarness(t)
	h.ledger.SeedSettlement(domain.Settlement{
		ID:           "done",
		Status:       domain.SettlementStatusCompleted,
		ScheduledFor: baseTime,
		Amount:       dec("1"),
	})

	outcome, err := h.settlements.ProcessSingleSettlement(context.Background(), &domain.Settlement{ID: "done"})
	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeSkipped, outcome.Outcome)
	assert.Equal(t, domain.SettlementStatusCompleted, outcome.Status)
}

func TestProcessSingleSettlement_ReturnsExecutionError(t *testing.T) {
	h := newHarness(t)
	cause := errors.New("timeout talking to rail")
	h.execute = func(context.Context, *domain.Settlement) error { return cause }

	s, err := h.settlements.ScheduleSettlement(context.Background(), settlementRequest("10"))
	require.NoError(t, err)

	outcome, err := h.settlements.ProcessSingleSettlement(context.Background(), s)
	require.Error(t, err)

	var execErr *domain.SettlementExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, s.ID, execErr.SettlementID)
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, usecase.OutcomeRetryScheduled, outcome.Outcome)
	require.NotNil(t, outcome.NextAttempt)
	assert.Equal(t, baseTime.Add(4*time.Minute), *outcome.NextAttempt)
	assert.Equal(t, 1, s.RetryCount)
}

func TestProcessSettlementBatch_HangingRailStillExhaustsRetries(t *testing.T) {
	h := newHarness(t)

	cfg := usecase.DefaultSettlementConfig()
	cfg.Retry.Jitter = 0
	cfg.TxTimeout = 50 * time.Millisecond
	cfg.ExecTimeout = 20 * time.Millisecond

	hanging := mocks.ExecutorFunc(func(ctx context.Context, _ *domain.Settlement) error {
		<-ctx.Done()
		return ctx.Err()
	})
	uc := usecase.NewSettlementUseCase(
		h.ledger.TxManager(), h.ledger.SettlementRepo(), h.ledger.Outbox(),
		hanging, h.ids, h.clock, cfg, zerolog.Nop(), nil,
	)

	s, err := uc.ScheduleSettlement(context.Background(), settlementRequest("10"))
	require.NoError(t, err)

	wantOutcomes := []string{usecase.OutcomeRetryScheduled, usecase.OutcomeRetryScheduled, usecase.OutcomeFailed}
	for i, want := range wantOutcomes {
		res, err := uc.ProcessSettlementBatch(context.Background())
		require.NoError(t, err)
		require.Len(t, res.Details, 1)
		assert.Equal(t, want, res.Details[0].Outcome)
		assert.Contains(t, res.Details[0].Error, context.DeadlineExceeded.Error())

		stored := h.ledger.Settlement(s.ID)
		assert.Equal(t, i+1, stored.RetryCount)
		if want == usecase.OutcomeRetryScheduled {
			assert.True(t, stored.ScheduledFor.After(h.clock.Now()), stored.ScheduledFor)
		}
		h.clock.Set(stored.ScheduledFor)
	}

	final := h.ledger.Settlement(s.ID)
	assert.Equal(t, domain.SettlementStatusFailed, final.Status)
	assert.Equal(t, 3, final.RetryCount)
}

func TestHandleSettlementFailure(t *testing.T) {
	h := newHarness(t)

	s, err := h.settlements.ScheduleSettlement(context.Background(), settlementRequest("10"))
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		updated, err := h.settlements.HandleSettlementFailure(context.Background(), s, errors.New("nope"))
		require.NoError(t, err)
		assert.Equal(t, i, updated.RetryCount)
	}
	assert.Equal(t, domain.SettlementStatusFailed, s.Status)

	_, err = h.settlements.HandleSettlementFailure(context.Background(), s, errors.New("again"))
	assert.ErrorIs(t, err, domain.ErrInvalidSettlementStatus)
	assert.Equal(t, 3, h.ledger.Settlement(s.ID).RetryCount)
}

func TestListSettlementsByStatus(t *testing.T) {
	h := newHarness(t)

	for i := 0; i < 3; i++ {
		_, err := h.settlements.ScheduleSettlement(context.Background(), settlementRequest("10"))
		require.NoError(t, err)
	}

	pending, err := h.settlements.ListSettlementsByStatus(context.Background(), "pending", 0, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	completed, err := h.settlements.ListSettlementsByStatus(context.Background(), "COMPLETED", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, completed)

	_, err = h.settlements.ListSettlementsByStatus(context.Background(), "settled", 10, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidSettlementStatus)
}

func TestProcessSettlementBatch_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockSettlementRepository(ctrl)
	repo.EXPECT().ListDue(gomock.Any(), baseTime, 5).Return(nil, errors.New("connection reset"))

	cfg := usecase.DefaultSettlementConfig()
	cfg.BatchSize = 5

	uc := usecase.NewSettlementUseCase(nil, repo, nil, mocks.NewMockSettlementExecutor(ctrl),
		&mocks.SequentialIDs{}, mocks.NewFakeClock(baseTime), cfg, zerolog.Nop(), nil)

	_, err := uc.ProcessSettlementBatch(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}

func TestRetryPolicy_NextDelay(t *testing.T) {
	exact := usecase.RetryPolicy{MaxRetries: 3}
	assert.Equal(t, 4*time.Minute, exact.NextDelay(1))
	assert.Equal(t, 8*time.Minute, exact.NextDelay(2))
	assert.Equal(t, 16*time.Minute, exact.NextDelay(3))
	assert.Equal(t, 4*time.Minute, exact.NextDelay(0))

	assert.False(t, exact.Exhausted(2))
	assert.True(t, exact.Exhausted(3))

	jittered := usecase.DefaultRetryPolicy()
	for i := 0; i < 50; i++ {
		for n, base := range map[int]time.Duration{1: 4 * time.Minute, 2: 8 * time.Minute} {
			d := jittered.NextDelay(n)
			assert.GreaterOrEqual(t, d, time.Duration(float64(base)*0.8))
			assert.LessOrEqual(t, d, time.Duration(float64(base)*1.2)+time.Nanosecond)
		}
	}
}
