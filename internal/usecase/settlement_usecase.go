package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/infrastructure/metrics"
)

// Settlement outcomes reported per item by ProcessSettlementBatch.
const (
	OutcomeCompleted      = "completed"
	OutcomeRetryScheduled = "retry_scheduled"
	OutcomeFailed         = "failed"
	OutcomeSkipped        = "skipped"
	OutcomeError          = "error"
)

// SettlementConfig holds the scheduling and retry policy.
type SettlementConfig struct {
	Policy    domain.SettlementPolicy
	Retry     RetryPolicy
	BatchSize int
	TxTimeout time.Duration

	// ExecTimeout bounds the executor call. The settlement transaction gets
	// TxTimeout on top of it for recording the outcome.
	ExecTimeout time.Duration
}

// DefaultSettlementConfig returns the 100000 / 4h / 3 retries configuration.
func DefaultSettlementConfig() SettlementConfig {
	return SettlementConfig{
		Policy:    domain.DefaultSettlementPolicy(),
		Retry:     DefaultRetryPolicy(),
		BatchSize:   DefaultSettlementBatchSize,
		TxTimeout:   DefaultTransactionTimeout,
		ExecTimeout: DefaultSettlementExecTimeout,
	}
}

// SettlementUseCase schedules, executes and retries settlements.
type SettlementUseCase struct {
	txManager      TransactionManager
	settlementRepo SettlementRepository
	outboxRepo     OutboxRepository
	executor       SettlementExecutor
	idGen          IDGenerator
	clock          Clock
	cfg            SettlementConfig
	logger         zerolog.Logger
	metrics        *metrics.Metrics
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	txManager TransactionManager,
	settlementRepo SettlementRepository,
	outboxRepo OutboxRepository,
	executor SettlementExecutor,
	idGen IDGenerator,
	clock Clock,
	cfg SettlementConfig,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *SettlementUseCase {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultSettlementBatchSize
	}
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = DefaultTransactionTimeout
	}
	if cfg.ExecTimeout <= 0 {
		cfg.ExecTimeout = DefaultSettlementExecTimeout
	}

	return &SettlementUseCase{
		txManager:      txManager,
		settlementRepo: settlementRepo,
		outboxRepo:     outboxRepo,
		executor:       executor,
		idGen:          idGen,
		clock:          clockOrSystem(clock),
		cfg:            cfg,
		logger:         logger.With().Str("component", "settlement").Logger(),
		metrics:        metrics,
	}
}

// ScheduleSettlement creates a PENDING settlement in its own transaction.
func (uc *SettlementUseCase) ScheduleSettlement(ctx context.Context, req domain.SettlementRequest) (*domain.Settlement, error) {
	txCtx, cancel := context.WithTimeout(ctx, uc.cfg.TxTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer rollback(txCtx, tx)

	s, err := uc.ScheduleSettlementTx(txCtx, tx, req)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return s, nil
}

// ScheduleSettlementTx creates a PENDING settlement inside tx. Amounts above
// the large threshold are deferred to the next settlement window.
func (uc *SettlementUseCase) ScheduleSettlementTx(ctx context.Context, tx Transaction, req domain.SettlementRequest) (*domain.Settlement, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	s := &domain.Settlement{
		ID:            uc.idGen.Generate(),
		TransferID:    req.TransferID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Status:        domain.SettlementStatusPending,
		ScheduledFor:  uc.cfg.Policy.ScheduleFor(req.Amount, now),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.settlementRepo.Create(ctx, tx, s); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.SettlementsScheduled.Inc()
	}

	uc.logger.Debug().
		Str("settlement_id", s.ID).
		Str("transfer_id", s.TransferID).
		Time("scheduled_for", s.ScheduledFor).
		Msg("settlement scheduled")

	return s, nil
}

// SettlementOutcome is the per-item result of a batch run.
type SettlementOutcome struct {
	NextAttempt  *time.Time
	SettlementID string
	Outcome      string
	Status       domain.SettlementStatus
	Error        string
	RetryCount   int
}

// BatchResult aggregates one ProcessSettlementBatch run.
type BatchResult struct {
	Details   []SettlementOutcome
	Processed int
	Succeeded int
	Failed    int
	Skipped   int
}

// ProcessSettlementBatch executes every due PENDING settlement, one at a
// time. A failing item never aborts the rest of the batch.
func (uc *SettlementUseCase) ProcessSettlementBatch(ctx context.Context) (*BatchResult, error) {
	start := time.Now()
	defer func() {
		if uc.metrics != nil {
			uc.metrics.SettlementBatchDuration.Observe(time.Since(start).Seconds())
		}
	}()

	due, err := uc.settlementRepo.ListDue(ctx, uc.clock.Now(), uc.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("list due settlements: %w", err)
	}

	result := &BatchResult{Details: make([]SettlementOutcome, 0, len(due))}

	for _, s := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome, err := uc.ProcessSingleSettlement(ctx, s)
		if outcome == nil {
			// infrastructure failure before the settlement could be handled
			outcome = &SettlementOutcome{
				SettlementID: s.ID,
				Outcome:      OutcomeError,
				Status:       s.Status,
				RetryCount:   s.RetryCount,
			}
		}
		if err != nil {
			outcome.Error = err.Error()
		}

		switch outcome.Outcome {
		case OutcomeCompleted:
			result.Succeeded++
			result.Processed++
		case OutcomeRetryScheduled, OutcomeFailed, OutcomeError:
			result.Failed++
			result.Processed++
		case OutcomeSkipped:
			result.Skipped++
		}

		uc.recordOutcome(outcome.Outcome)
		result.Details = append(result.Details, *outcome)
	}

	if len(due) > 0 {
		uc.logger.Info().
			Int("processed", result.Processed).
			Int("succeeded", result.Succeeded).
			Int("failed", result.Failed).
			Int("skipped", result.Skipped).
			Msg("settlement batch finished")
	}

	return result, nil
}

// ProcessSingleSettlement locks the settlement, runs the executor and records
// the result. A row held by another worker or no longer PENDING is skipped.
// Executor failures are recorded through the retry policy and returned as
// *domain.SettlementExecutionError. The executor runs under ExecTimeout, so
// a hanging rail still leaves TxTimeout to record the failed attempt.
func (uc *SettlementUseCase) ProcessSingleSettlement(ctx context.Context, s *domain.Settlement) (*SettlementOutcome, error) {
	txCtx, cancel := context.WithTimeout(ctx, uc.cfg.ExecTimeout+uc.cfg.TxTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer rollback(txCtx, tx)

	locked, err := uc.settlementRepo.GetForUpdateSkipLocked(txCtx, tx, s.ID)
	if errors.Is(err, domain.ErrSettlementNotFound) {
		return skipped(s), nil
	}
	if err != nil {
		return nil, err
	}

	if locked.Status != domain.SettlementStatusPending {
		return skipped(locked), nil
	}

	execErr := uc.execute(txCtx, locked)
	now := uc.clock.Now()

	if execErr != nil {
		wrapped := &domain.SettlementExecutionError{SettlementID: locked.ID, Err: execErr}

		outcome, err := uc.applyFailure(txCtx, tx, locked, wrapped, now)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(txCtx); err != nil {
			return nil, err
		}

		*s = *locked
		return outcome, wrapped
	}

	locked.Status = domain.SettlementStatusCompleted
	locked.CompletedAt = &now
	locked.UpdatedAt = now

	if err := uc.settlementRepo.Update(txCtx, tx, locked); err != nil {
		return nil, err
	}

	if err := uc.emit(txCtx, tx, locked, domain.EventTypeSettlementCompleted, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	*s = *locked

	uc.logger.Info().
		Str("settlement_id", locked.ID).
		Str("transfer_id", locked.TransferID).
		Msg("settlement completed")

	return &SettlementOutcome{
		SettlementID: locked.ID,
		Outcome:      OutcomeCompleted,
		Status:       locked.Status,
		RetryCount:   locked.RetryCount,
	}, nil
}

func (uc *SettlementUseCase) execute(ctx context.Context, s *domain.Settlement) error {
	execCtx, cancel := context.WithTimeout(ctx, uc.cfg.ExecTimeout)
	defer cancel()
	return uc.executor.Execute(execCtx, s)
}

// HandleSettlementFailure records a failed attempt. After MaxRetries
// failures the settlement becomes FAILED and is never rescheduled; before
// that it is pushed back by the jittered exponential backoff.
func (uc *SettlementUseCase) HandleSettlementFailure(ctx context.Context, s *domain.Settlement, cause error) (*domain.Settlement, error) {
	txCtx, cancel := context.WithTimeout(ctx, uc.cfg.TxTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer rollback(txCtx, tx)

	locked, err := uc.settlementRepo.GetForUpdateSkipLocked(txCtx, tx, s.ID)
	if err != nil {
		return nil, err
	}

	if locked.Status != domain.SettlementStatusPending {
		return nil, fmt.Errorf("%w: settlement %s is %s", domain.ErrInvalidSettlementStatus, locked.ID, locked.Status)
	}

	if _, err := uc.applyFailure(txCtx, tx, locked, cause, uc.clock.Now()); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	*s = *locked
	return locked, nil
}

func (uc *SettlementUseCase) applyFailure(
	ctx context.Context,
	tx Transaction,
	s *domain.Settlement,
	cause error,
	now time.Time,
) (*SettlementOutcome, error) {
	s.RetryCount++
	s.UpdatedAt = now
	if cause != nil {
		s.LastError = cause.Error()
	}

	outcome := &SettlementOutcome{SettlementID: s.ID, RetryCount: s.RetryCount}

	if uc.cfg.Retry.Exhausted(s.RetryCount) {
		s.Status = domain.SettlementStatusFailed
		outcome.Outcome = OutcomeFailed

		if err := uc.settlementRepo.Update(ctx, tx, s); err != nil {
			return nil, err
		}
		if err := uc.emit(ctx, tx, s, domain.EventTypeSettlementFailed, now); err != nil {
			return nil, err
		}

		uc.logger.Error().
			Str("settlement_id", s.ID).
			Int("retry_count", s.RetryCount).
			Str("last_error", s.LastError).
			Msg("settlement failed permanently")
	} else {
		next := now.Add(uc.cfg.Retry.NextDelay(s.RetryCount))
		s.ScheduledFor = next
		outcome.Outcome = OutcomeRetryScheduled
		outcome.NextAttempt = &next

		if err := uc.settlementRepo.Update(ctx, tx, s); err != nil {
			return nil, err
		}

		uc.logger.Warn().
			Str("settlement_id", s.ID).
			Int("retry_count", s.RetryCount).
			Time("next_attempt", next).
			Str("last_error", s.LastError).
			Msg("settlement attempt failed, rescheduled")
	}

	outcome.Status = s.Status
	return outcome, nil
}

func (uc *SettlementUseCase) emit(ctx context.Context, tx Transaction, s *domain.Settlement, eventType string, now time.Time) error {
	payload := domain.SettlementEvent{
		SettlementID: s.ID,
		TransferID:   s.TransferID,
		Amount:       s.Amount.String(),
		Currency:     s.Currency,
		Status:       string(s.Status),
		RetryCount:   s.RetryCount,
		LastError:    s.LastError,
	}.Map()

	return emitEvent(ctx, tx, uc.outboxRepo, uc.idGen, domain.AggregateTypeSettlement, s.ID, eventType, payload, now)
}

func (uc *SettlementUseCase) recordOutcome(outcome string) {
	if uc.metrics != nil {
		uc.metrics.SettlementOutcomes.WithLabelValues(outcome).Inc()
	}
}

// GetSettlement retrieves a settlement by ID.
func (uc *SettlementUseCase) GetSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return uc.settlementRepo.GetByID(ctx, id)
}

// ListSettlementsByStatus lists settlements in the given status.
func (uc *SettlementUseCase) ListSettlementsByStatus(ctx context.Context, status string, limit, offset int) ([]*domain.Settlement, error) {
	s := domain.SettlementStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSettlementStatus, status)
	}

	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.settlementRepo.ListByStatus(ctx, s, limit, offset)
}

func skipped(s *domain.Settlement) *SettlementOutcome {
	return &SettlementOutcome{
		SettlementID: s.ID,
		Outcome:      OutcomeSkipped,
		Status:       s.Status,
		RetryCount:   s.RetryCount,
	}
}
