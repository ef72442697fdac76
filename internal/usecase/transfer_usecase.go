package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/infrastructure/metrics"
)

// TransferUseCase handles same-currency transfers between accounts.
type TransferUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	transferRepo TransferRepository
	entryRepo    EntryRepository
	outboxRepo   OutboxRepository
	settlements  SettlementScheduler
	retrier      Retrier
	idGen        IDGenerator
	clock        Clock
	logger       zerolog.Logger
	metrics      *metrics.Metrics
	txTimeout    time.Duration
}

// NewTransferUseCase creates a new TransferUseCase. outboxRepo, settlements,
// retrier and metrics may be nil.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	settlements SettlementScheduler,
	retrier Retrier,
	idGen IDGenerator,
	clock Clock,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		entryRepo:    entryRepo,
		outboxRepo:   outboxRepo,
		settlements:  settlements,
		retrier:      retrier,
		idGen:        idGen,
		clock:        clockOrSystem(clock),
		logger:       logger.With().Str("component", "transfer").Logger(),
		metrics:      metrics,
		txTimeout:    DefaultTransactionTimeout,
	}
}

// WithTxTimeout overrides the transaction deadline.
func (uc *TransferUseCase) WithTxTimeout(d time.Duration) *TransferUseCase {
	if d > 0 {
		uc.txTimeout = d
	}
	return uc
}

// TransferFundsInput represents input for TransferFunds.
type TransferFundsInput struct {
	Metadata       map[string]any
	FromAccountID  string
	ToAccountID    string
	Amount         string
	Currency       string
	IdempotencyKey string
	Description    string
}

// TransferResult is the outcome of a successful TransferFunds call.
type TransferResult struct {
	Transfer   *domain.Transfer
	Settlement *domain.Settlement
	Entries    []*domain.Entry
	// Replayed is set when the idempotency key was already used and the
	// stored transfer is returned without any new mutation.
	Replayed bool
}

// TransferFunds moves amount from one account to another in one transaction.
func (uc *TransferUseCase) TransferFunds(ctx context.Context, input TransferFundsInput) (*TransferResult, error) {
	start := time.Now()

	result, err := uc.transferFunds(ctx, input)
	if err != nil {
		uc.recordError(err)
		return nil, err
	}

	if uc.metrics != nil && !result.Replayed {
		uc.metrics.TransfersCompleted.Inc()
		uc.metrics.TransferDuration.Observe(time.Since(start).Seconds())
		uc.metrics.TransferAmount.Observe(result.Transfer.Amount.InexactFloat64())
	}

	return result, nil
}

func (uc *TransferUseCase) transferFunds(ctx context.Context, input TransferFundsInput) (*TransferResult, error) {
	amount, err := domain.ParseAmount(input.Amount)
	if err != nil {
		return nil, err
	}

	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	currency := ""
	if input.Currency != "" {
		if currency, err = domain.NormalizeCurrency(input.Currency); err != nil {
			return nil, err
		}
	}

	if err := domain.ValidateMetadata(input.Metadata); err != nil {
		return nil, err
	}

	if input.IdempotencyKey != "" {
		if replay, err := uc.replay(ctx, input.IdempotencyKey); replay != nil || err != nil {
			return replay, err
		}
	}

	var result *TransferResult
	err = retry(ctx, uc.retrier, func() error {
		var opErr error
		result, opErr = uc.execute(ctx, input, amount, currency)
		return opErr
	})

	// Two first calls raced on the same key; the loser returns the winner.
	if errors.Is(err, domain.ErrDuplicateIdempotencyKey) && input.IdempotencyKey != "" {
		replay, replayErr := uc.replay(ctx, input.IdempotencyKey)
		if replayErr != nil {
			return nil, replayErr
		}
		if replay != nil {
			return replay, nil
		}
	}
	if err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("transfer_id", result.Transfer.ID).
		Str("from_account_id", result.Transfer.FromAccountID).
		Str("to_account_id", result.Transfer.ToAccountID).
		Str("amount", result.Transfer.Amount.String()).
		Str("currency", result.Transfer.Currency).
		Msg("transfer completed")

	return result, nil
}

// replay returns the stored transfer for key, or nil when none exists.
func (uc *TransferUseCase) replay(ctx context.Context, key string) (*TransferResult, error) {
	existing, err := uc.transferRepo.GetByIdempotencyKey(ctx, key)
	if errors.Is(err, domain.ErrTransferNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransferReplays.WithLabelValues("transfer").Inc()
	}

	uc.logger.Debug().
		Str("transfer_id", existing.ID).
		Str("idempotency_key", key).
		Msg("idempotent replay")

	return &TransferResult{Transfer: existing, Replayed: true}, nil
}

func (uc *TransferUseCase) execute(
	ctx context.Context,
	input TransferFundsInput,
	amount decimal.Decimal,
	currency string,
) (*TransferResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer rollback(txCtx, tx)

	from, to, err := lockAccountPair(txCtx, tx, uc.accountRepo, input.FromAccountID, input.ToAccountID)
	if err != nil {
		return nil, err
	}

	if from.Currency != to.Currency {
		return nil, domain.ErrCurrencyMismatch
	}
	if currency != "" && from.Currency != currency {
		return nil, domain.ErrCurrencyMismatch
	}

	if err := from.ValidateDebit(amount); err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	transfer := &domain.Transfer{
		ID:            uc.idGen.Generate(),
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        amount,
		Currency:      from.Currency,
		Status:        domain.TransferStatusCompleted,
		Type:          domain.TransferTypeInternal,
		Description:   input.Description,
		Metadata:      input.Metadata,
		CreatedAt:     now,
	}
	if input.IdempotencyKey != "" {
		key := input.IdempotencyKey
		transfer.IdempotencyKey = &key
	}

	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	if err := uc.transferRepo.Create(txCtx, tx, transfer); err != nil {
		return nil, err
	}

	entries, err := post(txCtx, tx, uc.accountRepo, uc.entryRepo, uc.idGen, posting{
		ReferenceID:  transfer.ID,
		Description:  transfer.Description,
		From:         from,
		DebitAmount:  amount,
		To:           to,
		CreditAmount: amount,
	}, now)
	if err != nil {
		return nil, err
	}

	payload := domain.TransferCompletedEvent{
		TransferID:    transfer.ID,
		FromAccountID: transfer.FromAccountID,
		ToAccountID:   transfer.ToAccountID,
		Amount:        transfer.Amount.String(),
		Currency:      transfer.Currency,
	}.Map()
	if err := emitEvent(txCtx, tx, uc.outboxRepo, uc.idGen,
		domain.AggregateTypeTransfer, transfer.ID, domain.EventTypeTransferCompleted, payload, now); err != nil {
		return nil, err
	}

	var settlement *domain.Settlement
	if uc.settlements != nil {
		settlement, err = uc.settlements.ScheduleSettlementTx(txCtx, tx, domain.SettlementRequest{
			TransferID:    transfer.ID,
			FromAccountID: transfer.FromAccountID,
			ToAccountID:   transfer.ToAccountID,
			Currency:      transfer.Currency,
			Amount:        transfer.Amount,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &TransferResult{Transfer: transfer, Settlement: settlement, Entries: entries}, nil
}

func (uc *TransferUseCase) recordError(err error) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.TransferErrors.WithLabelValues(errorType(err)).Inc()
}

// GetTransfer retrieves a transfer by ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

// ListTransfersByAccountInput represents input for listing transfers.
type ListTransfersByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListTransfersByAccount lists transfers for an account.
func (uc *TransferUseCase) ListTransfersByAccount(ctx context.Context, input ListTransfersByAccountInput) ([]*domain.Transfer, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.transferRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

// errorType maps an error onto a low-cardinality metric label.
func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrAccountInactive):
		return "account_inactive"
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return "currency_mismatch"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case domain.IsValidation(err):
		return "validation"
	default:
		return "internal"
	}
}
