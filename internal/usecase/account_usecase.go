package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	clock       Clock
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		clock:       clockOrSystem(clock),
		logger:      logger.With().Str("component", "account").Logger(),
		metrics:     metrics,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name                 string
	Currency             string
	AllowNegativeBalance bool
}

// CreateAccount creates a new active account with a zero balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	currency, err := domain.NormalizeCurrency(input.Currency)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	account := &domain.Account{
		ID:                   uc.idGen.Generate(),
		Name:                 strings.TrimSpace(input.Name),
		Currency:             currency,
		Balance:              decimal.Zero,
		Status:               domain.AccountStatusActive,
		Version:              0,
		AllowNegativeBalance: input.AllowNegativeBalance,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer rollback(txCtx, tx)

	if err := uc.accountRepo.CreateTx(txCtx, tx, account); err != nil {
		return nil, err
	}

	payload := domain.AccountCreatedEvent{
		AccountID: account.ID,
		Name:      account.Name,
		Currency:  account.Currency,
	}.Map()
	if err := emitEvent(txCtx, tx, uc.outboxRepo, uc.idGen,
		domain.AggregateTypeAccount, account.ID, domain.EventTypeAccountCreated, payload, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	uc.logger.Info().
		Str("account_id", account.ID).
		Str("currency", account.Currency).
		Bool("allow_negative", account.AllowNegativeBalance).
		Msg("account created")

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}

// SetAccountStatus freezes, closes or reactivates an account.
func (uc *AccountUseCase) SetAccountStatus(ctx context.Context, id, status string) (*domain.Account, error) {
	s, err := domain.ValidateAccountStatus(status)
	if err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateStatus(ctx, id, s, uc.clock.Now()); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("account_id", id).
		Str("status", string(s)).
		Msg("account status changed")

	return uc.accountRepo.GetByID(ctx, id)
}
