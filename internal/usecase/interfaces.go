package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// GetByIDsForUpdate locks the rows in ascending id order.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransferRepository defines data access for transfers.
type TransferRepository interface {
	Create(ctx context.Context, tx Transaction, transfer *domain.Transfer) error
	GetByID(ctx context.Context, id string) (*domain.Transfer, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transfer, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error)
}

// FxTransferRepository defines data access for currency conversions.
type FxTransferRepository interface {
	Create(ctx context.Context, tx Transaction, fx *domain.FxTransfer) error
	GetByID(ctx context.Context, id string) (*domain.FxTransfer, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.FxTransfer, error)
}

// EntryRepository defines data access for entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByReference(ctx context.Context, referenceID string) ([]*domain.Entry, error)
	GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
}

// SettlementRepository defines data access for settlements.
type SettlementRepository interface {
	Create(ctx context.Context, tx Transaction, settlement *domain.Settlement) error
	GetByID(ctx context.Context, id string) (*domain.Settlement, error)
	// GetForUpdateSkipLocked returns domain.ErrSettlementNotFound when the
	// row is missing or locked by another worker.
	GetForUpdateSkipLocked(ctx context.Context, tx Transaction, id string) (*domain.Settlement, error)
	Update(ctx context.Context, tx Transaction, settlement *domain.Settlement) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Settlement, error)
	ListByStatus(ctx context.Context, status domain.SettlementStatus, limit, offset int) ([]*domain.Settlement, error)
}

// ReportRepository runs read-only aggregate queries.
type ReportRepository interface {
	TransferTotals(ctx context.Context, from, to time.Time) ([]domain.CurrencyTotal, error)
	FxVolumes(ctx context.Context, from, to time.Time) ([]domain.FxVolume, error)
	AccountActivity(ctx context.Context, from, to time.Time) ([]domain.AccountActivity, error)
	AccountSummaries(ctx context.Context) ([]domain.AccountLedgerSummary, error)
	AccountSummary(ctx context.Context, accountID string) (*domain.AccountLedgerSummary, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context) (totalBalance, totalEntries decimal.Decimal, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient database failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// RateProvider is an external source of market exchange rates.
type RateProvider interface {
	FetchMarketRate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// SpreadRequest carries the inputs a spread policy may key on.
type SpreadRequest struct {
	FromCurrency string
	ToCurrency   string
	Volume       decimal.Decimal
	Tier         string
}

// SpreadPolicy computes the fractional markdown applied to a market rate.
type SpreadPolicy interface {
	CalculateSpread(req SpreadRequest) decimal.Decimal
}

// SettlementExecutor moves a settlement across an external rail.
type SettlementExecutor interface {
	Execute(ctx context.Context, settlement *domain.Settlement) error
}

// SettlementScheduler creates the settlement for a completed transfer
// inside the transfer's transaction.
type SettlementScheduler interface {
	ScheduleSettlementTx(ctx context.Context, tx Transaction, req domain.SettlementRequest) (*domain.Settlement, error)
}

// QuoteCache caches market rates per currency pair.
type QuoteCache interface {
	Get(ctx context.Context, from, to string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, from, to string, rate decimal.Decimal, ttl time.Duration) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not succeed so it can be retried.
	Release(ctx context.Context, key string) error
}
