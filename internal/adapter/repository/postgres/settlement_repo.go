package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/infrastructure/postgres/generated"
	"github.com/iho/paycore/internal/usecase"
)

// SettlementRepository implements usecase.SettlementRepository.
type SettlementRepository struct {
	queries *generated.Queries
}

// NewSettlementRepository creates a new SettlementRepository.
func NewSettlementRepository(db generated.DBTX) *SettlementRepository {
	return &SettlementRepository{queries: generated.New(db)}
}

// Create inserts a settlement inside the transfer's transaction.
func (r *SettlementRepository) Create(ctx context.Context, tx usecase.Transaction, s *domain.Settlement) error {
	return txQueries(tx).CreateSettlement(ctx, generated.CreateSettlementParams{
		ID:            s.ID,
		TransferID:    s.TransferID,
		FromAccountID: s.FromAccountID,
		ToAccountID:   s.ToAccountID,
		Amount:        decimalToNumeric(s.Amount),
		Currency:      s.Currency,
		Status:        string(s.Status),
		ScheduledFor:  timeToPgTimestamptz(s.ScheduledFor),
		RetryCount:    int32(s.RetryCount),
		LastError:     s.LastError,
		CompletedAt:   optionalTimestamptz(s.CompletedAt),
		CreatedAt:     timeToPgTimestamptz(s.CreatedAt),
		UpdatedAt:     timeToPgTimestamptz(s.UpdatedAt),
	})
}

// GetByID retrieves a settlement by ID.
func (r *SettlementRepository) GetByID(ctx context.Context, id string) (*domain.Settlement, error) {
	row, err := r.queries.GetSettlementByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettlementNotFound
		}

		return nil, err
	}

	return rowToSettlement(row), nil
}

// GetForUpdateSkipLocked locks the settlement row unless another worker
// already holds it, in which case it reports domain.ErrSettlementNotFound.
func (r *SettlementRepository) GetForUpdateSkipLocked(ctx context.Context, tx usecase.Transaction, id string) (*domain.Settlement, error) {
	row, err := txQueries(tx).GetSettlementForUpdateSkipLocked(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettlementNotFound
		}

		return nil, err
	}

	return rowToSettlement(row), nil
}

// Update persists the mutable settlement fields.
func (r *SettlementRepository) Update(ctx context.Context, tx usecase.Transaction, s *domain.Settlement) error {
	return txQueries(tx).UpdateSettlement(ctx, generated.UpdateSettlementParams{
		ID:           s.ID,
		Status:       string(s.Status),
		ScheduledFor: timeToPgTimestamptz(s.ScheduledFor),
		RetryCount:   int32(s.RetryCount),
		LastError:    s.LastError,
		CompletedAt:  optionalTimestamptz(s.CompletedAt),
		UpdatedAt:    timeToPgTimestamptz(s.UpdatedAt),
	})
}

// ListDue returns pending settlements scheduled at or before now.
func (r *SettlementRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Settlement, error) {
	rows, err := r.queries.ListDueSettlements(ctx, generated.ListDueSettlementsParams{
		ScheduledFor: timeToPgTimestamptz(now),
		Limit:        int32(limit),
	})
	if err != nil {
		return nil, err
	}

	return rowsToSettlements(rows), nil
}

// ListByStatus lists settlements in one status.
func (r *SettlementRepository) ListByStatus(ctx context.Context, status domain.SettlementStatus, limit, offset int) ([]*domain.Settlement, error) {
	rows, err := r.queries.ListSettlementsByStatus(ctx, generated.ListSettlementsByStatusParams{
		Status: string(status),
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToSettlements(rows), nil
}

func rowsToSettlements(rows []generated.Settlement) []*domain.Settlement {
	out := make([]*domain.Settlement, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToSettlement(row))
	}

	return out
}

func rowToSettlement(row generated.Settlement) *domain.Settlement {
	return &domain.Settlement{
		ID:            row.ID,
		TransferID:    row.TransferID,
		FromAccountID: row.FromAccountID,
		ToAccountID:   row.ToAccountID,
		Amount:        numericToDecimal(row.Amount),
		Currency:      row.Currency,
		Status:        domain.SettlementStatus(row.Status),
		ScheduledFor:  row.ScheduledFor.Time,
		RetryCount:    int(row.RetryCount),
		LastError:     row.LastError,
		CompletedAt:   timestamptzToPtr(row.CompletedAt),
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}
