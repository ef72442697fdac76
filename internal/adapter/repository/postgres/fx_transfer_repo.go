package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/infrastructure/postgres/generated"
	"github.com/iho/paycore/internal/usecase"
)

// FxTransferRepository implements usecase.FxTransferRepository.
type FxTransferRepository struct {
	queries *generated.Queries
}

// NewFxTransferRepository creates a new FxTransferRepository.
func NewFxTransferRepository(db generated.DBTX) *FxTransferRepository {
	return &FxTransferRepository{queries: generated.New(db)}
}

// Create inserts a conversion record.
func (r *FxTransferRepository) Create(ctx context.Context, tx usecase.Transaction, fx *domain.FxTransfer) error {
	metadata, err := marshalJSON(fx.Metadata)
	if err != nil {
		return err
	}

	err = txQueries(tx).CreateFxTransfer(ctx, generated.CreateFxTransferParams{
		ID:             fx.ID,
		FromAccountID:  fx.FromAccountID,
		ToAccountID:    fx.ToAccountID,
		FromAmount:     decimalToNumeric(fx.FromAmount),
		FromCurrency:   fx.FromCurrency,
		ToAmount:       decimalToNumeric(fx.ToAmount),
		ToCurrency:     fx.ToCurrency,
		Rate:           decimalToNumeric(fx.Rate),
		MarketRate:     decimalToNumeric(fx.MarketRate),
		Spread:         decimalToNumeric(fx.Spread),
		IdempotencyKey: fx.IdempotencyKey,
		Status:         string(fx.Status),
		Description:    fx.Description,
		Metadata:       metadata,
		CreatedAt:      timeToPgTimestamptz(fx.CreatedAt),
	})
	if isUniqueViolation(err, fxTransfersIdempotencyConstraint) {
		return domain.ErrDuplicateIdempotencyKey
	}

	return err
}

// GetByID retrieves a conversion by ID.
func (r *FxTransferRepository) GetByID(ctx context.Context, id string) (*domain.FxTransfer, error) {
	row, err := r.queries.GetFxTransferByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	return rowToFxTransfer(row), nil
}

// GetByIdempotencyKey retrieves a conversion by its idempotency key.
func (r *FxTransferRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.FxTransfer, error) {
	row, err := r.queries.GetFxTransferByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	return rowToFxTransfer(row), nil
}

func rowToFxTransfer(row generated.FxTransfer) *domain.FxTransfer {
	return &domain.FxTransfer{
		ID:             row.ID,
		FromAccountID:  row.FromAccountID,
		ToAccountID:    row.ToAccountID,
		FromAmount:     numericToDecimal(row.FromAmount),
		FromCurrency:   row.FromCurrency,
		ToAmount:       numericToDecimal(row.ToAmount),
		ToCurrency:     row.ToCurrency,
		Rate:           numericToDecimal(row.Rate),
		MarketRate:     numericToDecimal(row.MarketRate),
		Spread:         numericToDecimal(row.Spread),
		IdempotencyKey: row.IdempotencyKey,
		Status:         domain.TransferStatus(row.Status),
		Description:    row.Description,
		Metadata:       unmarshalJSON(row.Metadata),
		CreatedAt:      row.CreatedAt.Time,
	}
}
