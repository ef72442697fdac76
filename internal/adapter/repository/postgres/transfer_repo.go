package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/infrastructure/postgres/generated"
	"github.com/iho/paycore/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	queries *generated.Queries
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(db generated.DBTX) *TransferRepository {
	return &TransferRepository{queries: generated.New(db)}
}

// Create inserts a transfer. A clash on the idempotency key surfaces as
// domain.ErrDuplicateIdempotencyKey.
func (r *TransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	metadata, err := marshalJSON(transfer.Metadata)
	if err != nil {
		return err
	}

	err = txQueries(tx).CreateTransfer(ctx, generated.CreateTransferParams{
		ID:             transfer.ID,
		FromAccountID:  transfer.FromAccountID,
		ToAccountID:    transfer.ToAccountID,
		Amount:         decimalToNumeric(transfer.Amount),
		Currency:       transfer.Currency,
		Status:         string(transfer.Status),
		Type:           string(transfer.Type),
		Description:    transfer.Description,
		IdempotencyKey: transfer.IdempotencyKey,
		Metadata:       metadata,
		CreatedAt:      timeToPgTimestamptz(transfer.CreatedAt),
	})
	if isUniqueViolation(err, transfersIdempotencyConstraint) {
		return domain.ErrDuplicateIdempotencyKey
	}

	return err
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	row, err := r.queries.GetTransferByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	return rowToTransfer(row), nil
}

// GetByIdempotencyKey retrieves a transfer by its idempotency key.
func (r *TransferRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transfer, error) {
	row, err := r.queries.GetTransferByIdempotencyKey(ctx, &key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	return rowToTransfer(row), nil
}

// ListByAccount lists transfers touching an account, newest first.
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	rows, err := r.queries.ListTransfersByAccount(ctx, generated.ListTransfersByAccountParams{
		FromAccountID: accountID,
		Limit:         int32(limit),
		Offset:        int32(offset),
	})
	if err != nil {
		return nil, err
	}

	transfers := make([]*domain.Transfer, 0, len(rows))
	for _, row := range rows {
		transfers = append(transfers, rowToTransfer(row))
	}

	return transfers, nil
}

func rowToTransfer(row generated.Transfer) *domain.Transfer {
	return &domain.Transfer{
		ID:             row.ID,
		FromAccountID:  row.FromAccountID,
		ToAccountID:    row.ToAccountID,
		Amount:         numericToDecimal(row.Amount),
		Currency:       row.Currency,
		Status:         domain.TransferStatus(row.Status),
		Type:           domain.TransferType(row.Type),
		Description:    row.Description,
		IdempotencyKey: row.IdempotencyKey,
		Metadata:       unmarshalJSON(row.Metadata),
		CreatedAt:      row.CreatedAt.Time,
	}
}
