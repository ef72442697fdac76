package postgres

import (
	"context"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/infrastructure/postgres/generated"
	"github.com/iho/paycore/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// Create creates a new entry.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	return txQueries(tx).CreateEntry(ctx, generated.CreateEntryParams{
		ID:                     entry.ID,
		AccountID:              entry.AccountID,
		ReferenceID:            entry.ReferenceID,
		Type:                   string(entry.Type),
		Description:            entry.Description,
		Amount:                 decimalToNumeric(entry.Amount),
		AccountPreviousBalance: decimalToNumeric(entry.AccountPreviousBalance),
		AccountCurrentBalance:  decimalToNumeric(entry.AccountCurrentBalance),
		AccountVersion:         entry.AccountVersion,
		CreatedAt:              timeToPgTimestamptz(entry.CreatedAt),
	})
}

// GetByReference retrieves the entries posted by one transfer or conversion.
func (r *EntryRepository) GetByReference(ctx context.Context, referenceID string) ([]*domain.Entry, error) {
	rows, err := r.queries.GetEntriesByReference(ctx, referenceID)
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// GetByAccount retrieves entries for an account with pagination.
func (r *EntryRepository) GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.queries.GetEntriesByAccount(ctx, generated.GetEntriesByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

func rowsToEntries(rows []generated.Entry) []*domain.Entry {
	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, &domain.Entry{
			ID:                     row.ID,
			AccountID:              row.AccountID,
			ReferenceID:            row.ReferenceID,
			Type:                   domain.EntryType(row.Type),
			Description:            row.Description,
			Amount:                 numericToDecimal(row.Amount),
			AccountPreviousBalance: numericToDecimal(row.AccountPreviousBalance),
			AccountCurrentBalance:  numericToDecimal(row.AccountCurrentBalance),
			AccountVersion:         row.AccountVersion,
			CreatedAt:              row.CreatedAt.Time,
		})
	}

	return entries
}
