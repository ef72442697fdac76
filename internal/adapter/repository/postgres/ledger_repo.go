package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// CheckConsistency returns the sum of all account balances and the sum of
// all entry amounts. A consistent ledger has both equal.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (totalBalance, totalEntries decimal.Decimal, err error) {
	result, err := r.queries.CheckLedgerConsistency(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(result.TotalAccountBalance), numericToDecimal(result.TotalEntryAmount), nil
}
