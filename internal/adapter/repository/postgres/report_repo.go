package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/infrastructure/postgres/generated"
)

// ReportRepository implements usecase.ReportRepository.
type ReportRepository struct {
	queries *generated.Queries
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(db generated.DBTX) *ReportRepository {
	return &ReportRepository{queries: generated.New(db)}
}

// TransferTotals aggregates same-currency transfers created within [from, to].
func (r *ReportRepository) TransferTotals(ctx context.Context, from, to time.Time) ([]domain.CurrencyTotal, error) {
	rows, err := r.queries.TransferTotalsByCurrency(ctx, generated.TransferTotalsByCurrencyParams{
		FromTime: timeToPgTimestamptz(from),
		ToTime:   timeToPgTimestamptz(to),
	})
	if err != nil {
		return nil, err
	}

	totals := make([]domain.CurrencyTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.CurrencyTotal{
			Currency: row.Currency,
			Count:    row.Count,
			Total:    numericToDecimal(row.Total),
		})
	}

	return totals, nil
}

// FxVolumes aggregates conversions per currency pair within [from, to].
func (r *ReportRepository) FxVolumes(ctx context.Context, from, to time.Time) ([]domain.FxVolume, error) {
	rows, err := r.queries.FxVolumesByPair(ctx, generated.FxVolumesByPairParams{
		FromTime: timeToPgTimestamptz(from),
		ToTime:   timeToPgTimestamptz(to),
	})
	if err != nil {
		return nil, err
	}

	volumes := make([]domain.FxVolume, 0, len(rows))
	for _, row := range rows {
		volumes = append(volumes, domain.FxVolume{
			FromCurrency: row.FromCurrency,
			ToCurrency:   row.ToCurrency,
			Count:        row.Count,
			FromTotal:    numericToDecimal(row.FromTotal),
			ToTotal:      numericToDecimal(row.ToTotal),
		})
	}

	return volumes, nil
}

// AccountActivity aggregates entries per account within [from, to].
func (r *ReportRepository) AccountActivity(ctx context.Context, from, to time.Time) ([]domain.AccountActivity, error) {
	rows, err := r.queries.AccountActivity(ctx, generated.AccountActivityParams{
		FromTime: timeToPgTimestamptz(from),
		ToTime:   timeToPgTimestamptz(to),
	})
	if err != nil {
		return nil, err
	}

	activity := make([]domain.AccountActivity, 0, len(rows))
	for _, row := range rows {
		activity = append(activity, domain.AccountActivity{
			AccountID:  row.AccountID,
			EntryCount: row.EntryCount,
			NetAmount:  numericToDecimal(row.NetAmount),
		})
	}

	return activity, nil
}

// AccountSummaries returns every account with its entry aggregates.
func (r *ReportRepository) AccountSummaries(ctx context.Context) ([]domain.AccountLedgerSummary, error) {
	rows, err := r.queries.AccountLedgerSummaries(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.AccountLedgerSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, domain.AccountLedgerSummary{
			AccountID:   row.ID,
			Name:        row.Name,
			Currency:    row.Currency,
			Balance:     numericToDecimal(row.Balance),
			EntrySum:    numericToDecimal(row.EntrySum),
			DebitTotal:  numericToDecimal(row.DebitTotal),
			CreditTotal: numericToDecimal(row.CreditTotal),
			EntryCount:  row.EntryCount,
		})
	}

	return summaries, nil
}

// AccountSummary returns one account with its entry aggregates.
func (r *ReportRepository) AccountSummary(ctx context.Context, accountID string) (*domain.AccountLedgerSummary, error) {
	row, err := r.queries.AccountLedgerSummary(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return &domain.AccountLedgerSummary{
		AccountID:   row.ID,
		Name:        row.Name,
		Currency:    row.Currency,
		Balance:     numericToDecimal(row.Balance),
		EntrySum:    numericToDecimal(row.EntrySum),
		DebitTotal:  numericToDecimal(row.DebitTotal),
		CreditTotal: numericToDecimal(row.CreditTotal),
		EntryCount:  row.EntryCount,
	}, nil
}
