package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/infrastructure/metrics"
)

// ReconciliationUseCase compares stored balances with the ledger.
type ReconciliationUseCase struct {
	reportRepo ReportRepository
	ledgerRepo LedgerRepository
	clock      Clock
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	reportRepo ReportRepository,
	ledgerRepo LedgerRepository,
	clock Clock,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		reportRepo: reportRepo,
		ledgerRepo: ledgerRepo,
		clock:      clockOrSystem(clock),
		logger:     logger.With().Str("component", "reconciliation").Logger(),
		metrics:    metrics,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	Currency          string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	LastChecked       time.Time
}

func newReconciliationResult(s domain.AccountLedgerSummary, now time.Time) *ReconciliationResult {
	diff := s.Balance.Sub(s.EntrySum)
	return &ReconciliationResult{
		AccountID:         s.AccountID,
		Currency:          s.Currency,
		RecordedBalance:   s.Balance,
		CalculatedBalance: s.EntrySum,
		Difference:        diff,
		IsReconciled:      diff.IsZero(),
		LastChecked:       now,
	}
}

// ReconcileAccount recomputes one account's balance from its entries.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	summary, err := uc.reportRepo.AccountSummary(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return newReconciliationResult(*summary, uc.clock.Now()), nil
}

// ReconcileAccounts checks every account and returns the ones whose stored
// balance differs from the sum of their entries.
func (uc *ReconciliationUseCase) ReconcileAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	_, discrepancies, err := uc.reconcileAll(ctx)
	return discrepancies, err
}

func (uc *ReconciliationUseCase) reconcileAll(ctx context.Context) (int, []*ReconciliationResult, error) {
	summaries, err := uc.reportRepo.AccountSummaries(ctx)
	if err != nil {
		return 0, nil, err
	}

	now := uc.clock.Now()
	discrepancies := make([]*ReconciliationResult, 0)

	for _, s := range summaries {
		result := newReconciliationResult(s, now)
		if result.IsReconciled {
			continue
		}

		uc.logger.Warn().
			Str("account_id", result.AccountID).
			Str("recorded", result.RecordedBalance.String()).
			Str("calculated", result.CalculatedBalance.String()).
			Str("difference", result.Difference.String()).
			Msg("balance discrepancy")

		discrepancies = append(discrepancies, result)
	}

	if uc.metrics != nil {
		uc.metrics.LedgerDiscrepancies.Set(float64(len(discrepancies)))
	}

	return len(summaries), discrepancies, nil
}

// ConsistencyResult compares the sum of all balances with the sum of all
// entries.
type ConsistencyResult struct {
	TotalBalance decimal.Decimal
	TotalEntries decimal.Decimal
	Difference   decimal.Decimal
	Consistent   bool
	CheckedAt    time.Time
}

// CheckLedgerConsistency verifies that balances are fully explained by the
// ledger.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) (*ConsistencyResult, error) {
	totalBalance, totalEntries, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return nil, err
	}

	diff := totalBalance.Sub(totalEntries)

	return &ConsistencyResult{
		TotalBalance: totalBalance,
		TotalEntries: totalEntries,
		Difference:   diff,
		Consistent:   diff.IsZero(),
		CheckedAt:    uc.clock.Now(),
	}, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	LedgerConsistent   bool
	CheckedAt          time.Time
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	total, discrepancies, err := uc.reconcileAll(ctx)
	if err != nil {
		return nil, err
	}

	consistency, err := uc.CheckLedgerConsistency(ctx)
	if err != nil {
		return nil, err
	}

	return &ReconciliationReport{
		TotalAccounts:      total,
		ReconciledAccounts: total - len(discrepancies),
		Discrepancies:      discrepancies,
		LedgerConsistent:   consistency.Consistent,
		CheckedAt:          uc.clock.Now(),
	}, nil
}
