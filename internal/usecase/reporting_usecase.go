package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/domain"
)

// ReportingUseCase produces read-only summaries of the ledger.
type ReportingUseCase struct {
	reportRepo ReportRepository
	clock      Clock
	location   *time.Location
}

// NewReportingUseCase creates a new ReportingUseCase. Day boundaries are
// taken in loc (UTC when nil).
func NewReportingUseCase(reportRepo ReportRepository, clock Clock, loc *time.Location) *ReportingUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportingUseCase{
		reportRepo: reportRepo,
		clock:      clockOrSystem(clock),
		location:   loc,
	}
}

// EODReport summarizes one business day.
type EODReport struct {
	Date            string
	From            time.Time
	To              time.Time
	TransferCount   int64
	TransferTotals  []domain.CurrencyTotal
	FxTransferCount int64
	FxVolumes       []domain.FxVolume
	EntryCount      int64
	AccountActivity []domain.AccountActivity
	GeneratedAt     time.Time
}

// DayBounds returns [startOfDay, endOfDay] for date in loc. The end is the
// last representable instant of the day at database precision.
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	d := date.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Microsecond)
	return start, end
}

// ParseReportDate reads a YYYY-MM-DD business date in the report location.
func (uc *ReportingUseCase) ParseReportDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, uc.location)
}

// GenerateEODReport sums transfers per currency, conversions per pair and
// entries per account for the day containing date.
func (uc *ReportingUseCase) GenerateEODReport(ctx context.Context, date time.Time) (*EODReport, error) {
	from, to := DayBounds(date, uc.location)

	totals, err := uc.reportRepo.TransferTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}

	volumes, err := uc.reportRepo.FxVolumes(ctx, from, to)
	if err != nil {
		return nil, err
	}

	activity, err := uc.reportRepo.AccountActivity(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &EODReport{
		Date:            from.Format(time.DateOnly),
		From:            from,
		To:              to,
		TransferTotals:  totals,
		FxVolumes:       volumes,
		AccountActivity: activity,
		GeneratedAt:     uc.clock.Now(),
	}

	for _, t := range totals {
		report.TransferCount += t.Count
	}
	for _, v := range volumes {
		report.FxTransferCount += v.Count
	}
	for _, a := range activity {
		report.EntryCount += a.EntryCount
	}

	return report, nil
}

// TrialBalanceLine is one account's debit and credit totals.
type TrialBalanceLine struct {
	AccountID   string
	Name        string
	Currency    string
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Net         decimal.Decimal
}

// CurrencyTrialBalance is the trial balance restricted to one currency.
type CurrencyTrialBalance struct {
	Currency    string
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Balanced    bool
}

// TrialBalance lists debit and credit totals per account.
type TrialBalance struct {
	Accounts    []TrialBalanceLine
	ByCurrency  []CurrencyTrialBalance
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Balanced    bool
	GeneratedAt time.Time
}

// GenerateTrialBalance sums DEBIT magnitudes and CREDIT amounts per account.
// Conversions debit and credit different currencies, so only same-currency
// activity is expected to balance within ByCurrency.
func (uc *ReportingUseCase) GenerateTrialBalance(ctx context.Context) (*TrialBalance, error) {
	summaries, err := uc.reportRepo.AccountSummaries(ctx)
	if err != nil {
		return nil, err
	}

	tb := &TrialBalance{
		Accounts:    make([]TrialBalanceLine, 0, len(summaries)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		GeneratedAt: uc.clock.Now(),
	}

	byCurrency := make(map[string]*CurrencyTrialBalance)

	for _, s := range summaries {
		tb.Accounts = append(tb.Accounts, TrialBalanceLine{
			AccountID:   s.AccountID,
			Name:        s.Name,
			Currency:    s.Currency,
			TotalDebit:  s.DebitTotal,
			TotalCredit: s.CreditTotal,
			Net:         s.CreditTotal.Sub(s.DebitTotal),
		})

		tb.TotalDebit = tb.TotalDebit.Add(s.DebitTotal)
		tb.TotalCredit = tb.TotalCredit.Add(s.CreditTotal)

		c, ok := byCurrency[s.Currency]
		if !ok {
			c = &CurrencyTrialBalance{Currency: s.Currency, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
			byCurrency[s.Currency] = c
		}
		c.TotalDebit = c.TotalDebit.Add(s.DebitTotal)
		c.TotalCredit = c.TotalCredit.Add(s.CreditTotal)
	}

	tb.Balanced = tb.TotalDebit.Equal(tb.TotalCredit)

	for _, c := range byCurrency {
		c.Balanced = c.TotalDebit.Equal(c.TotalCredit)
		tb.ByCurrency = append(tb.ByCurrency, *c)
	}
	sort.Slice(tb.ByCurrency, func(i, j int) bool {
		return tb.ByCurrency[i].Currency < tb.ByCurrency[j].Currency
	})

	return tb, nil
}
