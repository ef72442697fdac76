package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FxAmountPlaces is the fixed precision of converted amounts.
const FxAmountPlaces = AmountPlaces

// Scales of the stored rate columns.
const (
	FxRatePlaces   int32 = 18
	FxSpreadPlaces int32 = 10
)

// FxQuote is a customer rate derived from a market rate and a spread.
type FxQuote struct {
	FromCurrency string
	ToCurrency   string
	MarketRate   decimal.Decimal
	Spread       decimal.Decimal
	Rate         decimal.Decimal
	QuotedAt     time.Time
}

// NewFxQuote applies spread to marketRate: rate = marketRate * (1 - spread).
// All three values are rounded to the precision they are stored with.
func NewFxQuote(from, to string, marketRate, spread decimal.Decimal, now time.Time) (*FxQuote, error) {
	marketRate = marketRate.Round(FxRatePlaces)
	spread = spread.Round(FxSpreadPlaces)
	if marketRate.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidRate
	}

	rate := marketRate.Mul(decimal.NewFromInt(1).Sub(spread)).Round(FxRatePlaces)
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: spread %s consumes the whole rate", ErrInvalidRate, spread)
	}

	return &FxQuote{
		FromCurrency: from,
		ToCurrency:   to,
		MarketRate:   marketRate,
		Spread:       spread,
		Rate:         rate,
		QuotedAt:     now,
	}, nil
}

// ValidateRate checks a caller supplied rate is positive and fits the
// stored rate scale.
func ValidateRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return ErrInvalidRate
	}
	if !rate.Equal(rate.Truncate(FxRatePlaces)) {
		return fmt.Errorf("%w: at most %d decimal places are allowed", ErrInvalidRate, FxRatePlaces)
	}
	return nil
}

// ConvertAmount returns round(amount * rate, 8).
func ConvertAmount(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(FxAmountPlaces)
}

// FxTransfer is a currency conversion between two accounts.
type FxTransfer struct {
	CreatedAt      time.Time
	Metadata       map[string]any
	ID             string
	FromAccountID  string
	ToAccountID    string
	FromCurrency   string
	ToCurrency     string
	IdempotencyKey string
	Description    string
	Status         TransferStatus
	FromAmount     decimal.Decimal
	ToAmount       decimal.Decimal
	Rate           decimal.Decimal
	MarketRate     decimal.Decimal
	Spread         decimal.Decimal
}

// FxDescription is the entry description for a conversion.
func FxDescription(from, to string, rate decimal.Decimal) string {
	return fmt.Sprintf("FX %s→%s @ %s", from, to, rate.String())
}
