package fxrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/domain"
)

// inversePrecision is the number of decimal places kept when a rate is
// derived from the opposite pair.
const inversePrecision = 10

// StaticProvider serves market rates from a fixed table keyed "FROM/TO".
// A missing pair falls back to the inverse of the opposite pair.
type StaticProvider struct {
	rates map[string]decimal.Decimal
}

// NewStaticProvider creates a StaticProvider. Keys are upper-cased.
func NewStaticProvider(rates map[string]decimal.Decimal) *StaticProvider {
	normalized := make(map[string]decimal.Decimal, len(rates))
	for pair, rate := range rates {
		normalized[strings.ToUpper(pair)] = rate
	}
	return &StaticProvider{rates: normalized}
}

// ParseRates builds a StaticProvider from string rates such as those
// loaded by config ({"USD/EUR": "0.92"}).
func ParseRates(raw map[string]string) (*StaticProvider, error) {
	rates := make(map[string]decimal.Decimal, len(raw))
	for pair, value := range raw {
		from, to, ok := strings.Cut(pair, "/")
		if !ok {
			return nil, fmt.Errorf("invalid currency pair %q", pair)
		}
		from, err := domain.NormalizeCurrency(from)
		if err != nil {
			return nil, fmt.Errorf("pair %q: %w", pair, err)
		}
		to, err = domain.NormalizeCurrency(to)
		if err != nil {
			return nil, fmt.Errorf("pair %q: %w", pair, err)
		}

		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("pair %q: %w", pair, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("pair %q: %w", pair, domain.ErrInvalidRate)
		}
		rates[from+"/"+to] = rate
	}
	return NewStaticProvider(rates), nil
}

// FetchMarketRate implements usecase.RateProvider.
func (p *StaticProvider) FetchMarketRate(_ context.Context, from, to string) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)

	if rate, ok := p.rates[from+"/"+to]; ok {
		return rate, nil
	}

	if inverse, ok := p.rates[to+"/"+from]; ok && inverse.IsPositive() {
		return decimal.NewFromInt(1).DivRound(inverse, inversePrecision), nil
	}

	return decimal.Zero, fmt.Errorf("%s/%s: %w", from, to, domain.ErrRateNotFound)
}
