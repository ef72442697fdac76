package usecase

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultSpread is the markdown used when no policy is configured.
var DefaultSpread = decimal.RequireFromString("0.02")

// FlatSpread applies the same spread to every conversion.
type FlatSpread struct {
	Spread decimal.Decimal
}

// NewFlatSpread creates a FlatSpread; a negative spread is clamped to 0.
func NewFlatSpread(spread decimal.Decimal) FlatSpread {
	if spread.IsNegative() {
		spread = decimal.Zero
	}
	return FlatSpread{Spread: spread}
}

// CalculateSpread implements SpreadPolicy.
func (p FlatSpread) CalculateSpread(SpreadRequest) decimal.Decimal {
	return p.Spread
}

// VolumeBreak lowers the spread by Discount once the converted volume
// reaches MinVolume.
type VolumeBreak struct {
	MinVolume decimal.Decimal
	Discount  decimal.Decimal
}

// TieredSpread keys the spread by currency pair, volume and customer tier.
type TieredSpread struct {
	Default       decimal.Decimal
	Pairs         map[string]decimal.Decimal // "USD/EUR" -> base spread
	VolumeBreaks  []VolumeBreak
	TierDiscounts map[string]decimal.Decimal
}

// NewTieredSpread sorts the volume breaks so the largest applicable one wins.
func NewTieredSpread(
	def decimal.Decimal,
	pairs map[string]decimal.Decimal,
	breaks []VolumeBreak,
	tiers map[string]decimal.Decimal,
) *TieredSpread {
	sorted := append([]VolumeBreak(nil), breaks...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinVolume.LessThan(sorted[j].MinVolume)
	})

	return &TieredSpread{
		Default:       def,
		Pairs:         pairs,
		VolumeBreaks:  sorted,
		TierDiscounts: tiers,
	}
}

// CalculateSpread implements SpreadPolicy. The result never drops below 0.
func (p *TieredSpread) CalculateSpread(req SpreadRequest) decimal.Decimal {
	spread := p.Default
	if base, ok := p.Pairs[PairKey(req.FromCurrency, req.ToCurrency)]; ok {
		spread = base
	}

	for i := len(p.VolumeBreaks) - 1; i >= 0; i-- {
		vb := p.VolumeBreaks[i]
		if req.Volume.GreaterThanOrEqual(vb.MinVolume) {
			spread = spread.Sub(vb.Discount)
			break
		}
	}

	if req.Tier != "" {
		if d, ok := p.TierDiscounts[req.Tier]; ok {
			spread = spread.Sub(d)
		}
	}

	if spread.IsNegative() {
		return decimal.Zero
	}
	return spread
}

// PairKey formats a currency pair as "FROM/TO".
func PairKey(from, to string) string {
	return from + "/" + to
}
