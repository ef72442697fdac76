package fxrate

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/infrastructure/metrics"
	"github.com/iho/paycore/internal/usecase"
)

// DefaultCacheTTL bounds how stale a cached market rate may be.
const DefaultCacheTTL = 30 * time.Second

// CachedProvider puts a QuoteCache in front of another RateProvider. Cache
// failures are logged and bypassed; they never fail a quote.
type CachedProvider struct {
	next    usecase.RateProvider
	cache   usecase.QuoteCache
	ttl     time.Duration
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewCachedProvider creates a CachedProvider. m may be nil.
func NewCachedProvider(next usecase.RateProvider, cache usecase.QuoteCache, ttl time.Duration, logger zerolog.Logger, m *metrics.Metrics) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedProvider{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

// FetchMarketRate implements usecase.RateProvider.
func (p *CachedProvider) FetchMarketRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	rate, ok, err := p.cache.Get(ctx, from, to)
	switch {
	case err != nil:
		p.record("error")
		p.logger.Warn().Err(err).Str("pair", from+"/"+to).Msg("quote cache read failed")
	case ok:
		p.record("hit")
		return rate, nil
	default:
		p.record("miss")
	}

	rate, err = p.next.FetchMarketRate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	if err := p.cache.Set(ctx, from, to, rate, p.ttl); err != nil {
		p.logger.Warn().Err(err).Str("pair", from+"/"+to).Msg("quote cache write failed")
	}

	return rate, nil
}

func (p *CachedProvider) record(result string) {
	if p.metrics != nil {
		p.metrics.FxQuoteCache.WithLabelValues(result).Inc()
	}
}
