package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/adapter/fxrate"
	"github.com/iho/paycore/internal/adapter/rail"
	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/infrastructure/config"
	"github.com/iho/paycore/internal/infrastructure/eventpublisher"
	"github.com/iho/paycore/internal/infrastructure/metrics"
	"github.com/iho/paycore/internal/usecase"
)

const outboundTimeout = 10 * time.Second

// settlementConfig maps the SETTLEMENT_* variables onto the scheduler config.
func settlementConfig(cfg *config.Config) (usecase.SettlementConfig, error) {
	loc, err := cfg.SettlementLocation()
	if err != nil {
		return usecase.SettlementConfig{}, err
	}

	return usecase.SettlementConfig{
		Policy: domain.SettlementPolicy{
			LargeThreshold: cfg.SettlementLargeThreshold,
			WindowHours:    cfg.SettlementWindowHours,
			Location:       loc,
		},
		Retry: usecase.RetryPolicy{
			MaxRetries: cfg.SettlementMaxRetries,
			Jitter:     cfg.SettlementBackoffJitter,
		},
		BatchSize:   cfg.SettlementBatchSize,
		TxTimeout:   cfg.TxTimeout,
		ExecTimeout: cfg.SettlementExecTimeout,
	}, nil
}

// spreadPolicy returns a flat spread unless pair, volume or tier overrides
// are configured.
func spreadPolicy(cfg *config.Config) (usecase.SpreadPolicy, error) {
	if len(cfg.FXPairSpreads) == 0 && len(cfg.FXVolumeBreaks) == 0 && len(cfg.FXTierDiscounts) == 0 {
		return usecase.NewFlatSpread(cfg.FXDefaultSpread), nil
	}

	pairs := make(map[string]decimal.Decimal, len(cfg.FXPairSpreads))
	for pair, raw := range cfg.FXPairSpreads {
		from, to, ok := strings.Cut(pair, "/")
		if !ok {
			return nil, fmt.Errorf("FX_PAIR_SPREADS: invalid currency pair %q", pair)
		}
		v, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("FX_PAIR_SPREADS %s: %w", pair, err)
		}
		pairs[usecase.PairKey(strings.ToUpper(strings.TrimSpace(from)), strings.ToUpper(strings.TrimSpace(to)))] = v
	}

	breaks := make([]usecase.VolumeBreak, 0, len(cfg.FXVolumeBreaks))
	for rawMin, rawDiscount := range cfg.FXVolumeBreaks {
		minVolume, err := decimal.NewFromString(strings.TrimSpace(rawMin))
		if err != nil {
			return nil, fmt.Errorf("FX_VOLUME_BREAKS %s: %w", rawMin, err)
		}
		discount, err := decimal.NewFromString(strings.TrimSpace(rawDiscount))
		if err != nil {
			return nil, fmt.Errorf("FX_VOLUME_BREAKS %s: %w", rawMin, err)
		}
		breaks = append(breaks, usecase.VolumeBreak{MinVolume: minVolume, Discount: discount})
	}

	tiers := make(map[string]decimal.Decimal, len(cfg.FXTierDiscounts))
	for tier, raw := range cfg.FXTierDiscounts {
		v, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("FX_TIER_DISCOUNTS %s: %w", tier, err)
		}
		tiers[strings.TrimSpace(tier)] = v
	}

	return usecase.NewTieredSpread(cfg.FXDefaultSpread, pairs, breaks, tiers), nil
}

// rateProvider serves the configured rates table, through the Redis quote
// cache when one is available.
func rateProvider(cfg *config.Config, cache usecase.QuoteCache, logger zerolog.Logger, m *metrics.Metrics) (usecase.RateProvider, error) {
	static, err := fxrate.ParseRates(cfg.FXRates)
	if err != nil {
		return nil, fmt.Errorf("FX_RATES: %w", err)
	}
	if cache == nil {
		return static, nil
	}
	return fxrate.NewCachedProvider(static, cache, cfg.FXCacheTTL, logger, m), nil
}

func settlementExecutor(cfg *config.Config, logger zerolog.Logger) usecase.SettlementExecutor {
	if cfg.SettlementRailURL == "" {
		return rail.NewInstantExecutor(logger)
	}
	return rail.NewWebhookExecutor(cfg.SettlementRailURL, &http.Client{Timeout: cfg.SettlementExecTimeout})
}

func outboxPublisher(cfg *config.Config, logger zerolog.Logger) eventpublisher.Publisher {
	if cfg.WebhookURL == "" {
		return eventpublisher.NewLogPublisher(logger)
	}
	return eventpublisher.NewWebhookPublisher(cfg.WebhookURL, &http.Client{Timeout: outboundTimeout})
}
