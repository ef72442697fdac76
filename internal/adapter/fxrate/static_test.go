package fxrate

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/domain"
)

func TestStaticProviderDirectAndInverse(t *testing.T) {
	p := NewStaticProvider(map[string]decimal.Decimal{
		"usd/eur": decimal.RequireFromString("0.92"),
		"GBP/USD": decimal.RequireFromString("1.25"),
	})

	tests := []struct {
		from, to string
		want     string
	}{
		{"USD", "EUR", "0.92"},
		{"usd", "eur", "0.92"},
		{"USD", "GBP", "0.8"},
		{"EUR", "USD", "1.0869565217"},
	}

	for _, tt := range tests {
		got, err := p.FetchMarketRate(context.Background(), tt.from, tt.to)
		if err != nil {
			t.Fatalf("%s/%s: unexpected error: %v", tt.from, tt.to, err)
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Fatalf("%s/%s: expected %s, got %s", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestStaticProviderMissingPair(t *testing.T) {
	p := NewStaticProvider(nil)
	if _, err := p.FetchMarketRate(context.Background(), "USD", "JPY"); !errors.Is(err, domain.ErrRateNotFound) {
		t.Fatalf("expected ErrRateNotFound, got %v", err)
	}
}

func TestParseRates(t *testing.T) {
	p, err := ParseRates(map[string]string{"USD/EUR": " 0.92 ", "EUR/GBP": "0.85"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rate, err := p.FetchMarketRate(context.Background(), "EUR", "GBP")
	if err != nil || !rate.Equal(decimal.RequireFromString("0.85")) {
		t.Fatalf("unexpected rate %s err=%v", rate, err)
	}

	lower, err := ParseRates(map[string]string{"usd/jpy": "151.2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := lower.FetchMarketRate(context.Background(), "USD", "JPY"); err != nil {
		t.Fatalf("lowercase pair not normalized: %v", err)
	}

	bad := []map[string]string{
		{"USDEUR": "0.92"},
		{"USD/XXX": "0.92"},
		{"USD/EUR": "abc"},
		{"USD/EUR": "0"},
	}
	for _, raw := range bad {
		if _, err := ParseRates(raw); err == nil {
			t.Fatalf("expected error for %v", raw)
		}
	}
}
