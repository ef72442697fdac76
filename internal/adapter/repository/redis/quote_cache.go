package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// QuoteCache implements usecase.QuoteCache using Redis. Rates are stored as
// decimal strings under one key per currency pair.
type QuoteCache struct {
	client *redis.Client
	prefix string
}

// NewQuoteCache creates a new QuoteCache.
func NewQuoteCache(client *redis.Client) *QuoteCache {
	return &QuoteCache{
		client: client,
		prefix: "fx:rate:",
	}
}

func (c *QuoteCache) key(from, to string) string {
	return c.prefix + strings.ToUpper(from) + ":" + strings.ToUpper(to)
}

// Get returns the cached market rate for the pair. A miss is reported with
// ok=false and a nil error.
func (c *QuoteCache) Get(ctx context.Context, from, to string) (decimal.Decimal, bool, error) {
	raw, err := c.client.Get(ctx, c.key(from, to)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("corrupt cached rate for %s/%s: %w", from, to, err)
	}

	return rate, true, nil
}

// Set stores the market rate for the pair with a TTL.
func (c *QuoteCache) Set(ctx context.Context, from, to string, rate decimal.Decimal, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(from, to), rate.String(), ttl).Err()
}
