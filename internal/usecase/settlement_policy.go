package usecase

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds settlement retries. The n-th failure is retried after
// 2^(n+1) minutes, spread by a multiplicative jitter.
type RetryPolicy struct {
	MaxRetries int
	// Jitter is the randomization factor in [0, 1); 0 gives exact delays.
	Jitter float64
}

// DefaultRetryPolicy returns 3 retries with 20% jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxSettlementRetries,
		Jitter:     DefaultBackoffJitter,
	}
}

// Exhausted reports whether retryCount failures make a settlement terminal.
func (p RetryPolicy) Exhausted(retryCount int) bool {
	return retryCount >= p.MaxRetries
}

// NextDelay returns the wait after the retryCount-th failure (retryCount >= 1).
func (p RetryPolicy) NextDelay(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 4 * time.Minute
	b.Multiplier = 2
	b.RandomizationFactor = math.Max(0, math.Min(p.Jitter, 0.99))
	b.MaxInterval = 24 * time.Hour
	b.MaxElapsedTime = 0
	b.Reset()

	var d time.Duration
	for i := 0; i < retryCount; i++ {
		d = b.NextBackOff()
	}
	return d
}
