package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultSettlementBatchSize bounds one ProcessSettlementBatch run.
	DefaultSettlementBatchSize = 100

	// DefaultMaxSettlementRetries is the failure count that makes a settlement FAILED.
	DefaultMaxSettlementRetries = 3

	// DefaultBackoffJitter is the randomization factor for settlement retries.
	DefaultBackoffJitter = 0.2

	// DefaultSettlementExecTimeout bounds one call to the settlement executor.
	DefaultSettlementExecTimeout = 5 * time.Second
)
