package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transfer metrics
	TransfersCompleted prometheus.Counter
	TransferReplays    *prometheus.CounterVec
	TransferDuration   prometheus.Histogram
	TransferAmount     prometheus.Histogram
	TransferErrors     *prometheus.CounterVec

	// FX metrics
	FxTransfersCompleted *prometheus.CounterVec
	FxQuoteCache         *prometheus.CounterVec

	// Settlement metrics
	SettlementsScheduled    prometheus.Counter
	SettlementOutcomes      *prometheus.CounterVec
	SettlementBatchDuration prometheus.Histogram

	// Account and ledger metrics
	AccountsCreated     prometheus.Counter
	LedgerDiscrepancies prometheus.Gauge

	// Outbox metrics
	OutboxEvents *prometheus.CounterVec

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	RateLimitHits prometheus.Counter

	// Database metrics
	DBRetries prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics and registers them on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		TransfersCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "paycore_transfers_completed_total",
			Help: "Total number of completed transfers",
		}),
		TransferReplays: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paycore_transfer_replays_total",
				Help: "Requests answered from an existing idempotency key",
			},
			[]string{"kind"},
		),
		TransferDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "paycore_transfer_duration_seconds",
			Help:    "Duration of transfer operations",
			Buckets: prometheus.DefBuckets,
		}),
		TransferAmount: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "paycore_transfer_amount",
			Help:    "Transfer amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		TransferErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paycore_transfer_errors_total",
				Help: "Total number of transfer errors by type",
			},
			[]string{"error_type"},
		),

		FxTransfersCompleted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paycore_fx_transfers_completed_total",
				Help: "Total number of currency conversions by pair",
			},
			[]string{"pair"},
		),
		FxQuoteCache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paycore_fx_quote_cache_total",
				Help: "Market rate cache lookups by result",
			},
			[]string{"result"},
		),

		SettlementsScheduled: f.NewCounter(prometheus.CounterOpts{
			Name: "paycore_settlements_scheduled_total",
			Help: "Total number of settlements created",
		}),
		SettlementOutcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paycore_settlement_outcomes_total",
				Help: "Settlement processing outcomes",
			},
			[]string{"outcome"},
		),
		SettlementBatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "paycore_settlement_batch_duration_seconds",
			Help:    "Duration of settlement batch runs",
			Buckets: prometheus.DefBuckets,
		}),

		AccountsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "paycore_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		LedgerDiscrepancies: f.NewGauge(prometheus.GaugeOpts{
			Name: "paycore_ledger_discrepancies",
			Help: "Accounts whose balance differed from their entries at the last reconciliation",
		}),

		OutboxEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paycore_outbox_events_total",
				Help: "Outbox events handled by the publisher",
			},
			[]string{"status"},
		),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paycore_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paycore_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RateLimitHits: f.NewCounter(prometheus.CounterOpts{
			Name: "paycore_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		}),

		DBRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "paycore_db_retries_total",
			Help: "Transactions retried after deadlock or serialization failure",
		}),
	}
}
