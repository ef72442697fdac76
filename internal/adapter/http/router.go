package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/paycore/internal/adapter/http/handler"
	"github.com/iho/paycore/internal/adapter/http/middleware"
	"github.com/iho/paycore/internal/infrastructure/metrics"
	"github.com/iho/paycore/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler    *handler.AccountHandler
	TransferHandler   *handler.TransferHandler
	EntryHandler      *handler.EntryHandler
	FxHandler         *handler.FxHandler
	SettlementHandler *handler.SettlementHandler
	ReportHandler     *handler.ReportHandler
	LedgerHandler     *handler.LedgerHandler
	HealthHandler     *handler.HealthHandler

	// Optional.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler

	Logger zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Patch("/{id}/status", cfg.AccountHandler.UpdateStatus)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByAccount)
			r.Get("/{id}/transfers", cfg.TransferHandler.ListByAccount)
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Create)
			r.Get("/{id}", cfg.TransferHandler.Get)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByTransfer)
		})

		r.Route("/fx", func(r chi.Router) {
			r.Get("/rates", cfg.FxHandler.GetRate)
			r.Post("/convert", cfg.FxHandler.Convert)
			r.Post("/transfers", cfg.FxHandler.CreateTransfer)
			r.Get("/transfers/{id}", cfg.FxHandler.Get)
			r.Get("/transfers/{id}/entries", cfg.EntryHandler.ListByTransfer)
		})

		r.Route("/settlements", func(r chi.Router) {
			r.Get("/", cfg.SettlementHandler.List)
			r.Post("/process", cfg.SettlementHandler.Process)
			r.Get("/{id}", cfg.SettlementHandler.Get)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/eod", cfg.ReportHandler.EOD)
			r.Get("/trial-balance", cfg.ReportHandler.TrialBalance)
			r.Get("/reconciliation", cfg.ReportHandler.Reconciliation)
		})

		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}
