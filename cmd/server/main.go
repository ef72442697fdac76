package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/paycore/internal/adapter/http"
	"github.com/iho/paycore/internal/adapter/http/handler"
	"github.com/iho/paycore/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/paycore/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/paycore/internal/adapter/repository/redis"
	"github.com/iho/paycore/internal/infrastructure/config"
	"github.com/iho/paycore/internal/infrastructure/eventpublisher"
	"github.com/iho/paycore/internal/infrastructure/logger"
	"github.com/iho/paycore/internal/infrastructure/metrics"
	"github.com/iho/paycore/internal/infrastructure/postgres"
	"github.com/iho/paycore/internal/infrastructure/redis"
	"github.com/iho/paycore/internal/infrastructure/settlementworker"
	"github.com/iho/paycore/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	m := metrics.New()

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	var (
		redisClient      *goredis.Client
		idempotencyStore usecase.IdempotencyStore
		quoteCache       usecase.QuoteCache
	)
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		quoteCache = redisRepo.NewQuoteCache(redisClient)
		log.Info().Msg("connected to redis")
	} else {
		log.Warn().Msg("REDIS_URL not set; request idempotency and quote caching disabled")
	}

	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transferRepo := postgresRepo.NewTransferRepository(pool)
	fxRepo := postgresRepo.NewFxTransferRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	settlementRepo := postgresRepo.NewSettlementRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	reportRepo := postgresRepo.NewReportRepository(pool)
	retrier := postgresRepo.NewRetrier(log, m)
	idGen := postgresRepo.NewULIDGenerator()
	clock := usecase.SystemClock{}

	settleCfg, err := settlementConfig(cfg)
	if err != nil {
		return err
	}
	spread, err := spreadPolicy(cfg)
	if err != nil {
		return err
	}
	rates, err := rateProvider(cfg, quoteCache, log, m)
	if err != nil {
		return err
	}
	reportLoc, err := cfg.ReportLocation()
	if err != nil {
		return err
	}

	settlementUC := usecase.NewSettlementUseCase(
		txManager, settlementRepo, outboxRepo, settlementExecutor(cfg, log), idGen, clock, settleCfg, log, m,
	)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, idGen, clock, log, m)
	entryUC := usecase.NewEntryUseCase(entryRepo)
	transferUC := usecase.NewTransferUseCase(
		txManager, accountRepo, transferRepo, entryRepo, outboxRepo, settlementUC, retrier, idGen, clock, log, m,
	).WithTxTimeout(cfg.TxTimeout)
	fxUC := usecase.NewFxUseCase(usecase.FxDependencies{
		TxManager:   txManager,
		AccountRepo: accountRepo,
		FxRepo:      fxRepo,
		EntryRepo:   entryRepo,
		OutboxRepo:  outboxRepo,
		Settlements: settlementUC,
		Retrier:     retrier,
		Rates:       rates,
		Spread:      spread,
		IDGen:       idGen,
		Clock:       clock,
		Logger:      log,
		Metrics:     m,
		TxTimeout:   cfg.TxTimeout,
	})
	reconcileUC := usecase.NewReconciliationUseCase(reportRepo, ledgerRepo, clock, log, m)
	reportingUC := usecase.NewReportingUseCase(reportRepo, clock, reportLoc)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:    handler.NewAccountHandler(accountUC),
		TransferHandler:   handler.NewTransferHandler(transferUC),
		EntryHandler:      handler.NewEntryHandler(entryUC),
		FxHandler:         handler.NewFxHandler(fxUC),
		SettlementHandler: handler.NewSettlementHandler(settlementUC),
		ReportHandler:     handler.NewReportHandler(reportingUC, reconcileUC),
		LedgerHandler:     handler.NewLedgerHandler(reconcileUC),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:  idempotencyStore,
		IdempotencyTTL:    cfg.IdempotencyTTL,
		RateLimiter:       rateLimiter,
		Metrics:           m,
		MetricsHandler:    promhttp.Handler(),
		Logger:            log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			Store:     outboxRepo,
			Publisher: outboxPublisher(cfg, log),
			Logger:    log,
			Metrics:   m,
			BatchSize: cfg.OutboxBatchSize,
			Interval:  cfg.OutboxInterval,
			Retention: cfg.OutboxRetention,
		})
		return ignoreCanceled(publisher.Start(gctx))
	})

	if cfg.SettlementWorkerEnabled {
		g.Go(func() error {
			worker := settlementworker.New(settlementUC, cfg.SettlementPollInterval, log)
			return ignoreCanceled(worker.Start(gctx))
		})
	}

	if rateLimiter != nil {
		g.Go(func() error {
			rateLimiter.StartCleanup(gctx, time.Hour)
			return nil
		})
	}

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
