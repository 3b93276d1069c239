package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/salonos/salonos/internal/app"
	"github.com/salonos/salonos/internal/catalog"
	"github.com/salonos/salonos/internal/checkout"
	"github.com/salonos/salonos/internal/money"
	"github.com/salonos/salonos/internal/observability"
	"github.com/salonos/salonos/internal/payroll"
	"github.com/salonos/salonos/internal/platform/cache"
	"github.com/salonos/salonos/internal/platform/db"
	"github.com/salonos/salonos/internal/reports"
	"github.com/salonos/salonos/internal/shared"
	"github.com/salonos/salonos/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	approvals := shared.NewApprovalRecorder(pool, logger)

	queueClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	catalogService := catalog.NewService(
		catalog.NewRepository(pool),
		catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
	)

	pricing := checkout.PricingConfig{
		TaxRateBps: cfg.TaxRateBps,
		TipCeiling: money.FromRupees(float64(cfg.TipCeilingRupees)),
	}
	checkoutService := checkout.NewService(
		checkout.NewRepository(pool),
		catalogService,
		checkout.NewSigner(cfg.ReceiptSigningKey),
		pricing,
		auditLogger,
		jobs.NewReceiptNotifier(queueClient),
		metrics,
		logger,
	)

	payrollService := payroll.NewService(
		payroll.NewRepository(pool),
		payroll.NewCompensationSource(pool),
		approvals,
		auditLogger,
		metrics,
		logger,
	)

	reportsService := reports.NewService(
		reports.NewRepository(pool),
		reports.NewCache(redisClient, cfg.SummaryCacheTTL),
	)

	router := app.NewRouter(app.RouterConfig{
		Middleware: app.MiddlewareStack(app.MiddlewareConfig{Logger: logger, Config: cfg, Metrics: metrics}),
		Checkout:   checkout.NewHandler(logger, checkoutService),
		Payroll:    payroll.NewHandler(logger, payrollService),
		Reports:    reports.NewHandler(logger, reportsService),
		Metrics:    metrics,
	})

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
