package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/salonos/salonos/internal/app"
	"github.com/salonos/salonos/internal/platform/cache"
	"github.com/salonos/salonos/internal/platform/db"
	"github.com/salonos/salonos/internal/reports"
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

	reportsService := reports.NewService(
		reports.NewRepository(pool),
		reports.NewCache(redisClient, cfg.SummaryCacheTTL),
	)

	reminderTask := asynq.NewTask(jobs.TaskTypePayrollReminder, nil)
	sweepTask := asynq.NewTask(jobs.TaskTypeReportsRefresh, nil)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeReceiptEmail, Handler: jobs.NewReceiptEmailJob(logger).Handle},
			{Type: jobs.TaskTypeReportsRefresh, Handler: jobs.NewReportsRefreshJob(reportsService, pool, logger).Handle},
			{Type: jobs.TaskTypePayrollReminder, Handler: jobs.NewPayrollReminderJob(pool, logger).Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 0 * * *", Task: sweepTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 9 1 * *", Task: reminderTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
