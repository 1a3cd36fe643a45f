package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/ledgerd/ledgerd/internal/app"
	"github.com/ledgerd/ledgerd/internal/assets"
	"github.com/ledgerd/ledgerd/internal/close"
	"github.com/ledgerd/ledgerd/internal/ledger"
	"github.com/ledgerd/ledgerd/internal/observability"
	"github.com/ledgerd/ledgerd/internal/platform/cache"
	"github.com/ledgerd/ledgerd/internal/platform/db"
	"github.com/ledgerd/ledgerd/internal/reconcile"
	"github.com/ledgerd/ledgerd/internal/shared"
	"github.com/ledgerd/ledgerd/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	audit := shared.NewAuditLogger(pool)
	locker := shared.NewPeriodLocker(redisClient, cfg.LockTTL)

	rate, err := cfg.TaxRate()
	if err != nil {
		logger.Error("tax rate", slog.Any("error", err))
		os.Exit(1)
	}
	closeCfg := close.Config{
		CITRate:                 rate,
		CITExpenseAccount:       cfg.CITExpenseAccount,
		CITPayableAccount:       cfg.CITPayableAccount,
		RetainedEarningsAccount: cfg.RetainedEarningsAccount,
	}
	assetsCfg := assets.Config{
		ExpenseAccountCode:     cfg.DepreciationExpense,
		AccumulatedAccountCode: cfg.AccumDepreciation,
	}
	reconcileCfg := reconcile.Config{
		InputVATAccount:          cfg.InputVATAccount,
		AssetCostPrefix:          cfg.AssetCostPrefix,
		AccumDepreciationAccount: cfg.AccumDepreciation,
		Weights:                  reconcile.DefaultWeights(),
		Tolerance:                shared.CentTolerance,
	}

	closeService := close.NewService(close.NewRepository(pool), locker, audit, metrics, closeCfg)
	ledgerService := ledger.NewService(ledger.NewRepository(pool), audit, closeService)
	assetsService := assets.NewService(assets.NewRepository(pool), audit, assetsCfg)
	reconcileService := reconcile.NewService(ledgerService, assetsService, reconcile.NewRepository(pool), reconcileCfg)

	clients := jobs.NewClientSource(pool)

	depreciationTask, err := jobs.NewDepreciationRunTask(jobs.RunPayload{})
	if err != nil {
		logger.Error("build depreciation task", slog.Any("error", err))
		os.Exit(1)
	}
	reconcileTask, err := jobs.NewReconcileScanTask(jobs.RunPayload{})
	if err != nil {
		logger.Error("build reconcile task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDepreciationRun, Handler: jobs.NewDepreciationHandler(logger, assetsService, clients)},
			{Type: jobs.TaskReconcileScan, Handler: jobs.NewReconcileScanHandler(logger, reconcileService, clients)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.DepreciationCron, Task: depreciationTask},
			{Spec: cfg.ReconcileCron, Task: reconcileTask},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
