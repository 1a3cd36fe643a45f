package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ledgerd/ledgerd/internal/app"
	"github.com/ledgerd/ledgerd/internal/assets"
	"github.com/ledgerd/ledgerd/internal/close"
	"github.com/ledgerd/ledgerd/internal/ledger"
	"github.com/ledgerd/ledgerd/internal/observability"
	"github.com/ledgerd/ledgerd/internal/platform/cache"
	"github.com/ledgerd/ledgerd/internal/platform/db"
	"github.com/ledgerd/ledgerd/internal/reconcile"
	"github.com/ledgerd/ledgerd/internal/reports"
	reportshttp "github.com/ledgerd/ledgerd/internal/reports/http"
	"github.com/ledgerd/ledgerd/internal/shared"
	"github.com/ledgerd/ledgerd/internal/trend"
	"github.com/ledgerd/ledgerd/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
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
	reportsCfg := reports.Config{
		OtherIncomePrefix:  cfg.OtherIncomePrefix,
		CostOfSalesPrefix:  cfg.CostOfSalesPrefix,
		OtherExpensePrefix: cfg.OtherExpensePrefix,
		CITRate:            rate,
		Tolerance:          shared.CentTolerance,
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
	reportsService := reports.NewService(ledgerService, reportsCfg)
	assetsService := assets.NewService(assets.NewRepository(pool), audit, assetsCfg)
	reconcileService := reconcile.NewService(ledgerService, assetsService, reconcile.NewRepository(pool), reconcileCfg)
	trendService := trend.NewService(ledgerService, reportsCfg)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("asynq inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		LedgerHandler:    ledger.NewHandler(logger, ledgerService),
		ReportsHandler:   reportshttp.NewHandler(logger, reportsService),
		AssetsHandler:    assets.NewHandler(logger, assetsService),
		ReconcileHandler: reconcile.NewHandler(logger, reconcileService),
		CloseHandler:     close.NewHandler(logger, closeService),
		TrendHandler:     trend.NewHandler(logger, trendService),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Pool:             pool,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
