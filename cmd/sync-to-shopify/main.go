// Reconciles Shopify prices and inventory with the ERP. Runs once and exits.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"shopify-reconciler/internal/adapters/apix"
	"shopify-reconciler/internal/adapters/discounts"
	"shopify-reconciler/internal/adapters/erpdb"
	"shopify-reconciler/internal/adapters/shopify"
	"shopify-reconciler/internal/app/usecases"
	"shopify-reconciler/internal/config"
	"shopify-reconciler/internal/domain/model"
	"shopify-reconciler/internal/infra/httpx"
	"shopify-reconciler/internal/infra/mysql"
	"shopify-reconciler/internal/infra/postgres"
	"shopify-reconciler/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := config.LoadEnvFile(); err != nil {
		fmt.Printf("error %v\n", err)
		return 1
	}
	cfg, err := config.LoadForSync()
	if err != nil {
		fmt.Printf("error %v\n", err)
		return 1
	}

	var notifier logging.Notifier
	if telegram := logging.NewTelegramNotifier(cfg.TelegramBot, nil); telegram != nil {
		notifier = telegram
	}
	logger, err := logging.NewLogger(cfg.LogLevel, notifier)
	if err != nil {
		fmt.Printf("error %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	workCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()
	go cancelAfterGrace(signalCtx, workCtx, cancelWork, cfg.Sync.ShutdownGrace, logger)

	limiter := rate.NewLimiter(rate.Limit(cfg.Retry.RatePerSecond), cfg.Retry.Burst)
	httpOptions := []httpx.Option{
		httpx.WithPolicy(httpx.RetryPolicy{
			MaxRetries:   cfg.Retry.MaxRetries,
			BaseDelay:    cfg.Retry.BaseDelay,
			JitterWindow: cfg.Retry.Jitter,
		}),
		httpx.WithObserver(httpx.LogAttempts(logger)),
	}
	shopifyHTTP := httpx.NewClient(httpx.NewHTTPClient(cfg.Shopify.Timeout), limiter, httpOptions...)
	localHTTP := httpx.NewClient(httpx.NewHTTPClient(cfg.Local.Timeout), limiter, httpOptions...)

	scope := model.SyncScope(cfg.Sync.Scope)
	shopifyClient, err := shopify.NewClient(cfg.Shopify, shopifyHTTP, logger, shopify.Options{IncludeInventory: scope.Inventory()})
	if err != nil {
		logger.LogError("shopify client setup failed", err)
		return 1
	}

	local, closeLocal, err := newLocalSource(signalCtx, cfg, localHTTP, logger)
	if err != nil {
		logger.LogError("local source setup failed", err)
		return 1
	}
	defer closeLocal()

	var discountSource usecases.DiscountSource
	if cfg.Discount.Source != "" {
		discountSource = discounts.NewLoader(cfg.Discount, localHTTP, logger)
	}

	catalog := usecases.NewVariantCatalog(shopifyClient, logger, usecases.CatalogOptions{
		PageSize:     cfg.Sync.PageSize,
		MaxPages:     cfg.Sync.MaxPages,
		PageDelay:    cfg.Sync.PageDelay,
		Cooldown:     cfg.Sync.ThrottleCooldown,
		MaxCooldowns: cfg.Sync.MaxPageCooldowns,
	})
	reconciler := usecases.NewReconciler(local, discountSource, catalog, shopifyClient, logger, usecases.ReconcileOptions{
		JoinMode:          model.JoinMode(cfg.Sync.JoinMode),
		Scope:             scope,
		DryRun:            cfg.Sync.DryRun,
		UpdateConcurrency: cfg.Sync.UpdateConcurrency,
		Stop:              signalCtx.Done(),
	})

	summary, runErr := reconciler.Run(workCtx)
	if runErr != nil {
		logger.LogError("sync aborted", runErr, zap.String("run_id", summary.RunID))
	}
	if err := usecases.WriteSummary(os.Stdout, summary); err != nil {
		logger.LogError("summary output failed", err)
	}
	if runErr != nil {
		return 1
	}
	return 0
}

// newLocalSource picks the ERP reader for LOCAL_SOURCE. The returned close
// func is always safe to call.
func newLocalSource(ctx context.Context, cfg *config.Config, httpClient *httpx.Client, logger logging.LoggerService) (usecases.LocalSource, func(), error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Local.Source {
	case config.LocalSourceMysql:
		db, err = mysql.New(ctx, cfg.Mysql)
	case config.LocalSourcePostgres:
		db, err = postgres.New(ctx, cfg.Postgres)
	default:
		return apix.NewClient(cfg.Local, httpClient, logger), func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	logger.Log("erp database connected", zap.String("source", cfg.Local.Source))
	return erpdb.NewSource(db, cfg.Local), func() { _ = db.Close() }, nil
}

// cancelAfterGrace gives in-flight updates grace to finish once a shutdown
// signal arrives, then cancels them.
func cancelAfterGrace(signalCtx, workCtx context.Context, cancel context.CancelFunc, grace time.Duration, logger logging.LoggerService) {
	select {
	case <-signalCtx.Done():
	case <-workCtx.Done():
		return
	}
	logger.LogWarning("shutdown requested, no new updates will start", zap.Duration("grace", grace))

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-timer.C:
		logger.LogWarning("shutdown grace elapsed, cancelling in-flight updates")
		cancel()
	case <-workCtx.Done():
	}
}
