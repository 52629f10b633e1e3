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

	"salescoach-platform/internal/audit"
	"salescoach-platform/internal/calllog"
	"salescoach-platform/internal/config"
	"salescoach-platform/internal/credits"
	"salescoach-platform/internal/httpapi"
	"salescoach-platform/internal/reporting"
	"salescoach-platform/internal/scheduler"
	"salescoach-platform/pkg/logger"
	"salescoach-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	logsAPI := calllog.NewClient(cfg.Platform.BaseURL, cfg.Platform.Timeout)
	logsSvc := calllog.NewService(logsAPI)
	reportsSvc := reporting.NewService(reporting.NewSnapshotRepo(logsSvc))

	ledger := credits.NewClient(cfg.Platform.BaseURL, cfg.Platform.Timeout)
	notifier := credits.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout)
	cache := credits.NewCache(rdb, cfg.Redis.CacheTTL)
	auditRepo := audit.NewRedisRepo(rdb, 0)
	auditor := audit.NewService(auditRepo)
	creditsSvc := credits.NewService(ledger, notifier, cache, credits.FixedDelay(cfg.Bulk.Delay), auditor)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, httpapi.Handlers{
		Logs:    logsSvc,
		Credits: creditsSvc,
		Reports: reportsSvc,
		Audit:   auditRepo,
	})

	// Two independent reconciliation timers: balances and the monthly
	// automation pass. A failed tick logs and waits for the next one.
	sched := scheduler.New(log)
	if err := sched.AddEvery("balance-refresh", cfg.Refresh.BalanceInterval, creditsSvc.RefreshBalances); err != nil {
		log.Error("scheduler init failed", "job", "balance-refresh", "err", err)
		os.Exit(1)
	}
	if err := sched.AddEvery("monthly-check", cfg.Refresh.MonthlyInterval, creditsSvc.RefreshMonthly); err != nil {
		log.Error("scheduler init failed", "job", "monthly-check", "err", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
