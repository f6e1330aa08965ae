package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mukisa/dukani/internal/config"
	"github.com/mukisa/dukani/internal/page"
	"github.com/mukisa/dukani/internal/scheduler"
	"github.com/mukisa/dukani/internal/server/handlers"
	"github.com/mukisa/dukani/internal/server/router"
	digestsvc "github.com/mukisa/dukani/internal/service/digest"
	"github.com/mukisa/dukani/internal/stock"
	"github.com/mukisa/dukani/pkg/clients/webhook"
	"github.com/mukisa/dukani/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	augmenter := page.Augmenter{
		DismissAfterMS: cfg.Alerts.DismissAfterMS,
		ConfirmText:    cfg.Alerts.ConfirmText,
	}
	annotator := stock.Annotator{DefaultReorderLevel: cfg.Stock.DefaultReorderLevel}

	fragmentsHandler := handlers.NewFragmentsHandler(augmenter, annotator, baseLogger.Named("handlers.fragments"))
	totalsHandler := handlers.NewTotalsHandler(cfg.Currency, baseLogger.Named("handlers.totals"))
	tablesHandler := handlers.NewTablesHandler(baseLogger.Named("handlers.tables"))
	engine := router.New(fragmentsHandler, totalsHandler, tablesHandler, baseLogger.Named("router"))

	// The low-stock digest only runs when both the snapshot and webhook
	// endpoints are configured.
	var sched *scheduler.Scheduler
	if cfg.Digest.Enabled() {
		alertClient := webhook.NewClient(cfg.Digest.WebhookURL)
		svc := digestsvc.NewService(cfg.Digest.SnapshotURL, annotator, baseLogger.Named("svc.digest"))
		sched = scheduler.NewScheduler(cfg.Digest, svc, alertClient, baseLogger.Named("scheduler"))
		sched.Start()
		defer sched.Stop()
	} else {
		baseLogger.Info("stock digest disabled, snapshot or webhook url missing")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
