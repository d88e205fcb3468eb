package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/config"
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/repository/mongodb"
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/repository/sheets"
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/scheduler"
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/server/handlers"
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/server/router"
	digestsvc "github.com/Alx-707/whatsapp-webhook-pipeline/internal/service/digest"
	eventsvc "github.com/Alx-707/whatsapp-webhook-pipeline/internal/service/events"
	"github.com/Alx-707/whatsapp-webhook-pipeline/pkg/clients/forward"
	"github.com/Alx-707/whatsapp-webhook-pipeline/pkg/logger"
	"github.com/Alx-707/whatsapp-webhook-pipeline/pkg/metrics"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	metrics.RegisterIngestMetrics()

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var sheetsRepo sheets.Repository
	if cfg.Sheets.SpreadsheetID != "" {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	} else {
		baseLogger.Warn("sheet export id missing, digest export disabled")
	}

	var forwarder forward.Client
	if cfg.Forward.URL != "" {
		forwarder = forward.NewClient(cfg.Forward)
		baseLogger.Info("downstream forwarding enabled", zap.String("url", cfg.Forward.URL))
	} else {
		baseLogger.Warn("forward url missing, downstream forwarding disabled")
	}

	ingestSvc, err := eventsvc.NewService(cfg.WhatsApp, mongoRepo, forwarder, baseLogger.Named("svc.events"))
	if err != nil {
		baseLogger.Fatal("failed to init ingest service", zap.Error(err))
	}
	if cfg.WhatsApp.AppSecret == "" {
		baseLogger.Warn("app secret missing, signature verification disabled")
	}

	digestService := digestsvc.NewService(mongoRepo, sheetsRepo, baseLogger.Named("svc.digest"))
	webhookHandler := handlers.NewWebhookHandler(ingestSvc, baseLogger.Named("handlers.webhook"))
	engine := router.New(webhookHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, digestService, mongoRepo, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

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
