package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pecunia-backend/internal/api"
	"pecunia-backend/internal/config"
	"pecunia-backend/internal/gateway"
	"pecunia-backend/internal/handlers"
	slackalerts "pecunia-backend/internal/integrations/slack"
	"pecunia-backend/internal/logging"
	"pecunia-backend/internal/scheduler"
	"pecunia-backend/internal/services"
	"pecunia-backend/internal/session"
	"pecunia-backend/internal/store"
	"pecunia-backend/internal/store/memory"
	"pecunia-backend/internal/store/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	logger.Info("starting Pecunia backend", zap.String("port", cfg.HTTPPort))

	// 2. Transcript archive
	archive, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open transcript store", zap.Error(err))
	}
	defer archive.Close()

	// 3. Analysis gateway
	var gw gateway.Gateway = gateway.NewHTTPGateway(cfg.AnalysisBaseURL, cfg.GatewayTimeout, logger)
	if cfg.ChatProvider == config.ChatProviderOpenAI {
		gw = gateway.NewOpenAIChat(gw, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.GatewayTimeout)
		logger.Info("general chat served by OpenAI-compatible API", zap.String("model", cfg.OpenAIModel))
	}

	var notifier services.FailureNotifier
	if cfg.SlackAlertsEnabled() {
		alerter, err := slackalerts.NewAlerter(cfg.SlackBotToken, cfg.SlackAlertChannel, logger)
		if err != nil {
			logger.Fatal("failed to create Slack alerter", zap.Error(err))
		}
		notifier = alerter
		logger.Info("gateway failures will be posted to Slack", zap.String("channel", cfg.SlackAlertChannel))
	}

	// 4. Services and handlers
	registry := session.NewRegistry(nil)
	sessionService := services.NewSessionService(registry, archive, logger)
	assistantService := services.NewAssistantService(registry, gw, notifier, logger)
	insightService := services.NewInsightService(registry, gw, logger)

	router := api.NewRouter(api.RouterDependencies{
		SessionHandler:    handlers.NewSessionHandlers(sessionService, assistantService, logger),
		InsightHandler:    handlers.NewInsightHandlers(insightService, logger),
		TranscriptHandler: handlers.NewTranscriptHandlers(sessionService, logger),
		ClassifyHandler:   handlers.NewClassifyHandler(nil),
		AllowedOrigins:    cfg.CORSOrigins,
		RequestTimeout:    cfg.RequestTimeout,
		Logger:            logger,
	})

	// 5. Idle session reaper
	sched := scheduler.New(logger)
	err = sched.Add("evict-idle-sessions", cfg.SessionSweepSchedule, func(context.Context) error {
		sessionService.EvictIdle(cfg.SessionIdleTTL)
		return nil
	})
	if err != nil {
		logger.Fatal("failed to schedule session sweep", zap.Error(err))
	}
	sched.Start()

	// 6. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// WriteTimeout stays unset so the event stream is not cut off.
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("could not listen", zap.String("addr", server.Addr), zap.Error(err))
		}
	}()

	<-stopChan
	logger.Info("shutdown signal received, initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server graceful shutdown failed", zap.Error(err))
	}
	sched.Stop()
	// Cancels queued cycles still draining in the background.
	assistantService.Close()

	// Ending every live session marks its transcript ENDED.
	for _, sess := range registry.List() {
		_ = registry.Delete(sess.ID())
	}

	logger.Info("server shutdown complete")
}

// openStore returns the Postgres archive when DATABASE_URL is set and the
// in-memory archive otherwise.
func openStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, transcripts are kept in memory")
		return memory.NewMemoryStore(), nil
	}

	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := dbpool.Ping(dbCtx); err != nil {
		dbpool.Close()
		return nil, err
	}

	pgStore := postgres.NewPostgresStore(dbpool, logger)
	if err := pgStore.Migrate(dbCtx); err != nil {
		pgStore.Close()
		return nil, err
	}
	logger.Info("database connection pool established")
	return pgStore, nil
}
