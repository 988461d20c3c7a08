package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/coleta-bot/internal/actions"
	"github.com/wolfman30/coleta-bot/internal/actionserver"
	"github.com/wolfman30/coleta-bot/internal/api/router"
	"github.com/wolfman30/coleta-bot/internal/app/bootstrap"
	"github.com/wolfman30/coleta-bot/internal/channels/whatsapp"
	appconfig "github.com/wolfman30/coleta-bot/internal/config"
	"github.com/wolfman30/coleta-bot/internal/dialogue"
	"github.com/wolfman30/coleta-bot/internal/observability/metrics"
	"github.com/wolfman30/coleta-bot/internal/relay"
	"github.com/wolfman30/coleta-bot/internal/scheduling"
	"github.com/wolfman30/coleta-bot/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting coleta-bot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}
	db := bootstrap.OpenDatabase(ctx, cfg, logger)
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      buildHandler(cfg, logger, redisClient, db),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

type appMetrics struct {
	handler http.Handler
	actions *metrics.ActionMetrics
	relay   *metrics.RelayMetrics
}

func setupMetrics() appMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return appMetrics{
		handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		actions: metrics.NewActionMetrics(reg),
		relay:   metrics.NewRelayMetrics(reg),
	}
}

// buildHandler wires every component from cfg. redisClient and db are optional.
func buildHandler(cfg *appconfig.Config, logger *logging.Logger, redisClient *redis.Client, db *sql.DB) http.Handler {
	m := setupMetrics()

	backend := scheduling.NewClient(scheduling.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.BackendTimeout,
		Logger:  logger,
		Metrics: m.actions,
	})
	deps := actions.Deps{
		Backend:       backend,
		ChatbotUserID: cfg.ChatbotUserID,
		Metrics:       m.actions,
		Logger:        logger,
	}
	var serverOpts []actionserver.Option
	if store := bootstrap.BuildAuditStore(db); store != nil {
		deps.Recorder = store
		serverOpts = append(serverOpts, actionserver.WithAuditReader(store))
	}
	registry := actions.NewRegistry(deps)

	dialogueClient := dialogue.NewClient(dialogue.Config{
		WebhookURL: cfg.DialogueWebhookURL,
		Timeout:    cfg.DialogueTimeout,
		Logger:     logger,
	})
	waClient := whatsapp.NewClient(whatsapp.ClientConfig{
		AccessToken:   cfg.WhatsAppAccessToken,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		APIKey:        cfg.WhatsAppAPIKey,
		GraphAPIBase:  cfg.GraphAPIBase,
		Logger:        logger,
	})

	relayOpts := []relay.Option{relay.WithMetrics(m.relay)}
	if deduper := relay.NewRedisDeduper(redisClient, cfg.DedupTTL); deduper != nil {
		relayOpts = append(relayOpts, relay.WithDeduper(deduper))
	}
	bridge := relay.New(dialogueClient, waClient, logger, relayOpts...)

	return router.New(&router.Config{
		Logger:         logger,
		WhatsApp:       whatsapp.NewWebhookHandler(cfg.WhatsAppVerifyToken, cfg.WhatsAppAppSecret, bridge.HandleMessage, logger),
		ActionServer:   actionserver.NewHandler(registry, logger, serverOpts...),
		MetricsHandler: m.handler,
	})
}
