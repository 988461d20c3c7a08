package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/coleta-bot/internal/actionserver"
	"github.com/wolfman30/coleta-bot/internal/channels/whatsapp"
	httpmiddleware "github.com/wolfman30/coleta-bot/internal/http/middleware"
	"github.com/wolfman30/coleta-bot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	WhatsApp       *whatsapp.WebhookHandler
	ActionServer   *actionserver.Handler
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// WhatsApp Cloud API webhook
	if cfg.WhatsApp != nil {
		r.Get("/webhook", cfg.WhatsApp.HandleVerification)
		r.Post("/webhook", cfg.WhatsApp.HandleInbound)
	}

	// Dialogue engine action server
	if cfg.ActionServer != nil {
		r.Mount("/actions", cfg.ActionServer.Routes())
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
