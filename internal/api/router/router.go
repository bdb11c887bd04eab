// Package router assembles the HTTP surface: guest-facing webhooks, the voice
// relay, health and metrics endpoints, and JWT-protected admin routes.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/grandpine/hotel-concierge/internal/http/middleware"
	"github.com/grandpine/hotel-concierge/internal/voice"
	"github.com/grandpine/hotel-concierge/internal/whatsapp"
	"github.com/grandpine/hotel-concierge/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	WhatsAppHandler *whatsapp.Handler
	VoiceHandler    *voice.Handler

	// RedisPing reports session-store reachability for the health check.
	RedisPing func(ctx context.Context) error

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	AdminJWTSecret     string

	// Webhook rate limit; zero disables limiting.
	WebhookRateLimit float64
	WebhookBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthHandler(cfg.RedisPing))

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.WhatsAppHandler != nil {
		r.Group(func(hooks chi.Router) {
			if cfg.WebhookRateLimit > 0 {
				hooks.Use(httpmiddleware.RateLimit(cfg.WebhookRateLimit, cfg.WebhookBurst))
			}
			hooks.Post("/webhook/whatsapp", cfg.WhatsAppHandler.Webhook)
			hooks.Post("/webhook/whatsapp/status", cfg.WhatsAppHandler.StatusWebhook)
		})
	}

	if cfg.VoiceHandler != nil {
		r.Get("/ws/voice", cfg.VoiceHandler.HandleWebSocket)
	}

	if cfg.WhatsAppHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
			admin.Delete("/sessions/{phone}", cfg.WhatsAppHandler.ClearSession)
		})
	}

	return r
}

// healthHandler reports service liveness plus session-store reachability.
func healthHandler(redisPing func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "healthy", "redis": "ok"}

		if redisPing != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := redisPing(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "unhealthy"
				body["redis"] = err.Error()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
