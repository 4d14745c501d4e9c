package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/autopay/backend/internal/api/handlers"
	"github.com/autopay/backend/internal/api/httpx"
	"github.com/autopay/backend/internal/auth"
	"github.com/autopay/backend/internal/config"
	"github.com/autopay/backend/internal/metrics"
	"github.com/autopay/backend/internal/middleware"
	"github.com/autopay/backend/internal/monitor"
	"github.com/autopay/backend/internal/services"
)

type RouterDeps struct {
	Payments       *services.PaymentService
	Tracker        *monitor.Tracker
	TM             *auth.TokenManager
	Limiter        middleware.Limiter
	WebhookLimiter middleware.Limiter
	StorePing      func(context.Context) error
}

func NewRouter(cfg config.Config, deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(deps.Limiter))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	wh := handlers.NewWebhookHandler(deps.Payments, deps.Tracker)
	th := handlers.NewTransactionHandler(deps.Payments)
	mh := handlers.NewMonitoringHandler(deps.TM, deps.Tracker, cfg.MonitoringKey, cfg.MonitoringKeyHash)
	authmw := middleware.NewAuthMiddleware(deps.TM, cfg.MonitoringKey, cfg.MonitoringKeyHash)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "active",
			"service":     "AutoPay",
			"description": "Secure webhook payment processing system is running",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		store := "ok"
		if deps.StorePing != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			if err := deps.StorePing(ctx); err != nil {
				store = "unreachable"
			}
			cancel()
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "store": store})
	})

	r.Handle("/metrics", metrics.Handler())

	r.Route("/payments", func(r chi.Router) {
		r.With(middleware.RateLimit(deps.WebhookLimiter)).Post("/webhook", wh.Handle)
		r.Get("/transaction/{tx_id}", th.Get)
	})

	r.Route("/monitoring", func(r chi.Router) {
		r.Post("/token", mh.Token)
		r.With(authmw.RequireMonitoring).Get("/errors", mh.Errors)
	})

	return r
}
