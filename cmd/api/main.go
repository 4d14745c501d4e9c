package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/autopay/backend/internal/ai"
	"github.com/autopay/backend/internal/api"
	"github.com/autopay/backend/internal/auth"
	"github.com/autopay/backend/internal/config"
	"github.com/autopay/backend/internal/events"
	"github.com/autopay/backend/internal/logger"
	"github.com/autopay/backend/internal/metrics"
	"github.com/autopay/backend/internal/middleware"
	"github.com/autopay/backend/internal/monitor"
	"github.com/autopay/backend/internal/services"
	"github.com/autopay/backend/internal/store"
	"github.com/autopay/backend/internal/webhook"
	"github.com/autopay/backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, "api")
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.WebhookSecret == "" {
		log.Warn("WEBHOOK_SECRET not set, every webhook will be rejected")
	}

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Error("store open", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	wp := worker.NewPool(4)
	defer wp.Stop()

	var pub events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		rp, err := events.NewRabbitPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn("amqp connect failed, events disabled", "err", err)
		} else {
			pub = rp
			defer rp.Close()
		}
	}

	var analyzer services.Analyzer
	if cfg.GeminiAPIKey != "" {
		analyzer = ai.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	} else {
		log.Warn("GEMINI_API_KEY not set, enrichment disabled")
	}

	pipeline := webhook.NewPipeline(
		webhook.Verifier{Secret: cfg.WebhookSecret, Prefix: "sha256="},
		webhook.NewGuard(cfg.MaxWebhookAge, cfg.ClockSkew),
		webhook.AmountPolicy{AllowNonPositive: cfg.AllowNonPositive, Max: cfg.MaxAmount},
		webhook.NewLedger(st.Repos.Transactions),
	)

	paymentSvc := services.NewPaymentService(pipeline, st.Repos, analyzer, pub, wp)
	tracker := monitor.NewTracker(cfg.ErrorMetricsPath)
	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	var limiter, webhookLimiter middleware.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		limiter = middleware.NewRedisLimiter(rdb, "global", cfg.RateRPS)
		webhookLimiter = middleware.NewRedisLimiter(rdb, "webhook", cfg.WebhookRPS)
	} else {
		limiter = middleware.NewMemoryLimiter(cfg.RateRPS)
		webhookLimiter = middleware.NewMemoryLimiter(cfg.WebhookRPS)
	}

	metrics.Init()
	r := api.NewRouter(cfg, api.RouterDeps{
		Payments:       paymentSvc,
		Tracker:        tracker,
		TM:             tm,
		Limiter:        limiter,
		WebhookLimiter: webhookLimiter,
		StorePing:      st.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
