package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "HTTP_PORT", "STORE_DRIVER", "WEBHOOK_SECRET",
		"MAX_WEBHOOK_AGE_SECONDS", "CLOCK_SKEW_SECONDS", "RATE_RPS",
		"WEBHOOK_RATE_RPS", "JWT_SECRET", "TOKEN_TTL_SECONDS", "MAX_AMOUNT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Env != "dev" || cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected base defaults: %+v", cfg)
	}
	if cfg.StoreDriver != "mongo" {
		t.Fatalf("expected mongo default driver, got %q", cfg.StoreDriver)
	}
	if cfg.MaxWebhookAge != 300*time.Second || cfg.ClockSkew != 5*time.Second {
		t.Fatalf("unexpected window defaults: age=%v skew=%v", cfg.MaxWebhookAge, cfg.ClockSkew)
	}
	if cfg.RateRPS != 100 || cfg.WebhookRPS != 30 {
		t.Fatalf("unexpected rate defaults: %d %d", cfg.RateRPS, cfg.WebhookRPS)
	}
	if cfg.MaxAmount != 1_000_000 {
		t.Fatalf("unexpected amount cap: %v", cfg.MaxAmount)
	}
	if cfg.TokenTTL != 900*time.Second {
		t.Fatalf("unexpected token ttl: %v", cfg.TokenTTL)
	}
	if cfg.WebhookSecret != "" {
		t.Fatalf("expected empty webhook secret by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("WEBHOOK_SECRET", "s3cr3t")
	t.Setenv("MAX_WEBHOOK_AGE_SECONDS", "600")
	t.Setenv("CLOCK_SKEW_SECONDS", "10")
	t.Setenv("ALLOW_NON_POSITIVE", "true")
	t.Setenv("MAX_AMOUNT", "500.50")
	t.Setenv("RATE_RPS", "5")
	t.Setenv("TOKEN_TTL_SECONDS", "60")

	cfg := Load()
	if cfg.Env != "prod" || cfg.StoreDriver != "postgres" || cfg.WebhookSecret != "s3cr3t" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.MaxWebhookAge != 600*time.Second || cfg.ClockSkew != 10*time.Second {
		t.Fatalf("unexpected window: age=%v skew=%v", cfg.MaxWebhookAge, cfg.ClockSkew)
	}
	if !cfg.AllowNonPositive {
		t.Fatalf("expected non-positive amounts allowed")
	}
	if cfg.MaxAmount != 500.50 {
		t.Fatalf("unexpected amount cap: %v", cfg.MaxAmount)
	}
	if cfg.RateRPS != 5 {
		t.Fatalf("unexpected rate: %d", cfg.RateRPS)
	}
	if cfg.TokenTTL != time.Minute {
		t.Fatalf("unexpected token ttl: %v", cfg.TokenTTL)
	}
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("RATE_RPS", "not-a-number")
	t.Setenv("MAX_AMOUNT", "lots")
	t.Setenv("MAX_WEBHOOK_AGE_SECONDS", "5m")

	cfg := Load()
	if cfg.RateRPS != 100 {
		t.Fatalf("expected default rate on parse failure, got %d", cfg.RateRPS)
	}
	if cfg.MaxAmount != 1_000_000 {
		t.Fatalf("expected default amount cap on parse failure, got %v", cfg.MaxAmount)
	}
	if cfg.MaxWebhookAge != 300*time.Second {
		t.Fatalf("expected default age on parse failure, got %v", cfg.MaxWebhookAge)
	}
}
