package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/rank-boost/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-other=1, uptrace-dsn='https://token@api.uptrace.dev?grpc=4317'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "rank-boost-api" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
	if cfg.PayoutShare.String() != "0.85" {
		t.Fatalf("unexpected PayoutShare: %s", cfg.PayoutShare)
	}
	if cfg.AuthTokenTTL != 24*time.Hour {
		t.Fatalf("unexpected AuthTokenTTL: %s", cfg.AuthTokenTTL)
	}
	if cfg.StaleClaimAfter != 72*time.Hour {
		t.Fatalf("unexpected StaleClaimAfter: %s", cfg.StaleClaimAfter)
	}
	if cfg.AuthTokenSecret == "" || cfg.CredentialsKey == "" {
		t.Fatalf("expected dev fallbacks for token secret and credentials key")
	}
	if !cfg.StripeCircuitEnabled || cfg.StripeCircuitFailureCount != 5 {
		t.Fatalf("unexpected stripe circuit defaults: enabled=%v failures=%d", cfg.StripeCircuitEnabled, cfg.StripeCircuitFailureCount)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel)
	}
}

func TestLoad_ProdRequiresSecrets(t *testing.T) {
	t.Run("token secret", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("AUTH_TOKEN_SECRET", "")
		t.Setenv("CREDENTIALS_KEY", "key")
		t.Setenv("STRIPE_SECRET_KEY", "sk_live_x")
		t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_x")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for missing AUTH_TOKEN_SECRET in prod")
		}
	})

	t.Run("stripe secrets", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("AUTH_TOKEN_SECRET", "secret")
		t.Setenv("CREDENTIALS_KEY", "key")
		t.Setenv("STRIPE_SECRET_KEY", "sk_live_x")
		t.Setenv("STRIPE_WEBHOOK_SECRET", "")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for missing STRIPE_WEBHOOK_SECRET in prod")
		}
	})
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PAYOUT_SHARE":                      "1.5",
		"PAYOUT_WORKERS":                    "0",
		"CACHE_TTL":                         "-1m",
		"JANITOR_INTERVAL":                  "soon",
		"STRIPE_CIRCUIT_FAILURE_COUNT":      "0",
		"DB_DISABLE_PREPARED_BINARY_RESULT": "maybe",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv("UPTRACE_ENABLED", "false")
			t.Setenv(key, value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" https://a.example , ,https://b.example")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected split result: %v", got)
	}
}
