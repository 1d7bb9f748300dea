package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/rank-boost/internal/platform/logging"
	"github.com/shopspring/decimal"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	DBURL                   string
	DBDisablePreparedBinary bool
	MigrationsDir           string
	CORSAllowedOrigins      []string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	ShutdownTimeout         time.Duration
	LogLevel                logging.Level

	AuthTokenSecret string
	AuthTokenTTL    time.Duration
	CredentialsKey  string

	StripeSecretKey             string
	StripeWebhookSecret         string
	CheckoutSuccessURL          string
	CheckoutCancelURL           string
	StripeCircuitEnabled        bool
	StripeCircuitFailureCount   int
	StripeCircuitOpenTimeout    time.Duration
	StripeCircuitHalfOpenMaxReq int

	PricingConfigDir string
	CacheEnabled     bool
	CacheTTL         time.Duration
	PayoutShare      decimal.Decimal
	PayoutWorkers    int
	JanitorInterval  time.Duration
	StaleClaimAfter  time.Duration

	UptraceEnabled     bool
	UptraceDSN         string
	UptraceLogsEnabled bool

	PprofEnabled bool
	PprofAddr    string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "rank-boost-api"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                      strings.TrimSpace(getEnv("DB_URL", "")),
		MigrationsDir:              getEnv("MIGRATIONS_DIR", "db/migrations"),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:                   logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		AuthTokenSecret:            getEnv("AUTH_TOKEN_SECRET", ""),
		CredentialsKey:             getEnv("CREDENTIALS_KEY", ""),
		StripeSecretKey:            getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:        getEnv("STRIPE_WEBHOOK_SECRET", ""),
		CheckoutSuccessURL:         getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CheckoutCancelURL:          getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/checkout/cancel"),
		PricingConfigDir:           strings.TrimSpace(getEnv("PRICING_CONFIG_DIR", "")),
		PprofAddr:                  strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", "rank-boost-api"),
		PyroscopeAuthToken:         getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeBasicAuthUser:     getEnv("PYROSCOPE_BASIC_AUTH_USER", ""),
		PyroscopeBasicAuthPassword: getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
	}

	if cfg.DBDisablePreparedBinary, err = strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "false")); err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.AuthTokenSecret) == "" {
		if appEnv == EnvProd {
			return Config{}, fmt.Errorf("AUTH_TOKEN_SECRET is required when APP_ENV=%s", EnvProd)
		}
		cfg.AuthTokenSecret = "dev-only-token-secret-change-me-please"
	}
	if cfg.AuthTokenTTL, err = getEnvAsDuration("AUTH_TOKEN_TTL", "24h"); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.CredentialsKey) == "" {
		if appEnv == EnvProd {
			return Config{}, fmt.Errorf("CREDENTIALS_KEY is required when APP_ENV=%s", EnvProd)
		}
		cfg.CredentialsKey = "dev-only-credentials-key-change-me"
	}

	if appEnv == EnvProd && (cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "") {
		return Config{}, fmt.Errorf("STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required when APP_ENV=%s", EnvProd)
	}
	if cfg.StripeCircuitEnabled, err = strconv.ParseBool(getEnv("STRIPE_CIRCUIT_ENABLED", "true")); err != nil {
		return Config{}, fmt.Errorf("parse STRIPE_CIRCUIT_ENABLED: %w", err)
	}
	if cfg.StripeCircuitFailureCount, err = getEnvAsInt("STRIPE_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return Config{}, fmt.Errorf("parse STRIPE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.StripeCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("STRIPE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.StripeCircuitOpenTimeout, err = getEnvAsDuration("STRIPE_CIRCUIT_OPEN_TIMEOUT", "30s"); err != nil {
		return Config{}, err
	}
	if cfg.StripeCircuitHalfOpenMaxReq, err = getEnvAsInt("STRIPE_CIRCUIT_HALF_OPEN_MAX_REQ", 1); err != nil {
		return Config{}, fmt.Errorf("parse STRIPE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.StripeCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("STRIPE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	if cfg.CacheEnabled, err = strconv.ParseBool(getEnv("CACHE_ENABLED", "true")); err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	if cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", "1m"); err != nil {
		return Config{}, err
	}

	cfg.PayoutShare, err = decimal.NewFromString(getEnv("PAYOUT_SHARE", "0.85"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PAYOUT_SHARE: %w", err)
	}
	if !cfg.PayoutShare.IsPositive() || cfg.PayoutShare.GreaterThan(decimal.NewFromInt(1)) {
		return Config{}, fmt.Errorf("PAYOUT_SHARE must be in (0, 1]")
	}
	if cfg.PayoutWorkers, err = getEnvAsInt("PAYOUT_WORKERS", 4); err != nil {
		return Config{}, fmt.Errorf("parse PAYOUT_WORKERS: %w", err)
	}
	if cfg.PayoutWorkers < 1 {
		return Config{}, fmt.Errorf("PAYOUT_WORKERS must be >= 1")
	}
	if cfg.JanitorInterval, err = getEnvAsDuration("JANITOR_INTERVAL", "15m"); err != nil {
		return Config{}, err
	}
	if cfg.StaleClaimAfter, err = getEnvAsDuration("STALE_CLAIM_AFTER", "72h"); err != nil {
		return Config{}, err
	}

	if cfg.UptraceEnabled, err = strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false")); err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.UptraceLogsEnabled, err = strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true")); err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	if cfg.PprofEnabled, err = strconv.ParseBool(getEnv("PPROF_ENABLED", "false")); err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false")); err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

// getEnvAsDuration parses a positive duration.
func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	for _, item := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(value), "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
