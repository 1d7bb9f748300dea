package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/rank-boost/external/stripe"
	"github.com/riskibarqy/rank-boost/internal/config"
	"github.com/riskibarqy/rank-boost/internal/domain/balance"
	"github.com/riskibarqy/rank-boost/internal/domain/coupon"
	"github.com/riskibarqy/rank-boost/internal/domain/credential"
	"github.com/riskibarqy/rank-boost/internal/domain/message"
	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/riskibarqy/rank-boost/internal/domain/passwordreset"
	"github.com/riskibarqy/rank-boost/internal/domain/payment"
	"github.com/riskibarqy/rank-boost/internal/domain/pricing"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
	"github.com/riskibarqy/rank-boost/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/rank-boost/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/rank-boost/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/rank-boost/internal/infrastructure/scheduler"
	"github.com/riskibarqy/rank-boost/internal/interfaces/httpapi"
	"github.com/riskibarqy/rank-boost/internal/platform/authtoken"
	idgen "github.com/riskibarqy/rank-boost/internal/platform/id"
	"github.com/riskibarqy/rank-boost/internal/platform/logging"
	"github.com/riskibarqy/rank-boost/internal/platform/resilience"
	"github.com/riskibarqy/rank-boost/internal/platform/secret"
	"github.com/riskibarqy/rank-boost/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// App owns the long-lived pieces of the API process.
type App struct {
	Server    *http.Server
	Scheduler *scheduler.Scheduler

	db     *sqlx.DB
	logger *logging.Logger
}

type repositories struct {
	users       user.Repository
	orders      order.Repository
	ledger      balance.Repository
	coupons     coupon.Repository
	credentials credential.Repository
	messages    message.Repository
	resets      passwordreset.Repository
}

// New builds the HTTP server and janitor scheduler. Without DB_URL every
// repository is backed by process memory.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger}

	repos, err := a.openRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.CacheEnabled {
		repos.coupons = cache.NewCouponRepository(repos.coupons, cfg.CacheTTL)
	}

	catalog, err := pricing.LoadCatalog(cfg.PricingConfigDir)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("load pricing catalog: %w", err)
	}
	tokens, err := authtoken.NewIssuer(cfg.AuthTokenSecret, cfg.AuthTokenTTL)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("create token issuer: %w", err)
	}
	box, err := secret.NewBox(cfg.CredentialsKey)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("create credentials box: %w", err)
	}
	gateway, err := newPaymentGateway(cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	ids := idgen.NewUUIDGenerator()
	authSvc := usecase.NewAuthService(repos.users, repos.resets, tokens, nil, ids, logger)
	pricingSvc := usecase.NewPricingService(catalog, repos.coupons, ids, logger)
	checkoutSvc := usecase.NewCheckoutService(pricingSvc, gateway, repos.orders, repos.users, ids, logger)
	orderSvc := usecase.NewOrderService(repos.orders, ids, usecase.OrderServiceConfig{
		PayoutShare:   cfg.PayoutShare,
		PayoutWorkers: cfg.PayoutWorkers,
	}, logger)
	credentialSvc := usecase.NewCredentialService(repos.orders, repos.credentials, box, logger)
	chatSvc := usecase.NewChatService(repos.orders, repos.messages, ids, logger)
	summarySvc := usecase.NewSummaryService(repos.users, repos.orders, repos.ledger, logger)
	janitorSvc := usecase.NewJanitorService(repos.resets, repos.orders, cfg.StaleClaimAfter, logger)

	handler := httpapi.NewHandler(authSvc, pricingSvc, checkoutSvc, orderSvc, credentialSvc, chatSvc, summarySvc, logger)
	router := httpapi.NewRouter(handler, authSvc, logger, cfg.CORSAllowedOrigins)

	a.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	a.Scheduler, err = newJanitorScheduler(cfg, janitorSvc, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	return a, nil
}

// Close releases the database handle. The HTTP server and scheduler are shut
// down by the caller.
func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) openRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	if cfg.DBURL == "" {
		a.logger.Warn("DB_URL empty, using in-memory repositories")
		store := memory.NewStore()
		return repositories{
			users:       memory.NewUserRepository(store),
			orders:      memory.NewOrderRepository(store),
			ledger:      memory.NewLedgerRepository(store),
			coupons:     memory.NewCouponRepository(store),
			credentials: memory.NewCredentialRepository(store),
			messages:    memory.NewMessageRepository(store),
			resets:      memory.NewPasswordResetRepository(store),
		}, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}
	a.db = db

	return repositories{
		users:       postgres.NewUserRepository(db),
		orders:      postgres.NewOrderRepository(db),
		ledger:      postgres.NewLedgerRepository(db),
		coupons:     postgres.NewCouponRepository(db),
		credentials: postgres.NewCredentialRepository(db),
		messages:    postgres.NewMessageRepository(db),
		resets:      postgres.NewPasswordResetRepository(db),
	}, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := NormalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func newPaymentGateway(cfg config.Config, logger *logging.Logger) (payment.Gateway, error) {
	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		logger.Warn("stripe keys not configured, checkout is unavailable")
		return unconfiguredGateway{}, nil
	}

	gateway, err := stripe.NewGateway(stripe.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		SuccessURL:    cfg.CheckoutSuccessURL,
		CancelURL:     cfg.CheckoutCancelURL,
		Logger:        logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StripeCircuitEnabled,
			FailureThreshold: cfg.StripeCircuitFailureCount,
			OpenTimeout:      cfg.StripeCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StripeCircuitHalfOpenMaxReq,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create stripe gateway: %w", err)
	}
	return gateway, nil
}

func newJanitorScheduler(cfg config.Config, janitor *usecase.JanitorService, logger *logging.Logger) (*scheduler.Scheduler, error) {
	s, err := scheduler.New(logger)
	if err != nil {
		return nil, err
	}

	jobs := []scheduler.Job{
		{
			Name:     "purge-reset-tokens",
			Interval: cfg.JanitorInterval,
			Run: func(ctx context.Context) error {
				_, err := janitor.PurgeResetTokens(ctx)
				return err
			},
		},
		{
			Name:     "report-stale-claims",
			Interval: cfg.JanitorInterval,
			Run: func(ctx context.Context) error {
				_, err := janitor.ReportStaleClaims(ctx)
				return err
			},
		},
	}
	for _, job := range jobs {
		if err := s.Register(job); err != nil {
			_ = s.Shutdown()
			return nil, err
		}
	}
	return s, nil
}

var errPaymentsNotConfigured = errors.New("payment provider is not configured")

// unconfiguredGateway keeps local runs without Stripe keys bootable. Checkout
// answers 503 and every webhook is rejected as unsigned.
type unconfiguredGateway struct{}

func (unconfiguredGateway) CreateCheckoutSession(context.Context, payment.CheckoutRequest) (payment.CheckoutSession, error) {
	return payment.CheckoutSession{}, errPaymentsNotConfigured
}

func (unconfiguredGateway) ParseEvent([]byte, string) (payment.Event, error) {
	return payment.Event{}, fmt.Errorf("%w: %v", payment.ErrInvalidSignature, errPaymentsNotConfigured)
}
