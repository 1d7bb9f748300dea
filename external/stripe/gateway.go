package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/rank-boost/internal/domain/payment"
	"github.com/riskibarqy/rank-boost/internal/platform/logging"
	"github.com/riskibarqy/rank-boost/internal/platform/resilience"
	"github.com/shopspring/decimal"
	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const paymentStatusPaid = "paid"

var errMissingSession = crerr.New("stripe returned an empty checkout session")

type Config struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	// Backends overrides the Stripe API endpoints, mostly for tests.
	Backends       *stripeapi.Backends
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Gateway implements payment.Gateway on top of Stripe Checkout.
type Gateway struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
	logger        *logging.Logger
	breaker       *resilience.CircuitBreaker
}

func NewGateway(cfg Config) (*Gateway, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, crerr.New("stripe secret key is required")
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, crerr.New("stripe webhook secret is required")
	}
	if cfg.SuccessURL == "" || cfg.CancelURL == "" {
		return nil, crerr.New("checkout success and cancel urls are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Gateway{
		api:           client.New(cfg.SecretKey, cfg.Backends),
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		logger:        logger.Named("stripe"),
		breaker:       resilience.NewCircuitBreaker(cfg.CircuitBreaker.Normalize()),
	}, nil
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (payment.CheckoutSession, error) {
	if req.Reference == "" || len(req.Reference) > payment.MaxReferenceLength {
		return payment.CheckoutSession{}, crerr.Newf("client reference must be between 1 and %d bytes", payment.MaxReferenceLength)
	}
	if !req.Amount.IsPositive() {
		return payment.CheckoutSession{}, crerr.Newf("checkout amount must be positive, got %s", req.Amount.StringFixed(2))
	}

	params := &stripeapi.CheckoutSessionParams{
		Mode:              stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL:        stripeapi.String(g.successURL),
		CancelURL:         stripeapi.String(g.cancelURL),
		ClientReferenceID: stripeapi.String(req.Reference),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
					Currency: stripeapi.String(strings.ToLower(req.Currency)),
					ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripeapi.String(req.Description),
					},
					UnitAmount: stripeapi.Int64(toMinorUnits(req.Amount)),
				},
				Quantity: stripeapi.Int64(1),
			},
		},
		Metadata: req.Metadata,
	}
	params.Context = ctx

	var (
		session   *stripeapi.CheckoutSession
		rejectErr error
	)
	err := g.breaker.Do(ctx, func(context.Context) error {
		created, err := g.api.CheckoutSessions.New(params)
		if err != nil {
			// Requests Stripe rejects as invalid say nothing about its health.
			if isClientError(err) {
				rejectErr = err
				return nil
			}
			return err
		}
		session = created
		return nil
	})
	if err != nil {
		g.logger.WarnContext(ctx, "create checkout session failed", "reference", req.Reference, "breaker_state", g.breaker.State(), "error", err)
		return payment.CheckoutSession{}, crerr.Wrap(err, "create stripe checkout session")
	}
	if rejectErr != nil {
		g.logger.WarnContext(ctx, "checkout session rejected", "reference", req.Reference, "error", rejectErr)
		return payment.CheckoutSession{}, crerr.Wrap(rejectErr, "create stripe checkout session")
	}
	if session == nil || session.ID == "" {
		return payment.CheckoutSession{}, errMissingSession
	}

	g.logger.InfoContext(ctx, "checkout session created", "reference", req.Reference, "session_id", session.ID)
	return payment.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (g *Gateway) ParseEvent(payload []byte, signature string) (payment.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return payment.Event{}, fmt.Errorf("%w: %v", payment.ErrInvalidSignature, err)
	}

	out := payment.Event{
		ID:   event.ID,
		Type: payment.EventType(event.Type),
	}
	if !strings.HasPrefix(string(event.Type), "checkout.session.") || event.Data == nil {
		return out, nil
	}

	var session stripeapi.CheckoutSession
	if err := sonic.Unmarshal(event.Data.Raw, &session); err != nil {
		return payment.Event{}, crerr.Wrapf(err, "decode checkout session of event %s", event.ID)
	}

	out.SessionID = session.ID
	out.Reference = session.ClientReferenceID
	out.Paid = string(session.PaymentStatus) == paymentStatusPaid
	out.AmountTotal = fromMinorUnits(session.AmountTotal)
	out.Currency = strings.ToUpper(string(session.Currency))
	out.Metadata = session.Metadata
	return out, nil
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

func isClientError(err error) bool {
	var stripeErr *stripeapi.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.HTTPStatusCode >= http.StatusBadRequest &&
		stripeErr.HTTPStatusCode < http.StatusInternalServerError &&
		stripeErr.HTTPStatusCode != http.StatusTooManyRequests
}
