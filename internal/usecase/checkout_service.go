package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/rank-boost/internal/domain/balance"
	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/riskibarqy/rank-boost/internal/domain/payment"
	"github.com/riskibarqy/rank-boost/internal/domain/pricing"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
	idgen "github.com/riskibarqy/rank-boost/internal/platform/id"
	"github.com/riskibarqy/rank-boost/internal/platform/logging"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// Checkout metadata keys. The provider echoes them back on settlement.
const (
	metaUserID        = "user_id"
	metaGame          = "game"
	metaCurrentRank   = "current_rank"
	metaCurrentPoints = "current_points"
	metaDesiredRank   = "desired_rank"
	metaDesiredPoints = "desired_points"
	metaPrice         = "price"
	metaCashback      = "cashback"
	metaExtras        = "extras"
	metaCouponCode    = "coupon_code"
)

var priceTolerance = decimal.New(1, -2)

type CheckoutInput struct {
	Quote QuoteInput
	// DisplayPrice is the price the client showed the customer. It is only
	// compared against the server quote, never charged.
	DisplayPrice string
}

type CheckoutResult struct {
	SessionID string
	URL       string
	OrderID   string
	Quote     pricing.Quote
}

type WebhookResult struct {
	EventType        payment.EventType
	OrderID          string
	Ignored          bool
	Created          bool
	CashbackCredited bool
}

type extraMeta struct {
	Label string `json:"label"`
	Cost  string `json:"cost"`
}

type CheckoutService struct {
	pricing *PricingService
	gateway payment.Gateway
	orders  order.Repository
	users   user.Repository
	idGen   idgen.Generator
	logger  *logging.Logger
	now     func() time.Time
}

func NewCheckoutService(
	pricingService *PricingService,
	gateway payment.Gateway,
	orders order.Repository,
	users user.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *CheckoutService {
	if logger == nil {
		logger = logging.Default()
	}

	return &CheckoutService{
		pricing: pricingService,
		gateway: gateway,
		orders:  orders,
		users:   users,
		idGen:   idGen,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateCheckoutSession re-prices the request on the server and opens a hosted
// checkout for that amount. The order itself is only written once the
// provider confirms payment.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, actor user.Principal, input CheckoutInput) (CheckoutResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CheckoutService.CreateCheckoutSession",
		attribute.String("user_id", actor.UserID),
		attribute.String("game", input.Quote.Game),
	)
	defer span.End()

	if actor.IsZero() {
		return CheckoutResult{}, fmt.Errorf("%w: login required", ErrUnauthorized)
	}

	quote, err := s.pricing.Quote(ctx, input.Quote)
	if err != nil {
		return CheckoutResult{}, err
	}
	switch {
	case !quote.Valid:
		return CheckoutResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, quote.Reason)
	case quote.BelowMinimum:
		cfg, _ := s.pricing.catalog.Get(quote.Game)
		return CheckoutResult{}, fmt.Errorf("%w: capped tier orders must climb at least %d points", ErrInvalidInput, cfg.MinPointsDelta)
	case !quote.Chargeable():
		return CheckoutResult{}, fmt.Errorf("%w: this rank transition has no price", ErrInvalidInput)
	}

	if raw := strings.TrimSpace(input.DisplayPrice); raw != "" {
		shown, err := decimal.NewFromString(raw)
		if err != nil {
			return CheckoutResult{}, fmt.Errorf("%w: display price is not a number", ErrInvalidInput)
		}
		if shown.Sub(quote.FinalPrice).Abs().GreaterThan(priceTolerance) {
			return CheckoutResult{}, fmt.Errorf("%w: price changed to %s, please review your order", ErrInvalidInput, quote.FinalPrice.StringFixed(2))
		}
	}

	orderID, err := s.idGen.NewID()
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("generate order id: %w", err)
	}

	metadata, err := checkoutMetadata(actor.UserID, quote, input.Quote.CouponCode)
	if err != nil {
		return CheckoutResult{}, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		Reference:   orderID,
		CustomerID:  actor.UserID,
		Description: fmt.Sprintf("%s boost: %s to %s", quote.Game, quote.Current.Label(), quote.Desired.Label()),
		Amount:      quote.FinalPrice,
		Currency:    quote.Currency,
		Metadata:    metadata,
	})
	if err != nil {
		recordSpanError(span, err)
		return CheckoutResult{}, fmt.Errorf("%w: create checkout session: %v", ErrDependencyUnavailable, err)
	}

	s.logger.InfoContext(ctx, "checkout session created",
		"order_id", orderID,
		"session_id", session.ID,
		"user_id", actor.UserID,
		"amount", quote.FinalPrice.StringFixed(2),
	)
	return CheckoutResult{SessionID: session.ID, URL: session.URL, OrderID: orderID, Quote: quote}, nil
}

// HandleWebhook turns a settled checkout into an order. Deliveries are
// idempotent on the order id: a replay refreshes the existing row and the
// cashback ledger entry stops a second credit.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CheckoutService.HandleWebhook")
	defer span.End()

	event, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return WebhookResult{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return WebhookResult{}, fmt.Errorf("%w: decode webhook: %v", ErrInvalidInput, err)
	}

	result := WebhookResult{EventType: event.Type, OrderID: event.Reference}
	if !event.Settles() {
		result.Ignored = true
		s.logger.DebugContext(ctx, "webhook event ignored", "event_id", event.ID, "type", event.Type)
		return result, nil
	}

	o, err := orderFromEvent(event, s.now().UTC())
	if err != nil {
		return WebhookResult{}, err
	}
	span.SetAttributes(attribute.String("order_id", o.ID))

	if _, exists, err := s.users.GetByID(ctx, o.UserID); err != nil {
		return WebhookResult{}, fmt.Errorf("get order user: %w", err)
	} else if !exists {
		return WebhookResult{}, fmt.Errorf("%w: unknown user %s", ErrInvalidInput, o.UserID)
	}

	entryID, err := s.idGen.NewID()
	if err != nil {
		return WebhookResult{}, fmt.Errorf("generate ledger id: %w", err)
	}

	err = s.orders.WithinTx(ctx, func(ctx context.Context, tx order.Tx) error {
		created, err := tx.Upsert(ctx, o)
		if err != nil {
			return fmt.Errorf("upsert order: %w", err)
		}
		result.Created = created

		if !o.Cashback.IsPositive() {
			return nil
		}
		credited, err := tx.CreditBalance(ctx, balance.Entry{
			ID:        entryID,
			UserID:    o.UserID,
			OrderID:   o.ID,
			Kind:      balance.KindCashback,
			Amount:    o.Cashback,
			CreatedAt: o.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("credit cashback: %w", err)
		}
		result.CashbackCredited = credited
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return WebhookResult{}, err
	}

	s.logger.InfoContext(ctx, "checkout settled",
		"order_id", o.ID,
		"session_id", o.PaymentSessionID,
		"created", result.Created,
		"cashback_credited", result.CashbackCredited,
	)
	return result, nil
}

func checkoutMetadata(userID string, quote pricing.Quote, couponCode string) (map[string]string, error) {
	extras := make([]extraMeta, 0, len(quote.Extras))
	for _, e := range quote.Extras {
		extras = append(extras, extraMeta{Label: e.Label, Cost: e.Cost.StringFixed(2)})
	}
	encodedExtras, err := sonic.MarshalString(extras)
	if err != nil {
		return nil, fmt.Errorf("encode extras metadata: %w", err)
	}

	metadata := map[string]string{
		metaUserID:        userID,
		metaGame:          string(quote.Game),
		metaCurrentRank:   quote.Current.Label(),
		metaCurrentPoints: strconv.Itoa(quote.Current.Points),
		metaDesiredRank:   quote.Desired.Label(),
		metaDesiredPoints: strconv.Itoa(quote.Desired.Points),
		metaPrice:         quote.FinalPrice.StringFixed(2),
		metaCashback:      quote.Cashback.StringFixed(2),
		metaExtras:        encodedExtras,
	}
	if quote.CouponApplied {
		metadata[metaCouponCode] = strings.ToUpper(strings.TrimSpace(couponCode))
	}
	return metadata, nil
}

func orderFromEvent(event payment.Event, now time.Time) (order.Order, error) {
	invalid := func(reason string) error {
		return fmt.Errorf("%w: webhook %s: %s", ErrInvalidInput, event.ID, reason)
	}

	if !idgen.Valid(event.Reference) {
		return order.Order{}, invalid("client reference is not an order id")
	}
	meta := event.Metadata
	game, ok := pricing.ParseGame(meta[metaGame])
	if !ok {
		return order.Order{}, invalid("unknown game")
	}
	price, err := decimal.NewFromString(meta[metaPrice])
	if err != nil {
		return order.Order{}, invalid("price is missing")
	}
	if event.AmountTotal.IsPositive() && !event.AmountTotal.Equal(price) {
		return order.Order{}, invalid("paid amount does not match the order price")
	}
	cashback, err := decimal.NewFromString(meta[metaCashback])
	if err != nil {
		return order.Order{}, invalid("cashback is missing")
	}
	currentPoints, _ := strconv.Atoi(meta[metaCurrentPoints])
	desiredPoints, _ := strconv.Atoi(meta[metaDesiredPoints])

	var extras []extraMeta
	if raw := meta[metaExtras]; raw != "" {
		if err := sonic.UnmarshalString(raw, &extras); err != nil {
			return order.Order{}, invalid("extras are malformed")
		}
	}
	orderExtras := make([]order.Extra, 0, len(extras))
	for _, e := range extras {
		cost, err := decimal.NewFromString(e.Cost)
		if err != nil {
			return order.Order{}, invalid("extra cost is malformed")
		}
		orderExtras = append(orderExtras, order.Extra{Label: e.Label, Cost: cost})
	}

	o := order.Order{
		ID:               event.Reference,
		UserID:           meta[metaUserID],
		Game:             game,
		CurrentRank:      meta[metaCurrentRank],
		CurrentPoints:    currentPoints,
		DesiredRank:      meta[metaDesiredRank],
		DesiredPoints:    desiredPoints,
		Price:            price,
		Cashback:         cashback,
		Status:           order.StatusPending,
		PayoutStatus:     order.PayoutPending,
		Extras:           orderExtras,
		PaymentSessionID: event.SessionID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := o.Validate(); err != nil {
		return order.Order{}, invalid(err.Error())
	}
	return o, nil
}
