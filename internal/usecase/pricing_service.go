package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/rank-boost/internal/domain/coupon"
	"github.com/riskibarqy/rank-boost/internal/domain/pricing"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
	idgen "github.com/riskibarqy/rank-boost/internal/platform/id"
	"github.com/riskibarqy/rank-boost/internal/platform/logging"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

type QuoteInput struct {
	Game          string
	CurrentRank   string
	CurrentPoints int
	DesiredRank   string
	DesiredPoints int
	Extras        []string
	CouponCode    string
}

type CreateCouponInput struct {
	Game            string
	Code            string
	DiscountPercent string
}

// PricingService quotes rank transitions from the game catalog and the
// active coupon of each game.
type PricingService struct {
	catalog *pricing.Catalog
	coupons coupon.Repository
	idGen   idgen.Generator
	logger  *logging.Logger
	now     func() time.Time
}

func NewPricingService(
	catalog *pricing.Catalog,
	coupons coupon.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *PricingService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PricingService{
		catalog: catalog,
		coupons: coupons,
		idGen:   idGen,
		logger:  logger,
		now:     time.Now,
	}
}

// Quote never fails on bad ranks or an unknown game; those come back as an
// invalid zero quote. Errors are reserved for coupon lookup failures.
func (s *PricingService) Quote(ctx context.Context, input QuoteInput) (pricing.Quote, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PricingService.Quote", attribute.String("game", input.Game))
	defer span.End()

	game, _ := pricing.ParseGame(input.Game)
	cfg, ok := s.catalog.Get(game)
	if !ok {
		return pricing.Compute(nil, pricing.Request{}, nil), nil
	}

	var active *pricing.Coupon
	if strings.TrimSpace(input.CouponCode) != "" {
		latest, found, err := s.coupons.Latest(ctx, game)
		if err != nil {
			recordSpanError(span, err)
			return pricing.Quote{}, fmt.Errorf("get active coupon: %w", err)
		}
		if found {
			c := latest.Pricing()
			active = &c
		}
	}

	quote := pricing.Compute(cfg, pricing.Request{
		Current:    pricing.Position{Tier: strings.TrimSpace(input.CurrentRank), Points: input.CurrentPoints},
		Desired:    pricing.Position{Tier: strings.TrimSpace(input.DesiredRank), Points: input.DesiredPoints},
		Extras:     append([]string(nil), input.Extras...),
		CouponCode: input.CouponCode,
	}, active)

	if quote.Unprescribed {
		s.logger.WarnContext(ctx, "quote walked a ladder gap",
			"game", game,
			"current", quote.Current.Label(),
			"desired", quote.Desired.Label(),
		)
	}
	return quote, nil
}

func (s *PricingService) Game(_ context.Context, rawGame string) (*pricing.GameConfig, error) {
	game, ok := pricing.ParseGame(rawGame)
	if !ok {
		return nil, fmt.Errorf("%w: game=%s", ErrNotFound, rawGame)
	}
	cfg, ok := s.catalog.Get(game)
	if !ok {
		return nil, fmt.Errorf("%w: game=%s", ErrNotFound, rawGame)
	}
	return cfg, nil
}

func (s *PricingService) CreateCoupon(ctx context.Context, actor user.Principal, input CreateCouponInput) (coupon.Coupon, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PricingService.CreateCoupon")
	defer span.End()

	if !actor.Can(user.CapFullVisibility) {
		return coupon.Coupon{}, fmt.Errorf("%w: only admins can create coupons", ErrForbidden)
	}

	game, ok := pricing.ParseGame(input.Game)
	if !ok {
		return coupon.Coupon{}, fmt.Errorf("%w: unknown game %q", ErrInvalidInput, input.Game)
	}
	percent, err := decimal.NewFromString(strings.TrimSpace(input.DiscountPercent))
	if err != nil {
		return coupon.Coupon{}, fmt.Errorf("%w: discount percent is not a number", ErrInvalidInput)
	}

	couponID, err := s.idGen.NewID()
	if err != nil {
		return coupon.Coupon{}, fmt.Errorf("generate coupon id: %w", err)
	}
	c := coupon.Coupon{
		ID:              couponID,
		Game:            game,
		Code:            strings.ToUpper(strings.TrimSpace(input.Code)),
		DiscountPercent: percent,
		CreatedAt:       s.now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return coupon.Coupon{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.coupons.Create(ctx, c); err != nil {
		return coupon.Coupon{}, fmt.Errorf("create coupon: %w", err)
	}

	s.logger.InfoContext(ctx, "coupon created", "game", game, "code", c.Code, "admin_id", actor.UserID)
	return c, nil
}
