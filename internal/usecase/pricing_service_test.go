package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/rank-boost/internal/domain/user"
)

func TestPricingService_QuoteAppliesActiveCoupon(t *testing.T) {
	f := newTestFixture(t)
	admin := f.addUser(t, "admin", user.RoleAdmin)
	service := NewPricingService(f.catalog(t), f.coupons, f.idGen, f.logger)
	ctx := context.Background()

	if _, err := service.CreateCoupon(ctx, admin, CreateCouponInput{Game: "league", Code: "spring10", DiscountPercent: "10"}); err != nil {
		t.Fatalf("create coupon: %v", err)
	}

	input := silverToGold()
	input.CouponCode = "Spring10"
	quote, err := service.Quote(ctx, input)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !quote.CouponApplied || quote.FinalPrice.StringFixed(2) != "73.80" || quote.Cashback.StringFixed(2) != "2.21" {
		t.Fatalf("unexpected quote: applied=%v final=%s cashback=%s", quote.CouponApplied, quote.FinalPrice.StringFixed(2), quote.Cashback.StringFixed(2))
	}

	input.CouponCode = "WINTER"
	quote, err = service.Quote(ctx, input)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.CouponApplied || quote.FinalPrice.StringFixed(2) != "82.00" {
		t.Fatalf("unknown coupon must not discount: final=%s", quote.FinalPrice.StringFixed(2))
	}
}

func TestPricingService_UnknownGameIsZeroQuote(t *testing.T) {
	f := newTestFixture(t)
	service := NewPricingService(f.catalog(t), f.coupons, f.idGen, f.logger)

	quote, err := service.Quote(context.Background(), QuoteInput{Game: "chess", CurrentRank: "Gold I", DesiredRank: "Gold II"})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.Valid || !quote.FinalPrice.IsZero() {
		t.Fatalf("unknown game must give a zero quote: %+v", quote)
	}
	if _, err := service.Game(context.Background(), "chess"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("game lookup err=%v, want ErrNotFound", err)
	}
}

func TestPricingService_CreateCouponRequiresAdmin(t *testing.T) {
	f := newTestFixture(t)
	booster := f.addUser(t, "booster", user.RoleBooster)
	admin := f.addUser(t, "admin", user.RoleAdmin)
	service := NewPricingService(f.catalog(t), f.coupons, f.idGen, f.logger)
	ctx := context.Background()

	if _, err := service.CreateCoupon(ctx, booster, CreateCouponInput{Game: "league", Code: "X", DiscountPercent: "10"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("booster coupon err=%v, want ErrForbidden", err)
	}
	for _, in := range []CreateCouponInput{
		{Game: "chess", Code: "X", DiscountPercent: "10"},
		{Game: "league", Code: "X", DiscountPercent: "abc"},
		{Game: "league", Code: "X", DiscountPercent: "150"},
		{Game: "league", Code: " ", DiscountPercent: "10"},
	} {
		if _, err := service.CreateCoupon(ctx, admin, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("coupon %+v err=%v, want ErrInvalidInput", in, err)
		}
	}
}
