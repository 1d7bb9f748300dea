package coupon

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/rank-boost/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// Coupon is a discount code scoped to one game. The most recently created
// coupon of a game is the active one.
type Coupon struct {
	ID              string
	Game            pricing.Game
	Code            string
	DiscountPercent decimal.Decimal
	CreatedAt       time.Time
}

func (c Coupon) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("coupon id is required")
	}
	if _, ok := pricing.ParseGame(string(c.Game)); !ok {
		return fmt.Errorf("unknown game %q", c.Game)
	}
	code := strings.TrimSpace(c.Code)
	if code == "" || len(code) > 32 {
		return fmt.Errorf("coupon code must be between 1 and 32 characters")
	}
	if !c.DiscountPercent.IsPositive() || c.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("discount percent must be in (0, 100]")
	}
	return nil
}

func (c Coupon) Pricing() pricing.Coupon {
	return pricing.Coupon{Code: c.Code, Percent: c.DiscountPercent}
}
