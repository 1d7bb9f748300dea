package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	reasonUnknownGame     = "unknown game"
	reasonInvalidPosition = "invalid rank or points"
	reasonNotAhead        = "desired rank must be above current rank"
)

// Compute prices a rank transition. It is pure: the same config, request and
// coupon always give the same quote. Bad input yields a zero quote, never an
// error or a panic. Amounts are carried at full precision and rounded to two
// places only when copied into the quote.
func Compute(cfg *GameConfig, req Request, coupon *Coupon) Quote {
	if cfg == nil {
		return invalidQuote("", reasonUnknownGame)
	}

	q := Quote{Game: cfg.Game, Currency: cfg.Currency}

	cur, ok := cfg.ParsePosition(req.Current.Label(), req.Current.Points)
	if !ok {
		return invalidQuote(cfg.Game, reasonInvalidPosition)
	}
	des, ok := cfg.ParsePosition(req.Desired.Label(), req.Desired.Points)
	if !ok {
		return invalidQuote(cfg.Game, reasonInvalidPosition)
	}
	q.Current, q.Desired = cur, des
	if !cfg.ahead(cur, des) {
		q.Reason = reasonNotAhead
		return zeroAmounts(q)
	}
	q.Valid = true

	curCapped, desCapped := cfg.IsCapped(cur), cfg.IsCapped(des)

	var ladder decimal.Decimal
	switch {
	case curCapped && desCapped:
		delta := des.Points - cur.Points
		ladder = cfg.CappedPointPrice.Mul(decimal.NewFromInt(int64(delta)))
		q.BelowMinimum = delta < cfg.MinPointsDelta
	case desCapped:
		topBelowCapped := cfg.positionAt(cfg.stepIndex(des) - 1)
		walked, complete := cfg.walk(cur, topBelowCapped)
		q.Unprescribed = !complete
		ladder = walked.
			Add(cfg.CappedEntryPrice).
			Add(cfg.CappedPointPrice.Mul(decimal.NewFromInt(int64(des.Points))))
	default:
		walked, complete := cfg.walk(cur, des)
		q.Unprescribed = !complete
		ladder = walked
	}
	q.LadderPrice = ladder.Round(2)

	discount := cfg.discountPercent(cur, des)
	running := ladder.Mul(hundred.Sub(discount)).Div(hundred)
	q.DiscountPercent = discount
	q.BasePrice = running.Round(2)

	seen := make(map[string]struct{}, len(req.Extras))
	for _, key := range req.Extras {
		key = strings.TrimSpace(key)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		extra, ok := cfg.ExtraByKey(key)
		if !ok {
			continue
		}
		cost := running.Mul(extra.Percent).Div(hundred)
		running = running.Add(cost)
		q.Extras = append(q.Extras, ExtraCost{Key: extra.Key, Label: extra.Label, Cost: cost.Round(2)})
	}

	var timeTax decimal.Decimal
	if cfg.timeTaxApplies(cur, des) {
		timeTax = running.Mul(cfg.TimeTaxPercent).Div(hundred)
	}
	jumpFee := cfg.cappedJumpFee(cur, des)
	total := running.Add(timeTax).Add(jumpFee)
	q.TimeTax = timeTax.Round(2)
	q.CappedJumpFee = jumpFee.Round(2)
	q.TotalPrice = total.Round(2)

	final := total
	if coupon != nil && couponMatches(*coupon, req.CouponCode) {
		q.CouponApplied = true
		q.CouponPercent = coupon.Percent
		final = total.Mul(hundred.Sub(coupon.Percent)).Div(hundred)
	}
	q.FinalPrice = final.Round(2)
	q.Cashback = q.FinalPrice.Mul(cfg.CashbackPercent).Div(hundred).Round(2)

	return q
}

// ahead reports whether des is strictly above cur on the ladder.
func (c *GameConfig) ahead(cur, des Position) bool {
	curCapped, desCapped := c.IsCapped(cur), c.IsCapped(des)
	switch {
	case curCapped && desCapped:
		return des.Points > cur.Points
	case curCapped:
		return false
	case desCapped:
		return true
	default:
		return c.stepIndex(des) > c.stepIndex(cur)
	}
}

// walk sums every adjacent ladder edge from one non-capped position to
// another. A missing edge adds nothing and marks the walk incomplete.
func (c *GameConfig) walk(from, to Position) (decimal.Decimal, bool) {
	sum := decimal.Zero
	complete := true
	for step := c.stepIndex(from); step < c.stepIndex(to); step++ {
		price, ok := c.ladder[edge{from: step, to: step + 1}]
		if !ok {
			complete = false
			continue
		}
		sum = sum.Add(price)
	}
	return sum, complete
}

// discountPercent picks the same-rank table for moves inside one tier and the
// next-rank table for a single promotion from the top division of a tier to
// the bottom division of the next one. Every other shape is undiscounted.
func (c *GameConfig) discountPercent(cur, des Position) decimal.Decimal {
	if c.IsCapped(cur) || c.IsCapped(des) {
		return decimal.Zero
	}

	band := c.band(cur.Points)
	if band < 0 {
		return decimal.Zero
	}

	curTier, desTier := c.tierIndex(cur.Tier), c.tierIndex(des.Tier)
	switch {
	case curTier == desTier:
		return c.SameRankDiscount[band]
	case desTier == curTier+1 &&
		c.divisionIndex(cur.Division) == len(c.Divisions)-1 &&
		c.divisionIndex(des.Division) == 0:
		return c.NextRankDiscount[band]
	default:
		return decimal.Zero
	}
}

func (c *GameConfig) band(points int) int {
	for i, upper := range c.DiscountBands {
		if points <= upper {
			return i
		}
	}
	return -1
}

func (c *GameConfig) timeTaxApplies(cur, des Position) bool {
	if c.TimeTaxPercent.IsZero() {
		return false
	}
	span := c.tierIndex(des.Tier) - c.tierIndex(cur.Tier) + 1
	if c.TimeTaxTierSpan > 0 && span == c.TimeTaxTierSpan {
		return true
	}
	if !c.IsCapped(des) || c.IsCapped(cur) {
		return false
	}
	for _, low := range c.LowTiers {
		if low == cur.Tier {
			return true
		}
	}
	return false
}

func (c *GameConfig) cappedJumpFee(cur, des Position) decimal.Decimal {
	if !c.IsCapped(des) || c.IsCapped(cur) {
		return decimal.Zero
	}
	multiplier, ok := c.CappedJumpMultipliers[cur.Tier]
	if !ok {
		return decimal.Zero
	}
	distance := decimal.NewFromInt(int64(c.cappedTierIndex() - c.tierIndex(cur.Tier)))
	return distance.Mul(c.CappedJumpPerTier).Mul(multiplier)
}

func couponMatches(coupon Coupon, code string) bool {
	code = strings.TrimSpace(code)
	return code != "" && strings.EqualFold(code, strings.TrimSpace(coupon.Code))
}

func invalidQuote(game Game, reason string) Quote {
	return zeroAmounts(Quote{Game: game, Reason: reason})
}

func zeroAmounts(q Quote) Quote {
	q.Valid = false
	q.LadderPrice = decimal.Zero
	q.DiscountPercent = decimal.Zero
	q.BasePrice = decimal.Zero
	q.TimeTax = decimal.Zero
	q.CappedJumpFee = decimal.Zero
	q.TotalPrice = decimal.Zero
	q.CouponPercent = decimal.Zero
	q.FinalPrice = decimal.Zero
	q.Cashback = decimal.Zero
	return q
}
