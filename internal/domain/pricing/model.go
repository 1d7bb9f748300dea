package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Game string

const (
	GameLeague   Game = "league"
	GameValorant Game = "valorant"
)

func ParseGame(raw string) (Game, bool) {
	switch Game(strings.ToLower(strings.TrimSpace(raw))) {
	case GameLeague:
		return GameLeague, true
	case GameValorant:
		return GameValorant, true
	default:
		return "", false
	}
}

// Position is a point on a game's ladder. Division is empty exactly when Tier
// is the capped tier, where Points measures progress instead.
type Position struct {
	Tier     string
	Division string
	Points   int
}

func (p Position) Label() string {
	if p.Division == "" {
		return p.Tier
	}
	return p.Tier + " " + p.Division
}

// Request is an immutable pricing input. Extras are extra keys; repeated keys
// count once.
type Request struct {
	Current    Position
	Desired    Position
	Extras     []string
	CouponCode string
}

// Coupon is the active discount code for a game.
type Coupon struct {
	Code    string
	Percent decimal.Decimal
}

type ExtraCost struct {
	Key   string
	Label string
	Cost  decimal.Decimal
}

// Quote is the priced result of a Request. An invalid request yields a zero
// quote with Valid=false and Reason set; it is never an error.
type Quote struct {
	Game    Game
	Current Position
	Desired Position

	Valid        bool
	Reason       string
	Unprescribed bool
	BelowMinimum bool

	LadderPrice     decimal.Decimal
	DiscountPercent decimal.Decimal
	BasePrice       decimal.Decimal
	Extras          []ExtraCost
	TimeTax         decimal.Decimal
	CappedJumpFee   decimal.Decimal
	TotalPrice      decimal.Decimal
	CouponApplied   bool
	CouponPercent   decimal.Decimal
	FinalPrice      decimal.Decimal
	Cashback        decimal.Decimal
	Currency        string
}

// Chargeable reports whether a checkout may be opened for the quote.
func (q Quote) Chargeable() bool {
	return q.Valid && !q.BelowMinimum && q.FinalPrice.IsPositive()
}

func (q Quote) ExtraLabels() []string {
	out := make([]string, 0, len(q.Extras))
	for _, e := range q.Extras {
		out = append(out, e.Label)
	}
	return out
}
