package order

import (
	"fmt"
	"time"

	"github.com/riskibarqy/rank-boost/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusClaimed    Status = "Claimed"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

func ParseStatus(raw string) (Status, bool) {
	switch s := Status(raw); s {
	case StatusPending, StatusClaimed, StatusInProgress, StatusCompleted:
		return s, true
	default:
		return "", false
	}
}

type PayoutStatus string

const (
	PayoutPending PayoutStatus = "Pending"
	PayoutPaid    PayoutStatus = "Paid"
)

type Extra struct {
	Label string
	Cost  decimal.Decimal
}

// Order is a paid boosting job. It is created by a settled checkout and only
// moves through the transitions in lifecycle.go.
type Order struct {
	ID               string
	UserID           string
	Game             pricing.Game
	CurrentRank      string
	CurrentPoints    int
	DesiredRank      string
	DesiredPoints    int
	Price            decimal.Decimal
	Cashback         decimal.Decimal
	Status           Status
	PayoutStatus     PayoutStatus
	Extras           []Extra
	PaymentSessionID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (o Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("order id is required")
	}
	if o.UserID == "" {
		return fmt.Errorf("order user id is required")
	}
	if _, ok := pricing.ParseGame(string(o.Game)); !ok {
		return fmt.Errorf("unknown game %q", o.Game)
	}
	if o.CurrentRank == "" || o.DesiredRank == "" {
		return fmt.Errorf("order ranks are required")
	}
	if !o.Price.IsPositive() {
		return fmt.Errorf("order price must be positive")
	}
	if o.Cashback.IsNegative() {
		return fmt.Errorf("order cashback must not be negative")
	}
	if _, ok := ParseStatus(string(o.Status)); !ok {
		return fmt.Errorf("unknown order status %q", o.Status)
	}
	return nil
}

// Claim is a booster's exclusive assignment to an order.
type Claim struct {
	OrderID   string
	BoosterID string
	ClaimedAt time.Time
}
