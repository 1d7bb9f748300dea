package balance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindCashback Kind = "cashback"
	KindPayout   Kind = "payout"
)

// Entry is one ledger row. (OrderID, Kind) is unique, so a cashback or payout
// can be recorded at most once per order and the balance credit rides on the
// insert succeeding.
type Entry struct {
	ID        string
	UserID    string
	OrderID   string
	Kind      Kind
	Amount    decimal.Decimal
	CreatedAt time.Time
}

type Repository interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error)
}
