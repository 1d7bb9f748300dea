package order

import (
	"context"
	"time"

	"github.com/riskibarqy/rank-boost/internal/domain/balance"
)

// Repository reads orders outside transactions and opens transactions for
// lifecycle transitions.
type Repository interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	GetByID(ctx context.Context, orderID string) (Order, bool, error)
	GetClaim(ctx context.Context, orderID string) (Claim, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListByStatus(ctx context.Context, status Status) ([]Order, error)
	ListClaimedBy(ctx context.Context, boosterID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	ListClaimsBefore(ctx context.Context, cutoff time.Time) ([]Claim, error)
}

// Tx is a unit of work over one or more orders. Reads through GetForUpdate
// hold a row lock until the transaction ends.
type Tx interface {
	GetForUpdate(ctx context.Context, orderID string) (Order, bool, error)
	GetClaim(ctx context.Context, orderID string) (Claim, bool, error)
	// Upsert inserts o or, when the id already exists, refreshes only its
	// payment fields. created reports which branch ran.
	Upsert(ctx context.Context, o Order) (created bool, err error)
	Update(ctx context.Context, o Order) error
	InsertClaim(ctx context.Context, c Claim) error
	DeleteClaim(ctx context.Context, orderID string) error
	// CreditBalance records a ledger entry and adds its amount to the user's
	// balance. It returns false, changing nothing, when the (order, kind)
	// entry already exists.
	CreditBalance(ctx context.Context, e balance.Entry) (bool, error)
}
