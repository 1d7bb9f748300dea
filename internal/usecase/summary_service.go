package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/rank-boost/internal/domain/balance"
	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
	"github.com/riskibarqy/rank-boost/internal/platform/logging"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
)

const summaryLedgerLimit = 50

type AccountSummary struct {
	UserID        string
	Username      string
	Role          user.Role
	Capabilities  []string
	Balance       decimal.Decimal
	Orders        []order.Order
	ClaimedOrders []order.Order
	Ledger        []balance.Entry
}

// SummaryService assembles the caller's account page from independent reads
// issued concurrently.
type SummaryService struct {
	users   user.Repository
	orders  order.Repository
	ledger  balance.Repository
	workers int
	logger  *logging.Logger
}

func NewSummaryService(users user.Repository, orders order.Repository, ledger balance.Repository, logger *logging.Logger) *SummaryService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SummaryService{
		users:   users,
		orders:  orders,
		ledger:  ledger,
		workers: 4,
		logger:  logger,
	}
}

func (s *SummaryService) Summary(ctx context.Context, actor user.Principal) (AccountSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SummaryService.Summary")
	defer span.End()

	if actor.IsZero() {
		return AccountSummary{}, fmt.Errorf("%w: login required", ErrUnauthorized)
	}

	var (
		account user.User
		found   bool
		out     AccountSummary
	)

	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(s.workers)
	p.Go(func(ctx context.Context) error {
		u, exists, err := s.users.GetByID(ctx, actor.UserID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		account, found = u, exists
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.orders.ListByUser(ctx, actor.UserID)
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		out.Orders = items
		return nil
	})
	if actor.Can(user.CapClaim) {
		p.Go(func(ctx context.Context) error {
			items, err := s.orders.ListClaimedBy(ctx, actor.UserID)
			if err != nil {
				return fmt.Errorf("list claimed orders: %w", err)
			}
			out.ClaimedOrders = items
			return nil
		})
	}
	p.Go(func(ctx context.Context) error {
		entries, err := s.ledger.ListByUser(ctx, actor.UserID, summaryLedgerLimit)
		if err != nil {
			return fmt.Errorf("list ledger: %w", err)
		}
		out.Ledger = entries
		return nil
	})

	if err := p.Wait(); err != nil {
		recordSpanError(span, err)
		return AccountSummary{}, err
	}
	if !found {
		return AccountSummary{}, fmt.Errorf("%w: user=%s", ErrNotFound, actor.UserID)
	}

	out.UserID = account.ID
	out.Username = account.Username
	out.Role = account.Role
	out.Capabilities = account.Role.Capabilities().Names()
	out.Balance = account.Balance
	return out, nil
}
