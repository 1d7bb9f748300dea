package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/rank-boost/internal/domain/balance"
	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
	idgen "github.com/riskibarqy/rank-boost/internal/platform/id"
	"github.com/riskibarqy/rank-boost/internal/platform/logging"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const maxBulkPayouts = 100

type OrderServiceConfig struct {
	PayoutShare   decimal.Decimal
	PayoutWorkers int
}

type OrderDetail struct {
	Order order.Order
	Claim *order.Claim
}

type PayoutResult struct {
	Order     order.Order
	BoosterID string
	Amount    decimal.Decimal
}

type BulkPayoutOutcome struct {
	OrderID string
	Result  PayoutResult
	Err     error
}

// OrderService runs the order lifecycle. Every transition locks the order row,
// checks the caller's capabilities and the current state, and writes all of its
// effects in one transaction.
type OrderService struct {
	orders      order.Repository
	idGen       idgen.Generator
	payoutShare decimal.Decimal
	workers     int
	logger      *logging.Logger
	now         func() time.Time
}

func NewOrderService(orders order.Repository, idGen idgen.Generator, cfg OrderServiceConfig, logger *logging.Logger) *OrderService {
	if logger == nil {
		logger = logging.Default()
	}
	if !cfg.PayoutShare.IsPositive() {
		cfg.PayoutShare = decimal.RequireFromString("0.85")
	}
	if cfg.PayoutWorkers < 1 {
		cfg.PayoutWorkers = 4
	}

	return &OrderService{
		orders:      orders,
		idGen:       idGen,
		payoutShare: cfg.PayoutShare,
		workers:     cfg.PayoutWorkers,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *OrderService) ListOrders(ctx context.Context, actor user.Principal) ([]order.Order, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OrderService.ListOrders")
	defer span.End()

	switch {
	case actor.Can(user.CapFullVisibility):
		return s.orders.ListAll(ctx)
	case actor.Can(user.CapViewOwnOrders):
		return s.orders.ListByUser(ctx, actor.UserID)
	default:
		return nil, fmt.Errorf("%w: cannot list orders", ErrForbidden)
	}
}

func (s *OrderService) ListAvailable(ctx context.Context, actor user.Principal) ([]order.Order, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OrderService.ListAvailable")
	defer span.End()

	if !actor.Can(user.CapViewAvailablePool) {
		return nil, fmt.Errorf("%w: only boosters can browse available orders", ErrForbidden)
	}
	return s.orders.ListByStatus(ctx, order.StatusPending)
}

func (s *OrderService) ListClaimed(ctx context.Context, actor user.Principal) ([]order.Order, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OrderService.ListClaimed")
	defer span.End()

	if !actor.Can(user.CapClaim) {
		return nil, fmt.Errorf("%w: only boosters have claimed orders", ErrForbidden)
	}
	return s.orders.ListClaimedBy(ctx, actor.UserID)
}

func (s *OrderService) Get(ctx context.Context, actor user.Principal, orderID string) (OrderDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OrderService.Get", attribute.String("order_id", orderID))
	defer span.End()

	p, err := loadParticipation(ctx, s.orders, actor, strings.TrimSpace(orderID))
	if err != nil {
		return OrderDetail{}, err
	}
	inPool := p.order.Status == order.StatusPending && actor.Can(user.CapViewAvailablePool)
	if !p.participant() && !inPool {
		return OrderDetail{}, fmt.Errorf("%w: order=%s", ErrForbidden, orderID)
	}

	detail := OrderDetail{Order: p.order}
	if p.claimed {
		claim := p.claim
		detail.Claim = &claim
	}
	return detail, nil
}

func (s *OrderService) Claim(ctx context.Context, actor user.Principal, orderID string) (order.Order, error) {
	if !actor.Can(user.CapClaim) {
		return order.Order{}, fmt.Errorf("%w: only boosters can claim orders", ErrForbidden)
	}

	return s.transition(ctx, "usecase.OrderService.Claim", orderID, func(ctx context.Context, tx order.Tx, st *lockedOrder) error {
		if err := st.order.Claim(st.claimed, st.now); err != nil {
			return lifecycleError(err)
		}
		if err := tx.Update(ctx, st.order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		err := tx.InsertClaim(ctx, order.Claim{OrderID: st.order.ID, BoosterID: actor.UserID, ClaimedAt: st.now})
		if err != nil {
			if errors.Is(err, order.ErrAlreadyClaimed) {
				return lifecycleError(err)
			}
			return fmt.Errorf("insert claim: %w", err)
		}
		s.logger.InfoContext(ctx, "order claimed", "order_id", st.order.ID, "booster_id", actor.UserID)
		return nil
	})
}

func (s *OrderService) Unclaim(ctx context.Context, actor user.Principal, orderID string) (order.Order, error) {
	if !actor.Can(user.CapClaim) {
		return order.Order{}, fmt.Errorf("%w: only boosters can release orders", ErrForbidden)
	}

	return s.transition(ctx, "usecase.OrderService.Unclaim", orderID, func(ctx context.Context, tx order.Tx, st *lockedOrder) error {
		if err := st.requireClaimOwner(actor); err != nil {
			return err
		}
		if err := st.order.Unclaim(st.now); err != nil {
			return lifecycleError(err)
		}
		if err := tx.Update(ctx, st.order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if err := tx.DeleteClaim(ctx, st.order.ID); err != nil {
			return fmt.Errorf("delete claim: %w", err)
		}
		s.logger.InfoContext(ctx, "order released", "order_id", st.order.ID, "booster_id", st.claim.BoosterID, "actor_id", actor.UserID)
		return nil
	})
}

func (s *OrderService) Start(ctx context.Context, actor user.Principal, orderID string) (order.Order, error) {
	if !actor.Can(user.CapClaim) {
		return order.Order{}, fmt.Errorf("%w: only boosters can start orders", ErrForbidden)
	}

	return s.transition(ctx, "usecase.OrderService.Start", orderID, func(ctx context.Context, tx order.Tx, st *lockedOrder) error {
		if err := st.requireClaimOwner(actor); err != nil {
			return err
		}
		if err := st.order.Start(st.now); err != nil {
			return lifecycleError(err)
		}
		if err := tx.Update(ctx, st.order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		return nil
	})
}

func (s *OrderService) Complete(ctx context.Context, actor user.Principal, orderID string) (order.Order, error) {
	if !actor.Can(user.CapComplete) {
		return order.Order{}, fmt.Errorf("%w: only boosters can complete orders", ErrForbidden)
	}

	return s.transition(ctx, "usecase.OrderService.Complete", orderID, func(ctx context.Context, tx order.Tx, st *lockedOrder) error {
		if err := st.requireClaimOwner(actor); err != nil {
			return err
		}
		if err := st.order.Complete(st.now); err != nil {
			return lifecycleError(err)
		}
		if err := tx.Update(ctx, st.order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		s.logger.InfoContext(ctx, "order completed", "order_id", st.order.ID, "actor_id", actor.UserID)
		return nil
	})
}

func (s *OrderService) ApprovePayout(ctx context.Context, actor user.Principal, orderID string) (PayoutResult, error) {
	if !actor.Can(user.CapApprovePayout) {
		return PayoutResult{}, fmt.Errorf("%w: only admins can approve payouts", ErrForbidden)
	}

	entryID, err := s.idGen.NewID()
	if err != nil {
		return PayoutResult{}, fmt.Errorf("generate ledger id: %w", err)
	}

	var result PayoutResult
	updated, err := s.transition(ctx, "usecase.OrderService.ApprovePayout", orderID, func(ctx context.Context, tx order.Tx, st *lockedOrder) error {
		if err := st.order.ApprovePayout(st.claimed, st.now); err != nil {
			return lifecycleError(err)
		}
		if err := tx.Update(ctx, st.order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		amount := st.order.PayoutAmount(s.payoutShare)
		credited, err := tx.CreditBalance(ctx, balance.Entry{
			ID:        entryID,
			UserID:    st.claim.BoosterID,
			OrderID:   st.order.ID,
			Kind:      balance.KindPayout,
			Amount:    amount,
			CreatedAt: st.now,
		})
		if err != nil {
			return fmt.Errorf("credit payout: %w", err)
		}
		if !credited {
			return fmt.Errorf("%w: payout for order %s is already recorded", ErrConflict, st.order.ID)
		}

		result = PayoutResult{BoosterID: st.claim.BoosterID, Amount: amount}
		return nil
	})
	if err != nil {
		return PayoutResult{}, err
	}

	result.Order = updated
	s.logger.InfoContext(ctx, "payout approved",
		"order_id", updated.ID,
		"booster_id", result.BoosterID,
		"amount", result.Amount.StringFixed(2),
		"admin_id", actor.UserID,
	)
	return result, nil
}

// BulkApprovePayouts approves each order in its own transaction on a bounded
// worker pool. Failures are reported per order and do not stop the batch.
func (s *OrderService) BulkApprovePayouts(ctx context.Context, actor user.Principal, orderIDs []string) ([]BulkPayoutOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OrderService.BulkApprovePayouts")
	defer span.End()

	if !actor.Can(user.CapApprovePayout) {
		return nil, fmt.Errorf("%w: only admins can approve payouts", ErrForbidden)
	}

	ids := make([]string, 0, len(orderIDs))
	for _, id := range orderIDs {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: order ids are required", ErrInvalidInput)
	}
	if len(ids) > maxBulkPayouts {
		return nil, fmt.Errorf("%w: at most %d orders per batch", ErrInvalidInput, maxBulkPayouts)
	}

	pool, err := ants.NewPool(min(s.workers, len(ids)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	outcomes := make([]BulkPayoutOutcome, len(ids))
	var workers sync.WaitGroup
	for i, id := range ids {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			result, err := s.ApprovePayout(ctx, actor, id)
			outcomes[i] = BulkPayoutOutcome{OrderID: id, Result: result, Err: err}
		}); err != nil {
			workers.Done()
			outcomes[i] = BulkPayoutOutcome{OrderID: id, Err: fmt.Errorf("submit payout to worker pool: %w", err)}
		}
	}
	workers.Wait()

	approved := 0
	for _, o := range outcomes {
		if o.Err == nil {
			approved++
		}
	}
	s.logger.InfoContext(ctx, "bulk payout finished", "requested", len(ids), "approved", approved, "admin_id", actor.UserID)
	return outcomes, nil
}

type lockedOrder struct {
	order   order.Order
	claim   order.Claim
	claimed bool
	now     time.Time
}

// requireClaimOwner rejects actors acting on a claim that is not theirs.
// Admins may act on any claim. An order without a claim falls through to the
// state checks.
func (l *lockedOrder) requireClaimOwner(actor user.Principal) error {
	if !l.claimed || actor.Can(user.CapFullVisibility) || l.claim.BoosterID == actor.UserID {
		return nil
	}
	return fmt.Errorf("%w: order %s is claimed by another booster", ErrForbidden, l.order.ID)
}

func (s *OrderService) transition(
	ctx context.Context,
	spanName string,
	orderID string,
	fn func(ctx context.Context, tx order.Tx, st *lockedOrder) error,
) (order.Order, error) {
	ctx, span := startUsecaseSpan(ctx, spanName, attribute.String("order_id", orderID))
	defer span.End()

	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return order.Order{}, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}

	var out order.Order
	err := s.orders.WithinTx(ctx, func(ctx context.Context, tx order.Tx) error {
		o, exists, err := tx.GetForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: order=%s", ErrNotFound, orderID)
		}
		claim, claimed, err := tx.GetClaim(ctx, orderID)
		if err != nil {
			return fmt.Errorf("get claim: %w", err)
		}

		st := &lockedOrder{order: o, claim: claim, claimed: claimed, now: s.now().UTC()}
		if err := fn(ctx, tx, st); err != nil {
			return err
		}
		out = st.order
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return order.Order{}, err
	}
	return out, nil
}

func lifecycleError(err error) error {
	switch {
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrAlreadyClaimed),
		errors.Is(err, order.ErrNotClaimed),
		errors.Is(err, order.ErrPayoutSettled):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}
