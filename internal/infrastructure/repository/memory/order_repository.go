package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/rank-boost/internal/domain/balance"
	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/shopspring/decimal"
)

type OrderRepository struct {
	store *Store
}

func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

// WithinTx runs fn with exclusive access to order state. Writes are staged on
// the transaction and applied together only when fn returns nil.
func (r *OrderRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx order.Tx) error) error {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &orderTx{
		store:   r.store,
		orders:  make(map[string]order.Order),
		claims:  make(map[string]*order.Claim),
		ledger:  make(map[ledgerKey]balance.Entry),
		credits: make(map[string]decimal.Decimal),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (r *OrderRepository) GetByID(_ context.Context, orderID string) (order.Order, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.orders[orderID]
	if !ok {
		return order.Order{}, false, nil
	}
	return cloneOrder(item), true, nil
}

func (r *OrderRepository) GetClaim(_ context.Context, orderID string) (order.Claim, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.claims[orderID]
	return c, ok, nil
}

func (r *OrderRepository) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	return r.list(func(o order.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepository) ListByStatus(_ context.Context, status order.Status) ([]order.Order, error) {
	return r.list(func(o order.Order) bool { return o.Status == status }), nil
}

func (r *OrderRepository) ListClaimedBy(_ context.Context, boosterID string) ([]order.Order, error) {
	r.store.mu.RLock()
	claimed := make(map[string]struct{})
	for orderID, c := range r.store.claims {
		if c.BoosterID == boosterID {
			claimed[orderID] = struct{}{}
		}
	}
	r.store.mu.RUnlock()

	return r.list(func(o order.Order) bool {
		_, ok := claimed[o.ID]
		return ok
	}), nil
}

func (r *OrderRepository) ListAll(_ context.Context) ([]order.Order, error) {
	return r.list(func(order.Order) bool { return true }), nil
}

func (r *OrderRepository) ListClaimsBefore(_ context.Context, cutoff time.Time) ([]order.Claim, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]order.Claim, 0)
	for _, c := range r.store.claims {
		if c.ClaimedAt.Before(cutoff) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimedAt.Before(out[j].ClaimedAt) })
	return out, nil
}

// list returns matching orders newest first.
func (r *OrderRepository) list(match func(order.Order) bool) []order.Order {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]order.Order, 0)
	for _, o := range r.store.orders {
		if match(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

type orderTx struct {
	store   *Store
	orders  map[string]order.Order
	claims  map[string]*order.Claim
	ledger  map[ledgerKey]balance.Entry
	credits map[string]decimal.Decimal
}

func (t *orderTx) GetForUpdate(_ context.Context, orderID string) (order.Order, bool, error) {
	if staged, ok := t.orders[orderID]; ok {
		return cloneOrder(staged), true, nil
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	item, ok := t.store.orders[orderID]
	if !ok {
		return order.Order{}, false, nil
	}
	return cloneOrder(item), true, nil
}

func (t *orderTx) GetClaim(_ context.Context, orderID string) (order.Claim, bool, error) {
	if staged, ok := t.claims[orderID]; ok {
		if staged == nil {
			return order.Claim{}, false, nil
		}
		return *staged, true, nil
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	c, ok := t.store.claims[orderID]
	return c, ok, nil
}

func (t *orderTx) Upsert(ctx context.Context, o order.Order) (bool, error) {
	existing, exists, err := t.GetForUpdate(ctx, o.ID)
	if err != nil {
		return false, err
	}
	if !exists {
		t.orders[o.ID] = cloneOrder(o)
		return true, nil
	}

	existing.PaymentSessionID = o.PaymentSessionID
	existing.UpdatedAt = o.UpdatedAt
	t.orders[o.ID] = existing
	return false, nil
}

func (t *orderTx) Update(ctx context.Context, o order.Order) error {
	_, exists, err := t.GetForUpdate(ctx, o.ID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("order %s not found", o.ID)
	}
	t.orders[o.ID] = cloneOrder(o)
	return nil
}

func (t *orderTx) InsertClaim(ctx context.Context, c order.Claim) error {
	if _, claimed, err := t.GetClaim(ctx, c.OrderID); err != nil {
		return err
	} else if claimed {
		return order.ErrAlreadyClaimed
	}
	claim := c
	t.claims[c.OrderID] = &claim
	return nil
}

func (t *orderTx) DeleteClaim(_ context.Context, orderID string) error {
	t.claims[orderID] = nil
	return nil
}

func (t *orderTx) CreditBalance(_ context.Context, e balance.Entry) (bool, error) {
	key := ledgerKey{orderID: e.OrderID, kind: e.Kind}
	if _, staged := t.ledger[key]; staged {
		return false, nil
	}

	t.store.mu.RLock()
	_, recorded := t.store.ledger[key]
	_, userExists := t.store.users[e.UserID]
	t.store.mu.RUnlock()

	if recorded {
		return false, nil
	}
	if !userExists {
		return false, fmt.Errorf("credit balance: user %s not found", e.UserID)
	}

	t.ledger[key] = e
	t.credits[e.UserID] = t.credits[e.UserID].Add(e.Amount)
	return true, nil
}

func (t *orderTx) commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for id, o := range t.orders {
		t.store.orders[id] = o
	}
	for id, c := range t.claims {
		if c == nil {
			delete(t.store.claims, id)
			continue
		}
		t.store.claims[id] = *c
	}
	for key, e := range t.ledger {
		t.store.ledger[key] = e
	}
	for userID, amount := range t.credits {
		u := t.store.users[userID]
		u.Balance = u.Balance.Add(amount)
		t.store.users[userID] = u
	}
}
