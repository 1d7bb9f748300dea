package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
	"github.com/shopspring/decimal"
)

func newOrderService(f *testFixture) *OrderService {
	return NewOrderService(f.orders, f.idGen, OrderServiceConfig{
		PayoutShare:   decimal.RequireFromString("0.85"),
		PayoutWorkers: 2,
	}, f.logger)
}

func TestOrderService_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	f := newTestFixture(t)
	f.addUser(t, "customer", user.RoleUser)
	f.addOrder(t, "o-1", "customer", order.StatusPending, "")

	const boosters = 8
	principals := make([]user.Principal, boosters)
	for i := range principals {
		principals[i] = f.addUser(t, "booster-"+string(rune('a'+i)), user.RoleBooster)
	}

	service := newOrderService(f)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   int
		conflicts int
	)
	for _, p := range principals {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Claim(context.Background(), p, "o-1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected claim error: %v", err)
			}
		}()
	}
	wg.Wait()

	if winners != 1 || conflicts != boosters-1 {
		t.Fatalf("winners=%d conflicts=%d, want 1 and %d", winners, conflicts, boosters-1)
	}
	got, _, _ := f.orders.GetByID(context.Background(), "o-1")
	if got.Status != order.StatusClaimed {
		t.Fatalf("status=%s, want Claimed", got.Status)
	}
}

func TestOrderService_LifecycleToPayout(t *testing.T) {
	f := newTestFixture(t)
	f.addUser(t, "customer", user.RoleUser)
	booster := f.addUser(t, "booster", user.RoleBooster)
	admin := f.addUser(t, "admin", user.RoleAdmin)
	f.addOrder(t, "o-1", "customer", order.StatusPending, "")
	service := newOrderService(f)
	ctx := context.Background()

	if _, err := service.Claim(ctx, booster, "o-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := service.Start(ctx, booster, "o-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.Complete(ctx, booster, "o-1"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	result, err := service.ApprovePayout(ctx, admin, "o-1")
	if err != nil {
		t.Fatalf("approve payout: %v", err)
	}
	if result.Amount.StringFixed(2) != "69.70" {
		t.Fatalf("payout=%s, want 69.70", result.Amount.StringFixed(2))
	}
	if result.Order.PayoutStatus != order.PayoutPaid {
		t.Fatalf("payout status=%s, want Paid", result.Order.PayoutStatus)
	}

	if _, err := service.ApprovePayout(ctx, admin, "o-1"); !errors.Is(err, ErrConflict) {
		t.Fatalf("second approval err=%v, want ErrConflict", err)
	}
	if got := f.balanceOf(t, "booster"); got != "69.70" {
		t.Fatalf("booster balance=%s, want 69.70", got)
	}
}

func TestOrderService_AuthorizationAndState(t *testing.T) {
	f := newTestFixture(t)
	customer := f.addUser(t, "customer", user.RoleUser)
	owner := f.addUser(t, "booster-1", user.RoleBooster)
	other := f.addUser(t, "booster-2", user.RoleBooster)
	admin := f.addUser(t, "admin", user.RoleAdmin)
	f.addOrder(t, "claimed", "customer", order.StatusClaimed, "booster-1")
	f.addOrder(t, "pending", "customer", order.StatusPending, "")
	f.addOrder(t, "completed", "customer", order.StatusCompleted, "booster-1")
	service := newOrderService(f)
	ctx := context.Background()

	cases := []struct {
		name string
		run  func() error
		want error
	}{
		{"customer cannot claim", func() error { _, err := service.Claim(ctx, customer, "pending"); return err }, ErrForbidden},
		{"other booster cannot start", func() error { _, err := service.Start(ctx, other, "claimed"); return err }, ErrForbidden},
		{"other booster cannot unclaim", func() error { _, err := service.Unclaim(ctx, other, "claimed"); return err }, ErrForbidden},
		{"cannot start pending", func() error { _, err := service.Start(ctx, owner, "pending"); return err }, ErrConflict},
		{"cannot complete pending", func() error { _, err := service.Complete(ctx, owner, "pending"); return err }, ErrConflict},
		{"booster cannot approve", func() error { _, err := service.ApprovePayout(ctx, owner, "completed"); return err }, ErrForbidden},
		{"cannot pay unfinished", func() error { _, err := service.ApprovePayout(ctx, admin, "claimed"); return err }, ErrConflict},
		{"missing order", func() error { _, err := service.Claim(ctx, owner, "missing"); return err }, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, tc.want) {
				t.Fatalf("err=%v, want %v", err, tc.want)
			}
		})
	}

	if _, err := service.Unclaim(ctx, admin, "claimed"); err != nil {
		t.Fatalf("admin unclaim: %v", err)
	}
	got, _, _ := f.orders.GetByID(ctx, "claimed")
	if got.Status != order.StatusPending {
		t.Fatalf("status=%s after unclaim, want Pending", got.Status)
	}
	if _, claimed, _ := f.orders.GetClaim(ctx, "claimed"); claimed {
		t.Fatalf("claim row must be removed on unclaim")
	}
}

func TestOrderService_Visibility(t *testing.T) {
	f := newTestFixture(t)
	customer := f.addUser(t, "customer", user.RoleUser)
	stranger := f.addUser(t, "stranger", user.RoleUser)
	booster := f.addUser(t, "booster", user.RoleBooster)
	admin := f.addUser(t, "admin", user.RoleAdmin)
	f.addOrder(t, "pending", "customer", order.StatusPending, "")
	f.addOrder(t, "mine", "customer", order.StatusClaimed, "booster")
	f.addOrder(t, "theirs", "stranger", order.StatusClaimed, "admin")
	service := newOrderService(f)
	ctx := context.Background()

	own, err := service.ListOrders(ctx, customer)
	if err != nil || len(own) != 2 {
		t.Fatalf("customer orders=%d err=%v, want 2", len(own), err)
	}
	all, err := service.ListOrders(ctx, admin)
	if err != nil || len(all) != 3 {
		t.Fatalf("admin orders=%d err=%v, want 3", len(all), err)
	}
	if _, err := service.ListAvailable(ctx, customer); !errors.Is(err, ErrForbidden) {
		t.Fatalf("customer pool err=%v, want ErrForbidden", err)
	}
	pool, err := service.ListAvailable(ctx, booster)
	if err != nil || len(pool) != 1 {
		t.Fatalf("pool=%d err=%v, want 1", len(pool), err)
	}
	claimed, err := service.ListClaimed(ctx, booster)
	if err != nil || len(claimed) != 1 || claimed[0].ID != "mine" {
		t.Fatalf("claimed=%v err=%v", claimed, err)
	}

	if _, err := service.Get(ctx, booster, "pending"); err != nil {
		t.Fatalf("booster should see pool order: %v", err)
	}
	if _, err := service.Get(ctx, booster, "theirs"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("booster sees foreign claimed order: err=%v", err)
	}
	if _, err := service.Get(ctx, stranger, "mine"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger sees other customer's order: err=%v", err)
	}
	detail, err := service.Get(ctx, customer, "mine")
	if err != nil || detail.Claim == nil || detail.Claim.BoosterID != "booster" {
		t.Fatalf("detail=%+v err=%v", detail, err)
	}
}

func TestOrderService_BulkApprovePayouts(t *testing.T) {
	f := newTestFixture(t)
	f.addUser(t, "customer", user.RoleUser)
	f.addUser(t, "booster", user.RoleBooster)
	admin := f.addUser(t, "admin", user.RoleAdmin)
	f.addOrder(t, "done-1", "customer", order.StatusCompleted, "booster")
	f.addOrder(t, "done-2", "customer", order.StatusCompleted, "booster")
	f.addOrder(t, "open", "customer", order.StatusInProgress, "booster")
	service := newOrderService(f)

	outcomes, err := service.BulkApprovePayouts(context.Background(), admin, []string{"done-1", "done-2", "open", "done-1", " "})
	if err != nil {
		t.Fatalf("bulk approve: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("outcomes=%d, want 3 after dedupe", len(outcomes))
	}
	for _, o := range outcomes {
		wantErr := o.OrderID == "open"
		if (o.Err != nil) != wantErr {
			t.Fatalf("order %s err=%v", o.OrderID, o.Err)
		}
	}
	if got := f.balanceOf(t, "booster"); got != "139.40" {
		t.Fatalf("booster balance=%s, want 139.40", got)
	}

	if _, err := service.BulkApprovePayouts(context.Background(), admin, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty batch err=%v, want ErrInvalidInput", err)
	}
}
