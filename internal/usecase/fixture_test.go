package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/riskibarqy/rank-boost/internal/domain/pricing"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
	"github.com/riskibarqy/rank-boost/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/rank-boost/internal/platform/id"
	"github.com/riskibarqy/rank-boost/internal/platform/logging"
	"github.com/shopspring/decimal"
)

var fixtureNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type testFixture struct {
	store       *memory.Store
	users       *memory.UserRepository
	orders      *memory.OrderRepository
	ledger      *memory.LedgerRepository
	coupons     *memory.CouponRepository
	credentials *memory.CredentialRepository
	messages    *memory.MessageRepository
	resets      *memory.PasswordResetRepository
	idGen       idgen.Generator
	logger      *logging.Logger
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	store := memory.NewStore()
	return &testFixture{
		store:       store,
		users:       memory.NewUserRepository(store),
		orders:      memory.NewOrderRepository(store),
		ledger:      memory.NewLedgerRepository(store),
		coupons:     memory.NewCouponRepository(store),
		credentials: memory.NewCredentialRepository(store),
		messages:    memory.NewMessageRepository(store),
		resets:      memory.NewPasswordResetRepository(store),
		idGen:       idgen.NewUUIDGenerator(),
		logger:      logging.NewNop(),
	}
}

func (f *testFixture) addUser(t *testing.T, id string, role user.Role) user.Principal {
	t.Helper()

	u := user.User{
		ID:        id,
		Username:  id,
		Email:     id + "@example.com",
		Role:      role,
		Balance:   decimal.Zero,
		CreatedAt: fixtureNow,
		UpdatedAt: fixtureNow,
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	return u.Principal()
}

// addOrder stores an order in the given state. A non-empty boosterID also
// records the claim.
func (f *testFixture) addOrder(t *testing.T, id, ownerID string, status order.Status, boosterID string) order.Order {
	t.Helper()

	o := order.Order{
		ID:           id,
		UserID:       ownerID,
		Game:         pricing.GameLeague,
		CurrentRank:  "Silver III",
		DesiredRank:  "Gold I",
		Price:        decimal.RequireFromString("82.00"),
		Cashback:     decimal.RequireFromString("2.46"),
		Status:       status,
		PayoutStatus: order.PayoutPending,
		CreatedAt:    fixtureNow,
		UpdatedAt:    fixtureNow,
	}
	err := f.orders.WithinTx(context.Background(), func(ctx context.Context, tx order.Tx) error {
		if _, err := tx.Upsert(ctx, o); err != nil {
			return err
		}
		if boosterID == "" {
			return nil
		}
		return tx.InsertClaim(ctx, order.Claim{OrderID: id, BoosterID: boosterID, ClaimedAt: fixtureNow})
	})
	if err != nil {
		t.Fatalf("seed order %s: %v", id, err)
	}
	return o
}

func (f *testFixture) balanceOf(t *testing.T, userID string) string {
	t.Helper()

	u, ok, err := f.users.GetByID(context.Background(), userID)
	if err != nil || !ok {
		t.Fatalf("get user %s: ok=%v err=%v", userID, ok, err)
	}
	return u.Balance.StringFixed(2)
}

func (f *testFixture) catalog(t *testing.T) *pricing.Catalog {
	t.Helper()

	catalog, err := pricing.LoadCatalog("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return catalog
}
