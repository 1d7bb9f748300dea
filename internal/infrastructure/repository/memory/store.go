package memory

import (
	"sync"

	"github.com/riskibarqy/rank-boost/internal/domain/balance"
	"github.com/riskibarqy/rank-boost/internal/domain/coupon"
	"github.com/riskibarqy/rank-boost/internal/domain/credential"
	"github.com/riskibarqy/rank-boost/internal/domain/message"
	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/riskibarqy/rank-boost/internal/domain/passwordreset"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
)

// Store is the shared state behind the in-memory repositories. Order
// transactions are serialized by txMu and stage their writes until commit,
// so a failed transaction leaves no trace.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	users       map[string]user.User
	orders      map[string]order.Order
	claims      map[string]order.Claim
	ledger      map[ledgerKey]balance.Entry
	coupons     []coupon.Coupon
	credentials map[string]credential.Credentials
	messages    []message.Message
	resets      map[string]passwordreset.Token
}

type ledgerKey struct {
	orderID string
	kind    balance.Kind
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]user.User),
		orders:      make(map[string]order.Order),
		claims:      make(map[string]order.Claim),
		ledger:      make(map[ledgerKey]balance.Entry),
		credentials: make(map[string]credential.Credentials),
		resets:      make(map[string]passwordreset.Token),
	}
}

func cloneOrder(item order.Order) order.Order {
	copied := item
	copied.Extras = append([]order.Extra(nil), item.Extras...)
	return copied
}

func cloneToken(item passwordreset.Token) passwordreset.Token {
	copied := item
	if item.UsedAt != nil {
		usedAt := *item.UsedAt
		copied.UsedAt = &usedAt
	}
	return copied
}
