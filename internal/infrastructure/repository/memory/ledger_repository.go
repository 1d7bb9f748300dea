package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/rank-boost/internal/domain/balance"
)

type LedgerRepository struct {
	store *Store
}

func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

func (r *LedgerRepository) ListByUser(_ context.Context, userID string, limit int) ([]balance.Entry, error) {
	r.store.mu.RLock()
	out := make([]balance.Entry, 0)
	for _, e := range r.store.ledger {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
