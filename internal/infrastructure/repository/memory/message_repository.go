package memory

import (
	"context"

	"github.com/riskibarqy/rank-boost/internal/domain/message"
)

type MessageRepository struct {
	store *Store
}

func NewMessageRepository(store *Store) *MessageRepository {
	return &MessageRepository{store: store}
}

func (r *MessageRepository) Create(_ context.Context, m message.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.messages = append(r.store.messages, m)
	return nil
}

// ListByOrder returns the last limit messages of the order in posting order.
func (r *MessageRepository) ListByOrder(_ context.Context, orderID string, limit int) ([]message.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]message.Message, 0)
	for _, m := range r.store.messages {
		if m.OrderID == orderID {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
