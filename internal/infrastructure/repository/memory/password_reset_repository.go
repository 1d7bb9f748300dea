package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/rank-boost/internal/domain/passwordreset"
)

type PasswordResetRepository struct {
	store *Store
}

func NewPasswordResetRepository(store *Store) *PasswordResetRepository {
	return &PasswordResetRepository{store: store}
}

func (r *PasswordResetRepository) Create(_ context.Context, t passwordreset.Token) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.resets[t.Token]; exists {
		return fmt.Errorf("reset token already exists")
	}
	r.store.resets[t.Token] = cloneToken(t)
	return nil
}

func (r *PasswordResetRepository) Get(_ context.Context, token string) (passwordreset.Token, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.resets[token]
	if !ok {
		return passwordreset.Token{}, false, nil
	}
	return cloneToken(t), true, nil
}

func (r *PasswordResetRepository) MarkUsed(_ context.Context, token string, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.store.resets[token]
	if !ok || t.UsedAt != nil {
		return false, nil
	}
	usedAt := at
	t.UsedAt = &usedAt
	r.store.resets[token] = t
	return true, nil
}

func (r *PasswordResetRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var removed int64
	for key, t := range r.store.resets {
		if t.UsedAt != nil || !now.Before(t.ExpiresAt) {
			delete(r.store.resets, key)
			removed++
		}
	}
	return removed, nil
}
