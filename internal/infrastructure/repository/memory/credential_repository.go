package memory

import (
	"context"

	"github.com/riskibarqy/rank-boost/internal/domain/credential"
)

type CredentialRepository struct {
	store *Store
}

func NewCredentialRepository(store *Store) *CredentialRepository {
	return &CredentialRepository{store: store}
}

func (r *CredentialRepository) Upsert(_ context.Context, c credential.Credentials) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.credentials[c.OrderID] = c
	return nil
}

func (r *CredentialRepository) Get(_ context.Context, orderID string) (credential.Credentials, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.credentials[orderID]
	return c, ok, nil
}
