package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/rank-boost/internal/domain/user"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(_ context.Context, u user.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.users[u.ID]; exists {
		return fmt.Errorf("user %s already exists", u.ID)
	}
	for _, existing := range r.store.users {
		if strings.EqualFold(existing.Username, u.Username) || strings.EqualFold(existing.Email, u.Email) {
			return user.ErrDuplicate
		}
	}
	r.store.users[u.ID] = u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[userID]
	return u, ok, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (user.User, bool, error) {
	return r.find(func(u user.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (user.User, bool, error) {
	return r.find(func(u user.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[userID]
	if !ok {
		return fmt.Errorf("user %s not found", userID)
	}
	u.PasswordHash = passwordHash
	r.store.users[userID] = u
	return nil
}

func (r *UserRepository) find(match func(user.User) bool) (user.User, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if match(u) {
			return u, true, nil
		}
	}
	return user.User{}, false, nil
}
