package user

import (
	"context"
	"errors"
)

// ErrDuplicate is returned by Create when the username or email is taken.
var ErrDuplicate = errors.New("username or email already taken")

// Repository describes account persistence needs from use cases. Balances are
// only changed through the order ledger, never written directly.
type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, userID string) (User, bool, error)
	GetByUsername(ctx context.Context, username string) (User, bool, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
