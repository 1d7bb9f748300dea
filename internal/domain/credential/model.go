package credential

import (
	"context"
	"time"
)

// Credentials are the game account details a customer hands over for an
// order. The password is stored twice: sealed for reveal to the assigned
// booster, and bcrypt-hashed for verification.
type Credentials struct {
	OrderID        string
	AccountLogin   string
	PasswordSealed string
	PasswordHash   string
	UpdatedAt      time.Time
}

type Repository interface {
	Upsert(ctx context.Context, c Credentials) error
	Get(ctx context.Context, orderID string) (Credentials, bool, error)
}
