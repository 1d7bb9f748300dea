package passwordreset

import (
	"context"
	"time"
)

const TokenTTL = time.Hour

// Token is a single-use password reset grant.
type Token struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (t Token) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}

type Repository interface {
	Create(ctx context.Context, t Token) error
	Get(ctx context.Context, token string) (Token, bool, error)
	// MarkUsed flips used_at once; false means the token was already spent.
	MarkUsed(ctx context.Context, token string, at time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
