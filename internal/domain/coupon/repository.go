package coupon

import (
	"context"

	"github.com/riskibarqy/rank-boost/internal/domain/pricing"
)

type Repository interface {
	Create(ctx context.Context, c Coupon) error
	Latest(ctx context.Context, game pricing.Game) (Coupon, bool, error)
}
