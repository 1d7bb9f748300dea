package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/rank-boost/internal/domain/coupon"
	"github.com/riskibarqy/rank-boost/internal/domain/pricing"
	basecache "github.com/riskibarqy/rank-boost/internal/platform/cache"
)

const latestCouponKeyPrefix = "coupon:latest:"

type cachedLatestCoupon struct {
	value  coupon.Coupon
	exists bool
}

// CouponRepository caches the active coupon per game in front of another
// repository. Every quote with a coupon code reads it, while writes are rare
// admin actions that evict the game's entry.
type CouponRepository struct {
	next  coupon.Repository
	cache *basecache.Store[cachedLatestCoupon]
}

func NewCouponRepository(next coupon.Repository, ttl time.Duration) *CouponRepository {
	return &CouponRepository{next: next, cache: basecache.NewStore[cachedLatestCoupon](ttl)}
}

func (r *CouponRepository) Create(ctx context.Context, c coupon.Coupon) error {
	if err := r.next.Create(ctx, c); err != nil {
		return err
	}
	r.cache.Delete(ctx, latestCouponKeyPrefix+string(c.Game))
	return nil
}

func (r *CouponRepository) Latest(ctx context.Context, game pricing.Game) (coupon.Coupon, bool, error) {
	cached, err := r.cache.GetOrLoad(ctx, latestCouponKeyPrefix+string(game), func(ctx context.Context) (cachedLatestCoupon, error) {
		item, exists, err := r.next.Latest(ctx, game)
		if err != nil {
			return cachedLatestCoupon{}, err
		}
		return cachedLatestCoupon{value: item, exists: exists}, nil
	})
	if err != nil {
		return coupon.Coupon{}, false, err
	}
	return cached.value, cached.exists, nil
}
