package memory

import (
	"context"
	"strings"

	"github.com/riskibarqy/rank-boost/internal/domain/coupon"
	"github.com/riskibarqy/rank-boost/internal/domain/pricing"
)

type CouponRepository struct {
	store *Store
}

func NewCouponRepository(store *Store) *CouponRepository {
	return &CouponRepository{store: store}
}

func (r *CouponRepository) Create(_ context.Context, c coupon.Coupon) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c.Code = strings.ToUpper(c.Code)
	r.store.coupons = append(r.store.coupons, c)
	return nil
}

func (r *CouponRepository) Latest(_ context.Context, game pricing.Game) (coupon.Coupon, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var (
		latest coupon.Coupon
		found  bool
	)
	for _, c := range r.store.coupons {
		if c.Game != game {
			continue
		}
		if !found || !c.CreatedAt.Before(latest.CreatedAt) {
			latest, found = c, true
		}
	}
	return latest, found, nil
}
