package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/rank-boost/internal/domain/coupon"
	"github.com/riskibarqy/rank-boost/internal/domain/pricing"
	qb "github.com/riskibarqy/rank-boost/internal/platform/querybuilder"
)

type CouponRepository struct {
	db *sqlx.DB
}

func NewCouponRepository(db *sqlx.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) Create(ctx context.Context, c coupon.Coupon) error {
	query, args, err := qb.InsertModel("coupons", couponTableModel{
		PublicID:        c.ID,
		Game:            string(c.Game),
		Code:            c.Code,
		DiscountPercent: c.DiscountPercent,
		CreatedAt:       c.CreatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert coupon query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

func (r *CouponRepository) Latest(ctx context.Context, game pricing.Game) (coupon.Coupon, bool, error) {
	query, args, err := qb.Select(qb.Columns(couponTableModel{})...).
		From("coupons").
		Where(qb.Eq("game", string(game))).
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return coupon.Coupon{}, false, fmt.Errorf("build latest coupon query: %w", err)
	}

	var row couponTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return coupon.Coupon{}, false, nil
		}
		return coupon.Coupon{}, false, fmt.Errorf("get latest coupon: %w", err)
	}
	return couponFromRow(row), true, nil
}
