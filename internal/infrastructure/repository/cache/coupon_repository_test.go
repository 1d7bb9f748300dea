package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/rank-boost/internal/domain/coupon"
	"github.com/riskibarqy/rank-boost/internal/domain/pricing"
	couponmock "github.com/riskibarqy/rank-boost/internal/mocks/domain/coupon"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCouponRepository_CachesLatestUntilCreate(t *testing.T) {
	ctx := context.Background()
	spring := coupon.Coupon{ID: "c-1", Game: pricing.GameLeague, Code: "SPRING10", DiscountPercent: decimal.NewFromInt(10)}
	summer := coupon.Coupon{ID: "c-2", Game: pricing.GameLeague, Code: "SUMMER20", DiscountPercent: decimal.NewFromInt(20)}

	next := couponmock.NewRepository(t)
	next.On("Latest", mock.Anything, pricing.GameLeague).Return(spring, true, nil).Once()
	next.On("Create", mock.Anything, summer).Return(nil).Once()
	next.On("Latest", mock.Anything, pricing.GameLeague).Return(summer, true, nil).Once()

	repo := NewCouponRepository(next, time.Minute)

	for range 3 {
		got, ok, err := repo.Latest(ctx, pricing.GameLeague)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "SPRING10", got.Code)
	}

	require.NoError(t, repo.Create(ctx, summer))

	got, ok, err := repo.Latest(ctx, pricing.GameLeague)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "SUMMER20", got.Code)
}

func TestCouponRepository_CachesMissingCoupon(t *testing.T) {
	next := couponmock.NewRepository(t)
	next.On("Latest", mock.Anything, pricing.GameValorant).Return(coupon.Coupon{}, false, nil).Once()

	repo := NewCouponRepository(next, time.Minute)
	for range 2 {
		_, ok, err := repo.Latest(context.Background(), pricing.GameValorant)
		require.NoError(t, err)
		require.False(t, ok)
	}
}
