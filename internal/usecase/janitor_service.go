package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/riskibarqy/rank-boost/internal/domain/passwordreset"
	"github.com/riskibarqy/rank-boost/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// JanitorService holds the periodic maintenance jobs.
type JanitorService struct {
	resets          passwordreset.Repository
	orders          order.Repository
	staleClaimAfter time.Duration
	logger          *logging.Logger
	now             func() time.Time
}

func NewJanitorService(resets passwordreset.Repository, orders order.Repository, staleClaimAfter time.Duration, logger *logging.Logger) *JanitorService {
	if logger == nil {
		logger = logging.Default()
	}
	if staleClaimAfter <= 0 {
		staleClaimAfter = 72 * time.Hour
	}

	return &JanitorService{
		resets:          resets,
		orders:          orders,
		staleClaimAfter: staleClaimAfter,
		logger:          logger,
		now:             time.Now,
	}
}

// PurgeResetTokens removes reset tokens that are expired or already used.
func (s *JanitorService) PurgeResetTokens(ctx context.Context) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JanitorService.PurgeResetTokens")
	defer span.End()

	removed, err := s.resets.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		recordSpanError(span, err)
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}
	span.SetAttributes(attribute.Int64("reset_tokens.removed", removed))
	if removed > 0 {
		s.logger.InfoContext(ctx, "purged password reset tokens", "removed", removed)
	}
	return removed, nil
}

// ReportStaleClaims logs claims held longer than the configured window. The
// claims are left in place.
func (s *JanitorService) ReportStaleClaims(ctx context.Context) ([]order.Claim, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JanitorService.ReportStaleClaims")
	defer span.End()

	now := s.now().UTC()
	claims, err := s.orders.ListClaimsBefore(ctx, now.Add(-s.staleClaimAfter))
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("list stale claims: %w", err)
	}
	for _, c := range claims {
		s.logger.WarnContext(ctx, "stale order claim",
			"order_id", c.OrderID,
			"booster_id", c.BoosterID,
			"claimed_for", now.Sub(c.ClaimedAt).Round(time.Minute).String(),
		)
	}
	return claims, nil
}
