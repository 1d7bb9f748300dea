package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
)

// participation describes how an actor relates to one order.
type participation struct {
	order      order.Order
	claim      order.Claim
	claimed    bool
	owner      bool
	claimOwner bool
	admin      bool
}

func (p participation) participant() bool {
	return p.owner || p.claimOwner || p.admin
}

func loadParticipation(ctx context.Context, orders order.Repository, actor user.Principal, orderID string) (participation, error) {
	if actor.IsZero() {
		return participation{}, fmt.Errorf("%w: login required", ErrUnauthorized)
	}
	if orderID == "" {
		return participation{}, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}

	o, exists, err := orders.GetByID(ctx, orderID)
	if err != nil {
		return participation{}, fmt.Errorf("get order: %w", err)
	}
	if !exists {
		return participation{}, fmt.Errorf("%w: order=%s", ErrNotFound, orderID)
	}
	claim, claimed, err := orders.GetClaim(ctx, orderID)
	if err != nil {
		return participation{}, fmt.Errorf("get order claim: %w", err)
	}

	return participation{
		order:      o,
		claim:      claim,
		claimed:    claimed,
		owner:      o.UserID == actor.UserID,
		claimOwner: claimed && claim.BoosterID == actor.UserID,
		admin:      actor.Can(user.CapFullVisibility),
	}, nil
}
