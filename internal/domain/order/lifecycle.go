package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTransition = errors.New("order: invalid status transition")
	ErrAlreadyClaimed    = errors.New("order: already claimed")
	ErrNotClaimed        = errors.New("order: no active claim")
	ErrPayoutSettled     = errors.New("order: payout already approved")
)

// The methods below are the only way status and payout status change. Each
// checks the precondition against the locked row and mutates the copy held by
// the caller, who persists it in the same transaction.

func (o *Order) Claim(hasClaim bool, now time.Time) error {
	if hasClaim {
		return ErrAlreadyClaimed
	}
	if o.Status != StatusPending {
		return fmt.Errorf("%w: cannot claim a %s order", ErrInvalidTransition, o.Status)
	}
	o.Status = StatusClaimed
	o.UpdatedAt = now
	return nil
}

func (o *Order) Unclaim(now time.Time) error {
	if o.Status != StatusClaimed {
		return fmt.Errorf("%w: cannot unclaim a %s order", ErrInvalidTransition, o.Status)
	}
	o.Status = StatusPending
	o.UpdatedAt = now
	return nil
}

func (o *Order) Start(now time.Time) error {
	if o.Status != StatusClaimed {
		return fmt.Errorf("%w: cannot start a %s order", ErrInvalidTransition, o.Status)
	}
	o.Status = StatusInProgress
	o.UpdatedAt = now
	return nil
}

func (o *Order) Complete(now time.Time) error {
	if o.Status != StatusClaimed && o.Status != StatusInProgress {
		return fmt.Errorf("%w: cannot complete a %s order", ErrInvalidTransition, o.Status)
	}
	o.Status = StatusCompleted
	o.UpdatedAt = now
	return nil
}

func (o *Order) ApprovePayout(hasClaim bool, now time.Time) error {
	if o.PayoutStatus == PayoutPaid {
		return ErrPayoutSettled
	}
	if o.Status != StatusCompleted {
		return fmt.Errorf("%w: cannot pay out a %s order", ErrInvalidTransition, o.Status)
	}
	if !hasClaim {
		return ErrNotClaimed
	}
	o.PayoutStatus = PayoutPaid
	o.UpdatedAt = now
	return nil
}

// PayoutAmount is the booster's share of the order price.
func (o Order) PayoutAmount(share decimal.Decimal) decimal.Decimal {
	return o.Price.Mul(share).Round(2)
}
