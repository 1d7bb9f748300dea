package order

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLifecycle_HappyPath(t *testing.T) {
	now := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	o := Order{Status: StatusPending, PayoutStatus: PayoutPending, Price: decimal.RequireFromString("82.00")}

	steps := []struct {
		name string
		run  func() error
		want Status
	}{
		{name: "claim", run: func() error { return o.Claim(false, now) }, want: StatusClaimed},
		{name: "start", run: func() error { return o.Start(now) }, want: StatusInProgress},
		{name: "complete", run: func() error { return o.Complete(now) }, want: StatusCompleted},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if o.Status != step.want {
			t.Fatalf("%s: status=%s want %s", step.name, o.Status, step.want)
		}
	}

	if err := o.ApprovePayout(true, now); err != nil {
		t.Fatalf("approve payout: %v", err)
	}
	if o.PayoutStatus != PayoutPaid {
		t.Fatalf("payout status=%s want Paid", o.PayoutStatus)
	}
	if err := o.ApprovePayout(true, now); !errors.Is(err, ErrPayoutSettled) {
		t.Fatalf("second approval: expected ErrPayoutSettled, got %v", err)
	}
	if got := o.PayoutAmount(decimal.RequireFromString("0.85")); got.StringFixed(2) != "69.70" {
		t.Fatalf("payout amount=%s want 69.70", got.StringFixed(2))
	}
}

func TestLifecycle_RejectsWrongState(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		status  Status
		run     func(o *Order) error
		wantErr error
	}{
		{name: "claim claimed", status: StatusClaimed, run: func(o *Order) error { return o.Claim(false, now) }, wantErr: ErrInvalidTransition},
		{name: "claim with existing claim", status: StatusPending, run: func(o *Order) error { return o.Claim(true, now) }, wantErr: ErrAlreadyClaimed},
		{name: "unclaim pending", status: StatusPending, run: func(o *Order) error { return o.Unclaim(now) }, wantErr: ErrInvalidTransition},
		{name: "unclaim in progress", status: StatusInProgress, run: func(o *Order) error { return o.Unclaim(now) }, wantErr: ErrInvalidTransition},
		{name: "start pending", status: StatusPending, run: func(o *Order) error { return o.Start(now) }, wantErr: ErrInvalidTransition},
		{name: "complete pending", status: StatusPending, run: func(o *Order) error { return o.Complete(now) }, wantErr: ErrInvalidTransition},
		{name: "complete completed", status: StatusCompleted, run: func(o *Order) error { return o.Complete(now) }, wantErr: ErrInvalidTransition},
		{name: "payout in progress", status: StatusInProgress, run: func(o *Order) error { return o.ApprovePayout(true, now) }, wantErr: ErrInvalidTransition},
		{name: "payout without claim", status: StatusCompleted, run: func(o *Order) error { return o.ApprovePayout(false, now) }, wantErr: ErrNotClaimed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := Order{Status: tc.status, PayoutStatus: PayoutPending}
			before := o
			err := tc.run(&o)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if o.Status != before.Status || o.PayoutStatus != before.PayoutStatus {
				t.Fatalf("rejected transition mutated the order: %+v", o)
			}
		})
	}
}
