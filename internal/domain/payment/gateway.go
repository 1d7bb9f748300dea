package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidSignature = errors.New("payment: invalid webhook signature")

// MaxReferenceLength bounds the client reference round-tripped by the provider.
const MaxReferenceLength = 200

type CheckoutRequest struct {
	Reference   string
	CustomerID  string
	Description string
	Amount      decimal.Decimal
	Currency    string
	Metadata    map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type EventType string

const (
	EventCheckoutCompleted EventType = "checkout.session.completed"
	EventAsyncPaymentPaid  EventType = "checkout.session.async_payment_succeeded"
)

// Event is a verified provider notification about a checkout session.
type Event struct {
	ID          string
	Type        EventType
	SessionID   string
	Reference   string
	Paid        bool
	AmountTotal decimal.Decimal
	Currency    string
	Metadata    map[string]string
}

// Settles reports whether the event confirms payment for an order.
func (e Event) Settles() bool {
	return (e.Type == EventCheckoutCompleted || e.Type == EventAsyncPaymentPaid) && e.Paid
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	// ParseEvent verifies the signature header before decoding payload.
	ParseEvent(payload []byte, signature string) (Event, error)
}
