package message

import (
	"context"
	"time"
)

// Message is a chat line between the participants of an order.
type Message struct {
	ID        string
	OrderID   string
	SenderID  string
	Body      string
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, m Message) error
	ListByOrder(ctx context.Context, orderID string, limit int) ([]Message, error)
}
