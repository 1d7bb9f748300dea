package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/riskibarqy/rank-boost/internal/domain/message"
	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
	idgen "github.com/riskibarqy/rank-boost/internal/platform/id"
	"github.com/riskibarqy/rank-boost/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	maxMessageLength    = 2000
	defaultMessageLimit = 100
	maxMessageLimit     = 500
)

// ChatService carries messages between the customer, the assigned booster
// and admins on a single order.
type ChatService struct {
	orders   order.Repository
	messages message.Repository
	idGen    idgen.Generator
	logger   *logging.Logger
	now      func() time.Time
}

func NewChatService(orders order.Repository, messages message.Repository, idGen idgen.Generator, logger *logging.Logger) *ChatService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ChatService{
		orders:   orders,
		messages: messages,
		idGen:    idGen,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ChatService) Post(ctx context.Context, actor user.Principal, orderID, body string) (message.Message, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChatService.Post", attribute.String("order_id", orderID))
	defer span.End()

	body = strings.TrimSpace(body)
	if body == "" {
		return message.Message{}, fmt.Errorf("%w: message body is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(body) > maxMessageLength {
		return message.Message{}, fmt.Errorf("%w: message exceeds %d characters", ErrInvalidInput, maxMessageLength)
	}

	p, err := loadParticipation(ctx, s.orders, actor, strings.TrimSpace(orderID))
	if err != nil {
		return message.Message{}, err
	}
	if !p.participant() {
		return message.Message{}, fmt.Errorf("%w: order=%s", ErrForbidden, orderID)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return message.Message{}, fmt.Errorf("generate message id: %w", err)
	}
	m := message.Message{
		ID:        id,
		OrderID:   p.order.ID,
		SenderID:  actor.UserID,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.messages.Create(ctx, m); err != nil {
		recordSpanError(span, err)
		return message.Message{}, fmt.Errorf("create message: %w", err)
	}

	s.logger.DebugContext(ctx, "order message posted", "order_id", m.OrderID, "sender_id", m.SenderID)
	return m, nil
}

// List returns the latest messages of an order, oldest first.
func (s *ChatService) List(ctx context.Context, actor user.Principal, orderID string, limit int) ([]message.Message, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChatService.List", attribute.String("order_id", orderID))
	defer span.End()

	p, err := loadParticipation(ctx, s.orders, actor, strings.TrimSpace(orderID))
	if err != nil {
		return nil, err
	}
	if !p.participant() {
		return nil, fmt.Errorf("%w: order=%s", ErrForbidden, orderID)
	}

	switch {
	case limit <= 0:
		limit = defaultMessageLimit
	case limit > maxMessageLimit:
		limit = maxMessageLimit
	}

	items, err := s.messages.ListByOrder(ctx, p.order.ID, limit)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return items, nil
}
