package postgres

import (
	"context"
	"fmt"
	"slices"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/rank-boost/internal/domain/message"
	qb "github.com/riskibarqy/rank-boost/internal/platform/querybuilder"
)

type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m message.Message) error {
	query, args, err := qb.InsertModel("order_messages", messageTableModel{
		PublicID:  m.ID,
		OrderID:   m.OrderID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert message query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListByOrder returns the last limit messages of the order in posting order.
func (r *MessageRepository) ListByOrder(ctx context.Context, orderID string, limit int) ([]message.Message, error) {
	builder := qb.Select(qb.Columns(messageTableModel{})...).
		From("order_messages").
		Where(qb.Eq("order_public_id", orderID)).
		OrderBy("id DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list messages query: %w", err)
	}

	var rows []messageTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	slices.Reverse(rows)

	out := make([]message.Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, messageFromRow(row))
	}
	return out, nil
}
