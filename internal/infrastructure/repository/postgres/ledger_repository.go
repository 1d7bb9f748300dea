package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/rank-boost/internal/domain/balance"
	qb "github.com/riskibarqy/rank-boost/internal/platform/querybuilder"
)

type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) ListByUser(ctx context.Context, userID string, limit int) ([]balance.Entry, error) {
	builder := qb.Select(qb.Columns(balanceEntryTableModel{})...).
		From("balance_entries").
		Where(qb.Eq("user_public_id", userID)).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list ledger query: %w", err)
	}

	var rows []balanceEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}

	out := make([]balance.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, balanceEntryFromRow(row))
	}
	return out, nil
}
