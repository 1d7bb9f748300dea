package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/rank-boost/internal/domain/balance"
	"github.com/riskibarqy/rank-boost/internal/domain/order"
	qb "github.com/riskibarqy/rank-boost/internal/platform/querybuilder"
)

const claimOrderConstraint = "booster_orders_order_public_id_key"

var (
	orderColumns = qb.Columns(orderTableModel{})
	claimColumns = qb.Columns(claimTableModel{})
)

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithinTx runs fn in one database transaction. Any error, including a panic
// unwinding through fn, rolls the transaction back.
func (r *OrderRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx order.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &orderTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order tx: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (order.Order, bool, error) {
	return getOrder(ctx, r.db, qb.Select(orderColumns...).From("orders").Where(qb.Eq("public_id", orderID)))
}

func (r *OrderRepository) GetClaim(ctx context.Context, orderID string) (order.Claim, bool, error) {
	return getClaim(ctx, r.db, orderID)
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return r.list(ctx, qb.Eq("user_public_id", userID))
}

func (r *OrderRepository) ListByStatus(ctx context.Context, status order.Status) ([]order.Order, error) {
	return r.list(ctx, qb.Eq("status", string(status)))
}

func (r *OrderRepository) ListClaimedBy(ctx context.Context, boosterID string) ([]order.Order, error) {
	return r.list(ctx, qb.Expr("public_id IN (SELECT order_public_id FROM booster_orders WHERE booster_public_id = ?)", boosterID))
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	return r.list(ctx)
}

func (r *OrderRepository) ListClaimsBefore(ctx context.Context, cutoff time.Time) ([]order.Claim, error) {
	query, args, err := qb.Select(claimColumns...).
		From("booster_orders").
		Where(qb.Lt("claimed_at", cutoff)).
		OrderBy("claimed_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list stale claims query: %w", err)
	}

	var rows []claimTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list stale claims: %w", err)
	}

	out := make([]order.Claim, 0, len(rows))
	for _, row := range rows {
		out = append(out, claimFromRow(row))
	}
	return out, nil
}

func (r *OrderRepository) list(ctx context.Context, conditions ...qb.Condition) ([]order.Order, error) {
	query, args, err := qb.Select(orderColumns...).
		From("orders").
		Where(conditions...).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list orders query: %w", err)
	}

	var rows []orderTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return ordersFromRows(rows)
}

type orderTx struct {
	tx *sqlx.Tx
}

func (t *orderTx) GetForUpdate(ctx context.Context, orderID string) (order.Order, bool, error) {
	return getOrder(ctx, t.tx, qb.Select(orderColumns...).From("orders").Where(qb.Eq("public_id", orderID)).ForUpdate())
}

func (t *orderTx) GetClaim(ctx context.Context, orderID string) (order.Claim, bool, error) {
	return getClaim(ctx, t.tx, orderID)
}

func (t *orderTx) Upsert(ctx context.Context, o order.Order) (bool, error) {
	row, err := orderToRow(o)
	if err != nil {
		return false, err
	}

	// xmax is zero only for a freshly inserted tuple.
	query, args, err := qb.InsertModel("orders", row, `
ON CONFLICT (public_id) DO UPDATE SET
    payment_session_id = EXCLUDED.payment_session_id,
    updated_at = EXCLUDED.updated_at
RETURNING (xmax = 0) AS inserted`)
	if err != nil {
		return false, fmt.Errorf("build upsert order query: %w", err)
	}

	var inserted bool
	if err := t.tx.QueryRowxContext(ctx, query, args...).Scan(&inserted); err != nil {
		return false, fmt.Errorf("upsert order: %w", err)
	}
	return inserted, nil
}

func (t *orderTx) Update(ctx context.Context, o order.Order) error {
	query, args, err := qb.Update("orders").
		Set("status", string(o.Status)).
		Set("payout_status", string(o.PayoutStatus)).
		Set("updated_at", o.UpdatedAt).
		Where(qb.Eq("public_id", o.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update order query: %w", err)
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	affected, err := rowsAffected(res)
	if err != nil {
		return fmt.Errorf("update order rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update order: order %s not found", o.ID)
	}
	return nil
}

func (t *orderTx) InsertClaim(ctx context.Context, c order.Claim) error {
	query, args, err := qb.InsertModel("booster_orders", claimTableModel{
		OrderID:   c.OrderID,
		BoosterID: c.BoosterID,
		ClaimedAt: c.ClaimedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert claim query: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, claimOrderConstraint) {
			return order.ErrAlreadyClaimed
		}
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (t *orderTx) DeleteClaim(ctx context.Context, orderID string) error {
	query, args, err := qb.DeleteFrom("booster_orders").
		Where(qb.Eq("order_public_id", orderID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete claim query: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete claim: %w", err)
	}
	return nil
}

func (t *orderTx) CreditBalance(ctx context.Context, e balance.Entry) (bool, error) {
	insertQuery, insertArgs, err := qb.InsertModel("balance_entries", balanceEntryTableModel{
		PublicID:  e.ID,
		UserID:    e.UserID,
		OrderID:   e.OrderID,
		Kind:      string(e.Kind),
		Amount:    e.Amount,
		CreatedAt: e.CreatedAt,
	}, "ON CONFLICT (order_public_id, kind) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert ledger entry query: %w", err)
	}

	res, err := t.tx.ExecContext(ctx, insertQuery, insertArgs...)
	if err != nil {
		return false, fmt.Errorf("insert ledger entry: %w", err)
	}
	inserted, err := rowsAffected(res)
	if err != nil {
		return false, fmt.Errorf("insert ledger entry rows affected: %w", err)
	}
	if inserted == 0 {
		return false, nil
	}

	updateQuery, updateArgs, err := qb.Update("users").
		SetExpr("balance", "balance + ?", e.Amount).
		Set("updated_at", e.CreatedAt).
		Where(qb.Eq("public_id", e.UserID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build credit balance query: %w", err)
	}
	res, err = t.tx.ExecContext(ctx, updateQuery, updateArgs...)
	if err != nil {
		return false, fmt.Errorf("credit balance: %w", err)
	}
	if updated, err := rowsAffected(res); err != nil {
		return false, fmt.Errorf("credit balance rows affected: %w", err)
	} else if updated == 0 {
		return false, fmt.Errorf("credit balance: user %s not found", e.UserID)
	}
	return true, nil
}

func getOrder(ctx context.Context, q sqlx.QueryerContext, builder *qb.SelectBuilder) (order.Order, bool, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return order.Order{}, false, fmt.Errorf("build get order query: %w", err)
	}

	var row orderTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return order.Order{}, false, nil
		}
		return order.Order{}, false, fmt.Errorf("get order: %w", err)
	}

	o, err := orderFromRow(row)
	if err != nil {
		return order.Order{}, false, err
	}
	return o, true, nil
}

func getClaim(ctx context.Context, q sqlx.QueryerContext, orderID string) (order.Claim, bool, error) {
	query, args, err := qb.Select(claimColumns...).
		From("booster_orders").
		Where(qb.Eq("order_public_id", orderID)).
		ToSQL()
	if err != nil {
		return order.Claim{}, false, fmt.Errorf("build get claim query: %w", err)
	}

	var row claimTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return order.Claim{}, false, nil
		}
		return order.Claim{}, false, fmt.Errorf("get claim: %w", err)
	}
	return claimFromRow(row), true, nil
}
